package document

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func numberedDoc(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("say line %d", i)
	}
	return strings.Join(lines, "\n")
}

func TestGetTokensReadThrough(t *testing.T) {
	t.Parallel()

	m := NewManager(Options{})
	m.Open("file:///a.mcfunction", "say one\nkill @e[type=Zombie]\r\n")

	segs := m.Segments("file:///a.mcfunction", 0)
	require.Equal(t, []string{"say", "one"}, segs)

	// \r is normalized away before tokenizing.
	segs = m.Segments("file:///a.mcfunction", 1)
	require.Equal(t, []string{"kill", "@e[type=Zombie]"}, segs)

	_, ok := m.GetTokens("file:///a.mcfunction", 99)
	require.False(t, ok)
	_, ok = m.GetTokens("file:///untracked", 0)
	require.False(t, ok)
}

func TestColdWarmIdempotence(t *testing.T) {
	t.Parallel()

	line := `execute @e[tag=x] ~ ~ ~ say {"a":"b c"}`

	warm := NewManager(Options{})
	warm.Open("u", line)
	first, ok := warm.GetTokens("u", 0)
	require.True(t, ok)
	second, ok := warm.GetTokens("u", 0)
	require.True(t, ok)
	require.Equal(t, first, second)

	cold := NewManager(Options{})
	cold.Open("u", line)
	fresh, ok := cold.GetTokens("u", 0)
	require.True(t, ok)
	require.Equal(t, first, fresh)
}

func TestEditLineShift(t *testing.T) {
	t.Parallel()

	m := NewManager(Options{})
	m.Open("u", numberedDoc(11))

	// Warm the cache for lines 0-10.
	before := make(map[int][]string)
	for i := 0; i <= 10; i++ {
		before[i] = m.Segments("u", i)
	}

	// Delete line 3 entirely (delta -1).
	m.Edit("u", 3, 3, nil)

	d, ok := m.Get("u")
	require.True(t, ok)
	require.Equal(t, 10, d.NumLines())

	// Lines 0-2 keep their entries untouched.
	for i := 0; i <= 2; i++ {
		e, ok := d.cache[i]
		require.True(t, ok, "line %d should stay cached", i)
		require.Equal(t, before[i], tokenValues(e))
	}
	// Old lines 4-10 are re-keyed to 3-9 with their cached tokens.
	for i := 3; i <= 9; i++ {
		e, ok := d.cache[i]
		require.True(t, ok, "line %d should be re-keyed", i)
		require.Equal(t, before[i+1], tokenValues(e))
	}
	// Nothing is cached beyond the new end.
	_, ok = d.cache[10]
	require.False(t, ok)

	// The re-keyed cache matches a fresh parse of the new text.
	for i := 0; i < 10; i++ {
		require.Equal(t, d.lines[i], strings.Join(m.Segments("u", i), " "))
	}
}

func TestEditInsertShiftsDown(t *testing.T) {
	t.Parallel()

	m := NewManager(Options{})
	m.Open("u", numberedDoc(5))
	for i := 0; i < 5; i++ {
		m.Segments("u", i)
	}

	// Replace line 1 with three lines (delta +2).
	m.Edit("u", 1, 1, []string{"say a", "say b", "say c"})

	d, _ := m.Get("u")
	require.Equal(t, 7, d.NumLines())

	_, ok := d.cache[0]
	require.True(t, ok)
	for i := 1; i <= 3; i++ {
		_, ok = d.cache[i]
		require.False(t, ok, "edited line %d must be invalidated", i)
	}
	for i := 4; i <= 6; i++ {
		e, ok := d.cache[i]
		require.True(t, ok)
		require.Equal(t, fmt.Sprintf("say line %d", i-2), strings.Join(tokenValues(e), " "))
	}
}

func TestPerDocumentLineCap(t *testing.T) {
	t.Parallel()

	m := NewManager(Options{MaxLinesPerDocument: 3})
	m.Open("u", numberedDoc(10))
	for i := 0; i < 5; i++ {
		m.Segments("u", i)
	}

	d, _ := m.Get("u")
	require.Len(t, d.cache, 3)
	// The oldest-parsed entries (lines 0 and 1) were evicted.
	for i := 2; i <= 4; i++ {
		_, ok := d.cache[i]
		require.True(t, ok)
	}
}

func TestDocumentLRUCap(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	m := NewManager(Options{MaxDocuments: 2})
	m.now = func() time.Time { now = now.Add(time.Second); return now }

	m.Open("a", "say a")
	m.Open("b", "say b")
	m.Segments("a", 0) // touch a so b becomes coldest

	m.Open("c", "say c")
	require.ElementsMatch(t, []string{"a", "c"}, m.Tracked())
}

func TestTTLBackstop(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	m := NewManager(Options{TTL: time.Minute})
	m.now = func() time.Time { return now }

	m.Open("u", "say hi")
	first, _ := m.GetTokens("u", 0)

	d, _ := m.Get("u")
	seqBefore := d.cache[0].seq

	now = now.Add(2 * time.Minute)
	second, _ := m.GetTokens("u", 0)
	require.Equal(t, first, second)
	require.NotEqual(t, seqBefore, d.cache[0].seq, "expired entry should be re-parsed")
}

func TestCloseDropsSlot(t *testing.T) {
	t.Parallel()

	m := NewManager(Options{})
	m.Open("u", "say hi")
	m.Close("u")
	_, ok := m.Get("u")
	require.False(t, ok)
}

func TestRename(t *testing.T) {
	t.Parallel()

	m := NewManager(Options{})
	m.Open("old", "say hi")
	m.Rename("old", "new")

	segs := m.Segments("new", 0)
	require.Equal(t, []string{"say", "hi"}, segs)
	_, ok := m.Get("old")
	require.False(t, ok)
}

func tokenValues(e *entry) []string {
	vals := make([]string, len(e.tokens))
	for i, tok := range e.tokens {
		vals[i] = tok.Value
	}
	return vals
}
