package diagnostic

import (
	"context"
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/openmcf/mcfls/pkg/filebuffer"
	"github.com/stretchr/testify/require"
)

func TestPretty(t *testing.T) {
	t.Parallel()

	sources := filebuffer.NewSources()
	fb := filebuffer.New("tick.mcfunction")
	_, err := fb.Write([]byte("say hi\nscoreboard players add @a deahts 1\n"))
	require.NoError(t, err)
	sources.Set(fb.Filename(), fb)

	span := New(Warning,
		fb.Position(1, 26),
		fb.Position(1, 32),
		"unknown scoreboard %q", "deahts",
	)

	pretty := span.Pretty(context.Background(), sources)
	require.Contains(t, pretty, "tick.mcfunction:2:27:")
	require.Contains(t, pretty, "scoreboard players add @a deahts 1")
	require.Contains(t, pretty, `^^^^^^ unknown scoreboard "deahts"`)
}

func TestSpans(t *testing.T) {
	t.Parallel()

	a := New(Warning, pos("a", 1), pos("a", 2), "first")
	b := New(Info, pos("b", 1), pos("b", 2), "second")
	agg := &Error{Diagnostics: []error{a, b}}

	spans := Spans(agg)
	require.Len(t, spans, 2)
	require.Equal(t, "first", spans[0].Message)

	spans = Spans(b)
	require.Len(t, spans, 1)

	require.Empty(t, Spans(nil))
}

func TestSuggestion(t *testing.T) {
	t.Parallel()

	candidates := []string{"deaths", "kills", "coins"}
	require.Equal(t, "deaths", Suggestion("deahts", candidates))
	require.Equal(t, "kills", Suggestion("kils", candidates))
	require.Equal(t, "", Suggestion("xp", candidates))
	require.Equal(t, "", Suggestion("deaths", nil))
}

func pos(filename string, col int) lexer.Position {
	return lexer.Position{Filename: filename, Line: 1, Column: col}
}
