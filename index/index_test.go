package index

import (
	"strings"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/openmcf/mcfls/resource"
)

func newTestIndex() *Index {
	return New(resource.NewResolver(), zerolog.Nop())
}

func fileLines(s string) []string {
	return strings.Split(strings.TrimSpace(dedent.Dedent(s)), "\n")
}

func TestScoreboardReferenceCounting(t *testing.T) {
	t.Parallel()

	ix := newTestIndex()
	ix.IndexFile("a.mcfunction", fileLines(`
		scoreboard objectives add deaths deathCount Deaths
	`))
	ix.IndexFile("b.mcfunction", fileLines(`
		say unrelated
		scoreboard objectives add deaths deathCount Deaths
	`))

	sb, ok := ix.LookupScoreboard("deaths")
	require.True(t, ok)
	require.Equal(t, 2, sb.Refs)
	require.Equal(t, "deathCount", sb.Criterion)
	require.Equal(t, "Deaths", sb.DisplayName)

	// Editing away one declaring line decrements but keeps the entry.
	ix.IndexLine("a.mcfunction", 0, "say nothing to declare here")
	sb, ok = ix.LookupScoreboard("deaths")
	require.True(t, ok)
	require.Equal(t, 1, sb.Refs)

	// Removing the last declaring line deletes the entry entirely.
	ix.IndexLine("b.mcfunction", 1, "")
	_, ok = ix.LookupScoreboard("deaths")
	require.False(t, ok)
	require.Empty(t, ix.Scoreboards())
}

func TestReindexSameLineNeverDoubleCounts(t *testing.T) {
	t.Parallel()

	ix := newTestIndex()
	for i := 0; i < 5; i++ {
		ix.IndexLine("a.mcfunction", 0, "scoreboard objectives add coins dummy")
	}
	sb, ok := ix.LookupScoreboard("coins")
	require.True(t, ok)
	require.Equal(t, 1, sb.Refs)

	// Renaming the objective on the same line retracts the old name.
	ix.IndexLine("a.mcfunction", 0, "scoreboard objectives add gems dummy")
	_, ok = ix.LookupScoreboard("coins")
	require.False(t, ok)
	sb, ok = ix.LookupScoreboard("gems")
	require.True(t, ok)
	require.Equal(t, 1, sb.Refs)
}

func TestTagLifecycle(t *testing.T) {
	t.Parallel()

	ix := newTestIndex()
	ix.IndexLine("a.mcfunction", 0, "scoreboard players tag @e[type=Zombie] add angry")
	ix.IndexLine("a.mcfunction", 1, "scoreboard players tag @a add angry")

	tag, ok := ix.LookupTag("angry")
	require.True(t, ok)
	require.Equal(t, 2, tag.Refs)

	ix.IndexLine("a.mcfunction", 0, "say edited")
	ix.IndexLine("a.mcfunction", 1, "say edited")
	_, ok = ix.LookupTag("angry")
	require.False(t, ok)
}

func TestCallEdgeBidirectionalConsistency(t *testing.T) {
	t.Parallel()

	ix := newTestIndex()
	ix.IndexLine("a.mcfunction", 5, "function ns:target")

	refs := ix.ReferencesTo("ns:target")
	require.Equal(t, map[string][]int{"a.mcfunction": {5}}, refs)
	require.Equal(t, map[int]string{5: "ns:target"}, ix.Dispatches("a.mcfunction"))

	// Editing the line to no longer call the target removes the
	// caller entry entirely, not an empty husk.
	ix.IndexLine("a.mcfunction", 5, "say no more calls")
	require.Nil(t, ix.ReferencesTo("ns:target"))
	require.Nil(t, ix.Dispatches("a.mcfunction"))
}

func TestCallEdgeCanonicalization(t *testing.T) {
	t.Parallel()

	ix := newTestIndex()
	// A bare path gets the default namespace, so both callers hit the
	// same target key.
	ix.IndexLine("a.mcfunction", 0, "function helper")
	ix.IndexLine("b.mcfunction", 3, "function minecraft:helper")

	refs := ix.ReferencesTo("minecraft:helper")
	require.Equal(t, map[string][]int{
		"a.mcfunction": {0},
		"b.mcfunction": {3},
	}, refs)
}

func TestIndexFileShrinkRetractsTrailingLines(t *testing.T) {
	t.Parallel()

	ix := newTestIndex()
	ix.IndexFile("a.mcfunction", fileLines(`
		say hello
		scoreboard objectives add coins dummy
		function ns:helper
	`))
	_, ok := ix.LookupScoreboard("coins")
	require.True(t, ok)
	require.NotNil(t, ix.ReferencesTo("ns:helper"))

	ix.IndexFile("a.mcfunction", []string{"say hello"})
	_, ok = ix.LookupScoreboard("coins")
	require.False(t, ok)
	require.Nil(t, ix.ReferencesTo("ns:helper"))
}

func TestRemoveFile(t *testing.T) {
	t.Parallel()

	ix := newTestIndex()
	ix.IndexFile("a.mcfunction", fileLines(`
		scoreboard objectives add coins dummy
		function ns:helper
	`))
	ix.IndexFile("b.mcfunction", []string{"scoreboard objectives add coins dummy"})

	ix.RemoveFile("a.mcfunction")

	sb, ok := ix.LookupScoreboard("coins")
	require.True(t, ok)
	require.Equal(t, 1, sb.Refs)
	require.Nil(t, ix.ReferencesTo("ns:helper"))

	// Removing an unknown file is a no-op.
	ix.RemoveFile("ghost.mcfunction")
}

func TestRenameFile(t *testing.T) {
	t.Parallel()

	ix := newTestIndex()
	ix.IndexFile("old.mcfunction", fileLines(`
		scoreboard objectives add coins dummy
		function ns:helper
	`))

	ix.RenameFile("old.mcfunction", "new.mcfunction")

	refs := ix.ReferencesTo("ns:helper")
	require.Equal(t, map[string][]int{"new.mcfunction": {1}}, refs)
	sb, ok := ix.LookupScoreboard("coins")
	require.True(t, ok)
	require.Equal(t, "new.mcfunction", sb.DefinedIn)
	require.Equal(t, map[int]string{1: "ns:helper"}, ix.Dispatches("new.mcfunction"))
	require.Nil(t, ix.Dispatches("old.mcfunction"))
}

func TestWrappedDeclarationsAreIndexed(t *testing.T) {
	t.Parallel()

	ix := newTestIndex()
	ix.IndexLine("a.mcfunction", 0, "execute @e ~ ~ ~ function ns:helper")
	require.Equal(t, map[string][]int{"a.mcfunction": {0}}, ix.ReferencesTo("ns:helper"))

	// An incomplete wrapper declares nothing.
	ix.IndexLine("a.mcfunction", 1, "execute @e function ns:other")
	require.Nil(t, ix.ReferencesTo("ns:other"))
}

func TestMalformedLinesContributeNothing(t *testing.T) {
	t.Parallel()

	ix := newTestIndex()
	for i, line := range []string{
		"# scoreboard objectives add commented dummy",
		"",
		"scoreboard objectives add",
		"scoreboard objectives add  dummy",
		"function :",
		`say "unterminated`,
	} {
		ix.IndexLine("a.mcfunction", i, line)
	}
	require.Empty(t, ix.Scoreboards())
	require.Empty(t, ix.Tags())
	require.Equal(t, Stats{}, ix.Stats())
}

func TestStats(t *testing.T) {
	t.Parallel()

	ix := newTestIndex()
	ix.IndexFile("a.mcfunction", fileLines(`
		scoreboard objectives add coins dummy
		scoreboard players tag @a add vip
		function ns:one
		function ns:two
	`))
	ix.IndexFile("b.mcfunction", []string{"function ns:one"})

	stats := ix.Stats()
	require.Equal(t, Stats{
		Files:       2,
		Scoreboards: 1,
		Tags:        1,
		CallTargets: 2,
		CallEdges:   3,
	}, stats)
}
