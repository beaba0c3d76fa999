package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		line string
		vals []string
	}{{
		"simple command",
		"say hello world",
		[]string{"say", "hello", "world"},
	}, {
		"empty line",
		"",
		[]string{""},
	}, {
		"trailing space yields blank token",
		"scoreboard objectives ",
		[]string{"scoreboard", "objectives", ""},
	}, {
		"double space yields blank token",
		"say  hi",
		[]string{"say", "", "hi"},
	}, {
		"quoted string with spaces",
		`tellraw @a "hello there world"`,
		[]string{"tellraw", "@a", `"hello there world"`},
	}, {
		"escaped quote inside string",
		`say "she said \"hi\" twice"`,
		[]string{"say", `"she said \"hi\" twice"`},
	}, {
		"escaped backslash then quote terminates",
		`say "a\\" b`,
		[]string{"say", `"a\\"`, "b"},
	}, {
		"selector filter is one token",
		"kill @e[type=Zombie,tag=x]",
		[]string{"kill", "@e[type=Zombie,tag=x]"},
	}, {
		"selector filter with spaces",
		"kill @e[type=Zombie, tag=x]",
		[]string{"kill", "@e[type=Zombie, tag=x]"},
	}, {
		"object literal is one token",
		`say {"text":"a b c"}`,
		[]string{"say", `{"text":"a b c"}`},
	}, {
		"nested object and array",
		`give @p stick{display:{Lores:["a b", "c d"]}} 1`,
		[]string{"give", `@p`, `stick{display:{Lores:["a b", "c d"]}}`, "1"},
	}, {
		"array open inside object is not a selector",
		`data merge block ~ ~ ~ {Items:[{id:"stone", Count:1b}]}`,
		[]string{"data", "merge", "block", "~", "~", "~", `{Items:[{id:"stone", Count:1b}]}`},
	}, {
		"selector containing nbt braces",
		`kill @e[nbt={Health:20.0f, Tags:["a b"]}]`,
		[]string{"kill", `@e[nbt={Health:20.0f, Tags:["a b"]}]`},
	}, {
		"unterminated quote runs to end of line",
		`say "unfinished business`,
		[]string{"say", `"unfinished business`},
	}, {
		"unterminated selector runs to end of line",
		"kill @e[type=Creeper",
		[]string{"kill", "@e[type=Creeper"},
	}, {
		"unbalanced close brace is clamped",
		"say } ok",
		[]string{"say", "}", "ok"},
	}, {
		"escaped space splits nothing",
		`say a\ b`,
		[]string{"say", `a\ b`},
	}} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tokens := Tokenize(tt.line)
			require.Equal(t, tt.vals, Values(tokens))
		})
	}
}

func TestTokenizeOffsets(t *testing.T) {
	t.Parallel()

	line := `execute @e[tag=a b] ~ ~ ~ say {"text":"x y"}`
	for _, tok := range Tokenize(line) {
		require.Equal(t, tok.Value, line[tok.Start:tok.End])
	}
}

func TestTokenizeIdempotent(t *testing.T) {
	t.Parallel()

	line := `scoreboard players tag @e[type=Pig] add "odd tag"`
	require.Equal(t, Tokenize(line), Tokenize(line))
}

func TestTokenizeRoundTrip(t *testing.T) {
	t.Parallel()

	// Rejoining with single spaces must reproduce the input for any
	// line without structured data or selector filters.
	for _, line := range []string{
		"say hello world",
		"scoreboard objectives add deaths deathCount Deaths",
		"function ns:sub/func ",
		`tellraw @a "a b c" tail`,
	} {
		require.Equal(t, line, strings.Join(Values(Tokenize(line)), " "))
	}
}

func TestTokenAt(t *testing.T) {
	t.Parallel()

	line := "scoreboard objectives add x"
	tokens := Tokenize(line)

	tok, i := TokenAt(tokens, 0)
	require.Equal(t, "scoreboard", tok.Value)
	require.Equal(t, 0, i)

	// Position at the end of a token still targets that token.
	tok, i = TokenAt(tokens, 10)
	require.Equal(t, "scoreboard", tok.Value)
	require.Equal(t, 0, i)

	tok, i = TokenAt(tokens, 12)
	require.Equal(t, "objectives", tok.Value)
	require.Equal(t, 1, i)

	// Past the end of the line falls back to the last token.
	tok, i = TokenAt(tokens, 99)
	require.Equal(t, "x", tok.Value)
	require.Equal(t, 3, i)
}
