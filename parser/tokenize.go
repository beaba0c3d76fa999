// Package parser splits raw mcfunction command lines into tokens and
// classifies which command a position in the line belongs to.
//
// The tokenizer is deliberately loss-tolerant: it runs on every
// keystroke of unfinished input, so unterminated quotes and unbalanced
// brackets are not errors, they are the common case. Whatever tokens
// were delimited before the malformed region are always returned.
package parser

// lineState tracks the tokenizer's position-sensitive context during a
// single left-to-right scan. It never outlives one Tokenize call.
type lineState struct {
	inString   bool
	inSelector bool
	objects    int // {} nesting
	arrays     int // [] nesting inside structured data
	escaped    bool
}

// separator reports whether a space at the current scan position splits
// tokens. Spaces inside strings, selector filters and NBT literals are
// part of the surrounding token.
func (s *lineState) separator() bool {
	return !s.inString && !s.inSelector && s.objects == 0 && s.arrays == 0
}

func (s *lineState) scan(c byte) {
	if s.escaped {
		s.escaped = false
		return
	}
	switch c {
	case '\\':
		s.escaped = true
	case '"':
		s.inString = !s.inString
	case '{':
		if !s.inString {
			s.objects++
		}
	case '}':
		// Clamp at zero so a stray close brace cannot poison the
		// rest of the line.
		if !s.inString && s.objects > 0 {
			s.objects--
		}
	case '[':
		if s.inString {
			return
		}
		if s.objects > 0 || s.arrays > 0 {
			s.arrays++
		} else if !s.inSelector {
			// Selector filters do not nest; a second [ inside
			// one is just selector content.
			s.inSelector = true
		}
	case ']':
		if s.inString {
			return
		}
		if s.arrays > 0 {
			s.arrays--
		} else if s.inSelector {
			s.inSelector = false
		}
	}
}

// Tokenize splits one line of text into tokens on unquoted, unbracketed
// spaces. Every separator produces a boundary, so consecutive spaces
// yield blank tokens and a trailing space yields one final blank token.
// Joining the result with single spaces reproduces the input exactly.
//
// Malformed input never fails: an unterminated quote or filter simply
// extends the current token to end of line.
func Tokenize(line string) []Token {
	var (
		state  lineState
		tokens []Token
		start  int
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == ' ' && !state.escaped && state.separator() {
			tokens = append(tokens, Token{Value: line[start:i], Start: start, End: i})
			start = i + 1
			continue
		}
		state.scan(c)
	}
	return append(tokens, Token{Value: line[start:], Start: start, End: len(line)})
}

// TokenAt returns the token covering the given byte column, preferring
// the token that ends exactly at col so completion mid-word and at a
// word boundary both target the text being typed. The second return is
// the token's index.
func TokenAt(tokens []Token, col int) (Token, int) {
	for i, tok := range tokens {
		if col >= tok.Start && col <= tok.End {
			return tok, i
		}
	}
	if len(tokens) == 0 {
		return Token{}, -1
	}
	last := len(tokens) - 1
	return tokens[last], last
}
