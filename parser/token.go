package parser

// Token is a contiguous slice of a command line together with its byte
// offsets within that line. Offsets are half-open, so Value is always
// line[Start:End]. Tokens never span a line boundary.
type Token struct {
	Value string
	Start int
	End   int
}

// Blank reports whether the token holds no text. The tokenizer emits a
// blank token after a trailing separator, which completion callers read
// as "ready for the next argument".
func (t Token) Blank() bool {
	return t.Value == ""
}

// Values flattens tokens to their raw text, dropping offsets.
func Values(tokens []Token) []string {
	vals := make([]string, len(tokens))
	for i, tok := range tokens {
		vals[i] = tok.Value
	}
	return vals
}
