// Package diagnostic renders positioned, non-fatal findings (unknown
// symbols, unresolvable references) against their source lines.
package diagnostic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/openmcf/mcfls/pkg/filebuffer"
)

type Severity int

const (
	Info Severity = iota
	Warning
)

// SpanError annotates a region of one source line with a message. It
// is informational: nothing in the core treats it as fatal.
type SpanError struct {
	Err      error
	Severity Severity
	Pos, End lexer.Position
	Message  string
}

func New(severity Severity, pos, end lexer.Position, format string, a ...interface{}) *SpanError {
	return &SpanError{
		Severity: severity,
		Pos:      pos,
		End:      end,
		Message:  fmt.Sprintf(format, a...),
	}
}

func (se *SpanError) Error() string {
	return fmt.Sprintf("%s %s", FormatPos(se.Pos), se.Message)
}

func (se *SpanError) Unwrap() error {
	return se.Err
}

// Pretty renders the span with its source line and an underline:
//
//	tick.mcfunction:4:25:
//	  4 │ scoreboard players add @a deahts 1
//	    │                           ^^^^^^ unknown scoreboard "deahts"
func (se *SpanError) Pretty(ctx context.Context, sources *filebuffer.Sources) string {
	color := Color(ctx)

	header := color.Sprintf(color.Underline("%s:%d:%d:"), se.Pos.Filename, se.Pos.Line, se.Pos.Column)

	fb := sources.Get(se.Pos.Filename)
	if fb == nil {
		return fmt.Sprintf("%s %s", header, se.Message)
	}
	data, err := fb.Line(se.Pos.Line - 1)
	if err != nil {
		return fmt.Sprintf("%s %s", header, se.Message)
	}

	msgColor := color.Yellow
	if se.Severity == Info {
		msgColor = color.Cyan
	}

	width := se.End.Column - se.Pos.Column
	if width < 1 {
		width = 1
	}
	// Preserve tabs in the padding so the underline stays aligned.
	padding := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, data[:se.Pos.Column-1])

	ln := fmt.Sprintf("%d", se.Pos.Line)
	gutter := strings.Repeat(" ", len(ln))
	lines := []string{
		header,
		color.Sprintf(color.Blue("%s │ %s"), ln, data),
		color.Sprintf(color.Blue("%s │ "), gutter) + color.Sprintf("%s%s", padding,
			msgColor(fmt.Sprintf("%s %s", strings.Repeat("^", width), se.Message))),
	}
	return strings.Join(lines, "\n")
}

// Spans extracts every SpanError aggregated in err.
func Spans(err error) (spans []*SpanError) {
	var e *Error
	if errors.As(err, &e) {
		for _, err := range e.Diagnostics {
			var span *SpanError
			if errors.As(err, &span) {
				spans = append(spans, span)
			}
		}
		return spans
	}
	var span *SpanError
	if errors.As(err, &span) {
		spans = append(spans, span)
	}
	return spans
}

// FormatPos returns a lexer.Position formatted as a string.
func FormatPos(pos lexer.Position) string {
	return fmt.Sprintf("%s:%d:%d:", pos.Filename, pos.Line, pos.Column)
}
