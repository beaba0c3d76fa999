package diagnostic

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openmcf/mcfls/pkg/filebuffer"
	perrors "github.com/pkg/errors"
)

// Error aggregates the diagnostics collected over one scan or one
// document pass.
type Error struct {
	Err         error
	Diagnostics []error
}

func (e *Error) Error() string {
	var errs []string
	for _, err := range e.Diagnostics {
		errs = append(errs, err.Error())
	}
	return strings.Join(errs, "\n")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Display pretty-prints every span in err to w, falling back to the
// bare cause when err carries no spans.
func Display(ctx context.Context, w io.Writer, sources *filebuffer.Sources, err error) {
	spans := Spans(err)
	if len(spans) == 0 {
		color := Color(ctx)
		fmt.Fprintf(w, color.Sprintf(
			"%s: %s\n",
			color.Bold(color.Red("error")),
			color.Bold(Cause(err)),
		))
		return
	}
	for _, span := range spans {
		fmt.Fprintf(w, "%s\n", span.Pretty(ctx, sources))
	}
}

func Cause(err error) string {
	return perrors.Cause(err).Error()
}
