package output

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bayleafwalker/bindery-graph/internal/registry"
)

// Status writes "message..", runs fn and completes the line with ".done",
// ".failed" or ".interrupted" when fn returns a context cancellation.
func Status(w io.Writer, message string, fn func() error) error {
	fmt.Fprintf(w, "%s..", message)
	err := fn()
	switch {
	case err == nil:
		fmt.Fprintln(w, ".done")
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(w, ".interrupted")
	default:
		fmt.Fprintln(w, ".failed")
	}
	return err
}

func isIgnored(err error) bool {
	return errors.Is(err, registry.ErrIgnoredTarget)
}
