package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bayleafwalker/bindery-graph/internal/metadata"
)

var (
	// ErrUnknownTarget indicates that no definition file offers the name.
	ErrUnknownTarget = errors.New("unknown target")
	// ErrAmbiguousProvider indicates that candidates exist but none is
	// eligible, or that the preferences among them conflict.
	ErrAmbiguousProvider = errors.New("no eligible provider")
)

// ResolutionError describes why a name could not be resolved.
type ResolutionError struct {
	Name    string
	Kind    metadata.Kind
	Reasons []string

	err error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("%s target %q: %v", e.Kind, e.Name, e.err)
	if len(e.Reasons) == 0 {
		return msg
	}
	return msg + ": " + strings.Join(e.Reasons, "; ")
}

func (e *ResolutionError) Unwrap() error {
	return e.err
}

func unknownTarget(name string, kind metadata.Kind) *ResolutionError {
	return &ResolutionError{Name: name, Kind: kind, err: ErrUnknownTarget}
}

func ambiguousProvider(name string, kind metadata.Kind, reasons []string) *ResolutionError {
	return &ResolutionError{Name: name, Kind: kind, Reasons: reasons, err: ErrAmbiguousProvider}
}
