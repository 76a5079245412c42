package registry

import (
	"errors"
	"fmt"

	"github.com/bayleafwalker/bindery-graph/internal/resolver"
)

// ErrIgnoredTarget marks a name the configuration declares as provided
// outside the corpus. It is not a failure and is never logged as one.
var ErrIgnoredTarget = errors.New("ignored target")

// TargetError is returned for a target that has no bound file. It wraps
// resolver.ErrUnknownTarget, resolver.ErrAmbiguousProvider or
// ErrIgnoredTarget.
type TargetError struct {
	Target Target
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("%s target %q: %v", e.Target.Kind, e.Target.Name, e.Err)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}

// Reasons returns the filter reasons carried by a resolution failure, if any.
func Reasons(err error) []string {
	var rerr *resolver.ResolutionError
	if errors.As(err, &rerr) {
		return rerr.Reasons
	}
	return nil
}
