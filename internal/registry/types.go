package registry

import (
	"github.com/bayleafwalker/bindery-graph/internal/metadata"
)

// Target is a provide name of one dependency kind.
type Target struct {
	Name string
	Kind metadata.Kind
}

func (t Target) String() string {
	return string(t.Kind) + ":" + t.Name
}

// TargetStatus is the outcome of resolving one target.
type TargetStatus struct {
	Target
	// File is set when the target is bound.
	File string
	// Err is a *TargetError when the target is not bound.
	Err error
}

// Report is returned by Registry.Resolve. Targets follows the requested
// order after aggregate expansion.
type Report struct {
	Kind        metadata.Kind
	Targets     []TargetStatus
	Diagnostics Diagnostics
}

// Failed reports whether any requested target is unknown or ambiguous.
// Ignored targets do not count.
func (r Report) Failed() bool {
	for _, t := range r.Targets {
		if t.Err != nil && !isIgnored(t.Err) {
			return true
		}
	}
	return false
}

// Diagnostics lists every problem the registry knows about, including those
// found while following dependencies of the requested targets.
type Diagnostics struct {
	Unresolved []TargetStatus
	Ignored    []Target
}

// Request explains why a file is part of the target set.
type Request struct {
	Target Target
	// Depender is the file that declared the dependency. It is empty when
	// the target was requested directly.
	Depender string
}
