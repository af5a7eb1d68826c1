package registry

import (
	"errors"
	"fmt"

	"github.com/reoring/polyskema/synth"
)

// ErrEmptyRegistry matches every *EmptyRegistryError.
var ErrEmptyRegistry = errors.New("registry: no class could be registered")

const (
	// ReasonProbe marks a class whose zero-argument construction failed.
	ReasonProbe synth.Reason = "probe-failed"
	// ReasonAbstract marks a class declared abstract.
	ReasonAbstract synth.Reason = "abstract-class"
)

// Diagnostic records why one class was left out of the union.
type Diagnostic struct {
	// Class is the qualified class name.
	Class  string
	Reason synth.Reason
	Err    error
}

func (d Diagnostic) String() string { return fmt.Sprintf("%s: %s: %v", d.Class, d.Reason, d.Err) }

// ProbeError reports a failed zero-argument construction.
type ProbeError struct {
	Class string
	Err   error
}

func (e *ProbeError) Error() string { return fmt.Sprintf("registry: probe %s: %v", e.Class, e.Err) }
func (e *ProbeError) Unwrap() error { return e.Err }

// EmptyRegistryError is returned by Build when no class survives. It keeps
// the diagnostics of every skipped class.
type EmptyRegistryError struct {
	Discovered  int
	Diagnostics []Diagnostic
}

func (e *EmptyRegistryError) Error() string {
	if e.Discovered == 0 {
		return ErrEmptyRegistry.Error() + ": no class discovered"
	}
	return fmt.Sprintf("%s: all %d discovered class(es) were skipped", ErrEmptyRegistry, e.Discovered)
}

func (e *EmptyRegistryError) Is(target error) bool { return target == ErrEmptyRegistry }

// Unwrap exposes the per-class errors.
func (e *EmptyRegistryError) Unwrap() []error {
	out := make([]error, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		out = append(out, d.Err)
	}
	return out
}
