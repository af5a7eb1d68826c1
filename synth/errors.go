package synth

import (
	"errors"
	"fmt"
)

// Reason classifies a synthesis failure.
type Reason string

const (
	ReasonUninspectable  Reason = "uninspectable-signature"
	ReasonTypeResolution Reason = "type-resolution-failed"
	ReasonConflict       Reason = "instantiation-conflict"
)

// ErrSynthesis matches every *SynthesisError.
var ErrSynthesis = errors.New("synth: synthesis failed")

// SynthesisError reports why a class could not be turned into a model.
type SynthesisError struct {
	// Class is the qualified class name.
	Class  string
	Reason Reason
	Err    error
}

func (e *SynthesisError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("synth: %s: %s", e.Class, e.Reason)
	}
	return fmt.Sprintf("synth: %s: %s: %v", e.Class, e.Reason, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

func (e *SynthesisError) Is(target error) bool { return target == ErrSynthesis }

func failf(class string, reason Reason, format string, args ...any) *SynthesisError {
	return &SynthesisError{Class: class, Reason: reason, Err: fmt.Errorf(format, args...)}
}
