// Package codec converts between wire representations and domain values.
package codec

import (
	"context"
	"time"

	polyskema "github.com/reoring/polyskema"
	"github.com/reoring/polyskema/i18n"
	js "github.com/reoring/polyskema/jsonschema"
)

// Codec converts a wire value A to a domain value B and back.
type Codec[A, B any] interface {
	Decode(ctx context.Context, a A) (B, error)
	Encode(ctx context.Context, b B) (A, error)
	// JSONSchema describes the wire form.
	JSONSchema() (*js.Schema, error)
}

// TimeRFC3339 returns a Codec that converts between RFC3339 strings and time.Time.
func TimeRFC3339() Codec[string, time.Time] { return rfc3339Codec{} }

type rfc3339Codec struct{}

func (rfc3339Codec) Decode(_ context.Context, a string) (time.Time, error) {
	t, err := parseRFC3339(a)
	if err != nil {
		return time.Time{}, polyskema.Issues{{
			Path:    "/",
			Code:    polyskema.CodeInvalidFormat,
			Message: i18n.T(polyskema.CodeInvalidFormat, map[string]string{"expected": "RFC 3339 date-time"}),
			Cause:   err,
		}}
	}
	return t, nil
}

func (rfc3339Codec) Encode(_ context.Context, b time.Time) (string, error) {
	return formatRFC3339Canonical(b), nil
}

func (rfc3339Codec) JSONSchema() (*js.Schema, error) {
	return &js.Schema{Type: "string", Format: "date-time"}, nil
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
