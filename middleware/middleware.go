// Package middleware validates HTTP request bodies against a schema, such as
// a registry union, and hands the decoded value to the next handler through
// the request context.
package middleware

import (
	"context"
	"net/http"

	j "github.com/goccy/go-json"

	polyskema "github.com/reoring/polyskema"
	"github.com/reoring/polyskema/source"
)

// ctxKeyDecoded is a typed context key for storing Decoded[T].
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches a Decoded[T] to the context.
func ContextWithDecoded[T any](ctx context.Context, d polyskema.Decoded[T]) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, d)
}

// DecodedFromContext retrieves a Decoded[T] from context.
func DecodedFromContext[T any](ctx context.Context) (polyskema.Decoded[T], bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(polyskema.Decoded[T])
	return v, ok
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []polyskema.Issue) map[string]any {
	return map[string]any{"issues": issues}
}

// ValidateJSON decodes the JSON request body, parses it with s and stores the
// result in the request context. Invalid bodies get 400 with the issues;
// duplicate keys count as invalid.
func ValidateJSON[T any](s polyskema.Schema[T]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			doc, err := source.JSONReader(r.Body)
			if err == nil {
				var d polyskema.Decoded[T]
				d, err = s.ParseWithMeta(ctx, doc)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(ContextWithDecoded(ctx, d)))
					return
				}
			}
			if iss, ok := polyskema.AsIssues(err); ok {
				writeJSON(w, http.StatusBadRequest, ErrorPayload(iss))
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = j.NewEncoder(w).Encode(v)
}
