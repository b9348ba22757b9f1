package logging

import "context"

type contextKey string

const (
	operationKey contextKey = "op"
	labelKey     contextKey = "label"
)

// WithOperation adds an operation name (upload, random) to the context.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// WithLabel adds the label an operation runs under to the context.
func WithLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, labelKey, label)
}

// GetOperation retrieves the operation name from the context.
// Returns empty string if not present.
func GetOperation(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey).(string); ok {
		return op
	}
	return ""
}

// GetLabel retrieves the label from the context.
// Returns empty string if not present.
func GetLabel(ctx context.Context) string {
	if l, ok := ctx.Value(labelKey).(string); ok {
		return l
	}
	return ""
}
