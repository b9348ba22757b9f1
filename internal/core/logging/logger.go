package logging

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a new logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// Operation tags ctx with an operation name and label so ContextHook can
// add them to every event logged with that context.
func Operation(ctx context.Context, op, label string) context.Context {
	return WithLabel(WithOperation(ctx, op), label)
}
