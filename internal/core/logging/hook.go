package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts the operation and label from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if op := GetOperation(ctx); op != "" {
		e.Str("op", op)
	}

	if l := GetLabel(ctx); l != "" {
		e.Str("label", l)
	}
}
