package command

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
)

// Logging logs every dispatched command with its duration and outcome.
func Logging(logger *zerolog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, cmd Command) error {
			start := time.Now()

			err := next(ctx, cmd)

			event := logger.Debug()
			if err != nil {
				event = logger.Warn().Err(err)
			}
			event.
				Str("command", cmd.CommandName()).
				Dur("duration", time.Since(start)).
				Msg("command dispatched")

			return err
		}
	}
}

// Recovery turns a handler panic into an error so one bad command cannot
// take the process down.
func Recovery(logger *zerolog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, cmd Command) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error().
						Str("command", cmd.CommandName()).
						Str("stack", string(debug.Stack())).
						Msgf("panic in command handler: %v", r)
					err = fmt.Errorf("command %s panicked: %v", cmd.CommandName(), r)
				}
			}()

			return next(ctx, cmd)
		}
	}
}
