// Package command decouples a request for a state change from the code
// that performs it.
//
// Callers build a Command value and hand it to a Bus; the bus looks up the
// handler registered under the command's name and runs it synchronously
// inside the configured middleware chain.
package command

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrHandlerNotFound is returned when no handler is registered for a command.
var ErrHandlerNotFound = errors.New("no handler registered for command")

// Command is an immutable request for a state change.
type Command interface {
	CommandName() string
}

// Bus dispatches commands to their handlers.
type Bus interface {
	Dispatch(ctx context.Context, cmd Command) error
}

// HandlerFunc performs a command.
type HandlerFunc func(ctx context.Context, cmd Command) error

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

var _ Bus = (*SyncBus)(nil)

// SyncBus runs handlers on the caller's goroutine and returns their error.
type SyncBus struct {
	mu          sync.RWMutex
	handlers    map[string]HandlerFunc
	middlewares []Middleware
}

// NewSyncBus creates a bus. The first middleware is the outermost.
func NewSyncBus(middlewares ...Middleware) *SyncBus {
	return &SyncBus{
		handlers:    make(map[string]HandlerFunc),
		middlewares: middlewares,
	}
}

// Register binds a handler to a command name, replacing any previous one.
func (b *SyncBus) Register(name string, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = chain(handler, b.middlewares)
}

func (b *SyncBus) Dispatch(ctx context.Context, cmd Command) error {
	b.mu.RLock()
	handler, ok := b.handlers[cmd.CommandName()]
	b.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrHandlerNotFound, cmd.CommandName())
	}
	return handler(ctx, cmd)
}

func chain(handler HandlerFunc, middlewares []Middleware) HandlerFunc {
	wrapped := handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}
