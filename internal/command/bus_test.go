package command

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type pingCommand struct{ n int }

func (pingCommand) CommandName() string { return "test.ping" }

func TestSyncBus_Dispatch(t *testing.T) {
	bus := NewSyncBus()
	var got int
	bus.Register("test.ping", func(_ context.Context, cmd Command) error {
		got = cmd.(pingCommand).n
		return nil
	})

	if err := bus.Dispatch(context.Background(), pingCommand{n: 7}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got != 7 {
		t.Errorf("handler saw n=%d", got)
	}
}

func TestSyncBus_PropagatesHandlerError(t *testing.T) {
	bus := NewSyncBus()
	want := errors.New("boom")
	bus.Register("test.ping", func(context.Context, Command) error { return want })

	if err := bus.Dispatch(context.Background(), pingCommand{}); !errors.Is(err, want) {
		t.Errorf("got err %v", err)
	}
}

func TestSyncBus_NoHandler(t *testing.T) {
	err := NewSyncBus().Dispatch(context.Background(), pingCommand{})
	if !errors.Is(err, ErrHandlerNotFound) {
		t.Fatalf("got err %v", err)
	}
	if !strings.Contains(err.Error(), "test.ping") {
		t.Errorf("error should name the command: %v", err)
	}
}

func TestSyncBus_MiddlewareOrder(t *testing.T) {
	var calls []string
	mark := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, cmd Command) error {
				calls = append(calls, name+">")
				err := next(ctx, cmd)
				calls = append(calls, "<"+name)
				return err
			}
		}
	}

	bus := NewSyncBus(mark("outer"), mark("inner"))
	bus.Register("test.ping", func(context.Context, Command) error {
		calls = append(calls, "handler")
		return nil
	})

	if err := bus.Dispatch(context.Background(), pingCommand{}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	want := "outer> inner> handler <inner <outer"
	if got := strings.Join(calls, " "); got != want {
		t.Errorf("calls = %q, want %q", got, want)
	}
}

func TestRecovery(t *testing.T) {
	logger := zerolog.Nop()
	bus := NewSyncBus(Logging(&logger), Recovery(&logger))
	bus.Register("test.ping", func(context.Context, Command) error {
		panic("kaboom")
	})

	err := bus.Dispatch(context.Background(), pingCommand{})
	if err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("got err %v", err)
	}
}
