package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testCommand struct {
	invalid bool
}

func (c testCommand) Validate() error {
	if c.invalid {
		return errors.New("bad command")
	}
	return nil
}

func TestCommandBus_Send_DispatchesToRegisteredHandler(t *testing.T) {
	bus := NewCommandBus()
	handled := false
	require.NoError(t, bus.Register(testCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		handled = true
		return nil
	})))

	require.NoError(t, bus.Send(context.Background(), testCommand{}))
	assert.True(t, handled)
}

func TestCommandBus_Send_ValidationRunsBeforeHandler(t *testing.T) {
	bus := NewCommandBus()
	require.NoError(t, bus.Register(testCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		t.Fatal("handler must not run for invalid commands")
		return nil
	})))

	assert.Error(t, bus.Send(context.Background(), testCommand{invalid: true}))
}

func TestCommandBus_Send_UnknownCommand(t *testing.T) {
	bus := NewCommandBus()
	assert.Error(t, bus.Send(context.Background(), testCommand{}))
}

func TestCommandBus_Send_WrapsHandlerError(t *testing.T) {
	bus := NewCommandBus()
	sentinel := errors.New("boom")
	require.NoError(t, bus.Register(testCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return sentinel
	})))

	err := bus.Send(context.Background(), testCommand{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel))
}

func TestCommandBus_Register_RejectsDuplicates(t *testing.T) {
	bus := NewCommandBus()
	handler := CommandHandlerFunc(func(ctx context.Context, cmd Command) error { return nil })

	require.NoError(t, bus.Register(testCommand{}, handler))
	assert.Error(t, bus.Register(testCommand{}, handler))
}

func TestPipeline_Execute_AppliesMiddlewareInOrder(t *testing.T) {
	var order []string
	outer := func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			order = append(order, "outer")
			return next.Handle(ctx, cmd)
		})
	}
	inner := func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			order = append(order, "inner")
			return next.Handle(ctx, cmd)
		})
	}

	pipeline := NewPipeline(outer, inner)
	handler := pipeline.Execute(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		order = append(order, "handler")
		return nil
	}))

	require.NoError(t, handler.Handle(context.Background(), testCommand{}))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestLoggingMiddleware_PassesResultThrough(t *testing.T) {
	sentinel := errors.New("boom")
	wrapped := LoggingMiddleware(zap.NewNop())(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return sentinel
	}))

	assert.ErrorIs(t, wrapped.Handle(context.Background(), testCommand{}), sentinel)
}
