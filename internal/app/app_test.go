package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GoArmGo/ArtMarket/internal/config"
	"github.com/GoArmGo/ArtMarket/internal/logger"
	"github.com/GoArmGo/ArtMarket/internal/messaging/payloads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConsumer struct {
	started chan struct{}
	stopped chan error
	err     error
}

func (f *fakeConsumer) StartConsumingArtworkEvents(context.Context, func(context.Context, payloads.ArtworkEvent) error) (<-chan error, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.stopped == nil {
		f.stopped = make(chan error, 1)
	}
	close(f.started)
	return f.stopped, nil
}

func noopHandler(context.Context, payloads.ArtworkEvent) error { return nil }

func TestRunUnknownModeClosesResources(t *testing.T) {
	var order []string
	a := NewApp(&config.Config{}, logger.Discard(), Services{},
		Closer{Name: "db", Close: func() error { order = append(order, "db"); return nil }},
		Closer{Name: "amqp", Close: func() error { order = append(order, "amqp"); return nil }},
	)

	err := a.Run(context.Background(), "batch")
	require.Error(t, err)
	assert.Equal(t, []string{"amqp", "db"}, order)
}

func TestRunWorkerStopsOnCancel(t *testing.T) {
	consumer := &fakeConsumer{started: make(chan struct{})}
	closed := false
	a := NewApp(&config.Config{}, logger.Discard(), Services{
		EventConsumer: consumer,
		EventHandler:  noopHandler,
	}, Closer{Name: "amqp", Close: func() error { closed = true; return nil }})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, ModeWorker) }()

	select {
	case <-consumer.started:
	case <-time.After(time.Second):
		t.Fatal("consumer was not started")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.True(t, closed)
}

func TestRunWorkerConsumerError(t *testing.T) {
	a := NewApp(&config.Config{}, logger.Discard(), Services{
		EventConsumer: &fakeConsumer{err: errors.New("channel closed")},
		EventHandler:  noopHandler,
	})

	err := a.Run(context.Background(), ModeWorker)
	assert.ErrorContains(t, err, "channel closed")
}

func TestRunWorkerExitsWhenDeliveriesStop(t *testing.T) {
	lost := errors.New("delivery channel closed")
	consumer := &fakeConsumer{started: make(chan struct{}), stopped: make(chan error, 1)}
	closed := false
	a := NewApp(&config.Config{}, logger.Discard(), Services{
		EventConsumer: consumer,
		EventHandler:  noopHandler,
	}, Closer{Name: "amqp", Close: func() error { closed = true; return nil }})

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background(), ModeWorker) }()

	select {
	case <-consumer.started:
	case <-time.After(time.Second):
		t.Fatal("consumer was not started")
	}
	consumer.stopped <- lost

	select {
	case err := <-done:
		assert.ErrorIs(t, err, lost)
		assert.True(t, closed)
	case <-time.After(time.Second):
		t.Fatal("worker kept running after deliveries stopped")
	}
}

func TestShutdownJoinsErrors(t *testing.T) {
	a := NewApp(&config.Config{}, logger.Discard(), Services{},
		Closer{Name: "db", Close: func() error { return errors.New("db busy") }},
		Closer{Name: "gorm", Close: func() error { return nil }},
	)

	err := a.Shutdown()
	assert.ErrorContains(t, err, "db busy")
	assert.NoError(t, a.Shutdown())
}
