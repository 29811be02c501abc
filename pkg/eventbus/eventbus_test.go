package eventbus

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type testEvent struct {
	name string
}

func (e testEvent) Name() string { return e.name }

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	bus := New(zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	calls := 0

	listener := func(ctx context.Context, event Event) error {
		defer wg.Done()
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	}
	bus.Subscribe("order_ready", listener)
	bus.Subscribe("order_ready", listener)

	bus.Publish(context.Background(), testEvent{name: "order_ready"})

	waitWithTimeout(t, &wg)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}

func TestBus_PublishIgnoresUnrelatedEvents(t *testing.T) {
	bus := New(zap.NewNop())

	called := make(chan struct{}, 1)
	bus.Subscribe("a", func(ctx context.Context, event Event) error {
		called <- struct{}{}
		return nil
	})

	bus.Publish(context.Background(), testEvent{name: "b"})

	select {
	case <-called:
		t.Fatal("слушатель другого события не должен вызываться")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_ListenerErrorDoesNotStopOthers(t *testing.T) {
	bus := New(zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(2)
	bus.Subscribe("x", func(ctx context.Context, event Event) error {
		defer wg.Done()
		return fmt.Errorf("обработчик упал")
	})
	done := make(chan struct{}, 1)
	bus.Subscribe("x", func(ctx context.Context, event Event) error {
		defer wg.Done()
		done <- struct{}{}
		return nil
	})

	bus.Publish(context.Background(), testEvent{name: "x"})

	waitWithTimeout(t, &wg)
	assert.Len(t, done, 1)
}

func waitWithTimeout(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("слушатели не завершились вовремя")
	}
}
