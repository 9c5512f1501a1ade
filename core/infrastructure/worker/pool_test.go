package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/carlosrabelo/mirante/core/domain/entities"
)

func TestPoolRunsTasks(t *testing.T) {
	pool := NewPool(2, 4)
	pool.Start()
	defer pool.Stop()

	channels := make([]<-chan entities.Result, 0, 4)
	for i := 0; i < 4; i++ {
		output := fmt.Sprintf("result %d", i)
		ch, err := pool.Submit(context.Background(), func(ctx context.Context) entities.Result {
			return entities.Result{Output: output, Status: entities.StatusValid}
		})
		if err != nil {
			t.Fatalf("Submit returned error: %v", err)
		}
		channels = append(channels, ch)
	}

	for i, ch := range channels {
		select {
		case result, ok := <-ch:
			if !ok {
				t.Fatalf("task %d: channel closed without result", i)
			}
			if result.Output != fmt.Sprintf("result %d", i) {
				t.Errorf("task %d: got %q", i, result.Output)
			}
		case <-time.After(time.Second):
			t.Fatalf("task %d did not complete", i)
		}
	}
}

func TestPoolCancelledBeforePickup(t *testing.T) {
	pool := NewPool(1, 2)
	pool.Start()
	defer pool.Stop()

	release := make(chan struct{})
	_, err := pool.Submit(context.Background(), func(ctx context.Context) entities.Result {
		<-release
		return entities.Result{}
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	ch, err := pool.Submit(cancelled, func(ctx context.Context) entities.Result {
		return entities.Result{Output: "should not run"}
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	close(release)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("cancelled task should not produce a result")
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled task channel never closed")
	}
}

func TestPoolQueueFull(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start()
	defer pool.Stop()

	release := make(chan struct{})
	defer close(release)

	blocker := func(ctx context.Context) entities.Result {
		<-release
		return entities.Result{}
	}

	// first task occupies the worker; wait until it is picked up so the
	// queue slot frees deterministically
	if _, err := pool.Submit(context.Background(), blocker); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	// second fills the single queue slot
	if _, err := pool.Submit(context.Background(), blocker); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	// third must be rejected, not block the caller
	if _, err := pool.Submit(context.Background(), blocker); err == nil {
		t.Error("expected an error when the queue is full")
	}
}
