package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsTasks(t *testing.T) {
	p := NewPool(3, nil)
	defer p.Shutdown()

	var n atomic.Int32
	done := make(chan struct{}, 10)
	for range 10 {
		err := p.Submit(Task{
			Ctx:  context.Background(),
			Name: "count",
			Work: func(ctx context.Context) error {
				n.Add(1)
				done <- struct{}{}
				return nil
			},
		})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	for range 10 {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for tasks")
		}
	}
	if n.Load() != 10 {
		t.Errorf("ran %d tasks, want 10", n.Load())
	}
}

func TestPoolSkipsCancelledTasks(t *testing.T) {
	p := NewPool(1, nil)
	defer p.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := make(chan struct{}, 1)
	_ = p.Submit(Task{Ctx: ctx, Work: func(context.Context) error {
		ran <- struct{}{}
		return nil
	}})
	flushed := make(chan struct{})
	_ = p.Submit(Task{Work: func(context.Context) error {
		close(flushed)
		return nil
	}})
	<-flushed
	select {
	case <-ran:
		t.Error("cancelled task ran")
	default:
	}
}

func TestSubmitAfterShutdown(t *testing.T) {
	p := NewPool(2, nil)
	p.Shutdown()
	p.Shutdown()
	err := p.Submit(Task{Work: func(context.Context) error { return nil }})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Submit after shutdown = %v, want ErrClosed", err)
	}
}

func TestShutdownWaitsForRunningTask(t *testing.T) {
	tests := []struct {
		name    string
		workers int
	}{
		{"single worker", 1},
		{"several workers", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPool(tt.workers, nil)
			started := make(chan struct{})
			release := make(chan struct{})
			var finished atomic.Bool
			err := p.Submit(Task{Name: "slow", Work: func(context.Context) error {
				close(started)
				<-release
				finished.Store(true)
				return nil
			}})
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			<-started

			stopped := make(chan struct{})
			go func() {
				p.Shutdown()
				close(stopped)
			}()
			select {
			case <-stopped:
				t.Fatal("Shutdown returned while a task was running")
			case <-time.After(50 * time.Millisecond):
			}
			close(release)
			select {
			case <-stopped:
			case <-time.After(5 * time.Second):
				t.Fatal("Shutdown did not return after the task finished")
			}
			if !finished.Load() {
				t.Error("task did not finish before Shutdown returned")
			}
		})
	}
}
