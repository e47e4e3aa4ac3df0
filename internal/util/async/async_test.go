package async

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
)

func TestRunParallel_Empty(t *testing.T) {
	if err := RunParallel(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunParallel_AllSucceed(t *testing.T) {
	var ran atomic.Int32
	tasks := []Task{
		{Name: "a", Func: func(context.Context) error { ran.Add(1); return nil }},
		{Name: "b", Func: func(context.Context) error { ran.Add(1); return nil }},
		{Name: "c", Func: func(context.Context) error { ran.Add(1); return nil }},
	}

	if err := RunParallel(context.Background(), tasks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran.Load() != 3 {
		t.Errorf("ran = %d, want 3", ran.Load())
	}
}

func TestRunParallel_CollectsAllFailures(t *testing.T) {
	bad := errors.New("boom")
	var ran atomic.Int32
	tasks := []Task{
		{Name: "node-0", Func: func(context.Context) error { ran.Add(1); return bad }},
		{Name: "node-1", Func: func(context.Context) error { ran.Add(1); return nil }},
		{Name: "node-2", Func: func(context.Context) error { ran.Add(1); return bad }},
	}

	err := RunParallel(context.Background(), tasks)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if ran.Load() != 3 {
		t.Errorf("ran = %d, want 3 (failures must not stop siblings)", ran.Load())
	}
	if !errors.Is(err, bad) {
		t.Errorf("joined error does not wrap the cause: %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "node-0") || !strings.Contains(msg, "node-2") {
		t.Errorf("joined error %q does not name both failing tasks", msg)
	}
}
