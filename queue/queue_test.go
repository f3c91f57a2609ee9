package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mbruna/dendra/tree"
)

func testTask(id string) *Task {
	return &Task{Node: &tree.Node{ID: id}, Rows: []int{0, 1}, Depth: 0}
}

func TestPullReturnsTasksInPushOrder(t *testing.T) {
	ctx := context.Background()
	q := New()
	defer q.Stop(ctx)
	for i := 0; i < 3; i++ {
		if err := q.Push(ctx, testTask(fmt.Sprintf("%d", i))); err != nil {
			t.Fatalf("pushing task %d: %v", i, err)
		}
	}
	for i := 0; i < 3; i++ {
		task, _, tcf, err := q.Pull(ctx)
		if err != nil {
			t.Fatalf("pulling task %d: %v", i, err)
		}
		if task == nil {
			t.Fatalf("expected a task at pull %d, got nil", i)
		}
		tcf()
		if task.ID() != fmt.Sprintf("%d", i) {
			t.Errorf("expected task %d at pull %d, got %s", i, i, task.ID())
		}
	}
}

func TestPullOnEmptyQueueReturnsNils(t *testing.T) {
	ctx := context.Background()
	q := New()
	defer q.Stop(ctx)
	task, tctx, tcf, err := q.Pull(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task != nil || tctx != nil || tcf != nil {
		t.Error("expected nil values pulling from an empty queue")
	}
}

func TestCountTracksTaskStates(t *testing.T) {
	ctx := context.Background()
	q := New()
	defer q.Stop(ctx)
	if err := q.Push(ctx, testTask("a")); err != nil {
		t.Fatalf("pushing: %v", err)
	}
	if err := q.Push(ctx, testTask("b")); err != nil {
		t.Fatalf("pushing: %v", err)
	}
	assertCount(t, ctx, q, 0, 2)

	task, _, tcf, err := q.Pull(ctx)
	if err != nil || task == nil {
		t.Fatalf("pulling: task %v, error %v", task, err)
	}
	tcf()
	assertCount(t, ctx, q, 1, 1)

	if err = q.Complete(ctx, task.ID()); err != nil {
		t.Fatalf("completing: %v", err)
	}
	assertCount(t, ctx, q, 0, 1)
}

func TestDropReturnsRunningTaskToPending(t *testing.T) {
	ctx := context.Background()
	q := New()
	defer q.Stop(ctx)
	if err := q.Push(ctx, testTask("a")); err != nil {
		t.Fatalf("pushing: %v", err)
	}
	task, _, tcf, err := q.Pull(ctx)
	if err != nil || task == nil {
		t.Fatalf("pulling: task %v, error %v", task, err)
	}
	tcf()
	if err = q.Drop(ctx, task.ID()); err != nil {
		t.Fatalf("dropping: %v", err)
	}
	assertCount(t, ctx, q, 0, 1)

	again, _, tcf, err := q.Pull(ctx)
	if err != nil || again == nil {
		t.Fatalf("pulling dropped task: task %v, error %v", again, err)
	}
	tcf()
	if again.ID() != task.ID() {
		t.Errorf("expected the dropped task back, got %s", again.ID())
	}
}

func TestDropAfterCompleteDoesNotRequeue(t *testing.T) {
	ctx := context.Background()
	q := New()
	defer q.Stop(ctx)
	if err := q.Push(ctx, testTask("a")); err != nil {
		t.Fatalf("pushing: %v", err)
	}
	task, _, tcf, err := q.Pull(ctx)
	if err != nil || task == nil {
		t.Fatalf("pulling: task %v, error %v", task, err)
	}
	tcf()
	if err = q.Complete(ctx, task.ID()); err != nil {
		t.Fatalf("completing: %v", err)
	}
	if err = q.Drop(ctx, task.ID()); err != nil {
		t.Fatalf("dropping: %v", err)
	}
	assertCount(t, ctx, q, 0, 0)
}

func TestWaitForReturnsOnceQueueDrains(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q := New()
	defer q.Stop(ctx)
	if err := WaitFor(ctx, q); err != nil {
		t.Errorf("expected WaitFor to return nil on an empty queue, got %v", err)
	}
}

func assertCount(t *testing.T, ctx context.Context, q Queue, running, pending int) {
	t.Helper()
	r, p, err := q.Count(ctx)
	if err != nil {
		t.Fatalf("counting: %v", err)
	}
	if r != running || p != pending {
		t.Errorf("expected %d running and %d pending tasks, got %d and %d", running, pending, r, p)
	}
}
