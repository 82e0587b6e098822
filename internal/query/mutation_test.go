package query

import (
	"context"
	"errors"
	"testing"
)

func TestMutation_InvalidatesOnlyAfterSuccess(t *testing.T) {
	c := New()
	Set(c, Key{"rating"}, "none")
	Set(c, Key{"video"}, "v")
	Set(c, Key{"comments"}, 3)

	var staleDuringCall bool
	rate := NewMutation("rate", c, func(ctx context.Context, rating string) (struct{}, error) {
		staleDuringCall = Peek[string](c, Key{"rating"}).Stale
		return struct{}{}, nil
	}, func(string, struct{}) []Key {
		return []Key{{"rating"}, {"video"}}
	})

	var stages []Stage
	unsubscribe := rate.Subscribe(func(ev Event[string, struct{}]) {
		stages = append(stages, ev.Stage)
	})
	defer unsubscribe()

	ev := rate.Mutate(context.Background(), "like")
	if staleDuringCall {
		t.Fatalf("rating was invalidated before the write resolved")
	}
	if ev.Stage != StageSucceeded || ev.Err != nil {
		t.Fatalf("event = %+v, want succeeded", ev)
	}
	if len(ev.Invalidated) != 2 {
		t.Fatalf("invalidated = %v, want rating and video", ev.Invalidated)
	}
	if !Peek[string](c, Key{"rating"}).Stale || !Peek[string](c, Key{"video"}).Stale {
		t.Fatalf("rating and video should be stale")
	}
	if Peek[int](c, Key{"comments"}).Stale {
		t.Fatalf("comments should not be stale")
	}
	if len(stages) != 2 || stages[0] != StagePending || stages[1] != StageSucceeded {
		t.Fatalf("stages = %v, want pending, succeeded", stages)
	}
	if rate.Pending() {
		t.Fatalf("Pending = true after settle")
	}
}

func TestMutation_FailureLeavesCacheUntouched(t *testing.T) {
	c := New()
	Set(c, Key{"notes", "v1"}, []string{"a"})
	boom := errors.New("404")

	var calls int
	del := NewMutation("delete note", c, func(ctx context.Context, id string) (struct{}, error) {
		calls++
		return struct{}{}, boom
	}, func(string, struct{}) []Key {
		return []Key{{"notes", "v1"}}
	})

	ev := del.Mutate(context.Background(), "missing")
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (no retry)", calls)
	}
	if ev.Stage != StageFailed || !errors.Is(ev.Err, boom) {
		t.Fatalf("event = %+v, want failed", ev)
	}
	if len(ev.Invalidated) != 0 {
		t.Fatalf("invalidated = %v, want none", ev.Invalidated)
	}
	if res := Peek[[]string](c, Key{"notes", "v1"}); res.Stale || len(res.Data) != 1 {
		t.Fatalf("notes = %+v, want unchanged fresh entry", res)
	}
}

func TestMutation_PendingDuringCall(t *testing.T) {
	c := New()
	var m *Mutation[int, int]
	var pendingInside bool
	m = NewMutation("double", c, func(ctx context.Context, n int) (int, error) {
		pendingInside = m.Pending()
		return n * 2, nil
	}, nil)

	unsubscribe := m.Subscribe(func(Event[int, int]) {})
	unsubscribe()

	ev := m.Mutate(context.Background(), 21)
	if !pendingInside {
		t.Fatalf("Pending = false during call")
	}
	if ev.Result != 42 {
		t.Fatalf("Result = %d, want 42", ev.Result)
	}
	if !ev.Stage.Settled() || StagePending.Settled() {
		t.Fatalf("Settled mismatch")
	}
}
