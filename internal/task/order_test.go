package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ranked(ids ...string) []*Task {
	tasks := make([]*Task, len(ids))
	for i, id := range ids {
		tasks[i] = &Task{ID: id, Title: id, Order: i + 1}
	}
	return tasks
}

func orderOf(tasks []*Task) map[string]int {
	got := map[string]int{}
	for _, t := range tasks {
		got[t.ID] = t.Order
	}
	return got
}

func TestReconcileDense(t *testing.T) {
	tasks := []*Task{
		{ID: "a", Order: 7},
		{ID: "b", Order: 2},
		{ID: "c", Order: 40},
	}
	Reconcile(tasks)
	assert.Equal(t, map[string]int{"b": 1, "a": 2, "c": 3}, orderOf(tasks))
}

func TestReconcileTieBreaksByPosition(t *testing.T) {
	// Duplicate ranks can come from corrupted persisted data; the earlier
	// entry wins.
	tasks := []*Task{
		{ID: "a", Order: 3},
		{ID: "b", Order: 3},
		{ID: "c", Order: 1},
	}
	Reconcile(tasks)
	assert.Equal(t, map[string]int{"c": 1, "a": 2, "b": 3}, orderOf(tasks))
}

func TestReconcileIdempotent(t *testing.T) {
	tasks := ranked("a", "b", "c", "d")
	Reconcile(tasks)
	first := orderOf(tasks)
	Reconcile(tasks)
	assert.Equal(t, first, orderOf(tasks))
}

func TestReconcileEmpty(t *testing.T) {
	Reconcile(nil)
}

func TestMoveTakesTargetSlot(t *testing.T) {
	// [A(1),B(2),C(3)], move C onto A -> [C(1),A(2),B(3)]
	tasks := ranked("A", "B", "C")
	require.True(t, Move(tasks, "C", "A"))
	assert.Equal(t, map[string]int{"C": 1, "A": 2, "B": 3}, orderOf(tasks))
}

func TestMoveForward(t *testing.T) {
	tasks := ranked("A", "B", "C", "D")
	require.True(t, Move(tasks, "A", "C"))
	assert.Equal(t, map[string]int{"B": 1, "A": 2, "C": 3, "D": 4}, orderOf(tasks))
}

func TestMoveNoOps(t *testing.T) {
	tasks := ranked("A", "B", "C")

	assert.False(t, Move(tasks, "A", "A"), "same id")
	assert.False(t, Move(tasks, "A", "zzz"), "missing target")
	assert.False(t, Move(tasks, "zzz", "A"), "missing source")
	assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 3}, orderOf(tasks))
}
