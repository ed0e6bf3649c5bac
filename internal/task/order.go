package task

import "slices"

// Reconcile renumbers Order over tasks so that sorting by Order ascending
// yields a dense 1..N sequence. Relative order immediately before the call is
// preserved; tasks sharing an Order value (possible after loading corrupted
// data) keep their slice order, since the sort is stable.
func Reconcile(tasks []*Task) {
	slices.SortStableFunc(tasks, func(a, b *Task) int {
		return a.Order - b.Order
	})
	for i, t := range tasks {
		t.Order = i + 1
	}
}

// Move reorders tasks so the task with id sits immediately before the task
// with targetID, shifting the target and everything after it down one slot,
// then reconciles. Missing ids or id == targetID make it a no-op. Reports
// whether the collection changed.
func Move(tasks []*Task, id, targetID string) bool {
	if id == targetID {
		return false
	}
	from := indexByID(tasks, id)
	to := indexByID(tasks, targetID)
	if from < 0 || to < 0 {
		return false
	}

	// Work on the manual-ordered sequence regardless of slice order.
	Reconcile(tasks)
	from = indexByID(tasks, id)
	to = indexByID(tasks, targetID)

	moved := tasks[from]
	rest := slices.Delete(tasks, from, from+1)
	if from < to {
		to--
	}
	tasks = slices.Insert(rest, to, moved)
	Reconcile(tasks)
	return true
}

func indexByID(tasks []*Task, id string) int {
	return slices.IndexFunc(tasks, func(t *Task) bool {
		return t.ID == id
	})
}
