package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestProjectManualOrder(t *testing.T) {
	tasks := []*Task{
		{ID: "1", Title: "second", Order: 2},
		{ID: "2", Title: "first", Order: 1},
		{ID: "3", Title: "third", Order: 3},
	}
	got := Project(tasks, DefaultSelection())
	assert.Equal(t, []string{"first", "second", "third"}, titles(got))
}

func TestProjectQueryCaseInsensitive(t *testing.T) {
	tasks := []*Task{
		{ID: "1", Title: "Buy milk", Order: 1},
		{ID: "2", Title: "Call mom", Order: 2},
		{ID: "3", Title: "buy bread", Order: 3},
	}
	sel := DefaultSelection()
	sel.Query = "BUY"
	assert.Equal(t, []string{"Buy milk", "buy bread"}, titles(Project(tasks, sel)))
}

func TestProjectQueryTrimmed(t *testing.T) {
	tasks := []*Task{{ID: "1", Title: "Buy milk", Order: 1}}
	sel := DefaultSelection()
	sel.Query = "   "
	assert.Len(t, Project(tasks, sel), 1)
}

func TestProjectQueryUnicode(t *testing.T) {
	tasks := []*Task{
		{ID: "1", Title: "Сделать домашку", Order: 1},
		{ID: "2", Title: "Buy milk", Order: 2},
	}
	sel := DefaultSelection()
	sel.Query = "ДОМАШ"
	assert.Equal(t, []string{"Сделать домашку"}, titles(Project(tasks, sel)))
}

func TestProjectStatusFilter(t *testing.T) {
	tasks := []*Task{
		{ID: "1", Title: "a", Done: true, Order: 1},
		{ID: "2", Title: "b", Done: false, Order: 2},
	}

	sel := DefaultSelection()
	sel.Filter = FilterDone
	assert.Equal(t, []string{"a"}, titles(Project(tasks, sel)))

	sel.Filter = FilterTodo
	assert.Equal(t, []string{"b"}, titles(Project(tasks, sel)))

	sel.Filter = FilterAll
	assert.Len(t, Project(tasks, sel), 2)
}

func TestProjectDateSort(t *testing.T) {
	tasks := []*Task{
		{ID: "1", Title: "late", DueDate: "2026-03-01", Order: 1},
		{ID: "2", Title: "none", Order: 2},
		{ID: "3", Title: "early", DueDate: "2026-01-15", Order: 3},
	}

	sel := DefaultSelection()
	sel.Sort = SortDateAsc
	assert.Equal(t, []string{"early", "late", "none"}, titles(Project(tasks, sel)))

	sel.Sort = SortDateDesc
	assert.Equal(t, []string{"late", "early", "none"}, titles(Project(tasks, sel)))
}

func TestProjectDateSortStableOnTies(t *testing.T) {
	tasks := []*Task{
		{ID: "1", Title: "a", DueDate: "2026-01-15", Order: 1},
		{ID: "2", Title: "b", DueDate: "2026-01-15", Order: 2},
		{ID: "3", Title: "c", DueDate: "2026-01-15", Order: 3},
	}
	sel := DefaultSelection()
	sel.Sort = SortDateAsc
	assert.Equal(t, []string{"a", "b", "c"}, titles(Project(tasks, sel)))
}

func TestProjectComposition(t *testing.T) {
	// query "buy" + filter todo + sort dateAsc keeps exactly the undone
	// matching task.
	tasks := []*Task{
		{ID: "1", Title: "Buy milk", Done: false, DueDate: "2026-01-10", Order: 1},
		{ID: "2", Title: "Buy bread", Done: true, DueDate: "2026-01-05", Order: 2},
	}
	sel := Selection{Query: "buy", Filter: FilterTodo, Sort: SortDateAsc}
	got := Project(tasks, sel)
	require.Len(t, got, 1)
	assert.Equal(t, "Buy milk", got[0].Title)
}

func TestProjectPure(t *testing.T) {
	tasks := []*Task{
		{ID: "1", Title: "a", DueDate: "2026-02-01", Order: 2},
		{ID: "2", Title: "b", DueDate: "2026-01-01", Order: 1},
	}
	sel := DefaultSelection()
	sel.Sort = SortDateAsc

	first := Project(tasks, sel)
	second := Project(tasks, sel)
	assert.Equal(t, first, second)

	// The input is untouched: same instances, same order values.
	assert.Equal(t, "1", tasks[0].ID)
	assert.Equal(t, 2, tasks[0].Order)

	// And the result is a copy: mutating it does not leak back.
	first[0].Title = "mutated"
	assert.Equal(t, "b", tasks[1].Title)
}
