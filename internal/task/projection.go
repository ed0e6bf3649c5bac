package task

import (
	"slices"
	"strings"
)

// Project derives the display sequence from tasks and sel: text filter, then
// completion filter, then sort. It returns value copies and never touches the
// input, so it can be recomputed on every view request.
func Project(tasks []*Task, sel Selection) []Task {
	query := strings.ToLower(strings.TrimSpace(sel.Query))

	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		switch sel.Filter {
		case FilterDone:
			if !t.Done {
				continue
			}
		case FilterTodo:
			if t.Done {
				continue
			}
		}
		out = append(out, *t)
	}

	// Manual order first; the date sorts are stable on top of it, so tasks
	// sharing a due date keep their manual relative order.
	slices.SortStableFunc(out, func(a, b Task) int {
		return a.Order - b.Order
	})
	switch sel.Sort {
	case SortDateAsc:
		slices.SortStableFunc(out, func(a, b Task) int {
			return compareDates(a.DueDate, b.DueDate, false)
		})
	case SortDateDesc:
		slices.SortStableFunc(out, func(a, b Task) int {
			return compareDates(a.DueDate, b.DueDate, true)
		})
	}
	return out
}

// compareDates orders YYYY-MM-DD strings lexicographically, which matches
// chronological order. Tasks without a due date always sort last.
func compareDates(a, b string, desc bool) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	if desc {
		return strings.Compare(b, a)
	}
	return strings.Compare(a, b)
}
