package task

// Task is a single todo item. DueDate is a YYYY-MM-DD string; empty means the
// task has no due date. Order is the manual display rank, kept dense and
// unique (1..N) across the live collection.
type Task struct {
	ID      string `yaml:"id" json:"id"`
	Title   string `yaml:"title" json:"title"`
	DueDate string `yaml:"due_date,omitempty" json:"dueDate"`
	Done    bool   `yaml:"done" json:"done"`
	Order   int    `yaml:"order" json:"order"`
}

// FilterMode selects tasks by completion state.
type FilterMode string

const (
	FilterAll  FilterMode = "all"
	FilterDone FilterMode = "done"
	FilterTodo FilterMode = "todo"
)

// SortMode selects the display ordering.
type SortMode string

const (
	SortManual   SortMode = "manual"
	SortDateAsc  SortMode = "dateAsc"
	SortDateDesc SortMode = "dateDesc"
)

// ParseFilterMode maps raw input to a FilterMode, falling back to FilterAll on
// anything unknown.
func ParseFilterMode(raw string) FilterMode {
	switch FilterMode(raw) {
	case FilterDone, FilterTodo:
		return FilterMode(raw)
	default:
		return FilterAll
	}
}

// ParseSortMode maps raw input to a SortMode, falling back to SortManual on
// anything unknown.
func ParseSortMode(raw string) SortMode {
	switch SortMode(raw) {
	case SortDateAsc, SortDateDesc:
		return SortMode(raw)
	default:
		return SortManual
	}
}

// Selection is the session-local view state: free-text query, completion
// filter, and sort mode. It is never persisted.
type Selection struct {
	Query  string
	Filter FilterMode
	Sort   SortMode
}

// DefaultSelection is the view state at process start.
func DefaultSelection() Selection {
	return Selection{
		Filter: FilterAll,
		Sort:   SortManual,
	}
}
