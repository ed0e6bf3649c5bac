package task

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/kmorozov/taskdeck/internal/eventbus"
)

// Store is the sole owner and mutator of the live task collection and the
// session view selection. Every structural mutation ends with
// reconcile-then-persist; persistence failures are logged and swallowed, so
// the in-memory state stays authoritative for the rest of the session.
//
// All operations are silent no-ops on invalid input or unknown ids: nothing
// is returned for the caller to branch on, the state either changes or it
// does not.
type Store struct {
	mu    sync.Mutex
	tasks []*Task
	sel   Selection

	repo Repository
	bus  *eventbus.Bus
}

func NewStore(repo Repository, bus *eventbus.Bus) *Store {
	return &Store{
		sel:  DefaultSelection(),
		repo: repo,
		bus:  bus,
	}
}

// Open returns a Store seeded from the repository. Load already repairs and
// reconciles, so the collection satisfies the dense-rank invariant from the
// first render.
func Open(ctx context.Context, repo Repository, bus *eventbus.Bus) *Store {
	s := NewStore(repo, bus)
	tasks, err := repo.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to load tasks, starting with an empty list", "error", err)
		tasks = nil
	}
	s.tasks = tasks
	return s
}

// Add creates a task at the end of the manual order. Invalid titles are
// dropped silently and nothing is persisted.
func (s *Store) Add(ctx context.Context, title, dueDate string) {
	normalized, ok := NormalizeTitle(title)
	if !ok {
		slog.DebugContext(ctx, "rejected task title", "title", title)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	maxOrder := 0
	for _, t := range s.tasks {
		if t.Order > maxOrder {
			maxOrder = t.Order
		}
	}
	t := &Task{
		ID:      ulid.Make().String(),
		Title:   normalized,
		DueDate: NormalizeDate(dueDate),
		Order:   maxOrder + 1,
	}
	s.tasks = append(s.tasks, t)
	Reconcile(s.tasks)
	s.persist(ctx)
	s.bus.PublishNew(eventbus.TaskCreated, t.ID)
}

// Edit updates title and due date in place. Unknown ids and invalid titles
// are silent no-ops; order and done are never touched.
func (s *Store) Edit(ctx context.Context, id, title, dueDate string) {
	normalized, ok := NormalizeTitle(title)
	if !ok {
		slog.DebugContext(ctx, "rejected task title", "task_id", id, "title", title)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.byID(id)
	if t == nil {
		return
	}
	t.Title = normalized
	t.DueDate = NormalizeDate(dueDate)
	s.persist(ctx)
	s.bus.PublishNew(eventbus.TaskUpdated, id)
}

// ToggleDone sets the completion flag. Not a structural change, so no
// reconciliation.
func (s *Store) ToggleDone(ctx context.Context, id string, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.byID(id)
	if t == nil {
		return
	}
	t.Done = done
	s.persist(ctx)
	s.bus.PublishNew(eventbus.TaskToggled, id)
}

// Delete removes the task and renumbers the survivors.
func (s *Store) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexByID(s.tasks, id)
	if idx < 0 {
		return
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	Reconcile(s.tasks)
	s.persist(ctx)
	s.bus.PublishNew(eventbus.TaskDeleted, id)
}

// MoveBefore drops the task with id into the slot currently held by targetID.
func (s *Store) MoveBefore(ctx context.Context, id, targetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !Move(s.tasks, id, targetID) {
		return
	}
	s.persist(ctx)
	s.bus.PublishNew(eventbus.TasksReordered, id)
}

func (s *Store) SetQuery(text string) {
	s.mu.Lock()
	s.sel.Query = text
	s.mu.Unlock()
	s.bus.PublishNew(eventbus.ViewChanged, "")
}

func (s *Store) SetFilter(mode FilterMode) {
	s.mu.Lock()
	s.sel.Filter = mode
	s.mu.Unlock()
	s.bus.PublishNew(eventbus.ViewChanged, "")
}

func (s *Store) SetSort(mode SortMode) {
	s.mu.Lock()
	s.sel.Sort = mode
	s.mu.Unlock()
	s.bus.PublishNew(eventbus.ViewChanged, "")
}

// Projection returns the current display sequence: query, filter, and sort
// applied to a snapshot of the collection.
func (s *Store) Projection() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Project(s.tasks, s.sel)
}

// Selection returns the current view selection.
func (s *Store) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// Len is the size of the full collection, before any filtering. The view
// layer uses it to decide whether to show the empty-state hint.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Reload re-reads the repository and swaps the collection, keeping the
// current view selection. Used when the slot changes underneath us; a reload
// that yields the same collection (our own save coming back) is dropped.
func (s *Store) Reload(ctx context.Context) {
	tasks, err := s.repo.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to reload tasks, keeping current list", "error", err)
		return
	}

	s.mu.Lock()
	same := len(tasks) == len(s.tasks)
	if same {
		for i, t := range tasks {
			if *t != *s.tasks[i] {
				same = false
				break
			}
		}
	}
	if same {
		s.mu.Unlock()
		return
	}
	s.tasks = tasks
	s.mu.Unlock()
	s.bus.PublishNew(eventbus.TasksReloaded, "")
}

// Snapshot writes a point-in-time copy of the collection via the repository.
func (s *Store) Snapshot(ctx context.Context) error {
	s.mu.Lock()
	tasks := make([]*Task, len(s.tasks))
	copy(tasks, s.tasks)
	s.mu.Unlock()
	return s.repo.Snapshot(ctx, tasks)
}

// persist saves the collection, swallowing failures: best-effort durability,
// the in-memory state remains correct either way. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	if err := s.repo.Save(ctx, s.tasks); err != nil {
		slog.WarnContext(ctx, "failed to persist tasks", "error", err)
	}
}

func (s *Store) byID(id string) *Task {
	idx := indexByID(s.tasks, id)
	if idx < 0 {
		return nil
	}
	return s.tasks[idx]
}
