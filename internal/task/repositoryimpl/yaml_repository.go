package repositoryimpl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kmorozov/taskdeck/internal/task"
	"github.com/kmorozov/taskdeck/pkg/cerr"
	"github.com/kmorozov/taskdeck/pkg/storage"
)

const (
	// SlotPath is the single slot holding the whole collection.
	SlotPath = "tasks.yaml"

	snapshotsPrefix = "snapshots"
)

// YAMLRepository persists the task collection as one YAML document in a
// storage slot. Loading is repair-oriented: each entry is coerced field by
// field and only an entry without a usable id is dropped, so one bad field
// never costs the user the whole list.
type YAMLRepository struct {
	storage      storage.Storage
	snapshotKeep int
}

func NewYAMLRepository(s storage.Storage, snapshotKeep int) *YAMLRepository {
	return &YAMLRepository{storage: s, snapshotKeep: snapshotKeep}
}

func (r *YAMLRepository) Load(ctx context.Context) ([]*task.Task, error) {
	data, err := r.storage.Read(ctx, SlotPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, cerr.WrapStorageReadError("tasks", err)
	}

	var entries []map[string]any
	if err := yaml.Unmarshal(data, &entries); err != nil {
		slog.WarnContext(ctx, "task slot is not a task list, starting fresh", "error", err)
		return nil, nil
	}

	tasks := make([]*task.Task, 0, len(entries))
	for i, entry := range entries {
		t, ok := repairEntry(entry, i)
		if !ok {
			slog.WarnContext(ctx, "dropping unrepairable task entry", "position", i)
			continue
		}
		tasks = append(tasks, t)
	}

	// One reconciliation restores the dense-rank invariant regardless of
	// what was persisted.
	task.Reconcile(tasks)
	return tasks, nil
}

func (r *YAMLRepository) Save(ctx context.Context, tasks []*task.Task) error {
	data, err := yaml.Marshal(tasks)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal tasks: %w", err))
	}
	if err := r.storage.Write(ctx, SlotPath, data); err != nil {
		return cerr.WrapStorageWriteError("tasks", err)
	}
	return nil
}

// Snapshot writes a timestamped copy of the collection under snapshots/ and
// prunes the oldest copies beyond the retention count.
func (r *YAMLRepository) Snapshot(ctx context.Context, tasks []*task.Task) error {
	data, err := yaml.Marshal(tasks)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal tasks: %w", err))
	}
	name := fmt.Sprintf("%s/tasks-%s.yaml", snapshotsPrefix, time.Now().UTC().Format("20060102T150405.000000000"))
	if err := r.storage.Write(ctx, name, data); err != nil {
		return cerr.WrapStorageWriteError("snapshot", err)
	}
	return r.prune(ctx)
}

func (r *YAMLRepository) prune(ctx context.Context) error {
	if r.snapshotKeep <= 0 {
		return nil
	}
	paths, err := r.storage.List(ctx, snapshotsPrefix)
	if err != nil {
		return cerr.WrapStorageReadError("snapshots", err)
	}
	if len(paths) <= r.snapshotKeep {
		return nil
	}
	// Timestamped names sort chronologically.
	sort.Strings(paths)
	for _, p := range paths[:len(paths)-r.snapshotKeep] {
		if err := r.storage.Delete(ctx, p); err != nil {
			return cerr.WrapStorageDeleteError("snapshot", err)
		}
	}
	return nil
}

// repairEntry coerces one persisted record into a Task. pos is the entry's
// 0-based position in the source sequence, used as the fallback rank.
func repairEntry(entry map[string]any, pos int) (*task.Task, bool) {
	id, ok := coerceString(entry["id"])
	if !ok || id == "" {
		return nil, false
	}

	title, ok := coerceString(entry["title"])
	if !ok {
		// Repair is structural, not a re-validation: a missing title
		// becomes empty rather than dropping the entry.
		title = ""
	}

	due := ""
	switch v := entry["due_date"].(type) {
	case time.Time:
		// yaml resolves bare ISO dates into time.Time.
		due = v.Format("2006-01-02")
	default:
		if raw, ok := coerceString(v); ok {
			due = task.NormalizeDate(raw)
		}
	}

	order := pos + 1
	if n, ok := coerceInt(entry["order"]); ok {
		order = n
	}

	return &task.Task{
		ID:      id,
		Title:   title,
		DueDate: due,
		Done:    coerceBool(entry["done"]),
		Order:   order,
	}, true
}

func coerceString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return "", false
	}
}

// coerceBool accepts only an actual boolean or the string "true"; anything
// else ("yes", 1, ...) is treated as not done.
func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true"
	default:
		return false
	}
}

func coerceInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case uint64:
		return int(val), true
	case float64:
		if val != val || val > float64(int(^uint(0)>>1)) || val < -float64(int(^uint(0)>>1)) {
			return 0, false
		}
		return int(val), true
	default:
		return 0, false
	}
}
