package task

import "context"

// Repository is the durable home of the task collection. Load never fails on
// malformed content: it repairs what it can and falls back to an empty
// collection, so a corrupted slot costs data, not a crash.
type Repository interface {
	Load(ctx context.Context) ([]*Task, error)
	Save(ctx context.Context, tasks []*Task) error
	Snapshot(ctx context.Context, tasks []*Task) error
}
