package task

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is the delay after an fsnotify event before the checksum is
// compared; atomic writes arrive as a rename burst.
const watchDebounce = 100 * time.Millisecond

// Watcher reloads the store when the local slot file changes underneath the
// process, e.g. when the user edits tasks.yaml by hand or another taskdeck
// instance writes it. The SHA-256 comparison filters out our own saves and
// event storms that did not change the content.
type Watcher struct {
	store    *Store
	slotPath string
	lastHash [sha256.Size]byte
}

// NewWatcher watches the slot file at slotPath (absolute filesystem path).
func NewWatcher(store *Store, slotPath string) *Watcher {
	w := &Watcher{
		store:    store,
		slotPath: slotPath,
	}
	w.lastHash = hashFile(slotPath)
	return w
}

// Run blocks until ctx is done, reloading the store on real external changes.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Watch the directory rather than the file: atomic rename replaces the
	// inode, which would silently detach a file-level watch.
	if err := fw.Add(filepath.Dir(w.slotPath)); err != nil {
		return err
	}

	var debounce *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.slotPath {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				debounce.Reset(watchDebounce)
			}
			fire = debounce.C
		case <-fire:
			fire = nil
			w.checkAndReload(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "slot watch error", "error", err)
		}
	}
}

func (w *Watcher) checkAndReload(ctx context.Context) {
	hash := hashFile(w.slotPath)
	if hash == w.lastHash {
		return
	}
	w.lastHash = hash
	slog.InfoContext(ctx, "task slot changed on disk, reloading")
	w.store.Reload(ctx)
}

func hashFile(path string) [sha256.Size]byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return [sha256.Size]byte{}
	}
	return sha256.Sum256(data)
}
