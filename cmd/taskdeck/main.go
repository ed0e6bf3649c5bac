package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/sourcegraph/conc/pool"

	server "github.com/kmorozov/taskdeck/internal"
	"github.com/kmorozov/taskdeck/internal/config"
	"github.com/kmorozov/taskdeck/internal/eventbus"
	"github.com/kmorozov/taskdeck/internal/task"
	"github.com/kmorozov/taskdeck/internal/task/repositoryimpl"
	"github.com/kmorozov/taskdeck/pkg/clog"
	"github.com/kmorozov/taskdeck/pkg/panicerr"
	"github.com/kmorozov/taskdeck/pkg/storage"
)

var (
	app = kingpin.New("taskdeck", "Ordered todo list with durable storage")

	serveCmd = app.Command("serve", "Serve the task API over HTTP")

	addCmd   = app.Command("add", "Add a task")
	addTitle = addCmd.Arg("title", "Task title").Required().String()
	addDue   = addCmd.Flag("due", "Due date (YYYY-MM-DD)").String()

	listCmd    = app.Command("list", "List tasks")
	listQuery  = listCmd.Flag("query", "Filter by title substring").String()
	listFilter = listCmd.Flag("filter", "all, done, or todo").Default("all").String()
	listSort   = listCmd.Flag("sort", "manual, dateAsc, or dateDesc").Default("manual").String()

	editCmd   = app.Command("edit", "Edit a task's title and due date")
	editID    = editCmd.Arg("id", "Task ID").Required().String()
	editTitle = editCmd.Arg("title", "New title").Required().String()
	editDue   = editCmd.Flag("due", "New due date (YYYY-MM-DD)").String()

	doneCmd = app.Command("done", "Mark a task done")
	doneID  = doneCmd.Arg("id", "Task ID").Required().String()

	undoneCmd = app.Command("undone", "Mark a task not done")
	undoneID  = undoneCmd.Arg("id", "Task ID").Required().String()

	rmCmd = app.Command("rm", "Delete a task")
	rmID  = rmCmd.Arg("id", "Task ID").Required().String()

	moveCmd      = app.Command("move", "Move a task into another task's slot")
	moveID       = moveCmd.Arg("id", "Task ID to move").Required().String()
	moveTargetID = moveCmd.Arg("target", "Task ID whose slot it takes").Required().String()

	snapshotCmd = app.Command("snapshot", "Write a point-in-time copy of the task list")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	setupLogger(env)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, local, err := buildStorage(ctx, env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		os.Exit(1)
	}
	repo := repositoryimpl.NewYAMLRepository(store, env.SnapshotKeep)
	bus := eventbus.New()
	taskStore := task.Open(ctx, repo, bus)

	switch command {
	case serveCmd.FullCommand():
		runServe(ctx, env, taskStore, bus, local)
	case addCmd.FullCommand():
		taskStore.Add(ctx, *addTitle, *addDue)
	case listCmd.FullCommand():
		taskStore.SetQuery(*listQuery)
		taskStore.SetFilter(task.ParseFilterMode(*listFilter))
		taskStore.SetSort(task.ParseSortMode(*listSort))
		printTasks(taskStore)
	case editCmd.FullCommand():
		taskStore.Edit(ctx, *editID, *editTitle, *editDue)
	case doneCmd.FullCommand():
		taskStore.ToggleDone(ctx, *doneID, true)
	case undoneCmd.FullCommand():
		taskStore.ToggleDone(ctx, *undoneID, false)
	case rmCmd.FullCommand():
		taskStore.Delete(ctx, *rmID)
	case moveCmd.FullCommand():
		taskStore.MoveBefore(ctx, *moveID, *moveTargetID)
	case snapshotCmd.FullCommand():
		if err := taskStore.Snapshot(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
			os.Exit(1)
		}
	}
}

func setupLogger(env *config.Env) {
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))
}

// buildStorage returns the configured backend; local is non-nil only for the
// filesystem backend, which is the one the slot watcher can observe.
func buildStorage(ctx context.Context, env *config.Env) (storage.Storage, *storage.Local, error) {
	switch env.StorageEnv.Type {
	case "s3":
		s, err := storage.NewS3(ctx, env.S3Bucket, env.S3Prefix, env.S3Region)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		l, err := storage.NewLocal(env.StorageEnv.BaseDir)
		if err != nil {
			return nil, nil, err
		}
		return l, l, nil
	}
}

func runServe(ctx context.Context, env *config.Env, store *task.Store, bus *eventbus.Bus, local *storage.Local) {
	srv := server.NewServer(env, task.NewServer(store, bus))

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(panicerr.SafeContext(func(ctx context.Context) error {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}))
	if local != nil {
		slot := filepath.Join(local.Root(), repositoryimpl.SlotPath)
		watcher := task.NewWatcher(store, slot)
		p.Go(panicerr.SafeContext(func(ctx context.Context) error {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		}))
	}
	p.Go(func(ctx context.Context) error {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := p.Wait(); err != nil && ctx.Err() == nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func printTasks(store *task.Store) {
	tasks := store.Projection()
	if store.Len() == 0 {
		fmt.Println("No tasks yet. Add the first one with 'taskdeck add'.")
		return
	}

	done := color.New(color.FgGreen)
	todo := color.New(color.FgWhite)
	dim := color.New(color.Faint)
	for _, t := range tasks {
		c := todo
		mark := "[ ]"
		if t.Done {
			c = done
			mark = "[x]"
		}
		c.Printf("%3d %s %s", t.Order, mark, t.Title)
		if t.DueDate != "" {
			dim.Printf("  due %s", t.DueDate)
		}
		dim.Printf("  %s", t.ID)
		fmt.Println()
	}
}
