// Command taskctl signs in to the task API and manages the signed-in user's
// tasks from the terminal. The session is kept in a local SQLite file, so it
// survives between invocations.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/msomdec/taskboard/internal/app"
	"github.com/msomdec/taskboard/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}
	switch os.Args[1] {
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if err := run(os.Args[1:], logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The local file holds the persisted session and, with MOCK_API set, the
	// mock backend's users and tasks as well.
	store, err := app.OpenSQLiteStore(ctx, cfg.SessionStorePath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	backend, err := app.NewBackend(ctx, cfg, store, logger)
	if err != nil {
		return err
	}

	cli := &CLI{
		Containers: app.NewContainers(backend, store, logger),
		Out:        os.Stdout,
		Prompt:     promptPassword,
	}
	return cli.Run(ctx, args)
}
