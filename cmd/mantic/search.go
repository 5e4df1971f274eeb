package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/mantic/internal/config"
	"github.com/standardbeagle/mantic/internal/enumerate"
	"github.com/standardbeagle/mantic/internal/pipeline"
	"github.com/standardbeagle/mantic/internal/semindex"
	"github.com/standardbeagle/mantic/internal/session"
	"github.com/standardbeagle/mantic/internal/watch"
)

const (
	defaultMaxFiles = 300
	defaultTimeoutMs = 30000
)

func searchAction(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))

	root := c.String("path")
	filter := resolveFilter(c)
	if err := validateOutputFlags(c); err != nil {
		return err
	}

	var sessions *session.Manager
	if c.String("session") != "" {
		sessions = session.NewManager(root)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(envInt("MANTIC_TIMEOUT", defaultTimeoutMs))*time.Millisecond)
	defer cancel()

	result, err := pipeline.Run(ctx, pipeline.Options{
		Root:             root,
		Query:            query,
		Filter:           filter,
		IncludeGenerated: c.Bool("include-generated"),
		MaxFiles:         envInt("MANTIC_MAX_FILES", defaultMaxFiles),
		Timeout:          time.Duration(envInt("MANTIC_TIMEOUT", defaultTimeoutMs)) * time.Millisecond,
		IgnorePatterns:   envIgnorePatterns("MANTIC_IGNORE_PATTERNS"),
		IncludeImpact:    c.Bool("impact"),
		SessionID:        c.String("session"),
		Sessions:         sessions,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out, err := render(c, result)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, out)

	if c.Bool("watch") {
		return watchAndReindex(root, c.Bool("quiet"))
	}
	return nil
}

// watchAndReindex keeps the persisted semantic index fresh as files
// change, until the process receives an interrupt. It prints a one-line
// diagnostic per batch of changes, unless --quiet was given.
func watchAndReindex(root string, quiet bool) error {
	cfg := config.Default(root)
	store := semindex.NewStore()

	w, err := watch.New(root, time.Duration(cfg.Enumerate.WatchDebounceMs)*time.Millisecond, func(paths []string) {
		ctx := context.Background()
		current := enumerate.Enumerate(ctx, enumerate.Options{Root: root}).Files

		idx, _ := store.Load(root)
		if idx == nil {
			idx = semindex.NewEmpty(root)
		}
		delta := semindex.Classify(root, idx, current)
		semindex.Refresh(ctx, root, idx, delta)
		_ = store.Save(idx)
		if !quiet {
			fmt.Fprintf(os.Stderr, "mantic: reindexed %d changed file(s)\n", len(paths))
		}
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	<-ctx.Done()
	return nil
}

func resolveFilter(c *cli.Context) pipeline.Filter {
	switch {
	case c.Bool("code"):
		return pipeline.FilterCode
	case c.Bool("config"):
		return pipeline.FilterConfig
	case c.Bool("test"):
		return pipeline.FilterTest
	default:
		return pipeline.FilterNone
	}
}

func validateOutputFlags(c *cli.Context) error {
	set := 0
	for _, name := range []string{"json", "files", "markdown", "mcp"} {
		if c.Bool(name) {
			set++
		}
	}
	if set > 1 {
		return fmt.Errorf("--json, --files, --markdown, and --mcp are mutually exclusive")
	}
	filters := 0
	for _, name := range []string{"code", "config", "test"} {
		if c.Bool(name) {
			filters++
		}
	}
	if filters > 1 {
		return fmt.Errorf("--code, --config, and --test are mutually exclusive")
	}
	return nil
}
