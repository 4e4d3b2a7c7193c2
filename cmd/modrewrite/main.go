// Command modrewrite is a thin harness around internal/rewrite: it loads a
// JSON-encoded batch of synthetic scripts, runs Unwrap -> Record -> report
// -> Update, and prints either the rewritten trees or the diagnostics. It
// exists only as the CLI/test-harness surface around the pass, not as a
// JavaScript frontend of its own (spec.md's non-goals).
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/closuretools/modrewrite/internal/ast"
	"github.com/closuretools/modrewrite/internal/config"
	"github.com/closuretools/modrewrite/internal/logger"
	"github.com/closuretools/modrewrite/internal/rewrite"
)

var opLog = logrus.New()

func main() {
	if err := newRootCommand().Execute(); err != nil {
		opLog.WithError(err).Error("modrewrite failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "modrewrite <batch.json>",
		Short: "Flatten goog.module/goog.provide namespace declarations into plain qualified names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			if opts.HotSwap {
				return runWatch(args[0], opts)
			}
			return runBatch(args[0], opts)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	config.BindFlags(cmd.Flags())
	return cmd
}

func loadBatch(path string) ([]batchEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch %s: %w", path, err)
	}
	var entries []batchEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing batch %s: %w", path, err)
	}
	return entries, nil
}

func runBatch(path string, opts config.Options) error {
	entries, err := loadBatch(path)
	if err != nil {
		return err
	}
	opLog.WithField("scripts", len(entries)).Info("loaded batch")

	baseLog := logger.NewDeferLog()
	log := opts.Filter(baseLog)
	comp := rewrite.NewCompilation(log)

	inputs := make([]rewrite.ScriptInput, len(entries))
	roots := make([]*ast.Node, len(entries))
	for i, e := range entries {
		root, err := e.Root.toNode()
		if err != nil {
			return fmt.Errorf("%s: %w", e.Path, err)
		}
		roots[i] = root
		inputs[i] = rewrite.ScriptInput{Root: root, Source: &logger.Source{PrettyPath: e.Path, Index: uint32(i)}}
	}

	comp.Run(inputs)
	return printResult(log, entries, roots)
}

// runWatch treats path's batch as a single script and re-runs it through
// HotSwap (spec.md §5) every time the underlying file changes on disk,
// printing the new result or diagnostics after each recompile.
func runWatch(path string, opts config.Options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	baseLog := logger.NewDeferLog()
	log := opts.Filter(baseLog)
	comp := rewrite.NewCompilation(log)
	var previousRoot *ast.Node

	recompile := func() error {
		log = opts.Filter(logger.NewDeferLog())
		comp.Log = log
		entries, err := loadBatch(path)
		if err != nil {
			return err
		}
		if len(entries) != 1 {
			return fmt.Errorf("--hot-swap watch mode expects exactly one script in the batch, got %d", len(entries))
		}
		root, err := entries[0].Root.toNode()
		if err != nil {
			return fmt.Errorf("%s: %w", entries[0].Path, err)
		}
		desc := comp.HotSwap(rewrite.ScriptInput{Root: root, Source: &logger.Source{PrettyPath: entries[0].Path}}, previousRoot)
		previousRoot = root
		_ = desc
		return printResult(log, entries, []*ast.Node{root})
	}

	if err := recompile(); err != nil {
		return err
	}
	opLog.WithField("path", path).Info("watching for changes")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			opLog.WithField("path", path).Info("change detected, hot-swapping")
			if err := recompile(); err != nil {
				opLog.WithError(err).Error("hot-swap recompile failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			opLog.WithError(err).Error("watcher error")
		}
	}
}

func printResult(log logger.Log, entries []batchEntry, roots []*ast.Node) error {
	msgs := log.Done()
	if len(msgs) > 0 {
		for _, msg := range msgs {
			fmt.Fprintln(os.Stderr, msg.String())
		}
	}
	if log.HasErrors() {
		return fmt.Errorf("%d diagnostic(s) reported", len(msgs))
	}

	out := make([]batchEntry, len(entries))
	for i, e := range entries {
		out[i] = batchEntry{Path: e.Path, Root: nodeToScriptJSON(roots[i])}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
