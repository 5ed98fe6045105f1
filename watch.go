package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"
)

var watchCommand = &cli.Command{
	Name:      "watch",
	Usage:     "Regenerate the output file whenever the registry or preset changes",
	ArgsUsage: "<registry.xml>",
	Flags:     append([]cli.Flag{verboseFlag}, generateFlags...),
	Before:    setupLogging,
	Action:    watch,
}

func watch(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Output == "" {
		return errors.New("watch needs an output file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	inputs := []string{cfg.Registry}
	if preset := ctx.String(configFlag.Name); preset != "" {
		inputs = append(inputs, preset)
	}
	watched := make(map[string]bool, len(inputs))
	for _, path := range inputs {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		watched[abs] = true
		// Editors replace files on save, so watch the directory.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}

	regenerate := func() {
		cfg, err := loadConfig(ctx)
		if err == nil {
			err = emit(cfg)
		}
		if err != nil {
			slog.Error("Generation failed", "err", err)
		}
	}
	regenerate()

	const change = fsnotify.Write | fsnotify.Create | fsnotify.Rename
	for {
		select {
		case <-ctx.Context.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[event.Name] || event.Op&change == 0 {
				continue
			}
			slog.Debug("Input changed", "path", event.Name, "op", event.Op)
			regenerate()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "err", err)
		}
	}
}
