// Package watch re-shares a note whenever the Joplin profile database changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/noteshare/internal/notestore"
)

// DefaultDebounce is the quiet period after the last database write before
// the callback runs.
const DefaultDebounce = 500 * time.Millisecond

// triggers are the profile files whose writes mean note data may have changed.
var triggers = map[string]bool{
	notestore.DatabaseFile:          true,
	notestore.DatabaseFile + "-wal": true,
}

// Watch observes profileDir until ctx is cancelled and calls onChange once
// per burst of database writes.
func Watch(ctx context.Context, profileDir string, debounce time.Duration, logger *slog.Logger, onChange func(context.Context)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(profileDir); err != nil {
		return fmt.Errorf("watch: add %s: %w", profileDir, err)
	}

	logger.Info("watch: started", slog.String("profile", profileDir))

	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watch: stopped")
			return nil

		case <-fire:
			timer = nil
			fire = nil
			onChange(ctx)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !triggers[filepath.Base(ev.Name)] {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			logger.Debug("watch: database changed",
				slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch: error", slog.String("error", watchErr.Error()))
		}
	}
}
