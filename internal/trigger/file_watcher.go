package trigger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultSettle = 250 * time.Millisecond

// FileWatcher notices when something other than us rewrites the owned lines of the hosts
// file and asks the engine to put them back.
type FileWatcher struct {
	path   string
	drift  driftChecker
	engine invalidator
	settle time.Duration
	logger zerolog.Logger
}

func NewFileWatcher(path string, drift driftChecker, engine invalidator, logger zerolog.Logger) *FileWatcher {
	return &FileWatcher{
		path:   filepath.Clean(path),
		drift:  drift,
		engine: engine,
		settle: defaultSettle,
		logger: logger.With().Str("component", "file_watcher").Str("path", path).Logger(),
	}
}

// Run watches the parent directory so replace-by-rename edits are seen too.
func (fw *FileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(fw.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	fw.logger.Info().Msg("Watching hosts file for external edits")

	// Editors emit bursts of events; check once things settle.
	settle := time.NewTimer(fw.settle)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != fw.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			settle.Reset(fw.settle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn().Err(err).Msg("File watcher error")
		case <-settle.C:
			fw.check()
		}
	}
}

func (fw *FileWatcher) check() {
	drifted, err := fw.drift.Drifted()
	if err != nil {
		if errors.Is(err, domain.ErrFileMissing) {
			fw.logger.Warn().Err(err).Msg("Hosts file disappeared")
			return
		}
		fw.logger.Error().Err(err).Msg("Checking hosts file for drift failed")
		return
	}
	if !drifted {
		return
	}
	fw.logger.Info().Msg("Owned hosts entries were changed externally, restoring")
	fw.engine.Invalidate()
	fw.engine.Kick()
}
