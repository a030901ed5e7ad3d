package hostsfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/auto-dns/docker-hosts-sync/internal/config"
	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/auto-dns/docker-hosts-sync/internal/lock"
	"github.com/google/renameio/v2/maybe"
	"github.com/rs/zerolog"
)

type Options struct {
	Path       string
	Tag        domain.OwnershipTag
	Annotation string
	WriteMode  string
}

// Result summarizes one rewrite.
type Result struct {
	Removed int
	Added   int
	Written bool
}

// Reconciler owns the tagged lines of one hosts file.
type Reconciler struct {
	mu        sync.Mutex
	opts      Options
	locker    lock.Locker
	logger    zerolog.Logger
	lastOwned []string
	hasLast   bool
}

func NewReconciler(opts Options, locker lock.Locker, logger zerolog.Logger) *Reconciler {
	if opts.WriteMode == "" {
		opts.WriteMode = config.WriteModeTruncate
	}
	return &Reconciler{
		opts:   opts,
		locker: locker,
		logger: logger.With().Str("component", "hostsfile").Str("path", opts.Path).Logger(),
	}
}

func (r *Reconciler) Path() string { return r.opts.Path }

// Reconcile replaces every line carrying our tag with lines rendered from desired. Lines
// without the tag are kept as they are, in order. An empty mapping removes all owned lines.
func (r *Reconciler) Reconcile(ctx context.Context, desired domain.DesiredMapping) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res Result
	err := r.locker.LockTransaction(ctx, []string{r.opts.Path}, func() error {
		var err error
		res, err = r.rewrite(desired)
		return err
	})
	return res, err
}

func (r *Reconciler) rewrite(desired domain.DesiredMapping) (Result, error) {
	info, err := os.Stat(r.opts.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %s", domain.ErrFileMissing, r.opts.Path)
		}
		return Result{}, fmt.Errorf("%w: stat %s: %v", domain.ErrIOFailure, r.opts.Path, err)
	}

	data, err := os.ReadFile(r.opts.Path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: read %s: %v", domain.ErrIOFailure, r.opts.Path, err)
	}

	lines, eol := splitLines(data)
	foreign, previous := partition(lines, r.opts.Tag)
	owned := renderOwned(desired, r.opts.Tag, r.opts.Annotation)

	content := joinLines(assemble(foreign, owned, eol))

	res := Result{Removed: len(previous), Added: len(owned)}
	if bytes.Equal(content, data) {
		r.logger.Debug().Int("owned", len(owned)).Msg("Hosts file already up to date")
		r.remember(owned)
		return res, nil
	}

	if err := r.write(content, info.Mode().Perm()); err != nil {
		return Result{}, fmt.Errorf("%w: write %s: %v", domain.ErrIOFailure, r.opts.Path, err)
	}
	res.Written = true
	r.remember(owned)
	return res, nil
}

func (r *Reconciler) write(content []byte, perm fs.FileMode) error {
	if r.opts.WriteMode == config.WriteModeAtomic {
		// Plain write on platforms without atomic rename (Windows).
		return maybe.WriteFile(r.opts.Path, content, perm)
	}

	// Truncate in place: the file may be a bind mount, which cannot be renamed over.
	f, err := os.OpenFile(r.opts.Path, os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (r *Reconciler) remember(owned []string) {
	r.lastOwned = owned
	r.hasLast = true
}

// Drifted reports whether the owned lines in the file differ from what was last written,
// i.e. someone else rewrote the file. Our own writes never count as drift.
func (r *Reconciler) Drifted() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasLast {
		return false, nil
	}
	data, err := os.ReadFile(r.opts.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("%w: %s", domain.ErrFileMissing, r.opts.Path)
		}
		return false, fmt.Errorf("%w: read %s: %v", domain.ErrIOFailure, r.opts.Path, err)
	}

	lines, _ := splitLines(data)
	_, owned := partition(lines, r.opts.Tag)
	if len(owned) != len(r.lastOwned) {
		return true, nil
	}
	for i := range owned {
		if owned[i] != r.lastOwned[i] {
			return true, nil
		}
	}
	return false, nil
}
