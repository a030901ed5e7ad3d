package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/auto-dns/docker-hosts-sync/internal/state"
	"github.com/rs/zerolog"
)

const (
	PassKindFull    = "full"
	PassKindEvent   = "event"
	PassKindCleanup = "cleanup"
)

// Engine runs reconciliation passes. Passes, event commits and cleanup never overlap.
type Engine struct {
	passMu   sync.Mutex
	logger   zerolog.Logger
	reader   containerReader
	file     hostsFile
	state    *state.MemoryState
	scope    domain.NetworkScope
	tm       domain.TerminationMap
	recorder Recorder
	kick     chan struct{}
}

func NewEngine(reader containerReader, file hostsFile, st *state.MemoryState, scope domain.NetworkScope, tm domain.TerminationMap, recorder Recorder, logger zerolog.Logger) *Engine {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Engine{
		logger:   logger.With().Str("component", "engine").Logger(),
		reader:   reader,
		file:     file,
		state:    st,
		scope:    scope,
		tm:       tm,
		recorder: recorder,
		kick:     make(chan struct{}, 1),
	}
}

// RunPass takes a fresh container snapshot and reconciles the hosts file against it.
func (e *Engine) RunPass(ctx context.Context) (err error) {
	e.passMu.Lock()
	defer e.passMu.Unlock()

	start := time.Now()
	defer func() { e.recorder.ObservePass(PassKindFull, time.Since(start), err) }()

	return e.fullPass(ctx)
}

// fullPass must be called with passMu held.
func (e *Engine) fullPass(ctx context.Context) error {
	records, err := e.reader.Snapshot(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("Container snapshot failed, keeping hosts file as is")
		return err
	}
	e.state.Replace(records)
	return e.commit(ctx)
}

// HandleEvent refreshes the one container an event refers to and reconciles.
func (e *Engine) HandleEvent(ctx context.Context, ev domain.NetworkEvent) (err error) {
	e.passMu.Lock()
	defer e.passMu.Unlock()

	start := time.Now()
	e.recorder.ObserveEvent(ev.EventType)
	defer func() { e.recorder.ObservePass(PassKindEvent, time.Since(start), err) }()

	logger := e.logger.With().
		Str("container_id", ev.ContainerId).
		Str("network", ev.Network).
		Str("event", string(ev.EventType)).
		Logger()

	// An incremental update on top of a cache that never saw a full snapshot would drop
	// every running container the events have not mentioned yet.
	if !e.state.Synced() {
		logger.Info().Msg("No full snapshot yet, running a full pass instead")
		return e.fullPass(ctx)
	}

	rec, err := e.reader.Inspect(ctx, ev.ContainerId)
	switch {
	case errors.Is(err, domain.ErrContainerVanished):
		if e.state.Remove(ev.ContainerId) {
			logger.Debug().Msg("Removed container from state")
		}
	case err != nil:
		logger.Error().Err(err).Msg("Inspecting container failed")
		return err
	default:
		e.state.Upsert(rec)
		logger.Debug().Str("container_name", rec.Name).Msg("Upserted container state")
	}
	return e.commit(ctx)
}

// Cleanup removes every owned line from the hosts file. The fingerprint is bypassed so the
// file is rewritten even when the last pass already wrote the same content.
func (e *Engine) Cleanup(ctx context.Context) (err error) {
	e.passMu.Lock()
	defer e.passMu.Unlock()

	start := time.Now()
	defer func() { e.recorder.ObservePass(PassKindCleanup, time.Since(start), err) }()

	res, err := e.file.Reconcile(ctx, domain.DesiredMapping{})
	e.state.InvalidateFingerprint()
	if err != nil {
		e.logFileError(err, "Removing owned entries failed")
		return err
	}
	e.recorder.ObserveWrite(res.Written, 0)
	e.logger.Info().Int("removed", res.Removed).Str("path", e.file.Path()).Msg("Removed owned hosts entries")
	return nil
}

// Invalidate forgets the last written fingerprint so the next commit writes.
func (e *Engine) Invalidate() {
	e.state.InvalidateFingerprint()
}

// Kick requests a full pass from whichever trigger is running. Requests coalesce.
func (e *Engine) Kick() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

func (e *Engine) Kicks() <-chan struct{} {
	return e.kick
}

// commit must be called with passMu held.
func (e *Engine) commit(ctx context.Context) error {
	desired := Build(e.state.Containers(), e.scope, e.tm, e.logger)
	fp := ComputeFingerprint(desired)
	last, hasLast := e.state.Fingerprint()
	if !HasChanged(fp, last, hasLast) {
		e.recorder.ObserveSkip()
		e.logger.Debug().Int("entries", desired.Count()).Msg("Desired mapping unchanged, skipping write")
		return nil
	}

	res, err := e.file.Reconcile(ctx, desired)
	if err != nil {
		e.logFileError(err, "Updating hosts file failed")
		return err
	}
	e.state.SetFingerprint(fp)
	e.recorder.ObserveWrite(res.Written, res.Added)
	e.logger.Info().
		Int("addresses", len(desired)).
		Int("removed", res.Removed).
		Int("added", res.Added).
		Bool("written", res.Written).
		Msg("Reconciled hosts file")
	return nil
}

func (e *Engine) logFileError(err error, msg string) {
	if errors.Is(err, domain.ErrFileMissing) {
		e.logger.Warn().Err(err).Msg("Hosts file missing, will retry next cycle")
		return
	}
	e.logger.Error().Err(err).Msg(msg)
}
