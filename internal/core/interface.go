package core

import (
	"context"
	"time"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/auto-dns/docker-hosts-sync/internal/hostsfile"
)

type containerReader interface {
	Snapshot(ctx context.Context) ([]domain.ContainerRecord, error)
	Inspect(ctx context.Context, containerID string) (domain.ContainerRecord, error)
}

type hostsFile interface {
	Reconcile(ctx context.Context, desired domain.DesiredMapping) (hostsfile.Result, error)
	Path() string
}

// Recorder receives pass outcomes. A nil Recorder is allowed.
type Recorder interface {
	ObservePass(kind string, duration time.Duration, err error)
	ObserveWrite(written bool, owned int)
	ObserveSkip()
	ObserveEvent(eventType domain.EventType)
}

type nopRecorder struct{}

func (nopRecorder) ObservePass(string, time.Duration, error) {}
func (nopRecorder) ObserveWrite(bool, int)                   {}
func (nopRecorder) ObserveSkip()                             {}
func (nopRecorder) ObserveEvent(domain.EventType)            {}
