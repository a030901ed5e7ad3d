package trigger

import (
	"context"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
)

// Trigger decides when reconciliation passes run. Run blocks until ctx is cancelled and the
// in-flight pass has returned.
type Trigger interface {
	Run(ctx context.Context) error
}

type passRunner interface {
	RunPass(ctx context.Context) error
	Kicks() <-chan struct{}
}

type eventHandler interface {
	passRunner
	HandleEvent(ctx context.Context, ev domain.NetworkEvent) error
}

type generator interface {
	Subscribe(ctx context.Context) (<-chan domain.NetworkEvent, error)
}

type driftChecker interface {
	Drifted() (bool, error)
}

type invalidator interface {
	Invalidate()
	Kick()
}
