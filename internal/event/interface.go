package event

import (
	"context"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/docker/docker/api/types/events"
)

type dockerClient interface {
	Events(ctx context.Context, options events.ListOptions) (<-chan events.Message, <-chan error)
}

// Generator produces network membership events until ctx is cancelled.
type Generator interface {
	Subscribe(ctx context.Context) (<-chan domain.NetworkEvent, error)
}
