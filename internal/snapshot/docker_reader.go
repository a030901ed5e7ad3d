package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/auto-dns/docker-hosts-sync/internal/util"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/errdefs"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/wait"
)

const inspectConcurrency = 8

// DockerReader takes snapshots of running containers from the Docker Engine API.
type DockerReader struct {
	cli          dockerClient
	logger       zerolog.Logger
	backoff      wait.Backoff
	withDNSNames bool
}

func NewDockerReader(cli dockerClient, retrySteps int, withDNSNames bool, logger zerolog.Logger) *DockerReader {
	if retrySteps < 1 {
		retrySteps = 1
	}
	return &DockerReader{
		cli:          cli,
		withDNSNames: withDNSNames,
		logger:       logger.With().Str("component", "snapshot").Logger(),
		backoff: wait.Backoff{
			Duration: 500 * time.Millisecond,
			Factor:   2,
			Jitter:   0.1,
			Steps:    retrySteps,
		},
	}
}

// Endpoint is the daemon address the client talks to.
func (dr *DockerReader) Endpoint() string {
	return dr.cli.DaemonHost()
}

// Ping checks that the Docker Engine is reachable.
func (dr *DockerReader) Ping(ctx context.Context) error {
	if _, err := dr.cli.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrRegistryUnavailable, dr.cli.DaemonHost(), err)
	}
	return nil
}

// Snapshot lists running containers and inspects each of them. Containers that vanish or
// fail inspection are skipped; only a failing list call is an error.
func (dr *DockerReader) Snapshot(ctx context.Context) ([]domain.ContainerRecord, error) {
	summaries, err := dr.listRunning(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.ContainerRecord, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(inspectConcurrency)
	for i, s := range summaries {
		g.Go(func() error {
			rec, err := dr.Inspect(gctx, s.ID)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				dr.logger.Warn().Err(err).Str("container_id", s.ID).Msg("Skipping container")
				return nil
			}
			results[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	inspected := util.Filter(results, func(r *domain.ContainerRecord) bool { return r != nil })
	records := util.Map(inspected, func(r *domain.ContainerRecord) domain.ContainerRecord { return *r })
	dr.logger.Debug().Int("containers", len(records)).Msg("Took container snapshot")
	return records, nil
}

// Inspect returns the record of one running container. Containers that no longer exist or
// are not running report ErrContainerVanished.
func (dr *DockerReader) Inspect(ctx context.Context, containerID string) (domain.ContainerRecord, error) {
	resp, err := dr.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return domain.ContainerRecord{}, fmt.Errorf("%w: %s", domain.ErrContainerVanished, containerID)
		}
		return domain.ContainerRecord{}, fmt.Errorf("inspecting container %s: %w", containerID, err)
	}
	if !isRunning(resp) {
		return domain.ContainerRecord{}, fmt.Errorf("%w: %s is not running", domain.ErrContainerVanished, containerID)
	}
	return fromInspectResponse(resp, dr.withDNSNames), nil
}

func (dr *DockerReader) listRunning(ctx context.Context) ([]container.Summary, error) {
	opts := container.ListOptions{
		Filters: filters.NewArgs(filters.Arg("status", "running")),
	}

	var summaries []container.Summary
	var lastErr error
	attempt := 0
	err := wait.ExponentialBackoffWithContext(ctx, dr.backoff, func(ctx context.Context) (bool, error) {
		attempt++
		var err error
		summaries, err = dr.cli.ContainerList(ctx, opts)
		if err != nil {
			lastErr = err
			dr.logger.Debug().Err(err).Int("attempt", attempt).Msg("Listing containers failed")
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if lastErr == nil {
			lastErr = err
		}
		return nil, fmt.Errorf("%w: listing containers after %d attempts: %v", domain.ErrRegistryUnavailable, attempt, lastErr)
	}
	return summaries, nil
}
