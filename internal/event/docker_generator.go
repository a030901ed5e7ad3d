package event

import (
	"context"
	"time"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/docker/docker/api/types/events"
	"github.com/docker/docker/api/types/filters"
	"github.com/rs/zerolog"
)

const (
	bufferSize     = 100
	reconnectDelay = 2 * time.Second
)

type DockerGenerator struct {
	logger         zerolog.Logger
	cli            dockerClient
	reconnectDelay time.Duration
}

func NewDockerGenerator(cli dockerClient, logger zerolog.Logger) *DockerGenerator {
	return &DockerGenerator{
		logger:         logger.With().Str("component", "event").Logger(),
		cli:            cli,
		reconnectDelay: reconnectDelay,
	}
}

// Subscribe streams network connect/disconnect events. A broken stream is reopened from the
// time of the last received message so no event is skipped.
func (dg *DockerGenerator) Subscribe(ctx context.Context) (<-chan domain.NetworkEvent, error) {
	out := make(chan domain.NetworkEvent, bufferSize)

	go func() {
		defer close(out)

		since := time.Now()
		for {
			last, err := dg.stream(ctx, since, out)
			if ctx.Err() != nil {
				dg.logger.Info().Msg("Docker event generator cancelled by context")
				return
			}
			if !last.IsZero() {
				since = last
			}
			if err != nil {
				dg.logger.Error().Err(err).Dur("retry_in", dg.reconnectDelay).Msg("Docker events stream failed")
			} else {
				dg.logger.Warn().Dur("retry_in", dg.reconnectDelay).Msg("Docker events channel closed")
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(dg.reconnectDelay):
			}
		}
	}()

	return out, nil
}

// stream forwards events until the stream ends and returns the time of the last message seen.
func (dg *DockerGenerator) stream(ctx context.Context, since time.Time, out chan<- domain.NetworkEvent) (time.Time, error) {
	filterArgs := filters.NewArgs()
	filterArgs.Add("type", string(events.NetworkEventType))
	filterArgs.Add("event", string(events.ActionConnect))
	filterArgs.Add("event", string(events.ActionDisconnect))

	options := events.ListOptions{
		Filters: filterArgs,
		Since:   since.Format(time.RFC3339Nano),
	}
	eventCh, errCh := dg.cli.Events(ctx, options)

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case err, ok := <-errCh:
			if !ok {
				return last, nil
			}
			return last, err
		case msg, ok := <-eventCh:
			if !ok {
				return last, nil
			}
			if msg.TimeNano != 0 {
				last = time.Unix(0, msg.TimeNano)
			}

			ev, convErr := fromEventsMessage(msg)
			if convErr != nil {
				if _, ok := convErr.(*UnsupportedEventTypeError); ok {
					dg.logger.Debug().Err(convErr).Msg("Ignoring docker event")
				} else {
					dg.logger.Error().Err(convErr).Msg("converting docker event message to network event")
				}
				continue
			}

			dg.logger.Debug().
				Str("container_id", ev.ContainerId).
				Str("network", ev.Network).
				Str("event", string(ev.EventType)).
				Msg("Received Docker event")
			select {
			case out <- ev:
			case <-ctx.Done():
				return last, ctx.Err()
			}
		}
	}
}
