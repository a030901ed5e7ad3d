package trigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

var ErrEventStreamClosed = errors.New("event stream closed")

// EventTrigger does a full pass at start, then one incremental update per network event.
// A periodic resync heals missed events; a zero resync interval disables it.
type EventTrigger struct {
	engine    eventHandler
	generator generator
	resync    time.Duration
	logger    zerolog.Logger
}

func NewEventTrigger(engine eventHandler, gen generator, resync time.Duration, logger zerolog.Logger) *EventTrigger {
	return &EventTrigger{
		engine:    engine,
		generator: gen,
		resync:    resync,
		logger:    logger.With().Str("component", "event_trigger").Logger(),
	}
}

func (et *EventTrigger) Run(ctx context.Context) error {
	et.logger.Info().Dur("resync", et.resync).Msg("Starting event trigger")

	// Subscribe before the initial pass so nothing between the two is lost.
	events, err := et.generator.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to network events: %w", err)
	}

	_ = et.engine.RunPass(ctx)

	var resyncC <-chan time.Time
	if et.resync > 0 {
		ticker := time.NewTicker(et.resync)
		defer ticker.Stop()
		resyncC = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			et.logger.Info().Msg("Event trigger stopped")
			return nil
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrEventStreamClosed
			}
			_ = et.engine.HandleEvent(ctx, ev)
		case <-resyncC:
			et.logger.Debug().Msg("Periodic resync")
			_ = et.engine.RunPass(ctx)
		case <-et.engine.Kicks():
			et.logger.Debug().Msg("Pass requested")
			_ = et.engine.RunPass(ctx)
		}
	}
}
