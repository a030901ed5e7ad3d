package trigger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Poller runs a full pass on a fixed interval. The timer is re-armed after each pass
// returns, so passes never overlap.
type Poller struct {
	engine   passRunner
	interval time.Duration
	delay    time.Duration
	logger   zerolog.Logger
}

func NewPoller(engine passRunner, interval, delay time.Duration, logger zerolog.Logger) *Poller {
	return &Poller{
		engine:   engine,
		interval: interval,
		delay:    delay,
		logger:   logger.With().Str("component", "poller").Logger(),
	}
}

func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info().Dur("interval", p.interval).Dur("delay", p.delay).Msg("Starting poller")

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Poller stopped")
			return nil
		case <-timer.C:
			p.logger.Debug().Msg("Poll tick")
			_ = p.engine.RunPass(ctx)
			timer.Reset(p.interval)
		case <-p.engine.Kicks():
			p.logger.Debug().Msg("Pass requested")
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			_ = p.engine.RunPass(ctx)
			timer.Reset(p.interval)
		}
	}
}
