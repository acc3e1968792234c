package demo

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/fastreact/console/internal/constants"
	"github.com/fastreact/console/internal/event"
)

// Player replays a Script with randomized spacing between events.
type Player struct {
	Script     Script
	MinDelay   time.Duration
	MaxDelay   time.Duration
	FinalDelay time.Duration

	normalizer *event.Normalizer
	sleep      func(ctx context.Context, d time.Duration) error
	jitter     func(n int64) int64
	logger     zerolog.Logger
}

// Option configures a Player.
type Option func(*Player)

// WithScript replaces the default script.
func WithScript(s Script) Option {
	return func(p *Player) {
		p.Script = s
	}
}

// WithDelays sets the spacing window and the pause before the answer.
func WithDelays(minDelay, maxDelay, finalDelay time.Duration) Option {
	return func(p *Player) {
		p.MinDelay = minDelay
		p.MaxDelay = maxDelay
		p.FinalDelay = finalDelay
	}
}

// WithSleep replaces the context-aware sleep used between events.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Player) {
		p.sleep = sleep
	}
}

// WithNormalizer sets the normalizer that stamps templates.
func WithNormalizer(n *event.Normalizer) Option {
	return func(p *Player) {
		p.normalizer = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Player) {
		p.logger = logger
	}
}

// NewPlayer creates a player with the default script and timings.
func NewPlayer(opts ...Option) *Player {
	p := &Player{
		Script:     DefaultScript(),
		MinDelay:   constants.DefaultDemoMinDelay,
		MaxDelay:   constants.DefaultDemoMaxDelay,
		FinalDelay: constants.DefaultDemoFinalDelay,
		sleep:      sleepContext,
		jitter:     rand.Int64N, //nolint:gosec // display pacing only
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.normalizer == nil {
		p.normalizer = event.NewNormalizer()
	}
	return p
}

// Run plays the script for one user message, then emits the synthesized
// answer. It returns ctx.Err() if cancelled part way.
func (p *Player) Run(ctx context.Context, text string, emit func(event.AgentEvent)) error {
	p.logger.Debug().
		Int("events", len(p.Script)).
		Msg("Starting demo run")

	for _, tpl := range p.Script {
		if err := p.sleep(ctx, p.nextDelay()); err != nil {
			return err
		}
		emit(p.normalizer.Stamp(tpl))
	}

	if err := p.sleep(ctx, p.FinalDelay); err != nil {
		return err
	}
	emit(p.normalizer.Stamp(AnswerTemplate(text)))

	p.logger.Debug().Msg("Demo run complete")
	return nil
}

// nextDelay draws a delay in [MinDelay, MaxDelay).
func (p *Player) nextDelay() time.Duration {
	span := int64(p.MaxDelay - p.MinDelay)
	if span <= 0 {
		return p.MinDelay
	}
	return p.MinDelay + time.Duration(p.jitter(span))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
