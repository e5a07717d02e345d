// Package interact drives a live careers page through a fixed sequence of
// structural pattern handlers: redirect resolution, no-jobs detection,
// iframe delegation, dynamic-content waits, infinite scroll, tab traversal,
// filter defaulting, consent checkboxes and expand-all controls.
package interact

import (
	"context"
	"time"

	"go.uber.org/zap"

	"leadscout-engine/internal/domain"
)

// Effect tells the engine what to do after a handler has run.
type Effect int

const (
	// Continue moves on to the next handler.
	Continue Effect = iota
	// Stop short-circuits the rest of the pipeline.
	Stop
)

// PatternHandler recognizes and handles one structural careers-page pattern.
// Apply mutates the session in place. A returned error skips the handler
// without aborting the pipeline.
type PatternHandler interface {
	Tag() domain.PatternTag
	Apply(ctx context.Context, sess *Session) (Effect, error)
}

// Options bound the interaction pipeline. Zero values take the defaults.
type Options struct {
	NoJobsPhrases   []string
	ExpandPhrases   []string
	MaxScrollRounds int
	MaxTabs         int
	MaxIframes      int
	Settle          time.Duration
	SelectorTimeout time.Duration
	ClickTimeout    time.Duration
}

func (o Options) withDefaults() Options {
	if len(o.NoJobsPhrases) == 0 {
		o.NoJobsPhrases = DefaultNoJobsPhrases
	}
	if len(o.ExpandPhrases) == 0 {
		o.ExpandPhrases = DefaultExpandPhrases
	}
	if o.MaxScrollRounds <= 0 {
		o.MaxScrollRounds = 5
	}
	if o.MaxTabs <= 0 {
		o.MaxTabs = 10
	}
	if o.MaxIframes <= 0 {
		o.MaxIframes = 3
	}
	if o.Settle <= 0 {
		o.Settle = 1500 * time.Millisecond
	}
	if o.SelectorTimeout <= 0 {
		o.SelectorTimeout = 2 * time.Second
	}
	if o.ClickTimeout <= 0 {
		o.ClickTimeout = 5 * time.Second
	}
	return o
}

// Engine runs pattern handlers in a fixed order. Later steps assume earlier
// ones: redirect resolution precedes everything else, and a no-jobs match
// stops the pipeline before any scroll or tab budget is spent.
type Engine struct {
	handlers []PatternHandler
	log      *zap.SugaredLogger
}

// New builds the standard nine-step pipeline.
func New(log *zap.SugaredLogger, opts Options) *Engine {
	opts = opts.withDefaults()
	return NewWithHandlers(log,
		redirectHandler{},
		&noJobsHandler{phrases: opts.NoJobsPhrases, timeout: opts.SelectorTimeout},
		&frameHandler{max: opts.MaxIframes},
		&waitHandler{settle: opts.Settle, timeout: opts.SelectorTimeout},
		&scrollHandler{rounds: opts.MaxScrollRounds, settle: opts.Settle, clickTimeout: opts.ClickTimeout},
		&tabHandler{max: opts.MaxTabs, settle: opts.Settle, clickTimeout: opts.ClickTimeout},
		&filterHandler{timeout: opts.ClickTimeout},
		&consentHandler{timeout: opts.ClickTimeout},
		&expandHandler{phrases: opts.ExpandPhrases, settle: opts.Settle, clickTimeout: opts.ClickTimeout},
	)
}

// NewWithHandlers builds an engine over a custom handler sequence.
func NewWithHandlers(log *zap.SugaredLogger, handlers ...PatternHandler) *Engine {
	return &Engine{handlers: handlers, log: log}
}

// Run applies every handler in order against the session. Handler errors are
// logged and skipped; only context cancellation aborts the run.
func (e *Engine) Run(ctx context.Context, sess *Session) error {
	for _, h := range e.handlers {
		if err := ctx.Err(); err != nil {
			return err
		}
		sess.countStep(h.Tag())
		eff, err := h.Apply(ctx, sess)
		if err != nil {
			e.log.Debugw("interaction step failed",
				"step", h.Tag(), "url", sess.FinalURL, "err", err)
			continue
		}
		if eff == Stop {
			return nil
		}
	}
	return nil
}

// pause blocks for d or until ctx is canceled.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func ms(d time.Duration) float64 { return float64(d.Milliseconds()) }
