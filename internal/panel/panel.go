// Package panel drives the related-notes view: it receives host events,
// decides through a Policy whether the current result is stale, and
// rebuilds it with the related engine.
//
// Events are handled one at a time by a single loop goroutine, so a build
// always runs to completion before the next event is looked at.
package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/relyaml/internal/apperr"
	"github.com/starford/relyaml/internal/models"
	"github.com/starford/relyaml/internal/related"
)

// Kind names a host event.
type Kind string

const (
	KindShown            Kind = "shown"
	KindOpened           Kind = "opened"
	KindMetadataResolved Kind = "metadata-resolved"
	KindLayoutChanged    Kind = "layout-changed"
	KindDeleted          Kind = "deleted"
)

// Event is one notification from the host.
type Event struct {
	Kind   Kind   `json:"kind"`
	Path   string `json:"path,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Corpus gives the panel read access to indexed notes.
type Corpus interface {
	Document(ctx context.Context, path string) (*models.Document, error)
	Documents(ctx context.Context) ([]models.Document, error)
}

// Consumer receives every result the panel produces.
type Consumer func(related.Result)

// Snapshot is a copy of the panel state.
type Snapshot struct {
	Active    string          `json:"active"`
	Height    int             `json:"height"`
	Visible   bool            `json:"visible"`
	Builds    int             `json:"builds"`
	LastBuild *BuildKey       `json:"last_build,omitempty"`
	Result    *related.Result `json:"result,omitempty"`
}

// Panel owns the active note, the panel height and the latest result.
type Panel struct {
	corpus    Corpus
	engine    *related.Engine
	logger    *slog.Logger
	consumers []Consumer
	events    chan Event

	handleMu sync.Mutex // serializes Handle

	mu     sync.RWMutex // guards the fields below
	state  State
	policy Policy
	result *related.Result
	builds int
}

// Option configures a Panel.
type Option func(*Panel)

// WithEngine sets the engine used for builds.
func WithEngine(e *related.Engine) Option {
	return func(p *Panel) {
		if e != nil {
			p.engine = e
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Panel) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithConsumer registers c to receive results.
func WithConsumer(c Consumer) Option {
	return func(p *Panel) {
		if c != nil {
			p.consumers = append(p.consumers, c)
		}
	}
}

// WithBuffer sets the event queue size.
func WithBuffer(n int) Option {
	return func(p *Panel) {
		if n > 0 {
			p.events = make(chan Event, n)
		}
	}
}

// WithHeight sets the height assumed before the first shown event.
func WithHeight(h int) Option {
	return func(p *Panel) {
		p.state.Height = h
	}
}

// New creates a Panel reading notes from corpus.
func New(corpus Corpus, opts ...Option) *Panel {
	p := &Panel{
		corpus: corpus,
		engine: related.New(),
		logger: slog.Default(),
		events: make(chan Event, 64),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Post queues ev for Run. It blocks while the queue is full.
func (p *Panel) Post(ctx context.Context, ev Event) error {
	select {
	case p.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run handles queued events until ctx is cancelled.
func (p *Panel) Run(ctx context.Context) error {
	p.logger.Info("panel: started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("panel: stopped")
			return nil
		case ev := <-p.events:
			if err := p.Handle(ctx, ev); err != nil {
				p.logger.Warn("panel: event failed",
					slog.String("event", string(ev.Kind)),
					slog.String("path", ev.Path),
					slog.String("error", err.Error()))
			}
		}
	}
}

// Handle applies ev immediately, rebuilding the result when the policy
// says so. With no active note every event except opened is a no-op.
func (p *Panel) Handle(ctx context.Context, ev Event) error {
	p.handleMu.Lock()
	defer p.handleMu.Unlock()

	var resolved *models.Document
	if ev.Kind == KindMetadataResolved && ev.Path != "" && ev.Path == p.current().Active {
		doc, err := p.corpus.Document(ctx, ev.Path)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("panel: resolve %s: %w", ev.Path, err)
		}
		resolved = doc
	}

	p.mu.Lock()
	st, decision := p.policy.Decide(p.state, ev, resolved)
	p.state = st
	p.mu.Unlock()

	p.logger.Debug("panel: event",
		slog.String("event", string(ev.Kind)),
		slog.String("path", ev.Path),
		slog.String("decision", decision.String()))

	switch decision {
	case Build:
		active := resolved
		if active == nil {
			doc, err := p.corpus.Document(ctx, st.Active)
			if errors.Is(err, apperr.ErrNotFound) {
				p.logger.Debug("panel: active note not indexed", slog.String("path", st.Active))
				p.clear(st.Active)
				return nil
			}
			if err != nil {
				return fmt.Errorf("panel: load %s: %w", st.Active, err)
			}
			active = doc
		}
		return p.build(ctx, *active)

	case Clear:
		p.clear("")
	}
	return nil
}

// clear drops the last build and publishes an empty result for path.
func (p *Panel) clear(path string) {
	p.mu.Lock()
	p.policy.Reset()
	empty := related.Result{Path: path, Groups: []related.Group{}}
	p.result = &empty
	p.mu.Unlock()
	p.publish(empty)
}

func (p *Panel) build(ctx context.Context, active models.Document) error {
	start := time.Now()
	corpus, err := p.corpus.Documents(ctx)
	if err != nil {
		return fmt.Errorf("panel: list corpus: %w", err)
	}

	res := p.engine.Compute(active, corpus)

	p.mu.Lock()
	p.policy.Record(KeyOf(active))
	p.result = &res
	p.builds++
	p.mu.Unlock()

	p.logger.Debug("panel: built",
		slog.String("path", active.Path),
		slog.Int("groups", len(res.Groups)),
		slog.Duration("duration", time.Since(start)))

	p.publish(res)
	return nil
}

func (p *Panel) publish(res related.Result) {
	for _, c := range p.consumers {
		c(res)
	}
}

func (p *Panel) current() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Snapshot returns the current panel state.
func (p *Panel) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := Snapshot{
		Active:  p.state.Active,
		Height:  p.state.Height,
		Visible: p.state.Visible(),
		Builds:  p.builds,
	}
	if p.policy.Built() {
		k := p.policy.Last()
		s.LastBuild = &k
	}
	if p.result != nil {
		r := *p.result
		s.Result = &r
	}
	return s
}
