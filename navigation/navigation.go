// Package navigation drives partial-page navigation: it turns clicks and
// back/forward events into fetch → swap → history → active-state updates.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/vcrobe/adminnav/activestate"
	"github.com/vcrobe/adminnav/config"
	"github.com/vcrobe/adminnav/console"
	"github.com/vcrobe/adminnav/dom"
	"github.com/vcrobe/adminnav/events"
	"github.com/vcrobe/adminnav/history"
	"github.com/vcrobe/adminnav/swap"
)

var (
	// ErrInvalidTarget is returned for an empty or placeholder URL. Nothing
	// is fetched and no state changes.
	ErrInvalidTarget = errors.New("navigation: invalid target")

	// ErrSuperseded is returned when a newer navigation started before this
	// one's response arrived. The response is discarded.
	ErrSuperseded = errors.New("navigation: superseded by a newer navigation")
)

// Phase is the state of a navigation.
type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Target is a requested navigation.
type Target struct {
	URL string
	// Trigger is the navigation link that was clicked, if any. It is marked
	// active when the load succeeds.
	Trigger dom.Element
}

// Valid reports whether the target can be fetched.
func (t Target) Valid() bool {
	u := strings.TrimSpace(t.URL)
	return u != "" && u != "#"
}

// FragmentFetcher returns the HTML fragment at url.
type FragmentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// State is a snapshot of the navigation state owned by an Orchestrator.
type State struct {
	// Phase is Loading while the latest navigation is in flight, else Idle.
	Phase Phase
	// Last is the outcome of the most recent navigation that completed.
	Last Phase
	// URL is the URL of the fragment currently displayed.
	URL string
	// Seq is the sequence number of the latest navigation started.
	Seq uint64
	// LastErr is the error of the most recent failed navigation.
	LastErr error
}

// Orchestrator coordinates the Fragment Fetcher, Content Swapper, History
// Bridge and Active-State Tracker for one content region.
type Orchestrator struct {
	mu     sync.Mutex
	state  State
	cancel context.CancelFunc

	fetcher FragmentFetcher
	swapper *swap.Swapper
	tracker *activestate.Tracker
	bridge  *history.Bridge
	cfg     *config.Config
	logger  *zap.Logger

	// run executes a navigation started by an event handler. Event handlers
	// must not block, so it defaults to a new goroutine.
	run  func(func())
	base context.Context
	offs []func()
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithRunner replaces how event-triggered navigations are executed.
// Tests pass func(f func()) { f() } to run them synchronously.
func WithRunner(run func(func())) Option {
	return func(o *Orchestrator) { o.run = run }
}

// WithContext sets the parent context of event-triggered navigations.
func WithContext(ctx context.Context) Option {
	return func(o *Orchestrator) { o.base = ctx }
}

// New creates an Orchestrator.
func New(
	fetcher FragmentFetcher,
	swapper *swap.Swapper,
	tracker *activestate.Tracker,
	bridge *history.Bridge,
	cfg *config.Config,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		fetcher: fetcher,
		swapper: swapper,
		tracker: tracker,
		bridge:  bridge,
		cfg:     cfg,
		run:     func(f func()) { go f() },
		base:    context.Background(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = console.OrNop(o.logger).Named("navigation")
	return o
}

// State returns a snapshot of the navigation state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SetCurrentURL records the URL of the server-rendered page on startup.
func (o *Orchestrator) SetCurrentURL(url string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.URL = url
}

// Navigate loads t into the content region and records it in history.
func (o *Orchestrator) Navigate(ctx context.Context, t Target) error {
	_, err := o.navigate(ctx, t, false)
	return err
}

// Restore loads url for a back/forward event. It never records history.
func (o *Orchestrator) Restore(ctx context.Context, url string) error {
	_, err := o.navigate(ctx, Target{URL: url}, true)
	return err
}

// LoadContent is the programmatic entry point for scripts on the page: it
// runs the full pipeline for url and reports the fragment or the error to
// callback, which may be nil. A load superseded by a newer navigation is not
// a failure and is not reported.
func (o *Orchestrator) LoadContent(ctx context.Context, url string, callback func(html string, err error)) {
	html, err := o.navigate(ctx, Target{URL: url}, false)
	if errors.Is(err, ErrSuperseded) {
		o.logger.Debug("loadContent superseded", zap.String("url", url))
		return
	}
	if callback != nil {
		callback(html, err)
	}
}

// begin moves to Loading and issues the next sequence number, cancelling the
// request of any navigation still in flight.
func (o *Orchestrator) begin(ctx context.Context) (context.Context, context.CancelFunc, uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.state.Seq++
	o.state.Phase = Loading
	o.swapper.ShowLoading()
	return ctx, cancel, o.state.Seq
}

func (o *Orchestrator) navigate(ctx context.Context, t Target, fromHistory bool) (string, error) {
	if !t.Valid() {
		o.logger.Debug("ignoring invalid target", zap.String("url", t.URL))
		return "", ErrInvalidTarget
	}
	url := strings.TrimSpace(t.URL)

	ctx, cancel, seq := o.begin(ctx)
	defer cancel()
	o.logger.Debug("loading",
		zap.String("url", url),
		zap.Uint64("seq", seq),
		zap.Bool("popstate", fromHistory))

	html, err := o.fetcher.Fetch(ctx, url)

	o.mu.Lock()
	if seq != o.state.Seq {
		o.mu.Unlock()
		o.logger.Debug("discarding stale response", zap.String("url", url), zap.Uint64("seq", seq))
		return "", ErrSuperseded
	}
	o.cancel = nil
	o.swapper.HideLoading()

	if err == nil {
		err = o.swapper.Replace(html)
	}
	if err != nil {
		o.fail(err)
		o.mu.Unlock()
		return "", fmt.Errorf("loading %s: %w", url, err)
	}

	if t.Trigger != nil {
		o.tracker.MarkActive(t.Trigger)
	}
	if !fromHistory {
		o.bridge.RecordNavigation(url)
	}
	o.state.URL = url
	o.state.Last = Success
	o.state.LastErr = nil
	o.state.Phase = Idle
	o.mu.Unlock()

	// Hooks and ContentLoaded subscribers run unlocked and may call back
	// into the Orchestrator. A navigation started meanwhile owns the region.
	if !o.current(seq) {
		return html, nil
	}
	o.swapper.Reinitialize(url)
	if !o.current(seq) {
		return html, nil
	}
	o.tracker.ResyncDropdowns()
	o.swapper.ScrollTop()
	o.logger.Info("loaded", zap.String("url", url))
	return html, nil
}

// current reports whether seq is still the latest navigation.
func (o *Orchestrator) current(seq uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return seq == o.state.Seq
}

// fail surfaces err in the content region. Called with o.mu held.
func (o *Orchestrator) fail(err error) {
	o.logger.Warn("load failed", zap.Error(err))
	o.swapper.ShowError(o.cfg.Messages.LoadError)
	o.state.Last = Failed
	o.state.LastErr = err
	o.state.Phase = Idle
}

// linkURL prefers data-url over href.
func linkURL(link dom.Element) string {
	if v, ok := link.Attr("data-url"); ok && v != "" {
		return v
	}
	v, _ := link.Attr("href")
	return v
}

// dispatch runs a navigation triggered by an event and logs its outcome.
func (o *Orchestrator) dispatch(t Target, fromHistory bool) {
	o.run(func() {
		_, err := o.navigate(o.base, t, fromHistory)
		switch {
		case err == nil:
		case errors.Is(err, ErrInvalidTarget), errors.Is(err, ErrSuperseded):
			o.logger.Debug("navigation skipped", zap.Error(err))
		default:
			o.logger.Debug("navigation failed", zap.Error(err))
		}
	})
}

// Bind registers click handlers for navigation links and in-fragment links.
// Handlers are delegated from the document so links inside swapped-in
// fragments work without re-binding.
func (o *Orchestrator) Bind(d *events.Delegator) {
	navLinks := fmt.Sprintf("%s:not(%s)", o.cfg.Nav.Link, o.cfg.Dropdown.Toggle)

	o.offs = append(o.offs,
		d.On("click", navLinks, func(e *events.Event, link dom.Element) {
			if link.Closest(o.cfg.Nav.Scope) == nil {
				return
			}
			e.PreventDefault()
			o.dispatch(Target{URL: linkURL(link), Trigger: link}, false)
		}),
		d.On("click", o.cfg.Content.AjaxLink, func(e *events.Event, link dom.Element) {
			if !o.inRegion(link) {
				return
			}
			e.PreventDefault()
			o.dispatch(Target{URL: linkURL(link)}, false)
		}),
	)
}

func (o *Orchestrator) inRegion(el dom.Element) bool {
	region := o.swapper.Region()
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.Same(region) {
			return true
		}
	}
	return false
}

// Start subscribes to back/forward navigation.
func (o *Orchestrator) Start() {
	o.offs = append(o.offs, o.bridge.OnPopState(func(url string) {
		o.dispatch(Target{URL: url}, true)
	}))
}

// Close removes every handler registered by Bind and Start. A navigation in
// flight is cancelled, its response discarded and its loading indicator removed.
func (o *Orchestrator) Close() {
	for _, off := range o.offs {
		off()
	}
	o.offs = nil

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
		o.state.Seq++
		o.state.Phase = Idle
		o.swapper.HideLoading()
	}
}
