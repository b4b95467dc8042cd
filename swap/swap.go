// Package swap replaces the content region with fetched fragments and
// manages the transient markup shown around a swap (loading indicator and
// error notice).
package swap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vcrobe/adminnav/config"
	"github.com/vcrobe/adminnav/console"
	"github.com/vcrobe/adminnav/dom"
	"github.com/vcrobe/adminnav/events"
	"github.com/vcrobe/adminnav/signals"
	"github.com/vcrobe/adminnav/vdom"
)

// Reinitializer re-creates widget state whose DOM was replaced by a swap.
type Reinitializer interface {
	Reinitialize(region dom.Element) error
}

// ReinitFunc adapts a plain function to Reinitializer.
type ReinitFunc func(region dom.Element) error

func (f ReinitFunc) Reinitialize(region dom.Element) error { return f(region) }

// Swapper owns the content region.
type Swapper struct {
	region   dom.Element
	scroller dom.Scroller
	cfg      config.ContentConfig
	msgs     config.MessagesConfig
	hooks    []Reinitializer
	loaded   *signals.Signal[string]
	logger   *zap.Logger
}

// New creates a Swapper for region. scroller may be nil.
func New(region dom.Element, scroller dom.Scroller, cfg *config.Config, logger *zap.Logger) *Swapper {
	return &Swapper{
		region:   region,
		scroller: scroller,
		cfg:      cfg.Content,
		msgs:     cfg.Messages,
		loaded:   signals.New(""),
		logger:   console.OrNop(logger).Named("swap"),
	}
}

// Region returns the content region element.
func (s *Swapper) Region() dom.Element { return s.region }

// ContentLoaded fires with the URL of every fragment swapped in, after the
// navigation state is committed.
func (s *Swapper) ContentLoaded() *signals.Signal[string] { return s.loaded }

// AddReinitializer registers a post-swap hook. Hooks run in registration order.
func (s *Swapper) AddReinitializer(r Reinitializer) {
	s.hooks = append(s.hooks, r)
}

func (s *Swapper) loadingMarkup() string {
	return vdom.Div(map[string]any{"class": s.cfg.LoadingClass},
		vdom.Div(map[string]any{"class": "spinner-border text-success", "role": "status"},
			vdom.Span(s.msgs.Loading, map[string]any{"class": "visually-hidden"}),
		),
		vdom.Paragraph(s.msgs.Loading, nil),
	).HTML()
}

func (s *Swapper) noticeMarkup(message string) string {
	return vdom.Div(map[string]any{
		"class": s.cfg.NoticeClass + " alert alert-danger alert-dismissible fade show",
		"role":  "alert",
	},
		vdom.Icon("fas fa-exclamation-triangle me-2"),
		vdom.Text(message),
		vdom.Button("", map[string]any{"type": "button", "class": "btn-close", "data-bs-dismiss": "alert"}),
	).HTML()
}

// ShowLoading replaces the region's children with the loading indicator.
func (s *Swapper) ShowLoading() {
	if err := s.region.SetInnerHTML(s.loadingMarkup()); err != nil {
		s.logger.Warn("showing loading indicator", zap.Error(err))
	}
}

// HideLoading removes any loading indicator from the region.
func (s *Swapper) HideLoading() {
	for _, el := range s.region.QueryAll("." + s.cfg.LoadingClass) {
		el.Remove()
	}
}

// Replace writes markup as the region's entire content.
func (s *Swapper) Replace(markup string) error {
	if err := s.region.SetInnerHTML(markup); err != nil {
		return fmt.Errorf("replacing content: %w", err)
	}
	return nil
}

// Reinitialize runs every post-swap hook, then publishes ContentLoaded.
// A failing hook is logged and does not stop the others.
func (s *Swapper) Reinitialize(url string) {
	for i, h := range s.hooks {
		if err := h.Reinitialize(s.region); err != nil {
			s.logger.Warn("reinitializer failed", zap.Int("hook", i), zap.Error(err))
		}
	}
	s.loaded.Set(url)
}

// ScrollTop moves the viewport to the top of the region.
func (s *Swapper) ScrollTop() {
	if s.scroller != nil {
		s.scroller.ScrollToTop(s.region)
	}
}

// ShowError prepends a dismissible notice carrying message (escaped).
func (s *Swapper) ShowError(message string) {
	if err := s.region.PrependHTML(s.noticeMarkup(message)); err != nil {
		s.logger.Error("showing error notice", zap.Error(err))
	}
}

// BindDismiss makes the notice's close button remove the notice.
func (s *Swapper) BindDismiss(d *events.Delegator) (off func()) {
	notice := "." + s.cfg.NoticeClass
	return d.On("click", notice+` [data-bs-dismiss="alert"]`, func(e *events.Event, btn dom.Element) {
		e.PreventDefault()
		if n := btn.Closest(notice); n != nil {
			n.Remove()
		}
	})
}
