// Package profile wires the sidebar's profile accordion and the navigation
// collapse toggle. Both are plain class toggles persisted in client storage;
// neither interacts with navigation.
package profile

import (
	"go.uber.org/zap"

	"github.com/vcrobe/adminnav/config"
	"github.com/vcrobe/adminnav/console"
	"github.com/vcrobe/adminnav/dom"
	"github.com/vcrobe/adminnav/events"
	"github.com/vcrobe/adminnav/storage"
)

const (
	expandedClass  = "expanded"
	collapsedClass = "collapsed"
)

// Toggles owns the accordion and nav toggle state.
type Toggles struct {
	doc      dom.Document
	store    storage.Store
	cfg      config.ProfileConfig
	redirect func(url string)
	logger   *zap.Logger
}

// New creates Toggles. redirect performs a full-page navigation for the
// edit-profile button; it may be nil.
func New(doc dom.Document, store storage.Store, cfg *config.Config, redirect func(string), logger *zap.Logger) *Toggles {
	return &Toggles{
		doc:      doc,
		store:    store,
		cfg:      cfg.Profile,
		redirect: redirect,
		logger:   console.OrNop(logger).Named("profile"),
	}
}

// Restore applies the persisted flags. Missing widgets are skipped.
func (t *Toggles) Restore() {
	if acc := t.accordion(); acc != nil && storage.Bool(t.store, t.cfg.ExpandedKey) {
		acc.AddClass(expandedClass)
	}
	if nt := t.navToggle(); nt != nil && storage.Bool(t.store, t.cfg.CollapsedKey) {
		nt.AddClass(collapsedClass)
	}
}

// accordion returns the accordion only when its header and button exist too.
func (t *Toggles) accordion() dom.Element {
	if t.doc.Query(t.cfg.Header) == nil || t.doc.Query(t.cfg.DropdownButton) == nil {
		return nil
	}
	return t.doc.Query(t.cfg.Accordion)
}

// navToggle returns the toggle only when the links container exists too.
func (t *Toggles) navToggle() dom.Element {
	if t.doc.Query(t.cfg.NavLinks) == nil {
		return nil
	}
	return t.doc.Query(t.cfg.NavToggle)
}

// ToggleAccordion flips the accordion, persists it and returns the new state.
func (t *Toggles) ToggleAccordion() bool {
	acc := t.accordion()
	if acc == nil {
		return false
	}
	expanded := acc.ToggleClass(expandedClass)
	storage.SetBool(t.store, t.cfg.ExpandedKey, expanded)
	return expanded
}

// ToggleNav flips the nav toggle, persists it and returns the new state.
func (t *Toggles) ToggleNav() bool {
	nt := t.navToggle()
	if nt == nil {
		return false
	}
	collapsed := nt.ToggleClass(collapsedClass)
	storage.SetBool(t.store, t.cfg.CollapsedKey, collapsed)
	return collapsed
}

// Bind registers the click handlers.
func (t *Toggles) Bind(d *events.Delegator) (off func()) {
	offs := []func(){
		d.On("click", t.cfg.DropdownButton, func(e *events.Event, _ dom.Element) {
			e.StopPropagation()
			t.ToggleAccordion()
		}),
		d.On("click", t.cfg.Header, func(e *events.Event, _ dom.Element) {
			// The avatar has its own handler.
			if e.Target.Closest(t.cfg.Avatar) != nil {
				return
			}
			e.StopPropagation()
			t.ToggleAccordion()
		}),
		d.On("click", t.cfg.EditButton, func(e *events.Event, _ dom.Element) {
			e.PreventDefault()
			e.StopPropagation()
			if t.redirect != nil {
				t.redirect(t.cfg.EditURL)
			}
		}),
		d.On("click", t.cfg.NavToggle, func(e *events.Event, _ dom.Element) {
			t.ToggleNav()
		}),
	}
	return func() {
		for _, f := range offs {
			f()
		}
	}
}
