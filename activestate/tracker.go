// Package activestate keeps the navigation's "active link" and dropdown
// open/closed state consistent with the fragment on screen.
package activestate

import (
	"go.uber.org/zap"

	"github.com/vcrobe/adminnav/config"
	"github.com/vcrobe/adminnav/console"
	"github.com/vcrobe/adminnav/dom"
	"github.com/vcrobe/adminnav/events"
	"github.com/vcrobe/adminnav/signals"
)

// Tracker reads and writes active/open classes on the live document.
type Tracker struct {
	doc      dom.Document
	nav      config.NavConfig
	dropdown config.DropdownConfig
	logger   *zap.Logger
}

// New creates a Tracker over doc.
func New(doc dom.Document, cfg *config.Config, logger *zap.Logger) *Tracker {
	return &Tracker{
		doc:      doc,
		nav:      cfg.Nav,
		dropdown: cfg.Dropdown,
		logger:   console.OrNop(logger).Named("activestate"),
	}
}

// links returns every navigation link inside any navigation container.
func (t *Tracker) links() []dom.Element {
	var out []dom.Element
	for _, scope := range t.doc.QueryAll(t.nav.Scope) {
		for _, l := range scope.QueryAll(t.nav.Link) {
			if !dom.Contains(out, l) {
				out = append(out, l)
			}
		}
	}
	return out
}

// MarkActive clears the active class from every navigation link and sets it
// on link. Calling it again with the same link changes nothing.
func (t *Tracker) MarkActive(link dom.Element) {
	if link == nil {
		return
	}
	for _, l := range t.links() {
		if !l.Same(link) {
			l.RemoveClass(t.nav.ActiveClass)
		}
	}
	link.AddClass(t.nav.ActiveClass)
}

// Active returns the first navigation link carrying the active class.
func (t *Tracker) Active() dom.Element {
	for _, l := range t.links() {
		if l.HasClass(t.nav.ActiveClass) {
			return l
		}
	}
	return nil
}

// ActiveLinks returns every navigation link carrying the active class.
func (t *Tracker) ActiveLinks() []dom.Element {
	var out []dom.Element
	for _, l := range t.links() {
		if l.HasClass(t.nav.ActiveClass) {
			out = append(out, l)
		}
	}
	return out
}

// Containers returns every dropdown container in document order.
func (t *Tracker) Containers() []dom.Element {
	return t.doc.QueryAll(t.dropdown.Container)
}

// IsOpen reports whether container carries the open class.
func (t *Tracker) IsOpen(container dom.Element) bool {
	return container.HasClass(t.dropdown.OpenClass)
}

// ResyncDropdowns opens every container holding an active link. It never
// closes a container. Server-rendered fragments may carry their own active
// markers, so this inspects the markup rather than tracked state.
func (t *Tracker) ResyncDropdowns() {
	active := t.activeSelector()
	for _, c := range t.Containers() {
		if c.Query(active) != nil {
			c.AddClass(t.dropdown.OpenClass)
		}
	}
}

func (t *Tracker) activeSelector() string {
	link := t.dropdown.SubmenuLink
	if link == "" {
		link = t.nav.Link
	}
	return link + "." + t.nav.ActiveClass
}

// ToggleDropdown closes every other container, then flips container.
// It returns whether container is now open.
func (t *Tracker) ToggleDropdown(container dom.Element) bool {
	for _, c := range t.Containers() {
		if !c.Same(container) {
			c.RemoveClass(t.dropdown.OpenClass)
		}
	}
	open := container.ToggleClass(t.dropdown.OpenClass)
	t.logger.Debug("dropdown toggled", zap.Bool("open", open))
	return open
}

// CloseAll closes every container.
func (t *Tracker) CloseAll() {
	for _, c := range t.Containers() {
		c.RemoveClass(t.dropdown.OpenClass)
	}
}

// Bind registers the dropdown click handlers. Bind it before the navigation
// handlers so toggles are handled first.
func (t *Tracker) Bind(d *events.Delegator) (off func()) {
	offs := []func(){
		d.On("click", t.dropdown.Toggle, func(e *events.Event, toggle dom.Element) {
			e.PreventDefault()
			e.StopImmediatePropagation()
			container := toggle.Closest(t.dropdown.Container)
			if container == nil {
				t.logger.Error("dropdown container not found")
				return
			}
			t.ToggleDropdown(container)
		}),
	}
	if t.dropdown.SubmenuLink != "" {
		// Navigation inside a submenu proceeds, but must not reach the
		// outside-click handler and close the menu.
		offs = append(offs, d.On("click", t.dropdown.SubmenuLink, func(e *events.Event, _ dom.Element) {
			e.StopPropagation()
		}))
	}
	offs = append(offs, d.On("click", "", func(e *events.Event, _ dom.Element) {
		if e.Target.Closest(t.dropdown.Container) == nil {
			t.CloseAll()
		}
	}))

	return func() {
		for _, f := range offs {
			f()
		}
	}
}

// Watch resyncs dropdowns now and every time sig fires. It replaces polling
// for active-state markup rendered asynchronously by other scripts.
func (t *Tracker) Watch(sig *signals.Signal[struct{}]) (off func()) {
	t.ResyncDropdowns()
	return sig.Subscribe(func(struct{}) { t.ResyncDropdowns() })
}
