// Package events dispatches DOM events through handlers registered once on a
// persistent ancestor and matched against the event target by selector, so
// content swapped in later is covered without re-binding.
package events

import (
	"sync"

	"go.uber.org/zap"

	"github.com/vcrobe/adminnav/console"
	"github.com/vcrobe/adminnav/dom"
)

// Event is a single dispatched event.
type Event struct {
	Type   string
	Target dom.Element

	defaultPrevented   bool
	propagationStopped bool
	immediateStopped   bool
}

// NewEvent creates an event of the given type aimed at target.
func NewEvent(typ string, target dom.Element) *Event {
	return &Event{Type: typ, Target: target}
}

func (e *Event) PreventDefault()        { e.defaultPrevented = true }
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation keeps the event from reaching ancestors of the current
// element. Other handlers matching the same element still run.
func (e *Event) StopPropagation() { e.propagationStopped = true }

// StopImmediatePropagation also skips remaining handlers on the current element.
func (e *Event) StopImmediatePropagation() {
	e.propagationStopped = true
	e.immediateStopped = true
}

func (e *Event) PropagationStopped() bool { return e.propagationStopped }

// Handler receives the event and the element that matched its selector.
// For document-level handlers (empty selector) current is nil.
type Handler func(e *Event, current dom.Element)

type binding struct {
	id       uint64
	typ      string
	selector string
	handler  Handler
}

// Delegator holds every delegated handler for one document.
type Delegator struct {
	mu       sync.RWMutex
	nextID   uint64
	bindings []binding
	logger   *zap.Logger
}

// NewDelegator creates an empty Delegator.
func NewDelegator(logger *zap.Logger) *Delegator {
	return &Delegator{logger: console.OrNop(logger).Named("events")}
}

// On registers h for events of type typ whose target is, or is inside, an
// element matching selector. An empty selector binds at document level: the
// handler runs after all delegated handlers unless propagation was stopped.
// The returned func removes the binding.
func (d *Delegator) On(typ, selector string, h Handler) (off func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.bindings = append(d.bindings, binding{id: id, typ: typ, selector: selector, handler: h})

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, b := range d.bindings {
			if b.id == id {
				d.bindings = append(d.bindings[:i], d.bindings[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of registered bindings.
func (d *Delegator) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.bindings)
}

// Dispatch walks from the target up to the root, running handlers whose
// selector matches each element, deepest first, then document-level handlers.
func (d *Delegator) Dispatch(e *Event) {
	if e == nil || e.Target == nil {
		return
	}

	d.mu.RLock()
	var delegated, direct []binding
	for _, b := range d.bindings {
		if b.typ != e.Type {
			continue
		}
		if b.selector == "" {
			direct = append(direct, b)
		} else {
			delegated = append(delegated, b)
		}
	}
	d.mu.RUnlock()

	for el := e.Target; el != nil; el = el.Parent() {
		for _, b := range delegated {
			if !el.Matches(b.selector) {
				continue
			}
			d.invoke(b, e, el)
			if e.immediateStopped {
				return
			}
		}
		if e.propagationStopped {
			return
		}
	}

	for _, b := range direct {
		d.invoke(b, e, nil)
		if e.immediateStopped {
			return
		}
	}
}

// invoke runs one handler, containing panics so a faulty handler cannot
// take down the dispatch loop.
func (d *Delegator) invoke(b binding, e *Event, current dom.Element) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("handler panicked",
				zap.String("event", e.Type),
				zap.String("selector", b.selector),
				zap.Any("panic", rec))
		}
	}()
	b.handler(e, current)
}
