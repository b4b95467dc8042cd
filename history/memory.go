package history

import "sync"

var _ History = (*Memory)(nil)

// Memory is an in-process History with a cursor, like the browser's session
// history. It starts with one stateless entry representing the initial page.
type Memory struct {
	mu        sync.Mutex
	entries   []*Entry
	index     int
	listeners map[int]func(*Entry)
	nextID    int
	reloads   int
}

// NewMemory creates a Memory positioned on the initial page.
func NewMemory() *Memory {
	return &Memory{entries: []*Entry{nil}, listeners: make(map[int]func(*Entry))}
}

// PushState drops any forward entries and appends e.
func (m *Memory) PushState(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.index+1], &e)
	m.index = len(m.entries) - 1
}

func (m *Memory) Reload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloads++
}

func (m *Memory) OnPopState(fn func(*Entry)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Back moves the cursor back one entry and fires popstate. It reports false
// at the start of history.
func (m *Memory) Back() bool { return m.step(-1) }

// Forward moves the cursor forward one entry and fires popstate.
func (m *Memory) Forward() bool { return m.step(1) }

func (m *Memory) step(delta int) bool {
	m.mu.Lock()
	next := m.index + delta
	if next < 0 || next >= len(m.entries) {
		m.mu.Unlock()
		return false
	}
	m.index = next
	var state *Entry
	if e := m.entries[next]; e != nil {
		cp := *e
		state = &cp
	}
	fns := make([]func(*Entry), 0, len(m.listeners))
	for id := 1; id <= m.nextID; id++ {
		if fn, ok := m.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
	return true
}

// Len returns the number of entries, including the initial page.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Current returns the state at the cursor (nil for the initial page).
func (m *Memory) Current() *Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.entries[m.index]; e != nil {
		cp := *e
		return &cp
	}
	return nil
}

// URLs returns the URL of every entry, "" for stateless ones.
func (m *Memory) URLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		if e != nil {
			out[i] = e.URL
		}
	}
	return out
}

// Reloads returns how many full reloads were requested.
func (m *Memory) Reloads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reloads
}
