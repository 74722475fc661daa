package location

import (
	"sync"
)

// History is an in-memory navigable history.
//
// The entries before the current location form a back stack and the entries
// after it a forward stack, mirroring browser history.
type History struct {
	mu      sync.Mutex
	back    []Location
	current Location
	forward []Location
	routes  []*Pattern

	observers []observer
	nextID    int
}

type observer struct {
	id int
	fn func(Location)
}

var _ Service = (*History)(nil)

// NewHistory creates a history positioned at start. Routes are consulted in
// order by Param.
func NewHistory(start string, routes ...*Pattern) *History {
	if start == "" {
		start = "/"
	}
	return &History{
		current: Location{Path: start},
		routes:  routes,
	}
}

// Current returns the current location.
func (h *History) Current() Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Push records path as a new entry and discards forward entries. Pushing the
// current path still records an entry and notifies observers.
func (h *History) Push(path string) {
	h.mu.Lock()
	h.back = append(h.back, h.current)
	h.current = Location{Path: path}
	h.forward = h.forward[:0]
	h.mu.Unlock()

	h.notify(Location{Path: path})
}

// Replace swaps the current entry without growing history.
func (h *History) Replace(path string) {
	h.mu.Lock()
	h.current = Location{Path: path}
	h.mu.Unlock()

	h.notify(Location{Path: path})
}

// Visit records a location reached from outside (a typed URL, a browser
// back/forward). Returning to an adjacent entry moves within history
// instead of pushing, so Back and Forward stay consistent.
func (h *History) Visit(path string) {
	h.mu.Lock()
	switch {
	case path == h.current.Path:
		h.mu.Unlock()
		h.notify(Location{Path: path})
		return
	case len(h.back) > 0 && h.back[len(h.back)-1].Path == path:
		h.mu.Unlock()
		h.Back()
		return
	case len(h.forward) > 0 && h.forward[len(h.forward)-1].Path == path:
		h.mu.Unlock()
		h.Forward()
		return
	}
	h.mu.Unlock()
	h.Push(path)
}

// Back moves to the previous entry. Returns false if there is none.
func (h *History) Back() bool {
	h.mu.Lock()
	if len(h.back) == 0 {
		h.mu.Unlock()
		return false
	}
	h.forward = append(h.forward, h.current)
	h.current = h.back[len(h.back)-1]
	h.back = h.back[:len(h.back)-1]
	loc := h.current
	h.mu.Unlock()

	h.notify(loc)
	return true
}

// Forward moves to the next entry. Returns false if there is none.
func (h *History) Forward() bool {
	h.mu.Lock()
	if len(h.forward) == 0 {
		h.mu.Unlock()
		return false
	}
	h.back = append(h.back, h.current)
	h.current = h.forward[len(h.forward)-1]
	h.forward = h.forward[:len(h.forward)-1]
	loc := h.current
	h.mu.Unlock()

	h.notify(loc)
	return true
}

// CanGoBack reports whether Back would move.
func (h *History) CanGoBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.back) > 0
}

// CanGoForward reports whether Forward would move.
func (h *History) CanGoForward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.forward) > 0
}

// Len returns the number of entries including the current one.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.back) + 1 + len(h.forward)
}

// Entries returns the back stack, the current entry and the forward stack in
// chronological order.
func (h *History) Entries() []Location {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Location, 0, len(h.back)+1+len(h.forward))
	out = append(out, h.back...)
	out = append(out, h.current)
	for i := len(h.forward) - 1; i >= 0; i-- {
		out = append(out, h.forward[i])
	}
	return out
}

// Observe subscribes fn to location changes.
func (h *History) Observe(fn func(Location)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.observers = append(h.observers, observer{id: id, fn: fn})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, o := range h.observers {
				if o.id == id {
					h.observers = append(h.observers[:i], h.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Param extracts a named parameter from the current location using the
// first route that matches it.
func (h *History) Param(name string) (string, bool) {
	h.mu.Lock()
	path := h.current.Path
	routes := h.routes
	h.mu.Unlock()

	for _, r := range routes {
		if _, ok := r.Match(path); ok {
			return r.Param(path, name)
		}
	}
	return "", false
}

// AddRoute registers a route consulted by Param. A route already
// registered under the same source is ignored, so remounting a wizard on
// one history does not grow the route list.
func (h *History) AddRoute(p *Pattern) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.routes {
		if r.String() == p.String() {
			return
		}
	}
	h.routes = append(h.routes, p)
}

// notify calls observers outside the lock so they may read or push.
func (h *History) notify(loc Location) {
	h.mu.Lock()
	observers := make([]observer, len(h.observers))
	copy(observers, h.observers)
	h.mu.Unlock()

	for _, o := range observers {
		o.fn(loc)
	}
}
