package state

import (
	"sync"
	"time"

	"fundingboard/internal/feed"
)

// View is an immutable copy of the dashboard state handed to readers and
// listeners. Data is replaced wholesale on every successful fetch and never
// mutated afterwards, so sharing the pointer across copies is safe.
type View struct {
	Data        *feed.Snapshot `json:"data,omitempty"`
	Loading     bool           `json:"loading"`
	Error       string         `json:"error,omitempty"`
	LastUpdated time.Time      `json:"last_updated,omitempty"`
	AutoRefresh bool           `json:"auto_refresh"`
}

// Listener consumes state change notifications. Each call receives a complete
// view; partial transitions are never visible.
type Listener func(View)

// ListenerID uniquely identifies a subscribed listener.
type ListenerID uint64

// Store owns the dashboard view state. It is created when the screen comes up,
// mutated only by the poller and the user-facing toggles, and torn down with
// the process. There are no ambient globals; everything flows through here.
type Store struct {
	mu   sync.RWMutex
	view View

	listenersMu  sync.RWMutex
	listeners    map[ListenerID]Listener
	nextListener ListenerID
}

func NewStore(autoRefresh bool) *Store {
	return &Store{
		view:      View{AutoRefresh: autoRefresh},
		listeners: make(map[ListenerID]Listener),
	}
}

// View returns a copy of the current state.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// BeginFetch marks a fetch attempt as in flight and clears the previous
// error. Existing data stays visible while the request runs.
func (s *Store) BeginFetch() {
	s.mu.Lock()
	s.view.Loading = true
	s.view.Error = ""
	view := s.view
	s.mu.Unlock()

	s.notify(view)
}

// ApplySnapshot replaces the data wholesale, stamps the update time and ends
// the in-flight state. There is no incremental merge.
func (s *Store) ApplySnapshot(snapshot *feed.Snapshot, at time.Time) {
	s.mu.Lock()
	s.view.Data = snapshot
	s.view.LastUpdated = at
	s.view.Error = ""
	s.view.Loading = false
	view := s.view
	s.mu.Unlock()

	s.notify(view)
}

// ApplyFailure records the failure message and ends the in-flight state.
// Prior data is left untouched so the last good snapshot stays available.
func (s *Store) ApplyFailure(message string) {
	if message == "" {
		message = "failed to fetch funding data"
	}

	s.mu.Lock()
	s.view.Error = message
	s.view.Loading = false
	view := s.view
	s.mu.Unlock()

	s.notify(view)
}

// SetAutoRefresh flips the auto-refresh toggle and reports whether the value
// changed. Listeners are only notified on an actual change.
func (s *Store) SetAutoRefresh(enabled bool) bool {
	s.mu.Lock()
	if s.view.AutoRefresh == enabled {
		s.mu.Unlock()
		return false
	}
	s.view.AutoRefresh = enabled
	view := s.view
	s.mu.Unlock()

	s.notify(view)
	return true
}

// Subscribe registers a listener that receives every subsequent state change.
// A zero identifier is returned when the listener is nil.
func (s *Store) Subscribe(listener Listener) ListenerID {
	if listener == nil {
		return 0
	}

	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	s.nextListener++
	id := s.nextListener
	s.listeners[id] = listener
	return id
}

// Unsubscribe removes the listener associated with the given identifier.
func (s *Store) Unsubscribe(id ListenerID) {
	if id == 0 {
		return
	}

	s.listenersMu.Lock()
	delete(s.listeners, id)
	s.listenersMu.Unlock()
}

func (s *Store) notify(view View) {
	s.listenersMu.RLock()
	if len(s.listeners) == 0 {
		s.listenersMu.RUnlock()
		return
	}

	listeners := make([]Listener, 0, len(s.listeners))
	for _, listener := range s.listeners {
		if listener != nil {
			listeners = append(listeners, listener)
		}
	}
	s.listenersMu.RUnlock()

	for _, listener := range listeners {
		listener(view)
	}
}
