// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package connectivity tracks whether the client can reach the network and
// notifies subscribers on every transition.
package connectivity

import (
	"sync"

	"github.com/MKhiriev/livyflow/internal/logger"
)

// State is the connectivity state of the client.
type State string

const (
	Online  State = "ONLINE"
	Offline State = "OFFLINE"
)

func stateOf(online bool) State {
	if online {
		return Online
	}
	return Offline
}

// Listener is invoked with the new state after every transition.
type Listener func(online bool)

// ListenerID identifies a registered listener.
type ListenerID uint64

type subscription struct {
	id ListenerID
	fn Listener
}

// Monitor holds the process-wide connectivity state. Events that do not
// change the state are ignored. Listeners run synchronously, in registration
// order, on the goroutine that reported the transition; they must not report
// connectivity events themselves.
type Monitor struct {
	logger *logger.Logger

	// transitionMu serializes transitions with their notifications so that
	// listeners observe states in the order they happened.
	transitionMu sync.Mutex

	mu        sync.RWMutex
	online    bool
	nextID    ListenerID
	listeners []subscription
}

// NewMonitor returns a Monitor starting in the given state.
func NewMonitor(online bool, log *logger.Logger) *Monitor {
	return &Monitor{
		logger: log,
		online: online,
	}
}

// IsOnline reports the current state.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// State returns the current state.
func (m *Monitor) State() State {
	return stateOf(m.IsOnline())
}

// HandleOnline reports that the network became reachable.
func (m *Monitor) HandleOnline() {
	m.SetOnline(true)
}

// HandleOffline reports that the network became unreachable.
func (m *Monitor) HandleOffline() {
	m.SetOnline(false)
}

// SetOnline applies a connectivity event. It reports whether the event
// changed the state.
func (m *Monitor) SetOnline(online bool) bool {
	m.transitionMu.Lock()
	defer m.transitionMu.Unlock()

	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return false
	}
	m.online = online
	listeners := make([]subscription, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	m.logger.Info().
		Str("func", "Monitor.SetOnline").
		Str("state", string(stateOf(online))).
		Msg("connectivity changed")

	for _, l := range listeners {
		m.notify(l, online)
	}

	return true
}

func (m *Monitor) notify(l subscription, online bool) {
	defer func() {
		if p := recover(); p != nil {
			m.logger.Error().
				Str("func", "Monitor.notify").
				Uint64("listener_id", uint64(l.id)).
				Interface("panic", p).
				Msg("connectivity listener panicked")
		}
	}()

	l.fn(online)
}

// AddListener registers fn and returns its ID for RemoveListener.
func (m *Monitor) AddListener(fn Listener) ListenerID {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	m.listeners = append(m.listeners, subscription{id: m.nextID, fn: fn})
	return m.nextID
}

// RemoveListener unregisters the listener with id. Unknown IDs are ignored.
func (m *Monitor) RemoveListener(id ListenerID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, l := range m.listeners {
		if l.id == id {
			m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
			return
		}
	}
}
