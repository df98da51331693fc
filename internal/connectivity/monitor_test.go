// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package connectivity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/livyflow/internal/logger"
)

func TestMonitor_InitialState(t *testing.T) {
	on := NewMonitor(true, logger.Nop())
	assert.True(t, on.IsOnline())
	assert.Equal(t, Online, on.State())

	off := NewMonitor(false, logger.Nop())
	assert.False(t, off.IsOnline())
	assert.Equal(t, Offline, off.State())
}

func TestMonitor_TransitionsNotifyInOrder(t *testing.T) {
	m := NewMonitor(false, logger.Nop())

	var calls []string
	m.AddListener(func(online bool) { calls = append(calls, "first:"+string(stateOf(online))) })
	m.AddListener(func(online bool) { calls = append(calls, "second:"+string(stateOf(online))) })

	assert.True(t, m.SetOnline(true))
	m.HandleOffline()

	assert.Equal(t, []string{
		"first:ONLINE", "second:ONLINE",
		"first:OFFLINE", "second:OFFLINE",
	}, calls)
	assert.False(t, m.IsOnline())
}

func TestMonitor_SameStateIsNoOp(t *testing.T) {
	m := NewMonitor(true, logger.Nop())

	calls := 0
	m.AddListener(func(bool) { calls++ })

	assert.False(t, m.SetOnline(true))
	m.HandleOnline()

	assert.Zero(t, calls)
	assert.True(t, m.IsOnline())
}

func TestMonitor_RemoveListener(t *testing.T) {
	m := NewMonitor(false, logger.Nop())

	var got []int
	id1 := m.AddListener(func(bool) { got = append(got, 1) })
	m.AddListener(func(bool) { got = append(got, 2) })
	id3 := m.AddListener(func(bool) { got = append(got, 3) })
	require.NotEqual(t, id1, id3)

	m.RemoveListener(id1)
	m.RemoveListener(ListenerID(999))
	m.HandleOnline()
	assert.Equal(t, []int{2, 3}, got)

	m.RemoveListener(id3)
	m.HandleOffline()
	assert.Equal(t, []int{2, 3, 2}, got)
}

func TestMonitor_PanickingListenerDoesNotStopOthers(t *testing.T) {
	m := NewMonitor(false, logger.Nop())

	reached := false
	m.AddListener(func(bool) { panic("listener bug") })
	m.AddListener(func(online bool) { reached = online })

	assert.NotPanics(t, func() { m.HandleOnline() })
	assert.True(t, reached)
	assert.True(t, m.IsOnline())
}

func TestMonitor_ListenerMayInspectAndSubscribe(t *testing.T) {
	m := NewMonitor(false, logger.Nop())

	var seen bool
	m.AddListener(func(online bool) {
		seen = m.IsOnline()
		m.AddListener(func(bool) {})
	})

	m.HandleOnline()
	assert.True(t, seen)
}

func TestMonitor_ConcurrentEvents(t *testing.T) {
	m := NewMonitor(false, logger.Nop())

	var mu sync.Mutex
	transitions := 0
	m.AddListener(func(bool) {
		mu.Lock()
		transitions++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.SetOnline(i%2 == 0)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, transitions, 50)
	assert.Equal(t, m.IsOnline(), transitions%2 == 1)
}
