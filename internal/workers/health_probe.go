// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/livyflow/internal/adapter"
	"github.com/MKhiriev/livyflow/internal/config"
	"github.com/MKhiriev/livyflow/internal/logger"
)

// HealthProbe polls the server health endpoint and reports the outcome to a
// StateReporter. A failed ping counts as offline.
type HealthProbe struct {
	checker  adapter.HealthChecker
	reporter StateReporter
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHealthProbe creates an idle probe. A non-positive interval falls back to
// config.DefaultHealthInterval.
func NewHealthProbe(checker adapter.HealthChecker, reporter StateReporter, interval time.Duration, log *logger.Logger) *HealthProbe {
	if interval <= 0 {
		interval = config.DefaultHealthInterval
	}
	return &HealthProbe{
		checker:  checker,
		reporter: reporter,
		interval: interval,
		logger:   log,
	}
}

// Probe pings the server once, reports the result and returns it.
func (p *HealthProbe) Probe(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	err := p.checker.Ping(pingCtx)
	online := err == nil

	if p.reporter.SetOnline(online) {
		ev := p.logger.Info()
		if err != nil {
			ev = p.logger.Warn().Err(err)
		}
		ev.Str("func", "HealthProbe.Probe").Bool("online", online).Msg("connectivity changed")
	}

	return online
}

// Run implements Worker.
func (p *HealthProbe) Run(ctx context.Context) {
	p.Stop()

	p.mu.Lock()
	probeCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		t := time.NewTicker(p.interval)
		defer t.Stop()

		for {
			select {
			case <-probeCtx.Done():
				return
			case <-t.C:
				p.Probe(probeCtx)
			}
		}
	}()
}

// Stop implements Worker.
func (p *HealthProbe) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}
