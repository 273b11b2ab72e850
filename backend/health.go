package backend

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const defaultProbeInterval = 30 * time.Second

// ProbeEvent captures one reachability probe result.
type ProbeEvent struct {
	Reachable bool
	Elapsed   time.Duration
	Error     error
}

// ProbeEventHandler handles probe events.
type ProbeEventHandler func(event ProbeEvent)

// HealthMonitorConfig controls background backend probing.
type HealthMonitorConfig struct {
	Client   *Client
	Interval time.Duration
	Logger   *slog.Logger
	OnEvent  ProbeEventHandler
}

// HealthMonitor periodically probes backend reachability so operators see
// connectivity loss before the next tool call fails.
type HealthMonitor struct {
	client   *Client
	interval time.Duration
	logger   *slog.Logger
	onEvent  ProbeEventHandler

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	reachable bool
	probed    bool
}

// NewHealthMonitor creates a backend health monitor.
func NewHealthMonitor(cfg HealthMonitorConfig) (*HealthMonitor, error) {
	if cfg.Client == nil {
		return nil, errors.New("backend: health monitor client is nil")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultProbeInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.OnEvent == nil {
		cfg.OnEvent = func(ProbeEvent) {}
	}

	return &HealthMonitor{
		client:   cfg.Client,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		onEvent:  cfg.OnEvent,
	}, nil
}

// Start begins probing. Calling Start on a running monitor is a no-op.
func (m *HealthMonitor) Start(ctx context.Context) error {
	if m == nil {
		return errors.New("backend: health monitor is nil")
	}

	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	go func() {
		defer close(done)
		m.RunOnce(loopCtx)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				m.RunOnce(loopCtx)
			}
		}
	}()

	return nil
}

// Stop terminates probing and waits for the loop to exit.
func (m *HealthMonitor) Stop(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs one reachability probe and logs status transitions.
func (m *HealthMonitor) RunOnce(ctx context.Context) {
	if m == nil || m.client == nil {
		return
	}

	start := time.Now()
	err := m.client.Ping(ctx)
	elapsed := time.Since(start)
	reachable := err == nil

	m.mu.Lock()
	changed := !m.probed || m.reachable != reachable
	m.reachable = reachable
	m.probed = true
	m.mu.Unlock()

	if changed {
		if reachable {
			m.logger.InfoContext(ctx, "backend reachable", "elapsed", elapsed)
		} else {
			m.logger.WarnContext(ctx, "backend unreachable", "elapsed", elapsed, "error", err)
		}
	}

	m.onEvent(ProbeEvent{Reachable: reachable, Elapsed: elapsed, Error: err})
}

// Reachable reports the result of the most recent probe. The second return
// is false before the first probe completes.
func (m *HealthMonitor) Reachable() (bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reachable, m.probed
}
