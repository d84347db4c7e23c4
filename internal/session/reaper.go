package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reaper periodically closes sessions that have been idle longer than a TTL.
// Thread-safe: Start spawns the sweep loop, Stop may be called from any goroutine.
type Reaper struct {
	registry *Registry
	logger   *zap.Logger
	onExpire func(id string)         // Called once per expired session
	ctx      context.Context         // Internal context for Stop
	cancel   context.CancelFunc      // Cancels ctx
	ttl      time.Duration           // Idle time before a session is closed
	interval time.Duration           // How often to sweep
	wg       sync.WaitGroup          // Tracks the sweep loop
	mu       sync.Mutex              // Protects onExpire
}

// NewReaper creates a reaper for registry.
// Sessions idle for longer than ttl are removed every interval.
func NewReaper(registry *Registry, ttl, interval time.Duration, logger *zap.Logger) *Reaper {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Reaper{
		registry: registry,
		logger:   logger,
		ttl:      ttl,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetOnExpire sets the callback invoked for each expired session ID.
// Typically used to update metrics.
func (p *Reaper) SetOnExpire(callback func(id string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onExpire = callback
}

// Start launches the sweep loop in a background goroutine. The loop runs
// every interval until ctx is canceled or Stop is called.
func (p *Reaper) Start(ctx context.Context) {
	if ctx == nil {
		ctx = p.ctx
	}

	p.wg.Add(1)
	go p.run(ctx)
}

func (p *Reaper) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("session reaper started",
		zap.Duration("ttl", p.ttl),
		zap.Duration("interval", p.interval))

	for {
		select {
		case <-ticker.C:
			p.Sweep()
		case <-ctx.Done():
			p.logger.Debug("session reaper stopping", zap.String("reason", "context canceled"))
			return
		case <-p.ctx.Done():
			p.logger.Debug("session reaper stopping", zap.String("reason", "stopped"))
			return
		}
	}
}

// Stop cancels the sweep loop and waits for it to return.
func (p *Reaper) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("session reaper stopped")
}

// Sweep expires idle sessions once and returns their IDs.
func (p *Reaper) Sweep() []string {
	cutoff := p.registry.now().Add(-p.ttl)
	expired := p.registry.Expire(cutoff)
	if len(expired) == 0 {
		return nil
	}

	p.mu.Lock()
	cb := p.onExpire
	p.mu.Unlock()

	for _, id := range expired {
		p.logger.Info("session expired", zap.String("session", id))
		if cb != nil {
			cb(id)
		}
	}
	return expired
}
