// Package session manages per-user dashboard state, giving every browser
// session its own filter engine over one shared, immutable dataset, and
// closing sessions that have gone idle.
//
// # Overview
//
// The filter engine models exactly one user's controls. When the dashboard
// is served to many users at once, each of them needs an independent
// parameter set and an independent cache, otherwise one user moving the
// mass slider would change what another user sees. This package provides
// that isolation without copying the data.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│             Registry                │
//	├─────────────────────────────────────┤
//	│  sessions: map[uuid]*Session        │
//	│  mu: RWMutex for thread safety      │
//	├─────────────────────────────────────┤
//	│  Session ──► filter.Engine ──┐      │
//	│  Session ──► filter.Engine ──┼──► *dataset.Dataset (shared, read-only)
//	│  Session ──► filter.Engine ──┘      │
//	└─────────────────────────────────────┘
//	                 ▲
//	                 │ Expire(now - ttl) every interval
//	┌─────────────────────────────────────┐
//	│              Reaper                 │
//	└─────────────────────────────────────┘
//
// # Core Components
//
// Registry: Session lookup by ID
//   - Create opens a session with its own Engine
//   - Get returns a session and refreshes its last-access time
//   - Delete and Expire close sessions
//   - List returns snapshots, oldest first
//
// Reaper: Idle session cleanup
//   - Runs one goroutine with a ticker
//   - Closes sessions idle for longer than the TTL
//   - Reports each closed session through an optional callback
//
// # Concurrency and Thread Safety
//
// Registry reads take a shared lock and writes an exclusive one. Last-access
// times are atomics so Get never needs the exclusive lock. No registry lock
// is held while an Engine computes; each Engine serializes its own state.
//
// # Example
//
//	reg := session.NewRegistry(ds, session.WithLogger(logger))
//	s := reg.Create(filter.NewParams(ds.Species(), 6000))
//
//	reaper := session.NewReaper(reg, 30*time.Minute, time.Minute, logger)
//	reaper.Start(ctx)
//	defer reaper.Stop()
package session
