// Package presence is the single source of truth for who is connected,
// where they are positioned, and which seat they hold.
//
// # Ownership
//
// A Store is owned by one goroutine started with Run. Every mutation
// (Join, Leave, Move, Heartbeat, SetSeat and the heartbeat sweep) is sent
// to that goroutine over a bounded command channel and applied in arrival
// order, so no two mutations ever interleave.
//
// After each mutation the owner publishes a fresh immutable *Snapshot
// through an atomic pointer. Readers call Store.Snapshot and never block
// the owner or observe a half-applied change.
//
// # Liveness
//
// A presence whose last heartbeat is older than the configured timeout is
// purged by a periodic sweep that runs through the same command queue as
// Leave. Move and Heartbeat both count as liveness signals.
//
// # Usage
//
//	store := presence.NewStore(registry, presence.Options{
//	    HeartbeatTimeout: 30 * time.Second,
//	    SweepInterval:    5 * time.Second,
//	})
//	go store.Run(ctx)
//
//	p, err := store.Join(ctx, "user-1", space.Point{X: 2, Y: 3})
//	snap := store.Snapshot()
package presence
