// Package scheduler drives game engines in time.
//
// A Loop is a single goroutine event queue. Everything that touches an engine,
// tick callbacks included, is posted to the loop that owns it, so the engine itself
// never needs a lock.
//
// Ticker implements engine.Scheduler with a time.Ticker whose callbacks are posted
// to a Loop. Every StartTicking opens a new generation and callbacks carrying an older
// generation are dropped when they reach the loop, so no tick ever lands after
// StopTicking returns.
//
// Manual implements engine.Scheduler without a clock. Ticks are delivered by calling
// Fire, which is how tests and agent-driven sessions advance the game.
package scheduler
