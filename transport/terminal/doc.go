// Package terminal plays the snake game in a terminal with bubbletea.
//
// The Model hosts one engine and serves as its three collaborators: key
// presses become SetDirection, Start and Reset calls; the renderer stores each
// snapshot for View; and Scheduler turns StartTicking into tea.Tick commands.
// Every tick message carries the schedule generation it was issued for, so
// ticks still in flight after StopTicking or Reset are ignored.
//
//	err := terminal.Run(ctx, engine.DefaultConfig())
package terminal
