package terminal

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is delivered by tea.Tick for one schedule generation
type TickMsg struct {
	Gen int
	At  time.Time
}

// Scheduler implements engine.Scheduler on top of bubbletea commands.
// It is driven from the program's Update loop and is not safe for concurrent use.
type Scheduler struct {
	callback func()
	interval time.Duration
	active   bool
	gen      int
	armed    bool
}

// StartTicking begins a new schedule generation; Next returns its first tick command
func (s *Scheduler) StartTicking(callback func(), interval time.Duration) {
	s.callback = callback
	s.interval = interval
	s.active = true
	s.gen++
	s.armed = true
}

// StopTicking invalidates every tick message already in flight
func (s *Scheduler) StopTicking() {
	s.active = false
	s.gen++
	s.armed = false
}

// Next returns the tick command owed after StartTicking, or nil
func (s *Scheduler) Next() tea.Cmd {
	if !s.armed {
		return nil
	}
	s.armed = false
	return s.tickCmd()
}

// Fire runs the callback for a message from the current generation and returns
// the command for the following tick. Stale messages are dropped.
func (s *Scheduler) Fire(msg TickMsg) tea.Cmd {
	if !s.active || msg.Gen != s.gen {
		return nil
	}
	s.callback()
	if s.active && msg.Gen == s.gen {
		return s.tickCmd()
	}
	return s.Next()
}

// Running reports whether a schedule is active
func (s *Scheduler) Running() bool { return s.active }

// Generation returns the current schedule generation
func (s *Scheduler) Generation() int { return s.gen }

// Interval returns the period of the current schedule
func (s *Scheduler) Interval() time.Duration { return s.interval }

func (s *Scheduler) tickCmd() tea.Cmd {
	gen := s.gen
	return tea.Tick(s.interval, func(t time.Time) tea.Msg {
		return TickMsg{Gen: gen, At: t}
	})
}
