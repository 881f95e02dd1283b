package terminal

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/render"
)

var keyDirections = map[string]engine.Direction{
	"up": engine.Up, "w": engine.Up, "k": engine.Up,
	"down": engine.Down, "s": engine.Down, "j": engine.Down,
	"left": engine.Left, "a": engine.Left, "h": engine.Left,
	"right": engine.Right, "d": engine.Right, "l": engine.Right,
}

// frame is the last snapshot handed to the renderer
type frame struct {
	snapshot engine.Snapshot
	count    int
}

// Model is a bubbletea program hosting one engine. The program is the engine's
// input source, its renderer and its scheduler.
type Model struct {
	engine *engine.GameEngine
	sched  *Scheduler
	frame  *frame
	styles Styles
	width  int
	height int
}

// NewModel builds an engine for config wired to the terminal scheduler
func NewModel(config *engine.Config, opts ...engine.Option) (*Model, error) {
	m := &Model{
		sched:  &Scheduler{},
		frame:  &frame{},
		styles: DefaultStyles(),
	}

	opts = append(opts,
		engine.WithScheduler(m.sched),
		engine.WithRenderer(engine.RendererFunc(func(snap engine.Snapshot) {
			m.frame.snapshot = snap
			m.frame.count++
		})),
	)
	e, err := engine.NewEngine(config, opts...)
	if err != nil {
		return nil, err
	}
	m.engine = e
	return m, nil
}

// Run plays one terminal game until the user quits or ctx is cancelled
func Run(ctx context.Context, config *engine.Config) error {
	m, err := NewModel(config)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// Engine returns the hosted engine
func (m *Model) Engine() *engine.GameEngine { return m.engine }

// Scheduler returns the tick scheduler
func (m *Model) Scheduler() *Scheduler { return m.sched }

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	case TickMsg:
		return m, m.sched.Fire(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

func (m *Model) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c", "esc":
		m.sched.StopTicking()
		return tea.Quit
	case "r":
		m.engine.Reset()
	case " ", "enter":
		m.engine.Start()
	default:
		d, ok := keyDirections[key]
		if !ok {
			return nil
		}
		m.engine.SetDirection(d)
	}
	return m.sched.Next()
}

func (m *Model) View() string {
	snap := m.frame.snapshot
	s := m.styles

	var b strings.Builder
	for _, row := range render.Board(snap) {
		for x, cell := range row {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(m.cell(cell))
		}
		b.WriteByte('\n')
	}
	board := s.Board.Render(strings.TrimSuffix(b.String(), "\n"))

	view := lipgloss.JoinVertical(lipgloss.Left,
		s.Header.Render(fmt.Sprintf("%s  Score: %d  Length: %d", m.engine.Config().Name, snap.Score, snap.Length)),
		board,
		m.status(snap),
		s.Help.Render("arrows/wasd: turn  space: start  r: reset  q: quit"),
	)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, view)
	}
	return view
}

func (m *Model) cell(c byte) string {
	s := m.styles
	switch c {
	case render.Head:
		return s.Head.Render("@")
	case render.Body:
		return s.Body.Render("o")
	case render.Food:
		return s.Food.Render("*")
	}
	return s.Empty.Render("·")
}

func (m *Model) status(snap engine.Snapshot) string {
	s := m.styles
	switch snap.Phase {
	case engine.NotStarted:
		return s.Status.Render("Press an arrow key to start")
	case engine.Over:
		return s.Lost.Render(fmt.Sprintf("Game over: %s collision after %d ticks. Press r to play again", snap.Cause, snap.Ticks))
	case engine.Won:
		return s.Won.Render("You filled the board! Press r to play again")
	}
	return s.Status.Render(fmt.Sprintf("Heading %s  Tick %d", snap.Direction, snap.Ticks))
}
