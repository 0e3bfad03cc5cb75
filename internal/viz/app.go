package viz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/provider"
	"github.com/san-kum/pathreplay/internal/replay"
)

const (
	historyCapacity = 600
	obstacleStep    = 5
)

type Options struct {
	Engine        *replay.Engine
	Loader        *provider.Loader
	Algorithm     provider.Algorithm
	ObstacleCount int
	PacingFor     func(provider.Algorithm) replay.Pacing
	Theme         string
	// Fetch requests a trace when the program starts.
	Fetch bool
}

type snapshotMsg struct {
	ch   <-chan replay.Snapshot
	snap replay.Snapshot
}

type playEndedMsg struct {
	ch <-chan replay.Snapshot
}

type loadedMsg struct {
	err error
}

// Model is the Bubble Tea model of a replay session.
type Model struct {
	engine    *replay.Engine
	loader    *provider.Loader
	pacingFor func(provider.Algorithm) replay.Pacing

	algorithm     provider.Algorithm
	obstacleCount int

	snap     replay.Snapshot
	visited  []float64
	frontier []float64
	playCh   <-chan replay.Snapshot
	fetching bool
	fetch    bool

	status string
	err    error

	theme   Theme
	spinner spinner.Model
	help    help.Model
	width   int
	height  int
}

func NewModel(opts Options) Model {
	if opts.PacingFor == nil {
		opts.PacingFor = func(provider.Algorithm) replay.Pacing { return replay.Pacing{} }
	}
	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	m := Model{
		engine:        opts.Engine,
		loader:        opts.Loader,
		pacingFor:     opts.PacingFor,
		algorithm:     opts.Algorithm,
		obstacleCount: opts.ObstacleCount,
		fetch:         opts.Fetch,
		theme:         GetTheme(opts.Theme),
		spinner:       spin,
		help:          help.New(),
		visited:       make([]float64, 0, historyCapacity),
		frontier:      make([]float64, 0, historyCapacity),
	}
	m.snap = m.engine.Snapshot()
	if m.fetch {
		m.fetching = true
		m.status = "requesting " + m.algorithm.String()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.fetch {
		return m.fetchCmd()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case snapshotMsg:
		if msg.ch != m.playCh {
			return m, nil
		}
		m.observe(msg.snap)
		return m, waitForSnapshot(msg.ch)

	case playEndedMsg:
		if msg.ch != m.playCh {
			return m, nil
		}
		m.playCh = nil
		m.snap = m.engine.Snapshot()
		if err := m.engine.Err(); err != nil {
			m.err = err
		} else if m.snap.Done {
			m.status = "search complete"
		} else {
			m.status = "stopped"
		}
		return m, nil

	case loadedMsg:
		m.fetching = false
		m.playCh = nil
		m.clearHistory()
		m.snap = m.engine.Snapshot()
		m.err = msg.err
		switch {
		case msg.err == nil:
			m.status = fmt.Sprintf("loaded %d steps", m.engine.Len())
		case errors.Is(msg.err, provider.ErrEmptyMap):
			m.status = "empty map received"
		default:
			m.status = "trace service unavailable"
		}
		return m, nil

	case spinner.TickMsg:
		if !m.fetching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, keys.Quit):
		m.engine.Stop()
		return m, tea.Quit

	case key.Matches(msg, keys.Next):
		snap, err := m.engine.AdvanceOne()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.observe(snap)
		if snap.Done {
			m.status = "search complete"
		}

	case key.Matches(msg, keys.Play):
		if m.engine.Playing() {
			m.engine.Stop()
			return m, nil
		}
		ch, err := m.engine.PlayToEnd(context.Background(), m.pacingFor(m.algorithm))
		if err != nil {
			m.err = err
			return m, nil
		}
		m.playCh = ch
		m.status = "playing"
		return m, waitForSnapshot(ch)

	case key.Matches(msg, keys.Reset):
		m.engine.Reset()
		m.playCh = nil
		m.clearHistory()
		m.snap = m.engine.Snapshot()
		m.status = "reset"

	case key.Matches(msg, keys.Regenerate):
		if m.fetching {
			return m, nil
		}
		return m, m.regenerate()

	case key.Matches(msg, keys.Empty):
		if err := m.loader.Empty(); err != nil {
			m.err = err
			return m, nil
		}
		m.playCh = nil
		m.clearHistory()
		m.snap = m.engine.Snapshot()
		m.status = "empty map"

	case key.Matches(msg, keys.Algorithm):
		algs := provider.Algorithms()
		m.algorithm = algs[(int(m.algorithm)+1)%len(algs)]
		m.status = "algorithm " + m.algorithm.String()

	case key.Matches(msg, keys.More):
		m.obstacleCount += obstacleStep

	case key.Matches(msg, keys.Fewer):
		m.obstacleCount = max(0, m.obstacleCount-obstacleStep)

	case key.Matches(msg, keys.Theme):
		m.theme = NextTheme(m.theme)

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) regenerate() tea.Cmd {
	m.fetching = true
	m.status = "requesting " + m.algorithm.String()
	return m.fetchCmd()
}

func (m Model) fetchCmd() tea.Cmd {
	loader, alg, n := m.loader, m.algorithm, m.obstacleCount
	fetch := func() tea.Msg {
		return loadedMsg{err: loader.Regenerate(context.Background(), alg, n)}
	}
	return tea.Batch(m.spinner.Tick, fetch)
}

func waitForSnapshot(ch <-chan replay.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return playEndedMsg{ch: ch}
		}
		return snapshotMsg{ch: ch, snap: s}
	}
}

func (m *Model) observe(s replay.Snapshot) {
	m.snap = s
	m.visited = appendCapped(m.visited, float64(s.VisitedCount))
	if s.Grid != nil {
		m.frontier = appendCapped(m.frontier, float64(s.Grid.CountByStatus(grid.Frontier)))
	}
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (m *Model) clearHistory() {
	m.visited = m.visited[:0]
	m.frontier = m.frontier[:0]
}

func (m Model) View() string {
	gridView := gridStyle.Render(RenderGrid(m.snap.Grid, m.theme))

	var s strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Secondary)
	s.WriteString(title.Render("PATH REPLAY") + "\n")
	s.WriteString(Subtle.Render(m.algorithm.String()+" search") + "\n\n")

	state := m.engine.State()
	switch {
	case m.fetching:
		s.WriteString(m.spinner.View() + " " + StatusPaused.Render("FETCHING") + "\n\n")
	case m.playCh != nil:
		s.WriteString(StatusRunning.Render("PLAYING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Render(strings.ToUpper(state.String())) + "\n\n")
	}

	steps := m.engine.Len()
	s.WriteString(MetricLabel.Render("Step") + MetricValue.Render(fmt.Sprintf("%d/%d", m.snap.StepIndex, steps)) + "\n")
	s.WriteString(MetricLabel.Render("Visited") + MetricValue.Render(fmt.Sprintf("%d", m.snap.VisitedCount)) + "\n")
	s.WriteString(MetricLabel.Render("Obstacles") + MetricValue.Render(fmt.Sprintf("%d", m.obstacleCount)) + "\n")
	if m.snap.Grid != nil {
		s.WriteString(MetricLabel.Render("Grid") + MetricValue.Render(fmt.Sprintf("%dx%d", m.snap.Grid.Size(), m.snap.Grid.Size())) + "\n")
	}
	if steps > 0 {
		s.WriteString("\n" + ProgressBar(float64(m.snap.StepIndex)/float64(steps), 30) + "\n")
	}

	if len(m.visited) > 1 {
		chart := asciigraph.Plot(m.visited, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Visited"))
		s.WriteString(graphStyle.Render(chart) + "\n")
		s.WriteString(MetricLabel.Render("Frontier") + SparklineChart(m.frontier, 24) + "\n")
	}

	s.WriteString("\n" + Separator(36) + "\n")
	if m.err != nil {
		s.WriteString(ErrorStyle.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString(Subtle.Render(m.status) + "\n")
	}

	panel := panelStyle.Render(s.String())
	main := lipgloss.JoinHorizontal(lipgloss.Top, gridView, panel)
	return main + "\n" + Legend(m.theme) + "\n\n" + m.help.View(keys) + "\n"
}

// Run starts the TUI on the alternate screen.
func Run(opts Options) error {
	_, err := tea.NewProgram(NewModel(opts), tea.WithAltScreen()).Run()
	return err
}
