package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"bulkhead-sim/internal/config"
	"bulkhead-sim/internal/lesson"
	"bulkhead-sim/internal/pool"
	"bulkhead-sim/internal/sim"
)

// releaseMsg frees a fast request once it has been served.
type releaseMsg struct {
	pool *pool.Pool
	id   uint64
}

// clearRejectMsg hides the rejection banner unless a newer rejection happened.
type clearRejectMsg struct{ seq int }

// simFactory builds a fresh idle simulator for each visit to the simulation tab.
type simFactory func() *sim.Simulator

type model struct {
	cfg     *config.SimulationConfig
	tab     lesson.Tab
	width   int
	height  int
	vp      viewport.Model
	newSim  simFactory
	running *sim.Simulator

	// concept
	ship lesson.Ship

	// problem
	shared    *pool.Pool
	rejected  bool
	rejectSeq int

	// solution
	iso *pool.Isolated

	// simulation
	runID    string
	snap     sim.Snapshot
	selected int
	input    textinput.Model
	editing  bool
	footer   string
	footErr  bool

	// real world
	cards      *lesson.Accordion
	cardCursor int

	// quiz
	quiz       *lesson.Quiz
	quizCursor int
}

func newModel(cfg *config.SimulationConfig, factory simFactory, start lesson.Tab) model {
	ti := textinput.New()
	ti.Placeholder = "service,latency"
	ti.CharLimit = 64
	m := model{
		cfg:    cfg,
		tab:    start,
		vp:     viewport.New(0, 0),
		newSim: factory,
		shared: pool.NewShared(),
		iso:    pool.NewIsolated(),
		input:  ti,
		cards:  lesson.NewAccordion(),
		quiz:   lesson.NewQuiz(),
	}
	return m
}

func (m model) Init() tea.Cmd {
	if m.tab == lesson.TabSimulation {
		return func() tea.Msg { return enterTabMsg{} }
	}
	return nil
}

// enterTabMsg lets Init activate the simulation when the app starts on that tab.
type enterTabMsg struct{}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = max(1, msg.Height-lipglossHeight(m.renderHeader())-lipglossHeight(m.renderFooter())-2)
	case enterTabMsg:
		m.enterTab()
	case tea.KeyMsg:
		if m.editing {
			return m.updateInput(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			m.leaveTab()
			return m, tea.Quit
		case "tab", "right":
			m.switchTab(m.tab.Next())
		case "shift+tab", "left":
			m.switchTab(m.tab.Prev())
		case "pgdown", "ctrl+n":
			m.vp.LineDown(10)
		case "pgup", "ctrl+p":
			m.vp.LineUp(10)
		default:
			cmd = m.updateTab(msg.String())
		}
	case samplesMsg:
		m.applySamples(msg)
	case releaseMsg:
		msg.pool.Release(msg.id)
	case clearRejectMsg:
		if msg.seq == m.rejectSeq {
			m.rejected = false
		}
	}
	m.refreshViewport()
	return m, cmd
}

func (m *model) switchTab(t lesson.Tab) {
	if t == m.tab {
		return
	}
	m.leaveTab()
	m.tab = t
	m.vp.GotoTop()
	m.enterTab()
}

// enterTab starts a fresh simulation when the simulation tab becomes visible.
func (m *model) enterTab() {
	if m.tab != lesson.TabSimulation || m.newSim == nil || m.running != nil {
		return
	}
	s := m.newSim()
	if err := s.Start(context.Background()); err != nil {
		m.setFooter(err.Error(), true)
		return
	}
	m.running = s
	m.runID = s.RunID()
	m.snap = s.Snapshot()
	m.selected = 0
	m.setFooter("", false)
}

// leaveTab stops the simulation so nothing ticks while it is hidden.
func (m *model) leaveTab() {
	if m.running == nil {
		return
	}
	m.running.Stop()
	m.running = nil
	m.editing = false
	m.input.Blur()
}

func (m *model) applySamples(msg samplesMsg) {
	if m.running == nil || len(msg.rows) == 0 {
		return
	}
	for _, r := range msg.rows {
		if r.RunID != m.runID {
			return
		}
	}
	if msg.rows[0].Tick < m.snap.Tick {
		return
	}
	for _, r := range msg.rows {
		for i := range m.snap.Services {
			sl := &m.snap.Services[i]
			if sl.ID != r.ServiceID {
				continue
			}
			sl.Occupancy = r.Occupancy
			sl.Latency = r.Latency
			sl.Status = sim.Status(r.Status)
		}
	}
	m.snap.Tick = msg.rows[0].Tick
}

func (m *model) updateTab(key string) tea.Cmd {
	switch m.tab {
	case lesson.TabConcept:
		switch key {
		case "b", "enter":
			m.ship.Breach(lesson.BreachTarget)
		case "r":
			m.ship.Repair()
		}
	case lesson.TabProblem:
		switch key {
		case "f":
			return m.sendFast(m.shared, true)
		case "s":
			m.shared.Flood()
			m.rejected = false
		case "r":
			m.shared.Reset()
			m.rejected = false
		}
	case lesson.TabSolution:
		switch key {
		case "f":
			return m.sendFast(m.iso.A, false)
		case "s":
			m.iso.B.Flood()
		case "r":
			m.iso.Reset()
		}
	case lesson.TabSimulation:
		return m.updateSimulation(key)
	case lesson.TabRealWorld:
		cards := m.cards.Cards()
		switch key {
		case "up", "k":
			m.cardCursor = (m.cardCursor + len(cards) - 1) % len(cards)
		case "down", "j":
			m.cardCursor = (m.cardCursor + 1) % len(cards)
		case "enter", " ":
			m.cards.Toggle(cards[m.cardCursor].ID)
		}
	case lesson.TabQuiz:
		n := len(m.quiz.Questions())
		switch key {
		case "up", "k":
			m.quizCursor = (m.quizCursor + n - 1) % n
		case "down", "j":
			m.quizCursor = (m.quizCursor + 1) % n
		case "a", "b", "c":
			m.quiz.Select(m.quizCursor, key)
			if !m.quiz.Submitted() && m.quizCursor < n-1 {
				m.quizCursor++
			}
		case "enter":
			m.quiz.Submit()
		case "r":
			m.quiz.Reset()
			m.quizCursor = 0
		}
	}
	return nil
}

// sendFast admits a fast request that leaves after pool.FastHold. A rejection
// raises the banner only when showReject is set.
func (m *model) sendFast(p *pool.Pool, showReject bool) tea.Cmd {
	req, err := p.Acquire(pool.KindFast)
	if err != nil {
		if !showReject {
			return nil
		}
		m.rejected = true
		m.rejectSeq++
		seq := m.rejectSeq
		return tea.Tick(pool.RejectNotice, func(time.Time) tea.Msg { return clearRejectMsg{seq: seq} })
	}
	return tea.Tick(pool.FastHold, func(time.Time) tea.Msg { return releaseMsg{pool: p, id: req.ID} })
}

func (m *model) updateSimulation(key string) tea.Cmd {
	if m.running == nil {
		return nil
	}
	svcs := m.snap.Services
	switch key {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if i := int(key[0] - '1'); i < len(svcs) {
			m.selected = i
		}
	case "up", "k":
		if len(svcs) > 0 {
			m.selected = (m.selected + len(svcs) - 1) % len(svcs)
		}
	case "down", "j":
		if len(svcs) > 0 {
			m.selected = (m.selected + 1) % len(svcs)
		}
	case "+", "=":
		m.nudgeLatency(m.running.Bounds().Step)
	case "-", "_":
		m.nudgeLatency(-m.running.Bounds().Step)
	case "]":
		m.nudgeLatency(1)
	case "[":
		m.nudgeLatency(-1)
	case "c":
		on := m.running.ToggleChaos()
		m.snap = m.running.Snapshot()
		m.setFooter(fmt.Sprintf("chaos mode %s", onOff(on)), false)
	case "l":
		m.editing = true
		m.input.SetValue("")
		return m.input.Focus()
	}
	return nil
}

func (m *model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		id, v, err := parseLatencyInput(m.input.Value())
		if err == nil {
			err = m.running.SetLatency(id, v)
		}
		m.reportLatency(id, v, err)
		m.editing = false
		m.input.Blur()
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return *m, cmd
	}
	m.refreshViewport()
	return *m, nil
}

func (m *model) nudgeLatency(delta float64) {
	if m.selected >= len(m.snap.Services) {
		return
	}
	cur := m.running.Snapshot()
	slot := cur.Services[m.selected]
	// round away float drift from repeated 0.1 steps
	v := math.Round((slot.Latency+delta)*10) / 10
	m.reportLatency(slot.ID, v, m.running.SetLatency(slot.ID, v))
}

func (m *model) reportLatency(id string, v float64, err error) {
	if m.running != nil {
		m.snap = m.running.Snapshot()
	}
	switch {
	case err == nil:
		m.setFooter(fmt.Sprintf("%s latency set to %.1f", id, v), false)
	case errors.Is(err, sim.ErrInvalidLatency), errors.Is(err, sim.ErrUnknownService):
		m.setFooter("rejected: "+err.Error(), true)
	default:
		m.setFooter(err.Error(), true)
	}
}

func (m *model) setFooter(s string, isErr bool) {
	m.footer = s
	m.footErr = isErr
}

func (m *model) refreshViewport() {
	m.vp.SetContent(m.renderBody())
}

// parseLatencyInput reads "service,latency".
func parseLatencyInput(val string) (string, float64, error) {
	parts := strings.Split(val, ",")
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("expected service,latency, got %q", val)
	}
	id := strings.TrimSpace(parts[0])
	v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return id, 0, fmt.Errorf("latency %q: %w", parts[1], err)
	}
	return id, v, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
