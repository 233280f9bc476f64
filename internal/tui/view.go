package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"bulkhead-sim/internal/lesson"
	"bulkhead-sim/internal/pool"
	"bulkhead-sim/internal/sim"
)

const (
	colorAmber = lipgloss.Color("214")
	colorGray  = lipgloss.Color("8")
	colorGreen = lipgloss.Color("10")
	colorYel   = lipgloss.Color("11")
	colorRed   = lipgloss.Color("9")
	colorBlue  = lipgloss.Color("12")

	defaultWidth = 80
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAmber)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorGray)
	activeTab   = lipgloss.NewStyle().Bold(true).Foreground(colorAmber).Underline(true)
	inactiveTab = lipgloss.NewStyle().Foreground(colorGray)
	errStyle    = lipgloss.NewStyle().Foreground(colorRed)
	okStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	waterStyle  = lipgloss.NewStyle().Foreground(colorBlue)
)

func lipglossHeight(s string) int { return lipgloss.Height(s) }

func statusColor(s sim.Status) lipgloss.Color {
	switch s {
	case sim.StatusCritical:
		return colorRed
	case sim.StatusWarning:
		return colorYel
	}
	return colorGreen
}

func (m model) contentWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

func (m model) View() string {
	sections := []string{
		m.renderHeader(),
		strings.Repeat("─", m.contentWidth()),
		m.vp.View(),
		strings.Repeat("─", m.contentWidth()),
		m.renderFooter(),
	}
	return strings.Join(sections, "\n")
}

func (m model) renderHeader() string {
	brand := titleStyle.Render("SYSTEM RESILIENCE") + " " + mutedStyle.Render("PATTERN: BULKHEAD")
	var tabs []string
	for _, t := range lesson.Tabs() {
		label := fmt.Sprintf("%d %s", int(t)+1, t)
		if t == m.tab {
			tabs = append(tabs, activeTab.Render(label))
		} else {
			tabs = append(tabs, inactiveTab.Render(label))
		}
	}
	sep := lipgloss.NewStyle().Foreground(colorGray).Render(" │ ")
	return brand + "\n" + strings.Join(tabs, sep)
}

func (m model) renderBody() string {
	switch m.tab {
	case lesson.TabConcept:
		return m.renderConcept()
	case lesson.TabProblem:
		return m.renderProblem()
	case lesson.TabSolution:
		return m.renderSolution()
	case lesson.TabSimulation:
		return m.renderSimulation()
	case lesson.TabRealWorld:
		return m.renderRealWorld()
	case lesson.TabQuiz:
		return m.renderQuiz()
	}
	return ""
}

func (m model) intro(title, text string) string {
	return titleStyle.Render(title) + "\n" + wordwrap.String(text, m.contentWidth()-2) + "\n"
}

func (m model) renderConcept() string {
	var cells []string
	for i := 0; i < lesson.Compartments; i++ {
		fill := "      \n      \n      "
		if m.ship.Flooded(i) {
			fill = waterStyle.Render("≈≈≈≈≈≈\n≈≈≈≈≈≈\n≈≈≈≈≈≈")
		}
		cell := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorGray).
			Render(fmt.Sprintf("  C%d  \n%s", i+1, fill))
		cells = append(cells, cell)
	}
	hull := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	status := okStyle.Render("STATUS: " + m.ship.Status())
	if m.ship.Breached() {
		status = errStyle.Render("STATUS: " + m.ship.Status())
	}
	return strings.Join([]string{m.intro(lesson.ConceptTitle, lesson.ConceptText), hull, status}, "\n")
}

func renderSlots(p *pool.Pool, fast, slow string) string {
	reqs := p.Requests()
	var b strings.Builder
	for i := 0; i < p.Capacity(); i++ {
		switch {
		case i >= len(reqs):
			b.WriteString(mutedStyle.Render("[    ]"))
		case reqs[i].Kind == pool.KindSlow:
			b.WriteString(errStyle.Render("[" + slow + "]"))
		default:
			b.WriteString(okStyle.Render("[" + fast + "]"))
		}
	}
	return b.String()
}

func (m model) renderProblem() string {
	lines := []string{
		m.intro(lesson.ProblemTitle, lesson.ProblemText),
		fmt.Sprintf("SHARED THREAD POOL (%d/%d)", m.shared.InUse(), m.shared.Capacity()),
		renderSlots(m.shared, "FAST", "SLOW"),
	}
	if m.rejected {
		lines = append(lines, errStyle.Bold(true).Render("⛔ POOL EXHAUSTED"))
	}
	return strings.Join(lines, "\n")
}

func (m model) renderSolution() string {
	return strings.Join([]string{
		m.intro(lesson.SolutionTitle, lesson.SolutionText),
		fmt.Sprintf("POOL A (Capacity: %d)", m.iso.A.Capacity()),
		renderSlots(m.iso.A, " OK ", "BUSY"),
		mutedStyle.Render("══════ BULKHEAD WALL ══════"),
		fmt.Sprintf("POOL B (Capacity: %d)", m.iso.B.Capacity()),
		renderSlots(m.iso.B, " OK ", "BUSY"),
	}, "\n")
}

func (m model) renderSimulation() string {
	out := []string{m.intro(lesson.SimulationTitle, lesson.SimulationText)}
	if m.running == nil {
		return strings.Join(append(out, mutedStyle.Render("simulation not running")), "\n")
	}
	barWidth := max(10, min(50, m.contentWidth()-40))
	for i, s := range m.snap.Services {
		cursor := "  "
		if i == m.selected {
			cursor = titleStyle.Render("> ")
		}
		name := s.Name
		if name == "" {
			name = s.ID
		}
		bar := progress.New(progress.WithSolidFill(string(statusColor(s.Status))), progress.WithoutPercentage(), progress.WithWidth(barWidth))
		label := lipgloss.NewStyle().Foreground(statusColor(s.Status)).Render(s.Status.Label())
		out = append(out,
			fmt.Sprintf("%s%d %-12s %s", cursor, i+1, name, label),
			fmt.Sprintf("    %s %5.1f%%  latency %.1f", bar.ViewAs(s.Occupancy/sim.MaxOccupancy), s.Occupancy, s.Latency),
		)
	}
	out = append(out, "", m.renderSimTable())
	chaos := mutedStyle.Render("chaos off")
	if m.snap.Chaos {
		chaos = errStyle.Render("chaos ON")
	}
	out = append(out, fmt.Sprintf("tick %d │ %s │ run %s", m.snap.Tick, chaos, m.runID))
	if m.editing {
		out = append(out, "set latency: "+m.input.View())
	}
	return strings.Join(out, "\n")
}

func (m model) renderSimTable() string {
	cols := []table.Column{
		{Title: "Service", Width: 12},
		{Title: "Latency", Width: 8},
		{Title: "Drain/tick", Width: 10},
		{Title: "Occupancy", Width: 10},
		{Title: "Status", Width: 22},
	}
	rows := make([]table.Row, 0, len(m.snap.Services))
	for _, s := range m.snap.Services {
		rows = append(rows, table.Row{
			s.ID,
			fmt.Sprintf("%.1f", s.Latency),
			fmt.Sprintf("%.2f", sim.DrainRate(s.Latency, m.cfg.DrainConstant)),
			fmt.Sprintf("%.1f%%", s.Occupancy),
			s.Status.Label(),
		})
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	return t.View()
}

func (m model) renderRealWorld() string {
	out := []string{m.intro(lesson.RealWorldTitle, lesson.RealWorldText)}
	width := m.contentWidth() - 6
	for i, c := range m.cards.Cards() {
		cursor := "  "
		if i == m.cardCursor {
			cursor = titleStyle.Render("> ")
		}
		arrow := "▸"
		title := c.Title
		if m.cards.IsOpen(c.ID) {
			arrow = "▾"
			title = titleStyle.Render(c.Title)
		}
		out = append(out, fmt.Sprintf("%s%s %s %s", cursor, arrow, title, mutedStyle.Render("["+c.Layer+"]")))
		out = append(out, indent(wordwrap.String(c.Summary, width), "    "))
		if m.cards.IsOpen(c.ID) {
			out = append(out, indent(wordwrap.String(c.Detail, width), "    │ "))
		}
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}

func (m model) renderQuiz() string {
	out := []string{m.intro(lesson.QuizTitle, lesson.QuizText)}
	width := m.contentWidth() - 8
	for i, q := range m.quiz.Questions() {
		cursor := "  "
		if i == m.quizCursor && !m.quiz.Submitted() {
			cursor = titleStyle.Render("> ")
		}
		out = append(out, fmt.Sprintf("%sQ%d %s", cursor, i+1, q.Text))
		answer, _ := m.quiz.Answer(i)
		for _, o := range q.Options {
			line := fmt.Sprintf("(%s) %s", o.ID, o.Text)
			switch {
			case m.quiz.Submitted() && o.ID == q.Correct:
				line = okStyle.Render(line + " ✓")
			case m.quiz.Submitted() && o.ID == answer:
				line = errStyle.Render(line + " ✗")
			case m.quiz.Submitted():
				line = mutedStyle.Render(line)
			case o.ID == answer:
				line = titleStyle.Render(line)
			}
			out = append(out, "     "+line)
		}
		switch m.quiz.Result(i) {
		case lesson.Right:
			out = append(out, indent(wordwrap.String(q.Explanation, width), "     "))
		case lesson.Wrong:
			out = append(out, errStyle.Render(fmt.Sprintf("     Incorrect. The answer is (%s).", q.Correct)))
		}
		out = append(out, "")
	}
	if m.quiz.Submitted() {
		out = append(out, titleStyle.Render(fmt.Sprintf("Score: %d / %d", m.quiz.Score(), len(m.quiz.Questions()))))
	} else if m.quiz.CanSubmit() {
		out = append(out, okStyle.Render("press enter to submit"))
	} else {
		out = append(out, mutedStyle.Render("answer every question to submit"))
	}
	return strings.Join(out, "\n")
}

func (m model) renderFooter() string {
	var keys string
	switch m.tab {
	case lesson.TabConcept:
		keys = "b strike iceberg (comp 2) │ r repair & pump"
	case lesson.TabProblem:
		keys = "f fast request │ s flood with slow requests │ r reset"
	case lesson.TabSolution:
		keys = "f fast request to A │ s flood B │ r reset"
	case lesson.TabSimulation:
		keys = "1-9 select │ +/- step │ [/] ±1 │ l set id,value │ c chaos"
	case lesson.TabRealWorld:
		keys = "↑/↓ choose │ enter expand"
	case lesson.TabQuiz:
		keys = "↑/↓ question │ a/b/c answer │ enter submit │ r retry"
	}
	simColor := colorRed
	if m.running != nil {
		simColor = colorGreen
	}
	indicator := lipgloss.NewStyle().Foreground(simColor).Render("●")
	line := fmt.Sprintf("%s │ ←/→ tabs │ q quit │ Sim %s", keys, indicator)
	if m.footer == "" {
		return line
	}
	msg := okStyle.Render(m.footer)
	if m.footErr {
		msg = errStyle.Render(m.footer)
	}
	return msg + "\n" + line
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
