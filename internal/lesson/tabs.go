// Package lesson holds the content and state of the interactive bulkhead
// lesson, independent of how it is rendered.
package lesson

// Tab identifies one section of the lesson.
type Tab int

const (
	TabConcept Tab = iota
	TabProblem
	TabSolution
	TabSimulation
	TabRealWorld
	TabQuiz
)

var tabs = []struct {
	id    string
	label string
}{
	TabConcept:    {"concept", "Concept"},
	TabProblem:    {"problem", "The Problem"},
	TabSolution:   {"solution", "The Solution"},
	TabSimulation: {"simulation", "Simulation"},
	TabRealWorld:  {"real_world", "Real World"},
	TabQuiz:       {"quiz", "Quiz"},
}

// Tabs lists every tab in navigation order.
func Tabs() []Tab {
	out := make([]Tab, len(tabs))
	for i := range tabs {
		out[i] = Tab(i)
	}
	return out
}

func (t Tab) valid() bool { return t >= 0 && int(t) < len(tabs) }

// ID is the stable identifier used on the command line.
func (t Tab) ID() string {
	if !t.valid() {
		return ""
	}
	return tabs[t].id
}

func (t Tab) String() string {
	if !t.valid() {
		return "Unknown"
	}
	return tabs[t].label
}

// Next returns the following tab, wrapping after the last one.
func (t Tab) Next() Tab { return Tab((int(t) + 1) % len(tabs)) }

// Prev returns the preceding tab, wrapping before the first one.
func (t Tab) Prev() Tab { return Tab((int(t) + len(tabs) - 1) % len(tabs)) }

// ParseTab resolves a tab ID such as "quiz".
func ParseTab(id string) (Tab, bool) {
	for i, tb := range tabs {
		if tb.id == id {
			return Tab(i), true
		}
	}
	return TabConcept, false
}
