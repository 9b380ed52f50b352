// Package ui provides the Bubbletea terminal user interface for levelset
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"levelset/internal/normalize"
)

// GroupStatus represents the processing state of a single group
type GroupStatus int

const (
	StatusQueued GroupStatus = iota
	StatusMeasuring
	StatusNormalised
	StatusSkipped
	StatusFailed
)

// GroupProgress tracks progress for a single measurement group
type GroupProgress struct {
	Key      string
	Segments int
	Status   GroupStatus

	Progress  float64 // 0.0 to 1.0
	StartTime time.Time
	Elapsed   time.Duration

	Result normalize.Result
}

// Model is the Bubbletea model for the normalization run
type Model struct {
	Target float64

	Groups       []GroupProgress
	CurrentIndex int
	Completed    int
	SkippedCount int
	FailedCount  int

	StartTime time.Time
	Done      bool

	Width  int
	Height int
}

// GroupInfo seeds the model with the groups of the current selection
type GroupInfo struct {
	Key      string
	Segments int
}

// NewModel creates a new UI model for the given groups
func NewModel(target float64, groups []GroupInfo) Model {
	gp := make([]GroupProgress, len(groups))
	for i, g := range groups {
		gp[i] = GroupProgress{
			Key:      g.Key,
			Segments: g.Segments,
			Status:   StatusQueued,
		}
	}

	return Model{
		Target:       target,
		Groups:       gp,
		CurrentIndex: -1, // nothing measuring yet
		StartTime:    time.Now(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case GroupStartMsg:
		m.CurrentIndex = msg.Index
		if msg.Index >= 0 && msg.Index < len(m.Groups) {
			g := &m.Groups[msg.Index]
			g.Status = StatusMeasuring
			g.StartTime = time.Now()
		}

	case ProgressMsg:
		if msg.Index >= 0 && msg.Index < len(m.Groups) {
			g := &m.Groups[msg.Index]
			g.Progress = msg.Progress
			g.Elapsed = time.Since(g.StartTime)
		}

	case GroupDoneMsg:
		if msg.Index >= 0 && msg.Index < len(m.Groups) {
			g := &m.Groups[msg.Index]
			g.Result = msg.Result
			g.Progress = 1
			g.Elapsed = time.Since(g.StartTime)

			switch {
			case msg.Result.Applied:
				g.Status = StatusNormalised
				m.Completed++
			case msg.Result.Err != nil:
				g.Status = StatusFailed
				m.FailedCount++
			default:
				g.Status = StatusSkipped
				m.SkippedCount++
			}
		}

	case AllDoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the current state
func (m Model) View() string {
	return renderRunView(m)
}
