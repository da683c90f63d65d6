package cli

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/talktotext/talktotext/internal/models"
	"github.com/talktotext/talktotext/internal/poller"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
	Title   lipgloss.Color
}

var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
	Title:   lipgloss.Color("#D7AF5F"), // amber
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Title).Bold(true)
}

// stateMsg carries a poller update.
type stateMsg poller.State

// updatesClosedMsg is sent when the poller stops publishing.
type updatesClosedMsg struct{}

// progressModel is the bubbletea model for upload progress.
type progressModel struct {
	uploadID string
	updates  <-chan poller.State
	state    poller.State
	seed     models.ProgressSnapshot
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
}

// newProgressModel creates a progress model fed by updates. seed is shown
// until the first poll answers.
func newProgressModel(uploadID string, updates <-chan poller.State, seed models.ProgressSnapshot) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		uploadID: uploadID,
		updates:  updates,
		state:    poller.State{UploadID: uploadID, Status: models.Status(seed.Stage), Active: true},
		seed:     seed,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init starts listening for poller updates.
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.updates),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case stateMsg:
		st := poller.State(msg)
		if st.UploadID != m.uploadID {
			return m, waitForState(m.updates)
		}
		m.state = st
		if st.Terminal() {
			m.done = true
			return m, tea.Quit
		}
		return m, waitForState(m.updates)

	case updatesClosedMsg:
		m.done = true
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m progressModel) renderContent() string {
	if m.done || m.quitting {
		return m.finalView()
	}

	snap := m.snapshot()
	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.state.Status.Label()))
	bar := m.progress.ViewAs(float64(snap.Percent) / 100)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", status, bar)
	b.WriteString(stageLine(m.state.Status))
	b.WriteString("\n")
	if snap.Message != "" {
		b.WriteString(snap.Message + "\n")
	}
	if m.state.Error != "" {
		b.WriteString(m.theme.errorStyle().Render(fmt.Sprintf("Status check failed (%d): %s", m.state.Failures, m.state.Error)) + "\n")
	}
	b.WriteString(m.theme.hintStyle().Render("Press Ctrl+C to continue in background") + "\n")
	return b.String()
}

func (m progressModel) finalView() string {
	if m.quitting {
		msg := fmt.Sprintf("\nUpload %s continues in background.\nUse 'talktotext status %s --watch' to follow it.\n",
			m.uploadID, m.uploadID)
		return m.theme.hintStyle().Render(msg)
	}

	if err := m.state.Err(); err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Processing failed: %s\n", err))
	}
	if m.state.Status == models.StatusDone {
		return m.theme.completedStyle().Render("✓ Complete") + "\n"
	}
	return ""
}

// snapshot returns the latest reported progress, or the seed.
func (m progressModel) snapshot() models.ProgressSnapshot {
	if m.state.Progress != nil {
		return *m.state.Progress
	}
	if m.state.Status != "" && string(m.state.Status) != m.seed.Stage {
		return models.ProgressSnapshot{Stage: string(m.state.Status)}
	}
	return m.seed
}

// stageLine renders the pipeline with the current stage highlighted.
func stageLine(current models.Status) string {
	idx := current.StageIndex()
	parts := make([]string, 0, len(models.Stages))
	for i, st := range models.Stages {
		label := st.Label()
		switch {
		case i < idx:
			label = defaultTheme.completedStyle().Render("✓ " + label)
		case i == idx:
			label = defaultTheme.statusStyle().Render("● " + label)
		default:
			label = defaultTheme.hintStyle().Render("○ " + label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

// waitForState reads the next poller update.
func waitForState(ch <-chan poller.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return updatesClosedMsg{}
		}
		return stateMsg(st)
	}
}

// RunUploadProgress shows live progress for the upload p is polling.
// It returns the last state and whether the user detached with Ctrl+C.
func RunUploadProgress(p *poller.Poller, uploadID string, seed models.ProgressSnapshot) (poller.State, bool, error) {
	updates, cancel := p.Subscribe()
	defer cancel()

	// the loop may have finished before we subscribed
	if st := p.State(); st.UploadID == uploadID && st.Terminal() {
		return st, false, nil
	}

	prog := tea.NewProgram(newProgressModel(uploadID, updates, seed))
	finalModel, err := prog.Run()
	if err != nil {
		return p.State(), false, fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(progressModel); ok && m.quitting {
		return m.state, true, nil
	}
	return p.State(), false, nil
}
