package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertwitch/sharebench/internal/transfer"
	"github.com/dustin/go-humanize"
)

//nolint:gochecknoglobals
var (
	// titleStyle defines the style for a panel's title.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	// borderStyle defines the style for a panel's borders.
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	// infoStyle defines the style for a panel's text.
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	// helpStyle defines the style for the help panel's text.
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

// uiPhases fixes the rendering order of the phase panels.
//
//nolint:gochecknoglobals
var uiPhases = []transfer.Phase{
	transfer.PhaseLargeUpload,
	transfer.PhaseLargeDownload,
	transfer.PhaseSmallUpload,
	transfer.PhaseSmallDownload,
}

// PhaseProgressMsg is a [tea.Msg] containing [transfer.Progress] information
// for all benchmark phases.
type PhaseProgressMsg struct {
	t      time.Time
	phases map[transfer.Phase]transfer.Progress
}

// TeaModel is the principal [tea.Model] for the command-line user interface.
type TeaModel struct {
	width  int
	height int

	cancel context.CancelFunc

	uiHandler *Handler

	fullWidthWithBorders  int
	splitWidthWithBorders int

	phaseData     map[transfer.Phase]transfer.Progress
	phaseProgress map[transfer.Phase]progress.Model

	logsViewport viewport.Model
	logs         []string

	ready bool
}

// NewTeaModel returns an initial new [TeaModel].
//
//nolint:mnd
func NewTeaModel(uiHandler *Handler, cancel context.CancelFunc) TeaModel {
	phaseProgress := make(map[transfer.Phase]progress.Model, len(uiPhases))
	phaseData := make(map[transfer.Phase]transfer.Progress, len(uiPhases))

	for _, phase := range uiPhases {
		phaseProgress[phase] = progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(80),
		)
		phaseData[phase] = transfer.Progress{}
	}

	logsViewport := viewport.New(80, 20)

	return TeaModel{
		uiHandler:     uiHandler,
		phaseProgress: phaseProgress,
		phaseData:     phaseData,
		logsViewport:  logsViewport,
		logs:          make([]string, 0, 100),
		cancel:        cancel,
		ready:         false,
	}
}

// Init initializes the model within a [tea.Program].
func (m TeaModel) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		updatePhaseProgress(m.uiHandler.tracker),
	)
}

// updatePhaseProgress produces a [tea.Cmd] for later scheduling in a
// [tea.Program]. When executed, a [PhaseProgressMsg] with the snapshots of
// all benchmark phases is returned.
func updatePhaseProgress(tracker trackerProvider) tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { //nolint:mnd
		phases := make(map[transfer.Phase]transfer.Progress, len(uiPhases))
		for _, phase := range uiPhases {
			phases[phase] = tracker.Progress(phase)
		}

		return PhaseProgressMsg{
			t:      t,
			phases: phases,
		}
	})
}

// Update is the principal message handling method of the model.
// It sets the internal state of the model, for later rendering.
//
//nolint:mnd,funlen,ireturn
func (m TeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()

			return m, tea.Quit
		case "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.fullWidthWithBorders = m.width - 2
		m.splitWidthWithBorders = (m.width / 2) - 2

		// Progress bars should match the content width.
		for phase, bar := range m.phaseProgress {
			bar.Width = m.splitWidthWithBorders
			m.phaseProgress[phase] = bar
		}

		// We want the phase panels to take about half of the height.
		upperHeight := m.height / 2
		lowerHeight := m.height - upperHeight

		// Viewport height: lower section minus borders and title.
		viewportHeight := lowerHeight - 3

		// Set viewport width to full width minus borders.
		m.logsViewport.Width = m.fullWidthWithBorders
		m.logsViewport.Height = viewportHeight

		// Update viewport content with current logs.
		if len(m.logs) > 0 {
			logs := lipgloss.NewStyle().
				Width(m.logsViewport.Width).
				Render(strings.TrimSuffix(strings.Join(m.logs, ""), "\n"))

			m.logsViewport.SetContent(logs)
			m.logsViewport.GotoBottom()
		}

		if !m.ready {
			m.ready = true
			m.uiHandler.Initialized.Store(true)
		}

	case PhaseProgressMsg:
		m.phaseData = msg.phases

		for _, phase := range uiPhases {
			bar := m.phaseProgress[phase]
			cmds = append(cmds,
				bar.SetPercent(m.phaseData[phase].ProgressPct/100),
			)
			m.phaseProgress[phase] = bar
		}

		// Queue the next update.
		cmds = append(cmds, updatePhaseProgress(m.uiHandler.tracker))

	case LogMsg:
		logMsg := string(msg)

		if len(m.logs) >= 100 {
			m.logs = m.logs[1:]
		}

		m.logs = append(m.logs, logMsg)

		logs := lipgloss.NewStyle().
			Width(m.logsViewport.Width).
			Render(strings.TrimSuffix(strings.Join(m.logs, ""), "\n"))

		m.logsViewport.SetContent(logs)
		m.logsViewport.GotoBottom()

	case progress.FrameMsg:
		for phase, bar := range m.phaseProgress {
			updated, cmd := bar.Update(msg)
			if progressModel, ok := updated.(progress.Model); ok {
				m.phaseProgress[phase] = progressModel
			}
			cmds = append(cmds, cmd)
		}
	}

	// Handle viewport updates.
	m.logsViewport, cmd = m.logsViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View is the principal rendering function of the model.
func (m TeaModel) View() string {
	if !m.ready {
		return "Loading the GUI..."
	}

	var s strings.Builder

	panels := make([]string, 0, len(uiPhases))
	for _, phase := range uiPhases {
		view := m.formatPhaseView(phase.String(), m.phaseProgress[phase].View(), m.phaseData[phase])
		panels = append(panels, borderStyle.Width(m.splitWidthWithBorders).Render(view))
	}

	upperRow := lipgloss.JoinHorizontal(lipgloss.Top, panels[0], panels[1])
	lowerRow := lipgloss.JoinHorizontal(lipgloss.Top, panels[2], panels[3])

	logsSection := borderStyle.
		Width(m.fullWidthWithBorders).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				titleStyle.Width(m.fullWidthWithBorders).Render("Process Information"),
				lipgloss.NewStyle().Width(m.fullWidthWithBorders).Render(m.logsViewport.View()),
			),
		)

	helpSection := helpStyle.
		Width(m.fullWidthWithBorders).
		Render("q: quit gui • ctrl+c: quit program")

	s.WriteString(lipgloss.JoinVertical(
		lipgloss.Left,
		upperRow,
		lowerRow,
		logsSection,
		helpSection,
	))

	return s.String()
}

// formatPhaseView is a helper function for rendering the phase panels.
func (m TeaModel) formatPhaseView(title string, progressBar string, data transfer.Progress) string {
	var details string

	switch {
	case !data.HasStarted:
		details = "Waiting...\n"

	case !data.HasFinished:
		var timeLeftMin float64
		if !data.ETA.IsZero() {
			timeLeftMin = time.Until(data.ETA).Minutes()
		}

		details = fmt.Sprintf(
			"Progress: %.2f%% (%s/%s)\n"+
				"Files: %d/%d\n"+
				"Time: Started=%v, ETA=%v (%.1f%s left)\n"+
				"Speed: %s/s\n",
			data.ProgressPct,
			humanize.Bytes(data.BytesDone),
			humanize.Bytes(data.BytesTotal),
			data.ItemsDone,
			data.ItemsTotal,
			data.StartTime.Format("15:04:05"),
			data.ETA.Format("15:04:05"),
			timeLeftMin, "min",
			humanize.Bytes(uint64(data.TransferRate)),
		)

	default:
		details = fmt.Sprintf(
			"Progress: %.2f%% (%s/%s)\n"+
				"Files: %d/%d\n"+
				"Time: Started=%v, Finished=%v\n\n",
			data.ProgressPct,
			humanize.Bytes(data.BytesDone),
			humanize.Bytes(data.BytesTotal),
			data.ItemsDone,
			data.ItemsTotal,
			data.StartTime.Format("15:04:05"),
			data.FinishTime.Format("15:04:05"),
		)
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Width(m.splitWidthWithBorders).Render(title),
		"", // Empty line for spacing.
		progressBar,
		"", // Empty line for spacing.
		infoStyle.Width(m.splitWidthWithBorders).Render(details),
	)

	return content
}
