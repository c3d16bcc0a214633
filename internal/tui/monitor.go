package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/async"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
)

type StageState int

const (
	StatePending StageState = iota
	StateRunning
	StateDone
	StateFailed
)

// Stages are the rows the monitor shows, in install order
var Stages = []async.Kind{
	async.KindCatalog,
	async.KindManifest,
	async.KindLibraries,
	async.KindAssets,
	async.KindJar,
}

type StageStatus struct {
	State     StageState
	Progress  models.TaskProgress
	Error     error
	StartTime time.Time
	Elapsed   time.Duration
}

type Model struct {
	version  string
	statuses map[async.Kind]*StageStatus
	logs     []string
	spinner  spinner.Model
	progress progress.Model
	width    int
	height   int
	quit     bool
	finished bool
	err      error
}

// StageUpdate reports the state of one install task
type StageUpdate struct {
	Kind     async.Kind
	State    StageState
	Progress models.TaskProgress
	Error    error
}

type LogMessage struct {
	Message string
}

// InstallFinished is sent once the whole install has run
type InstallFinished struct {
	Err error
}

func NewModel(version string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	pr := progress.New(progress.WithDefaultGradient())

	statuses := make(map[async.Kind]*StageStatus, len(Stages))
	for _, kind := range Stages {
		statuses[kind] = &StageStatus{}
	}

	return Model{
		version:  version,
		statuses: statuses,
		logs:     []string{},
		spinner:  sp,
		progress: pr,
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.handleKeyMsg(msg) {
			m.quit = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m = m.handleWindowSizeMsg(msg)

	case StageUpdate:
		m = m.handleStageUpdate(msg)

	case LogMessage:
		m = m.handleLogMessage(msg)

	case InstallFinished:
		m.finished = true
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		if progressModel, ok := progressModel.(progress.Model); ok {
			m.progress = progressModel
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "ctrl+c":
		return true
	}
	return false
}

func (m Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.progress.Width = max(msg.Width-50, 10)
	return m
}

func (m Model) handleStageUpdate(msg StageUpdate) Model {
	status, exists := m.statuses[msg.Kind]
	if !exists {
		return m
	}

	if msg.State == StateRunning && status.StartTime.IsZero() {
		status.StartTime = time.Now()
	}
	if (msg.State == StateDone || msg.State == StateFailed) && !status.StartTime.IsZero() {
		status.Elapsed = time.Since(status.StartTime)
	}

	status.State = msg.State
	status.Progress = msg.Progress
	status.Error = msg.Error
	return m
}

func (m Model) handleLogMessage(msg LogMessage) Model {
	m.logs = append(m.logs, fmt.Sprintf("[%s] %s",
		time.Now().Format("15:04:05"), msg.Message))
	if len(m.logs) > 10 {
		m.logs = m.logs[len(m.logs)-10:]
	}
	return m
}

func (m Model) View() string {
	if m.quit {
		return "Shutting down...\n"
	}

	var s strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginBottom(1)

	version := m.version
	if version == "" {
		version = "latest release"
	}
	s.WriteString(headerStyle.Render("⛏ Installing " + version))
	s.WriteString("\n\n")

	done, failed := m.counts()
	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))
	s.WriteString(summaryStyle.Render(fmt.Sprintf("Tasks: %d | ✅ Done: %d | ❌ Failed: %d", len(Stages), done, failed)))
	s.WriteString("\n\n")

	sectionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1).
		Width(m.width - 2)

	var rows strings.Builder
	rows.WriteString("📦 Install Tasks\n")
	rows.WriteString(strings.Repeat("─", 60) + "\n")
	for _, kind := range Stages {
		rows.WriteString(m.renderStage(kind) + "\n")
	}

	s.WriteString(sectionStyle.Render(rows.String()))
	s.WriteString("\n\n")

	logSectionStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(m.width - 2).
		Height(8)

	var logSection strings.Builder
	logSection.WriteString("📝 Recent Logs\n")
	for _, log := range m.logs {
		logSection.WriteString(log + "\n")
	}

	s.WriteString(logSectionStyle.Render(logSection.String()))
	s.WriteString("\n\n")

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	s.WriteString(footerStyle.Render("Press 'q' to quit | Logs: logs/launcher_*.log"))

	return s.String()
}

func (m Model) renderStage(kind async.Kind) string {
	status := m.statuses[kind]

	indicator := " "
	if status.State == StateRunning {
		indicator = m.spinner.View()
	}
	line := fmt.Sprintf("%s %-12s %s", stateIcon(status.State), kind, indicator)

	p := status.Progress
	if p.Total > 0 {
		line += " " + m.progress.ViewAs(float64(p.Finished)/float64(p.Total))
		line += fmt.Sprintf(" %d/%d", p.Finished, p.Total)
	}
	if p.Bytes > 0 {
		line += " " + formatBytes(p.Bytes)
	}

	switch {
	case status.Error != nil:
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		line += " " + errorStyle.Render(fmt.Sprintf("Error: %v", status.Error))
	case status.State == StateDone:
		line += fmt.Sprintf(" (%s)", status.Elapsed.Round(time.Millisecond))
	}

	return lipgloss.NewStyle().Foreground(lipgloss.Color(stateColor(status.State))).Render(line)
}

func (m Model) counts() (done, failed int) {
	for _, status := range m.statuses {
		switch status.State {
		case StateDone:
			done++
		case StateFailed:
			failed++
		}
	}
	return done, failed
}

// Err returns the install error once InstallFinished has been received
func (m Model) Err() error {
	return m.err
}

func stateIcon(state StageState) string {
	switch state {
	case StatePending:
		return "⏸"
	case StateRunning:
		return "🔄"
	case StateDone:
		return "✅"
	case StateFailed:
		return "❌"
	default:
		return "❓"
	}
}

func stateColor(state StageState) string {
	switch state {
	case StatePending:
		return "244"
	case StateDone:
		return "82"
	case StateFailed:
		return "196"
	default:
		return "39"
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
