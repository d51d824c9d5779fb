package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/youbot/pkg/export"
	"github.com/gwillem/youbot/pkg/robot"
	"github.com/gwillem/youbot/pkg/sim"
	"github.com/gwillem/youbot/pkg/trajectory"
)

type WatchCommand struct {
	Scenario    string  `short:"s" long:"scenario" description:"Built-in scenario (best, overshoot, newTask) instead of the config file"`
	Hz          int     `long:"hz" default:"100" description:"Simulation steps per second"`
	YRange      float64 `long:"y-range" default:"0.5" description:"Chart range for the error components"`
	JointLimits bool    `long:"joint-limits" description:"Enable joint-limit avoidance"`
	Limits      string  `long:"limits" description:"JSON file with joint limits (implies --joint-limits)"`
}

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// One color per error twist component.
var componentColors = [6]string{
	"196", // red
	"208", // orange
	"226", // yellow
	"46",  // green
	"51",  // cyan
	"201", // magenta
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	lockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type watchModel struct {
	runner   *sim.Runner
	chart    *streamlinechart.Model
	width    int      // terminal width
	height   int      // terminal height
	logs     []string // last N log messages
	state    sim.State
	quitting bool
}

func (m *watchModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the runner
type stateMsg sim.State
type logMsg string

func waitForState(r *sim.Runner) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-r.States())
	}
}

func waitForLog(r *sim.Runner) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-r.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *watchModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - footerHeight - borderSize
	if height < 10 {
		height = 10
	}
	return width, height
}

func (m *watchModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func initialWatchModel(r *sim.Runner, yRange float64) watchModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-yRange, yRange),
	)

	for i, label := range export.ErrorLabels {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(componentColors[i]))
		chart.SetDataSetStyles(label, runes.ThinLineStyle, style)
	}

	return watchModel{
		runner: r,
		chart:  &chart,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.runner),
		waitForLog(m.runner),
	)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case stateMsg:
		state := sim.State(msg)
		if state.Error == nil && state.Step > m.state.Step {
			for i, label := range export.ErrorLabels {
				m.chart.PushDataSet(label, state.Xerr[i])
			}
			m.chart.DrawAll()
		}
		m.state = state
		return m, waitForState(m.runner)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.runner)
	}

	return m, nil
}

func (m watchModel) View() string {
	if m.quitting {
		return "Simulation stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("youBot Watch"))
	sb.WriteString(fmt.Sprintf(" - %s, %d Hz", m.runner.Settings().Scenario, m.runner.Hz()))
	sb.WriteString(statusStyle.Render(fmt.Sprintf("  t=%.2fs  step %d/%d  gripper %s",
		m.state.Time, m.state.Step, m.state.Total, gripperLabel(m.state.Gripper))))
	sb.WriteString(statusStyle.Render("  " + jointPositions(m.displayLimits(), m.state.Config)))
	if len(m.state.Locked) > 0 {
		sb.WriteString(lockedStyle.Render(fmt.Sprintf("  locked %v", m.state.Locked)))
	}
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width - 4).
		Foreground(lipgloss.Color("9")) // bright red

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

// displayLimits returns the limits joint positions are shown against: the
// enforced ones, or the mechanical range when avoidance is off.
func (m watchModel) displayLimits() robot.Limits {
	if limits := m.runner.Settings().ActiveLimits(); limits != nil {
		return limits
	}
	return robot.DefaultLimits()
}

// jointPositions renders each arm joint as a percentage of its range.
func jointPositions(limits robot.Limits, cfg robot.Config) string {
	pos := limits.Positions(cfg)
	parts := make([]string, len(pos))
	for i, p := range pos {
		parts[i] = fmt.Sprintf("%+.0f", p)
	}
	return "joints% [" + strings.Join(parts, " ") + "]"
}

func gripperLabel(g int) string {
	if g == trajectory.Closed {
		return "closed"
	}
	return "open"
}

func renderLegend() string {
	var items []string
	for i, label := range export.ErrorLabels {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(componentColors[i])).Bold(true)
		item := colorStyle.Render("━━") + " " + label
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}

func (c *WatchCommand) Execute(args []string) error {
	s, err := loadSettings(c.Scenario)
	if err != nil {
		return err
	}
	if err := applyLimits(s, c.JointLimits, c.Limits); err != nil {
		return err
	}

	runner, err := sim.NewRunner(sim.Options{Settings: s, Hz: c.Hz})
	if err != nil {
		return err
	}

	// Start the simulation in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if _, err := runner.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("Simulation error: %v", err)
		}
	}()

	// Run TUI
	p := tea.NewProgram(initialWatchModel(runner, c.YRange), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}

	return nil
}
