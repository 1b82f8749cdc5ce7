// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Voltaic Labs

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/voltaic-dev/wattson/pkg/ht7017"
)

var dashboardShowAll bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Full-screen live dashboard of meter readings and link health",
	Long: `Opens a full-screen terminal dashboard showing the latest voltage,
current, active power and mains frequency, the link health counters and a
scrolling event log of anomalies and checksum failures.

Keys: q quits, r resets the statistics counters, up/down scroll the event
log. By default only anomalous readings are logged; --show-all logs every
validated reading.`,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashboardShowAll, "show-all", false, "Log every reading, not just anomalies")
	rootCmd.AddCommand(dashboardCmd)
}

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// Dashboard model. The engine and its statistics live on the engine-loop
// goroutine; the model only ever holds copies delivered as messages, plus a
// channel to ask that goroutine for a counter reset.
type dashboardModel struct {
	desc       string
	showAll    bool
	status     meterStatus
	resetStats chan<- struct{}
	log        []eventLogEntry
	maxLog     int
	logView    viewport.Model
	width      int
	height     int
	quitting   bool
	linkErr    error
}

// Messages
type readingMsg struct {
	reading   ht7017.Reading
	anomalies []ht7017.ValidationError
}
type statusMsg struct {
	status meterStatus
}
type linkErrMsg struct {
	err error
}

func initialDashboardModel(desc string, resetStats chan<- struct{}, showAll bool) dashboardModel {
	vp := viewport.New(76, 10)
	return dashboardModel{
		desc:       desc,
		showAll:    showAll,
		resetStats: resetStats,
		log:        make([]eventLogEntry, 0),
		maxLog:     200,
		logView:    vp,
		width:      80,
		height:     24,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.EnterAltScreen
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			// Resets happen on the engine-loop goroutine; just request one.
			select {
			case m.resetStats <- struct{}{}:
				m.addLogEntry("statistics reset requested", false)
			default:
			}
		default:
			var cmd tea.Cmd
			m.logView, cmd = m.logView.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = m.width - 6
		logHeight := m.height - 16
		if logHeight < 5 {
			logHeight = 5
		}
		m.logView.Height = logHeight

	case statusMsg:
		m.status = msg.status

	case readingMsg:
		if len(msg.anomalies) > 0 {
			for _, a := range msg.anomalies {
				m.addLogEntry(fmt.Sprintf("%s: %s", msg.reading.Descriptor.Name, a.Message), true)
			}
		} else if m.showAll {
			m.addLogEntry(fmt.Sprintf("%s = %s", msg.reading.Descriptor.Name,
				ht7017.FormatValue(msg.reading.Descriptor.Quantity, msg.reading.Value)), false)
		}

	case linkErrMsg:
		m.linkErr = msg.err
		m.addLogEntry(fmt.Sprintf("LINK ERROR: %v", msg.err), true)
	}

	return m, nil
}

func (m *dashboardModel) addLogEntry(message string, isError bool) {
	m.log = append(m.log, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.log) > m.maxLog {
		m.log = m.log[len(m.log)-m.maxLog:]
	}
	m.logView.SetContent(m.renderLog())
	m.logView.GotoBottom()
}

var (
	dashTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	dashHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	dashLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	dashValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	dashErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	dashWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	dashBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func (m dashboardModel) renderLog() string {
	if len(m.log) == 0 {
		return dashHeaderStyle.Render("  (no events yet)")
	}
	var b strings.Builder
	for _, entry := range m.log {
		timestamp := entry.timestamp.Format("15:04:05.000")
		if entry.isError {
			b.WriteString(fmt.Sprintf("%s %s\n",
				dashHeaderStyle.Render(timestamp),
				dashErrorStyle.Render("✗ "+entry.message)))
		} else {
			b.WriteString(fmt.Sprintf("%s %s\n",
				dashHeaderStyle.Render(timestamp),
				dashWarnStyle.Render("ℹ "+entry.message)))
		}
	}
	return b.String()
}

func (m dashboardModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder
	s.WriteString(dashTitleStyle.Render("WATTSON - HT7017 DASHBOARD"))
	s.WriteString("\n")
	s.WriteString(dashHeaderStyle.Render(fmt.Sprintf("%s | Press 'q' to quit, 'r' to reset counters", m.desc)))
	s.WriteString("\n\n")

	// Measurements
	stale := ""
	if m.status.snapshot.At.IsZero() {
		stale = dashHeaderStyle.Render(" (no data)")
	}
	measContent := strings.Builder{}
	measContent.WriteString(fmt.Sprintf("%s %s%s   %s %s\n",
		dashLabelStyle.Render("Voltage:"),
		dashValueStyle.Render(ht7017.FormatValue(ht7017.Voltage, m.status.snapshot.Voltage)),
		stale,
		dashLabelStyle.Render("Current:"),
		dashValueStyle.Render(ht7017.FormatValue(ht7017.Current, m.status.snapshot.Current)),
	))
	measContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		dashLabelStyle.Render("Power:  "),
		dashValueStyle.Render(ht7017.FormatValue(ht7017.Power, m.status.snapshot.Power)),
		dashLabelStyle.Render("Freq:   "),
		dashValueStyle.Render(ht7017.FormatValue(ht7017.Frequency, m.status.snapshot.Frequency)),
	))
	s.WriteString(dashBoxStyle.Render(measContent.String()))
	s.WriteString("\n\n")

	// Link health
	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		dashLabelStyle.Render("Requests:"), dashValueStyle.Render(fmt.Sprintf("%d", m.status.diag.TxFrames)),
		dashLabelStyle.Render("Valid:"), dashValueStyle.Render(fmt.Sprintf("%d", m.status.diag.GoodFrames)),
		dashLabelStyle.Render("Checksum errors:"), renderErrCount(uint64(m.status.diag.BadFrames)),
	))
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		dashLabelStyle.Render("Timeouts:"), renderErrCount(uint64(m.status.diag.Timeouts)),
		dashLabelStyle.Render("Skips:"), renderErrCount(uint64(m.status.diag.ForcedSkips)),
		dashLabelStyle.Render("Polling:"), dashValueStyle.Render(fmt.Sprintf("%s (0x%02X)", m.status.current.Name, m.status.current.Address)),
	))
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		dashLabelStyle.Render("Frame rate:"), dashValueStyle.Render(fmt.Sprintf("%.1f frames/s", m.status.frameRate)),
		dashLabelStyle.Render("Error rate:"), func() string {
			if m.status.errorRate > 0 {
				return dashErrorStyle.Render(fmt.Sprintf("%.1f err/s", m.status.errorRate))
			}
			return dashValueStyle.Render(fmt.Sprintf("%.1f err/s", m.status.errorRate))
		}(),
	))
	s.WriteString(dashBoxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(dashLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")
	s.WriteString(dashBoxStyle.Width(m.width - 4).Render(m.logView.View()))

	if m.linkErr != nil {
		s.WriteString("\n")
		s.WriteString(dashErrorStyle.Render(fmt.Sprintf("Link down: %v — press 'q' to exit", m.linkErr)))
	}

	return s.String()
}

func renderErrCount(n uint64) string {
	if n > 0 {
		return dashErrorStyle.Render(fmt.Sprintf("%d", n))
	}
	return dashValueStyle.Render(fmt.Sprintf("%d", n))
}

func runDashboard(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	resetStats := make(chan struct{}, 1)
	p := tea.NewProgram(initialDashboardModel(s.desc, resetStats, dashboardShowAll))

	// All engine and statistics access stays on this goroutine; the model
	// only receives copies and asks for resets over resetStats.
	stop := make(chan struct{})
	go func() {
		loopErr := s.runEngineLoop(stop,
			func(r ht7017.Reading) {
				anomalies := ht7017.ValidateReading(r)
				s.engine.Stats().RecordAnomalies(anomalies)
				p.Send(readingMsg{reading: r, anomalies: anomalies})
			},
			func() {
				select {
				case <-resetStats:
					s.engine.Stats().Reset()
				default:
				}
				p.Send(statusMsg{status: s.captureStatus()})
			})
		if loopErr != nil {
			p.Send(linkErrMsg{err: loopErr})
		}
	}()

	_, err = p.Run()
	close(stop)
	return err
}
