// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/sspctl/pkg/bridge"
	"github.com/Thermoquad/sspctl/pkg/sis"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	volumeStep     = 5
	volumeBarWidth = 30
	maxLogEntries  = 100
)

// Focus states
const (
	focusInputList = iota
	focusVolumeInput
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// inputItem is one switcher input in the selector list
type inputItem struct {
	number int
	label  string
}

// Implement list.Item interface
func (i inputItem) Title() string       { return fmt.Sprintf("%d  %s", i.number, i.label) }
func (i inputItem) Description() string { return "" }
func (i inputItem) FilterValue() string { return i.label }

type logEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	run      bridge.CommandFunc
	snapshot bridge.SnapshotFunc
	connInfo string
	labels   []string

	// Switcher state as last reported
	state      bridge.ConnectionState
	device     bridge.DeviceState
	haveStatus bool
	stats      bridge.Statistics

	inputList    list.Model
	volumeInput  textinput.Model
	focusedField int

	eventLog []logEntry

	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type controlTickMsg time.Time

type linkStateMsg struct {
	state bridge.ConnectionState
}

type linkEventMsg struct {
	event sis.Event
}

type statsMsg struct {
	stats bridge.Statistics
}

type commandDoneMsg struct {
	desc   string
	result bridge.Result
	err    error
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(run bridge.CommandFunc, snapshot bridge.SnapshotFunc, connInfo string, labels []string) controlModel {
	ti := textinput.New()
	ti.Placeholder = "0-100"
	ti.CharLimit = 3
	ti.Width = 5

	// labels[0] is the "no input" entry and is not selectable
	var items []list.Item
	for i := 1; i < len(labels); i++ {
		items = append(items, inputItem{number: i, label: labels[i]})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.SetSpacing(0)
	inputList := list.New(items, delegate, 30, len(items)+2)
	inputList.Title = "Inputs"
	inputList.SetShowStatusBar(false)
	inputList.SetShowHelp(false)
	inputList.SetFilteringEnabled(false)

	return controlModel{
		run:          run,
		snapshot:     snapshot,
		connInfo:     connInfo,
		labels:       labels,
		state:        bridge.StateDisconnected,
		inputList:    inputList,
		volumeInput:  ti,
		focusedField: focusInputList,
		width:        80,
		height:       24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return controlTickCmd()
}

func controlTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return controlTickMsg(t)
	})
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.inputList.SetWidth(30)

	case controlTickMsg:
		return m, tea.Batch(m.fetchStats(), controlTickCmd())

	case statsMsg:
		m.stats = msg.stats

	case linkStateMsg:
		m.state = msg.state
		switch msg.state {
		case bridge.StateConnected:
			m.addLogEntry("Connected", false)
		case bridge.StateDisconnected:
			m.addLogEntry("Disconnected - retrying on heartbeat", true)
		}

	case linkEventMsg:
		m.applyEvent(msg.event)

	case commandDoneMsg:
		switch {
		case msg.err != nil:
			m.addLogEntry(fmt.Sprintf("%s failed: %v", msg.desc, msg.err), true)
		case !msg.result.Sent:
			m.addLogEntry(fmt.Sprintf("%s dropped: not connected", msg.desc), true)
		default:
			m.addLogEntry(fmt.Sprintf("Sent %s", sis.FormatCommand(msg.result.Command)), false)
		}
	}

	return m, nil
}

func (m controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.focusedField == focusVolumeInput {
		switch key {
		case "tab", "shift+tab", "esc":
			m.focusVolume(false)
			return m, nil
		case "enter":
			v, err := strconv.Atoi(strings.TrimSpace(m.volumeInput.Value()))
			if err != nil || v < sis.MinVolume || v > sis.MaxVolume {
				m.addLogEntry(fmt.Sprintf("Invalid volume %q", m.volumeInput.Value()), true)
				return m, nil
			}
			m.volumeInput.SetValue("")
			m.focusVolume(false)
			return m, m.setVolume(v)
		}
		var cmd tea.Cmd
		m.volumeInput, cmd = m.volumeInput.Update(msg)
		return m, cmd
	}

	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "tab", "shift+tab", "v":
		m.focusVolume(true)
		return m, textinput.Blink

	case "+", "=", "right", "l":
		return m, m.setVolume(clampVolume(m.device.Volume + volumeStep))

	case "-", "left", "h":
		return m, m.setVolume(clampVolume(m.device.Volume - volumeStep))

	case "m":
		if m.device.Muted {
			return m, m.sendCommand("Unmute", bridge.UnitVolume, bridge.CommandOn, 0)
		}
		return m, m.sendCommand("Mute", bridge.UnitVolume, bridge.CommandOff, 0)

	case "enter":
		if item, ok := m.inputList.SelectedItem().(inputItem); ok {
			return m, m.selectInput(item.number)
		}
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n := int(key[0] - '0')
		if n >= len(m.labels) {
			m.addLogEntry(fmt.Sprintf("No input %d", n), true)
			return m, nil
		}
		m.inputList.Select(n - 1)
		return m, m.selectInput(n)
	}

	var cmd tea.Cmd
	m.inputList, cmd = m.inputList.Update(msg)
	return m, cmd
}

func (m *controlModel) focusVolume(on bool) {
	if on {
		m.focusedField = focusVolumeInput
		m.volumeInput.Focus()
		return
	}
	m.focusedField = focusInputList
	m.volumeInput.Blur()
}

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	// Header
	s.WriteString(titleStyle.Render("SSPCTL CONTROL"))
	s.WriteString(" ")
	var connStatus string
	switch m.state {
	case bridge.StateConnected:
		connStatus = statsValueStyle.Render("CONNECTED")
	case bridge.StateConnecting:
		connStatus = warningStyle.Render("CONNECTING...")
	default:
		connStatus = errorStyle.Render("DISCONNECTED")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | ", m.connInfo)))
	s.WriteString(connStatus)
	s.WriteString(headerStyle.Render(" | q=quit +/-=volume m=mute 1-9=input v=set volume"))
	s.WriteString("\n\n")

	// Layout: left panel (inputs) | right panel (volume)
	leftWidth := 30
	rightWidth := m.width - leftWidth - 6
	if rightWidth < 30 {
		rightWidth = 30
	}

	listStyle := boxStyle.Width(leftWidth)
	if m.focusedField == focusInputList {
		listStyle = focusedBoxStyle.Width(leftWidth)
	}
	inputPanel := listStyle.Render(m.inputList.View())

	volumeStyle := boxStyle.Width(rightWidth)
	if m.focusedField == focusVolumeInput {
		volumeStyle = focusedBoxStyle.Width(rightWidth)
	}
	volumePanel := volumeStyle.Render(m.renderVolumePanel(statsLabelStyle, statsValueStyle, errorStyle, headerStyle))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, inputPanel, " ", volumePanel))
	s.WriteString("\n\n")

	s.WriteString(m.renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle))
	s.WriteString("\n\n")

	s.WriteString(m.renderEventLog(statsLabelStyle, warningStyle, boxStyle))

	return s.String()
}

//////////////////////////////////////////////////////////////
// View Helpers
//////////////////////////////////////////////////////////////

func (m controlModel) renderVolumePanel(statsLabelStyle, statsValueStyle, errorStyle, headerStyle lipgloss.Style) string {
	var s strings.Builder

	if !m.haveStatus {
		s.WriteString(headerStyle.Render("Waiting for switcher status..."))
		s.WriteString("\n\n")
	}

	s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Volume:"),
		statsValueStyle.Render(fmt.Sprintf("%3d", m.device.Volume))))
	s.WriteString(volumeBar(m.device.Volume, volumeBarWidth))
	s.WriteString("\n\n")

	s.WriteString(statsLabelStyle.Render("Output: "))
	if m.device.Muted {
		s.WriteString(errorStyle.Render("MUTED"))
	} else {
		s.WriteString(statsValueStyle.Render("on"))
	}
	s.WriteString("\n")

	s.WriteString(fmt.Sprintf("%s %s\n\n", statsLabelStyle.Render("Input:"),
		statsValueStyle.Render(m.inputLabel(m.device.Input))))

	s.WriteString(statsLabelStyle.Render("Set volume: "))
	if m.focusedField == focusVolumeInput {
		s.WriteString(m.volumeInput.View())
	} else {
		s.WriteString(headerStyle.Render("[v]"))
	}

	return s.String()
}

func (m controlModel) renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle lipgloss.Style) string {
	dropped := statsValueStyle.Render("0")
	if m.stats.CommandsDropped > 0 {
		dropped = errorStyle.Render(fmt.Sprintf("%d", m.stats.CommandsDropped))
	}

	content := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s %s",
		statsLabelStyle.Render("Lines:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.LinesReceived)),
		statsLabelStyle.Render("Unrecognized:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.Unrecognized)),
		statsLabelStyle.Render("Sent:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.CommandsSent)),
		statsLabelStyle.Render("Dropped:"), dropped,
		statsLabelStyle.Render("Reconnects:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.Reconnects())),
	)

	return boxStyle.Width(m.width - 4).Render(content)
}

func (m controlModel) renderEventLog(statsLabelStyle, warningStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("EVENTS"))
	s.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyleLocal := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	logHeight := 8
	if len(m.eventLog) < logHeight {
		logHeight = len(m.eventLog)
	}
	startIdx := len(m.eventLog) - logHeight

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			icon := "i"
			style := warningStyle
			if entry.isError {
				icon = "x"
				style = errorStyleLocal
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(timestamp),
				style.Render(icon),
				entry.message))
		}
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}

// volumeBar renders level (0-100) as a bar of width cells.
func volumeBar(level, width int) string {
	filled := clampVolume(level) * width / sis.MaxVolume
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

//////////////////////////////////////////////////////////////
// Data Processing
//////////////////////////////////////////////////////////////

func (m *controlModel) applyEvent(ev sis.Event) {
	switch ev.Kind {
	case sis.EventMuteChanged:
		m.device.Muted = ev.Muted
	case sis.EventInputChanged:
		m.device.Input = ev.Input
		if ev.Input >= 1 && ev.Input < len(m.labels) {
			m.inputList.Select(ev.Input - 1)
		}
	case sis.EventVolumeChanged:
		m.device.Volume = ev.Volume
	default:
		m.addLogEntry(fmt.Sprintf("Ignored %q", ev.Raw), false)
		return
	}
	m.haveStatus = true
	m.addLogEntry(sis.FormatEvent(ev), false)
}

func (m controlModel) fetchStats() tea.Cmd {
	if m.snapshot == nil {
		return nil
	}
	snapshot := m.snapshot
	return func() tea.Msg {
		snap, err := snapshot()
		if err != nil {
			return nil
		}
		return statsMsg{stats: snap.Statistics}
	}
}

func (m controlModel) sendCommand(desc string, unit bridge.Unit, command string, level int) tea.Cmd {
	run := m.run
	return func() tea.Msg {
		res, err := run(unit, command, level)
		return commandDoneMsg{desc: desc, result: res, err: err}
	}
}

func (m controlModel) setVolume(v int) tea.Cmd {
	return m.sendCommand(fmt.Sprintf("Volume %d", v), bridge.UnitVolume, bridge.CommandSetLevel, v)
}

func (m controlModel) selectInput(n int) tea.Cmd {
	return m.sendCommand(fmt.Sprintf("Input %d", n), bridge.UnitInput, bridge.CommandSetLevel, bridge.InputLevel(n))
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

func (m *controlModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, logEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})

	if len(m.eventLog) > maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-maxLogEntries:]
	}
}

func (m controlModel) inputLabel(n int) string {
	if n >= 1 && n < len(m.labels) {
		return m.labels[n]
	}
	return strconv.Itoa(n)
}

func clampVolume(v int) int {
	return max(sis.MinVolume, min(sis.MaxVolume, v))
}
