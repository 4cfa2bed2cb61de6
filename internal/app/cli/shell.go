package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tracker-agent/internal/app/appfsm"
	"tracker-agent/internal/app/bus"
	"tracker-agent/internal/app/storage"
)

const shellHistoryLimit = 20

var (
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	styleLabel   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stylePulse   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleMessage = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
)

// shellModel is the bubbletea model backing `tracker shell`: a live state
// path, per-type storage occupancy, a scrolling trace of the last bus
// messages, and a single-line command input.
type shellModel struct {
	b       bus.Bus
	sub     *bus.Subscriber
	storage storage.Storage
	machine *appfsm.Machine

	input    textinput.Model
	messages []string
	blink    *Blink
}

type busMessage bus.Message
type busTimeout struct{}
type shellTick time.Time

func newShellModel(b bus.Bus, st storage.Storage, machine *appfsm.Machine) shellModel {
	sub := bus.NewSubscriber("shell", 64)
	b.Subscribe(sub,
		bus.ChanCloud, bus.ChanNetwork, bus.ChanStorage, bus.ChanStorageData, bus.ChanFOTA,
		bus.ChanLocation, bus.ChanButton, bus.ChanBattery, bus.ChanEnvironmental, bus.ChanLED, bus.ChanTimer,
	)

	ti := textinput.New()
	ti.Placeholder = "power sample"
	ti.Prompt = "> "
	ti.Focus()

	return shellModel{b: b, sub: sub, storage: st, machine: machine, input: ti, blink: NewBlink()}
}

func waitForBusMessage(b bus.Bus, sub *bus.Subscriber) tea.Cmd {
	return func() tea.Msg {
		msg, err := b.Wait(sub, 2*time.Second)
		if err != nil {
			return busTimeout{}
		}
		return busMessage(msg)
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return shellTick(t) })
}

func (m shellModel) Init() tea.Cmd {
	return tea.Batch(waitForBusMessage(m.b, m.sub), tick())
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.submit(), nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case busMessage:
		m.messages = appendBounded(m.messages, fmt.Sprintf("%-14s %s", msg.Channel, msg.Type))
		return m, waitForBusMessage(m.b, m.sub)

	case busTimeout:
		return m, waitForBusMessage(m.b, m.sub)

	case shellTick:
		if strings.Contains(m.machine.StatePath(), "sampling") {
			m.blink.Start()
		} else {
			m.blink.Stop()
		}
		m.blink.Update()
		return m, tick()
	}

	return m, nil
}

// submit handles the input line's command, currently only `power sample`.
func (m shellModel) submit() shellModel {
	cmd := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	switch cmd {
	case "power sample":
		if err := m.b.Publish(bus.ChanBattery, bus.MsgSensorSampleRequest, nil, time.Second); err != nil {
			m.messages = appendBounded(m.messages, "power sample: publish failed")
			return m
		}
		m.messages = appendBounded(m.messages, "> power sample")
	case "":
	default:
		m.messages = appendBounded(m.messages, fmt.Sprintf("unknown command: %s", cmd))
	}

	return m
}

func appendBounded(lines []string, line string) []string {
	lines = append(lines, line)
	if len(lines) > shellHistoryLimit {
		lines = lines[len(lines)-shellHistoryLimit:]
	}
	return lines
}

func (m shellModel) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s %s\n\n", styleHeader.Render("tracker shell"), m.blink.Render(stylePulse), m.machine.StatePath())

	fmt.Fprintf(&b, "%s\n", styleLabel.Render("storage"))
	for t, stats := range m.storage.Occupancy() {
		fmt.Fprintf(&b, "  %-16s %d/%d\n", t, stats.Len, stats.Capacity)
	}

	fmt.Fprintf(&b, "\n%s\n", styleLabel.Render(fmt.Sprintf("last %d bus messages", shellHistoryLimit)))
	for _, line := range m.messages {
		fmt.Fprintf(&b, "  %s\n", styleMessage.Render(line))
	}

	fmt.Fprintf(&b, "\n%s\n", m.input.View())
	fmt.Fprint(&b, styleLabel.Render("enter a command (power sample) · esc to quit"))

	return b.String()
}
