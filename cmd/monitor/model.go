package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/bdwalton/gones6502/internal/analyzer"
	"github.com/bdwalton/gones6502/internal/bus"
	"github.com/bdwalton/gones6502/internal/cpu"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
var pcStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))

type model struct {
	cpu    *cpu.CPU
	bus    *bus.Bus
	prevPC uint16
	err    error
	quit   bool

	analysis *analyzer.Analysis
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "q", "ctrl+c":
		m.quit = true
		return m, tea.Quit

	case "s", " ":
		m.prevPC = m.cpu.PC
		if _, err := m.cpu.Step(m.bus); err != nil {
			m.err = err
		}

	case "a":
		m.analysis = analyzer.Analyze(analyzerMemory{m.bus}, analyzer.IdentityMemoryMap{})
	}

	return m, nil
}

// analyzerMemory adapts bus.Bus's read-only path to analyzer.Memory.
type analyzerMemory struct{ b *bus.Bus }

func (a analyzerMemory) Read(addr uint16) uint8 { return a.b.ReadReadOnly(addr) }

func (m model) registers() string {
	return fmt.Sprintf(
		"PC: %04X (was %04X)\nSP: %02X\nA:  %02X\nX:  %02X\nY:  %02X\n%s\n",
		m.cpu.PC, m.prevPC, m.cpu.SP, m.cpu.A, m.cpu.X, m.cpu.Y, m.cpu.P,
	)
}

func (m model) memoryPage(start uint16) string {
	s := fmt.Sprintf("%04X | ", start)
	for i := uint16(0); i < 16; i++ {
		addr := start + i
		val := m.bus.ReadReadOnly(addr)
		if addr == m.cpu.PC {
			s += fmt.Sprintf("[%02X]", val)
		} else {
			s += fmt.Sprintf(" %02X ", val)
		}
	}
	return s
}

func (m model) memoryView() string {
	base := m.cpu.PC &^ 0x0F
	var rows []string
	for p := -2; p <= 2; p++ {
		rows = append(rows, m.memoryPage(uint16(int(base)+p*16)))
	}
	return strings.Join(rows, "\n")
}

func (m model) analysisView() string {
	if m.analysis == nil {
		return "(a) run analyzer"
	}
	fns := m.analysis.Functions()
	return fmt.Sprintf("%d functions discovered\n%s", len(fns), spew.Sdump(fns))
}

func (m model) View() string {
	if m.quit {
		return ""
	}
	errLine := ""
	if m.err != nil {
		errLine = m.err.Error()
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render("gones monitor"),
		lipgloss.JoinHorizontal(lipgloss.Top, m.memoryView(), "   ", m.registers()),
		"",
		pcStyle.Render(errLine),
		"",
		m.analysisView(),
		"",
		"(s)tep  (a)nalyze  (q)uit",
	)
}
