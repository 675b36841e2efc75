package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-aot/moduleinfo"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	labelStyle = lipgloss.NewStyle().
			Bold(true)
)

const pageSize = 20

type modelState int

const (
	stateBrowse modelState = iota
	stateDetail
)

type interactiveModel struct {
	info     *moduleinfo.Info
	filename string
	rows     []symbolRow
	visible  []int // indices into rows matching the filter
	filter   textinput.Model
	selected int
	offset   int
	state    modelState
}

func newInteractiveModel(filename string, info *moduleinfo.Info, rows []symbolRow) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "filter: "
	ti.Placeholder = "symbol or type"
	ti.Width = 40
	ti.Focus()

	m := &interactiveModel{
		info:     info,
		filename: filename,
		rows:     rows,
		filter:   ti,
		state:    stateBrowse,
	}
	m.applyFilter()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) applyFilter() {
	m.visible = m.visible[:0]
	for i, r := range m.rows {
		if r.matches(m.filter.Value()) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
	m.scroll()
}

func (m *interactiveModel) scroll() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+pageSize {
		m.offset = m.selected - pageSize + 1
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "up":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
				m.scroll()
			}
			return m, nil

		case "down":
			if m.state == stateBrowse && m.selected < len(m.visible)-1 {
				m.selected++
				m.scroll()
			}
			return m, nil

		case "enter":
			if m.state == stateBrowse && len(m.visible) > 0 {
				m.state = stateDetail
			} else {
				m.state = stateBrowse
			}
			return m, nil

		case "esc":
			if m.state == stateDetail {
				m.state = stateBrowse
				return m, nil
			}
			return m, tea.Quit
		}
	}

	if m.state != stateBrowse {
		return m, nil
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("WASM Declarations"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.info.Describe()))
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		if len(m.visible) == 0 {
			b.WriteString("No matching symbols.\n")
		}
		end := min(m.offset+pageSize, len(m.visible))
		for i := m.offset; i < end; i++ {
			line := m.formatRow(m.rows[m.visible[i]])
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("%d/%d • ↑/↓ select • enter details • esc quit",
			len(m.visible), len(m.rows))))

	case stateDetail:
		r := m.rows[m.visible[m.selected]]
		fields := [][2]string{
			{"Symbol", r.symbol},
			{"Kind", r.kind},
			{"Index", fmt.Sprint(r.index)},
			{"Linkage", r.linkage},
			{"Backend ID", r.id},
			{"Detail", r.detail},
		}
		for _, f := range fields {
			b.WriteString(labelStyle.Render(fmt.Sprintf("%-11s", f[0])))
			b.WriteString(" ")
			b.WriteString(f[1])
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc back • ctrl+c quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatRow(r symbolRow) string {
	return fmt.Sprintf("%-9s %4d  %s  %s", r.kind, r.index, symbolStyle.Render(r.symbol), typeStyle.Render(r.linkage))
}

func runInteractive(filename string, info *moduleinfo.Info, rows []symbolRow) error {
	p := tea.NewProgram(newInteractiveModel(filename, info, rows), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
