// Package tui provides a terminal user interface for als2midi
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/james-see/als2midi/pkg/converter"
	"github.com/james-see/als2midi/pkg/liveset"
)

// Live-inspired color scheme
var (
	liveOrange = lipgloss.Color("#FF9F1C")
	liveYellow = lipgloss.Color("#FFE66D")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(liveOrange).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(liveOrange).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(liveYellow).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(liveOrange).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(liveOrange).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateConverting
	StateResult
)

// Action is what a menu item does with the picked file
type Action int

const (
	ActionConvert Action = iota
	ActionInspect
	ActionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
	Options     func(*converter.Options)
}

var menuItems = []MenuItem{
	{Title: "ALS → MIDI", Description: "Convert a Live set to a MIDI file, one channel per track", Action: ActionConvert},
	{Title: "ALS → MIDI (notes only)", Description: "Single channel, no mixer volume/pan automation", Action: ActionConvert,
		Options: func(o *converter.Options) {
			o.SeparateChannels = false
			o.ExportVolume = false
			o.ExportPan = false
		}},
	{Title: "Inspect ALS", Description: "Show tracks, notes and automation curves of a Live set", Action: ActionInspect},
	{Title: "Exit", Description: "Exit the application", Action: ActionExit},
}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	outputFile   string
	item         MenuItem
	result       *converter.ConversionResult
	summary      *converter.SetSummary
	err          error
	width        int
	height       int
}

// conversionDoneMsg signals conversion completion
type conversionDoneMsg struct {
	outputFile string
	result     *converter.ConversionResult
	summary    *converter.SetSummary
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New() Model {
	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = []string{".als"}
	fp.CurrentDirectory, _ = os.Getwd()

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(liveOrange)

	return Model{
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		// Check for escape/quit keys first
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		// Pass all other messages to the file picker
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		// Check if file was selected
		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateConverting
			return m, tea.Batch(m.spinner.Tick, m.performConversion())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case conversionDoneMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.result = msg.result
		m.summary = msg.summary
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		m.item = menuItems[m.menuIndex]
		if m.item.Action == ActionExit {
			return m, tea.Quit
		}
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.outputFile = ""
		m.result = nil
		m.summary = nil
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performConversion() tea.Cmd {
	item := m.item
	input := m.selectedFile
	return func() tea.Msg {
		opts := converter.DefaultOptions()
		if item.Options != nil {
			item.Options(&opts)
		}
		conv, err := converter.New(opts)
		if err != nil {
			return conversionDoneMsg{err: err}
		}

		if item.Action == ActionInspect {
			set, err := liveset.Open(input)
			if err != nil {
				return conversionDoneMsg{err: err}
			}
			sum := conv.Describe(set)
			return conversionDoneMsg{summary: &sum}
		}

		// Generate output filename
		outputFile := strings.TrimSuffix(input, filepath.Ext(input)) + ".mid"
		res, err := conv.ConvertFile(context.Background(), input, outputFile)
		if err != nil {
			return conversionDoneMsg{err: err}
		}
		return conversionDoneMsg{outputFile: outputFile, result: res}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	// Header
	header := asciiLogo()
	s.WriteString(header)
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateConverting:
		s.WriteString(m.viewConverting())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	// Footer help
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT ACTION "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(liveYellow).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT LIVE SET "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewConverting() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" WORKING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Reading %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  %s", m.item.Title)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	switch {
	case m.err != nil:
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Failed: %s", m.err.Error())))
	case m.summary != nil:
		s.WriteString(titleStyle.Render(" " + strings.ToUpper(m.summary.Name) + " "))
		s.WriteString("\n\n")
		s.WriteString(renderSummary(m.summary))
	default:
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Conversion complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
		s.WriteString(fmt.Sprintf("Output: %s\n", filepath.Base(m.outputFile)))
		if m.result != nil {
			s.WriteString(statusStyle.Render(fmt.Sprintf("%d tracks • %s notes • %s automation events • %s",
				m.result.Tracks, humanize.Comma(int64(m.result.Notes)), humanize.Comma(int64(m.result.Events)),
				humanize.Bytes(uint64(len(m.result.Data))))))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func renderSummary(sum *converter.SetSummary) string {
	var s strings.Builder
	s.WriteString(fmt.Sprintf("Tempo: %g BPM\n", sum.Tempo))
	for _, tr := range sum.Tracks {
		s.WriteString(selectedStyle.Render(tr.Name))
		s.WriteString(fmt.Sprintf("\n    %d clips, %s stored notes, %s on the timeline\n",
			tr.Clips, humanize.Comma(int64(tr.StoredNotes)), humanize.Comma(int64(tr.Notes))))
		for _, c := range tr.Curves {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s: %d keyframes → %s samples", c.Target, c.Keyframes, humanize.Comma(int64(c.Samples)))))
			s.WriteString("\n")
		}
		for _, e := range tr.Errors {
			s.WriteString(errorStyle.Render("    ✗ " + e))
			s.WriteString("\n")
		}
	}
	return s.String()
}

func asciiLogo() string {
	logo := `
      _    _     ____ ____  __  __ ___ ____ ___ 
     / \  | |   / ___|___ \|  \/  |_ _|  _ \_ _|
    / _ \ | |   \___ \ __) | |\/| || || | | | | 
   / ___ \| |___ ___) / __/| |  | || || |_| | | 
  /_/   \_\_____|____/_____|_|  |_|___|____/___|
`
	return lipgloss.NewStyle().Foreground(liveOrange).Render(logo)
}

// Run starts the TUI application
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
