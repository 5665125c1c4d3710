package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/termspec/internal/pipeline"
	"github.com/olivier-w/termspec/internal/render"
)

// Steps are the adjustment sizes applied per keypress.
type Steps struct {
	Frequency float64 // Hz
	Gain      float64 // dB
	Reference float64 // dB
}

// Options configures the display.
type Options struct {
	Title   string
	Steps   Steps
	Profile render.Profile
	Keys    *KeyMap // nil uses DefaultKeyMap
}

// Model is the Bubbletea model for the termspec display. It draws whatever
// grid the scheduler last submitted and turns input into pipeline events.
type Model struct {
	keys    KeyMap
	steps   Steps
	help    help.Model
	spinner spinner.Model
	profile render.Profile
	title   string
	events  chan<- pipeline.InputEvent

	frame    string // encoded grid, empty until the first one arrives
	width    int
	height   int
	showHelp bool
	quitting bool
	dropped  int // events lost to a full channel
}

// NewModel creates a Model that reports input on events.
func NewModel(opts Options, events chan<- pipeline.InputEvent) Model {
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	h := help.New()
	h.Styles.ShortKey = helpStyle
	h.Styles.ShortDesc = helpStyle
	h.Styles.FullKey = helpStyle
	h.Styles.FullDesc = helpStyle

	return Model{
		keys:    keys,
		steps:   opts.Steps,
		help:    h,
		spinner: s,
		profile: opts.Profile,
		title:   opts.Title,
		events:  events,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.SetWindowTitle(windowTitle(m.title)))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.handleMsg(msg)
	return next, cmd
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.emit(pipeline.Resize(msg.Width, msg.Height))
		return m, nil

	case gridMsg:
		m.frame = render.Encode(render.CellGrid(msg), m.profile)
		return m, nil

	case spinner.TickMsg:
		if m.frame != "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.emit(pipeline.Quit())
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.FreqDown):
		m.emit(pipeline.AdjustFrequency(-m.steps.Frequency))
	case key.Matches(msg, m.keys.FreqUp):
		m.emit(pipeline.AdjustFrequency(m.steps.Frequency))
	case key.Matches(msg, m.keys.GainUp):
		m.emit(pipeline.AdjustGain(m.steps.Gain))
	case key.Matches(msg, m.keys.GainDown):
		m.emit(pipeline.AdjustGain(-m.steps.Gain))
	case key.Matches(msg, m.keys.RefUp):
		m.emit(pipeline.AdjustReference(m.steps.Reference))
	case key.Matches(msg, m.keys.RefDown):
		m.emit(pipeline.AdjustReference(-m.steps.Reference))
	}
	return m, nil
}

// emit never blocks the UI loop; a lagging pipeline loses events instead.
func (m *Model) emit(ev pipeline.InputEvent) {
	select {
	case m.events <- ev:
	default:
		m.dropped++
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.frame == "" {
		return m.splash()
	}
	if !m.showHelp {
		return m.frame
	}
	return overlayBottom(m.frame, m.help.View(m.keys))
}

func (m Model) splash() string {
	lines := "\n"
	lines += "  " + headerStyle.Render("termspec") + "\n"
	lines += "\n"
	if m.title != "" {
		lines += "  " + titleStyle.Render(m.title) + "\n"
		lines += "\n"
	}
	lines += "  " + m.spinner.View() + statusStyle.Render(" waiting for samples") + "\n"
	lines += "\n"
	lines += "  " + m.help.View(m.keys) + "\n"
	return lines
}

// overlayBottom replaces the last lines of frame with those of panel.
func overlayBottom(frame, panel string) string {
	lines := strings.Split(frame, "\n")
	over := strings.Split(panel, "\n")
	if len(over) > len(lines) {
		over = over[len(over)-len(lines):]
	}
	copy(lines[len(lines)-len(over):], over)
	return strings.Join(lines, "\n")
}

func windowTitle(title string) string {
	if title == "" {
		return "termspec"
	}
	return title + " · termspec"
}
