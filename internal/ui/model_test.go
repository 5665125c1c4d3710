package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/termspec/internal/pipeline"
	"github.com/olivier-w/termspec/internal/render"
)

func newTestModel(buffer int) (Model, chan pipeline.InputEvent) {
	events := make(chan pipeline.InputEvent, buffer)
	m := NewModel(Options{
		Title:   "test tone",
		Steps:   Steps{Frequency: 100e3, Gain: 1, Reference: 5},
		Profile: render.ProfileNone,
	}, events)
	return m, events
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWindowSizeEmitsResize(t *testing.T) {
	m, events := newTestModel(4)
	next, _ := m.handleMsg(tea.WindowSizeMsg{Width: 80, Height: 24})
	if next.width != 80 || next.height != 24 {
		t.Fatalf("expected 80x24, got %dx%d", next.width, next.height)
	}
	ev := <-events
	if ev.Kind != pipeline.EventResize || ev.Width != 80 || ev.Height != 24 {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestKeysEmitAdjustments(t *testing.T) {
	tests := []struct {
		msg   tea.KeyMsg
		kind  pipeline.EventKind
		delta float64
	}{
		{tea.KeyMsg{Type: tea.KeyRight}, pipeline.EventAdjustFrequency, 100e3},
		{tea.KeyMsg{Type: tea.KeyLeft}, pipeline.EventAdjustFrequency, -100e3},
		{tea.KeyMsg{Type: tea.KeyUp}, pipeline.EventAdjustGain, 1},
		{runes("j"), pipeline.EventAdjustGain, -1},
		{runes("+"), pipeline.EventAdjustReference, 5},
		{runes("-"), pipeline.EventAdjustReference, -5},
	}
	for _, tt := range tests {
		m, events := newTestModel(1)
		m.handleMsg(tt.msg)
		select {
		case ev := <-events:
			if ev.Kind != tt.kind || ev.Delta != tt.delta {
				t.Fatalf("%s: got %v %v, want %v %v", tt.msg, ev.Kind, ev.Delta, tt.kind, tt.delta)
			}
		default:
			t.Fatalf("%s: no event emitted", tt.msg)
		}
	}
}

func TestQuitEmitsQuitAndClearsView(t *testing.T) {
	m, events := newTestModel(1)
	next, cmd := m.handleMsg(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if ev := <-events; ev.Kind != pipeline.EventQuit {
		t.Fatalf("expected quit event, got %v", ev.Kind)
	}
	if next.View() != "" {
		t.Fatalf("expected empty view after quit, got %q", next.View())
	}
}

func TestFullEventChannelDoesNotBlock(t *testing.T) {
	m, _ := newTestModel(1)
	m, _ = m.handleMsg(tea.KeyMsg{Type: tea.KeyUp})
	m, _ = m.handleMsg(tea.KeyMsg{Type: tea.KeyUp})
	if m.dropped != 1 {
		t.Fatalf("expected one dropped event, got %d", m.dropped)
	}
}

func TestViewShowsSplashUntilFirstGrid(t *testing.T) {
	m, _ := newTestModel(1)
	if v := m.View(); !strings.Contains(v, "waiting for samples") || !strings.Contains(v, "test tone") {
		t.Fatalf("expected splash, got %q", v)
	}

	g := render.NewGrid(3, 2)
	g.WriteText(0, 0, "abc", render.Color{}, render.Color{})
	g.WriteText(0, 1, "def", render.Color{}, render.Color{})
	m, _ = m.handleMsg(gridMsg(g))
	if got, want := m.View(), render.Encode(g, render.ProfileNone); got != want {
		t.Fatalf("expected encoded grid %q, got %q", want, got)
	}
}

func TestHelpOverlaysBottomOfFrame(t *testing.T) {
	m, _ := newTestModel(1)
	g := render.NewGrid(4, 10)
	for y := range 10 {
		g.WriteText(0, y, "xxxx", render.Color{}, render.Color{})
	}
	m, _ = m.handleMsg(gridMsg(g))
	m, _ = m.handleMsg(runes("?"))
	if !m.showHelp {
		t.Fatal("expected help to be shown")
	}
	lines := strings.Split(m.View(), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected overlay to keep 10 lines, got %d", len(lines))
	}
	if lines[0] != "xxxx" {
		t.Fatalf("expected top of frame untouched, got %q", lines[0])
	}
	if !strings.Contains(m.View(), "quit") {
		t.Fatal("expected help text in the view")
	}

	m, _ = m.handleMsg(runes("?"))
	if m.showHelp || m.View() != render.Encode(g, render.ProfileNone) {
		t.Fatal("expected second ? to hide help")
	}
}

func TestOverlayBottomClipsTallPanel(t *testing.T) {
	got := overlayBottom("a\nb", "1\n2\n3")
	if got != "2\n3" {
		t.Fatalf("expected panel clipped to frame height, got %q", got)
	}
}

func TestSubmitAfterExitFails(t *testing.T) {
	d := &Display{done: make(chan struct{})}
	close(d.done)
	if err := d.Submit(render.NewGrid(1, 1)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
