package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/beadsim/internal/pbd"
)

var testWire = pbd.Wire{Radius: 0.8}

func TestRenderGroup(t *testing.T) {
	beads := []pbd.Bead{
		pbd.NewBead(0.12, pbd.Vec2{Y: -0.8}),
		pbd.NewBead(0.06, pbd.Vec2{Y: 0.8}),
	}
	out := renderGroup(testWire, beads)
	lines := strings.Split(out, "\n")

	if !strings.Contains(lines[1], "o") {
		t.Errorf("small bead should be drawn near the top row:\n%s", out)
	}
	if !strings.Contains(lines[canvasHeight-2], "O") {
		t.Errorf("large bead should be drawn near the bottom row:\n%s", out)
	}
	if !strings.Contains(lines[canvasHeight/2], "+") {
		t.Errorf("center marker missing:\n%s", out)
	}
	if strings.Count(lines[canvasHeight/2], ".") < 2 {
		t.Errorf("wire should cross the center row on both sides:\n%s", out)
	}
}

func TestProgress_Frames(t *testing.T) {
	m := NewProgress(testWire, 600, nil)

	next, cmd := m.Update(FrameMsg{Frame: 300, Total: 600})
	if cmd != nil {
		t.Error("frame updates should not return a command")
	}
	m = next.(Progress)
	if m.Frame() != 300 {
		t.Errorf("expected frame 300, got %d", m.Frame())
	}
	if !strings.Contains(m.View(), "frame 300/600") {
		t.Error("view should show the frame counter")
	}
}

func TestProgress_Done(t *testing.T) {
	m := NewProgress(testWire, 10, nil)
	boom := errors.New("boom")

	next, cmd := m.Update(DoneMsg{Err: boom})
	m = next.(Progress)
	if cmd == nil {
		t.Fatal("done should quit the program")
	}
	if !m.Done() || !errors.Is(m.Err(), boom) {
		t.Error("done state not recorded")
	}
	if !strings.Contains(m.View(), "boom") {
		t.Error("view should show the error")
	}
}

func TestProgress_QuitCancels(t *testing.T) {
	canceled := false
	m := NewProgress(testWire, 10, func() { canceled = true })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(Progress)
	if cmd == nil || !canceled || !m.Canceled() {
		t.Error("q should cancel the run and quit")
	}
}

func TestFeed_Throttles(t *testing.T) {
	var got []FrameMsg
	f := &Feed{
		send:  func(msg tea.Msg) { got = append(got, msg.(FrameMsg)) },
		every: time.Hour,
	}
	st := pbd.NewState(2, 3)

	for frame := 1; frame <= 5; frame++ {
		f.OnFrame(frame, 5, st)
	}

	if len(got) != 2 {
		t.Fatalf("expected first and last frame, got %d messages", len(got))
	}
	if got[0].Frame != 1 || got[1].Frame != 5 {
		t.Errorf("unexpected frames %d, %d", got[0].Frame, got[1].Frame)
	}
	if len(got[1].Beads) != 3 {
		t.Errorf("expected one group of 3 beads, got %d", len(got[1].Beads))
	}

	st.Beads[0].Pos.X = 9
	if got[1].Beads[0].Pos.X == 9 {
		t.Error("feed must copy the group")
	}
}

func TestRenderReport(t *testing.T) {
	out := RenderReport(Report{
		RunID:   "run_1",
		Backend: "cpu",
		Workers: 8,
		Groups:  4096,
		Frames:  600,
		Total:   1234567 * time.Nanosecond,
		Mean:    890 * time.Nanosecond,
		Metrics: map[string]float64{"max_overlap": 0.0001},
	})

	for _, want := range []string{"run_1", "cpu (8 workers)", "4,096", "1,234,567 ns", "890 ns", "max_overlap"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
