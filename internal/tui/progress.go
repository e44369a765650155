package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/beadsim/internal/pbd"
)

const (
	barWidth     = 40
	feedInterval = 33 * time.Millisecond
)

// FrameMsg carries a copy of the first group after a frame.
type FrameMsg struct {
	Frame int
	Total int
	Beads []pbd.Bead
}

// DoneMsg ends the program once the run returns.
type DoneMsg struct {
	Err error
}

// Progress is the bubbletea model shown while a run is in flight.
type Progress struct {
	wire     pbd.Wire
	frame    int
	total    int
	beads    []pbd.Bead
	started  time.Time
	elapsed  time.Duration
	cancel   context.CancelFunc
	done     bool
	canceled bool
	err      error
}

// NewProgress builds the model. cancel is invoked when the user quits early.
func NewProgress(wire pbd.Wire, total int, cancel context.CancelFunc) Progress {
	return Progress{
		wire:    wire,
		total:   total,
		cancel:  cancel,
		started: time.Now(),
	}
}

func (m Progress) Init() tea.Cmd { return nil }

func (m Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.canceled = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case FrameMsg:
		m.frame = msg.Frame
		if msg.Total > 0 {
			m.total = msg.Total
		}
		m.beads = msg.Beads
		m.elapsed = time.Since(m.started)
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		m.elapsed = time.Since(m.started)
		return m, tea.Quit
	}
	return m, nil
}

func (m Progress) View() string {
	var b strings.Builder

	status := green.Render("●") + " " + green.Render("running")
	switch {
	case m.err != nil:
		status = red.Render("✗") + " " + red.Render("failed")
	case m.canceled:
		status = yellow.Render("○") + " " + yellow.Render("canceled")
	case m.done:
		status = cyan.Render("●") + " " + cyan.Render("done")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s\n\n", cyan.Render("b e a d s i m"), status))

	b.WriteString(renderGroup(m.wire, m.beads))
	b.WriteString("\n")

	filled := 0
	if m.total > 0 {
		filled = m.frame * barWidth / m.total
	}
	if filled > barWidth {
		filled = barWidth
	}
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	counter := fmt.Sprintf("frame %d/%d", m.frame, m.total)
	b.WriteString(fmt.Sprintf("   %s %s  %s\n", bar, dim.Render(counter), dim.Render(m.elapsed.Round(time.Millisecond).String())))

	if m.err != nil {
		b.WriteString("\n   " + red.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + dim.Render("   q quit") + "\n")
	return b.String()
}

func (m Progress) Frame() int     { return m.frame }
func (m Progress) Canceled() bool { return m.canceled }
func (m Progress) Done() bool     { return m.done }
func (m Progress) Err() error     { return m.err }

// Feed forwards frames to a running program at a bounded rate.
type Feed struct {
	send  func(tea.Msg)
	every time.Duration
	last  time.Time
}

func NewFeed(p *tea.Program) *Feed {
	return &Feed{send: p.Send, every: feedInterval}
}

// OnFrame copies group 0 so the program never reads the live state.
func (f *Feed) OnFrame(frame, total int, st *pbd.State) {
	if frame != total && time.Since(f.last) < f.every {
		return
	}
	f.last = time.Now()

	var beads []pbd.Bead
	if st.Groups > 0 {
		beads = append([]pbd.Bead(nil), st.Group(0)...)
	}
	f.send(FrameMsg{Frame: frame, Total: total, Beads: beads})
}
