package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/beadsim/internal/pbd"
)

type Kind int

const (
	KindBead Kind = 0
	KindWire Kind = 1
)

// Fixed is a float written with six decimals.
type Fixed float32

func (f Fixed) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(f), 'f', 6, 32), nil
}

func (f *Fixed) UnmarshalCSV(s string) error {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return err
	}
	*f = Fixed(v)
	return nil
}

// Record is one row of a group timeline.
type Record struct {
	Frame int   `csv:"f"`
	Kind  Kind  `csv:"t"`
	X     Fixed `csv:"x"`
	Y     Fixed `csv:"y"`
	R     Fixed `csv:"r"`
}

func GroupFile(g int) string {
	return fmt.Sprintf("group_%05d.csv", g)
}

// Recorder appends state snapshots to one timeline file per group. A group
// file is only open while its rows are being appended, so the number of
// groups is not bounded by the descriptor limit.
type Recorder struct {
	dir    string
	wire   pbd.Wire
	groups int
	header []bool
	rows   []Record
	w      *bufio.Writer
	closed bool
}

// NewRecorder truncates or creates every group file up front.
func NewRecorder(dir string, groups int, wire pbd.Wire) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	for g := 0; g < groups; g++ {
		f, err := os.Create(filepath.Join(dir, GroupFile(g)))
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", GroupFile(g), err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("creating %s: %w", GroupFile(g), err)
		}
	}

	return &Recorder{
		dir:    dir,
		wire:   wire,
		groups: groups,
		header: make([]bool, groups),
		w:      bufio.NewWriter(nil),
	}, nil
}

// Capture writes every bead of every group, then the wire, under frame.
func (r *Recorder) Capture(frame int, st *pbd.State) error {
	if r.closed {
		return fmt.Errorf("recorder for %s is closed", r.dir)
	}
	if st.Groups != r.groups {
		return fmt.Errorf("%w: recorder has %d groups, state has %d", pbd.ErrShapeMismatch, r.groups, st.Groups)
	}

	wireRow := Record{
		Frame: frame,
		Kind:  KindWire,
		X:     Fixed(r.wire.Center.X),
		Y:     Fixed(r.wire.Center.Y),
		R:     Fixed(r.wire.Radius),
	}

	for g := 0; g < st.Groups; g++ {
		r.rows = r.rows[:0]
		for _, b := range st.Group(g) {
			r.rows = append(r.rows, Record{
				Frame: frame,
				Kind:  KindBead,
				X:     Fixed(b.Pos.X),
				Y:     Fixed(b.Pos.Y),
				R:     Fixed(b.Radius),
			})
		}
		r.rows = append(r.rows, wireRow)

		if err := r.appendGroup(g); err != nil {
			return fmt.Errorf("writing %s: %w", GroupFile(g), err)
		}
	}
	return nil
}

func (r *Recorder) appendGroup(g int) error {
	f, err := os.OpenFile(filepath.Join(r.dir, GroupFile(g)), os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	r.w.Reset(f)

	if err := r.write(g); err != nil {
		f.Close()
		return err
	}
	if err := r.w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (r *Recorder) write(g int) error {
	if !r.header[g] {
		if err := gocsv.Marshal(r.rows, r.w); err != nil {
			return err
		}
		r.header[g] = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(r.rows, r.w)
}

func (r *Recorder) Dir() string { return r.dir }

// Close ends the recording. Every Capture has already reached disk.
func (r *Recorder) Close() error {
	r.closed = true
	r.w.Reset(nil)
	return nil
}

// LoadTimeline reads one group file back.
func LoadTimeline(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []Record
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return records, nil
}
