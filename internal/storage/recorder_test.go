package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/beadsim/internal/pbd"
)

var testWire = pbd.Wire{Center: pbd.Vec2{X: 0.5}, Radius: 0.8}

func sampleState() *pbd.State {
	st := pbd.NewState(2, 2)
	st.Beads[0] = pbd.NewBead(0.1, pbd.Vec2{X: 1.3, Y: 0})
	st.Beads[1] = pbd.NewBead(0.12, pbd.Vec2{X: 0.5, Y: 0.8})
	st.Beads[2] = pbd.NewBead(0.05, pbd.Vec2{X: -0.3, Y: 0})
	st.Beads[3] = pbd.NewBead(0.07, pbd.Vec2{X: 0.5, Y: -0.8})
	return st
}

func TestRecorder_WritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewRecorder(dir, 2, testWire)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if rec.Dir() != dir {
		t.Errorf("dir = %q, want %q", rec.Dir(), dir)
	}

	st := sampleState()
	for f := 0; f < 3; f++ {
		if err := rec.Capture(f, st); err != nil {
			t.Fatalf("capture %d failed: %v", f, err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, GroupFile(1)))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	if lines[0] != "f,t,x,y,r" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 1+3*3 {
		t.Errorf("expected 10 lines, got %d", len(lines))
	}
	if lines[1] != "0,0,-0.300000,0.000000,0.050000" {
		t.Errorf("first bead row = %q", lines[1])
	}
	if lines[3] != "0,1,0.500000,0.000000,0.800000" {
		t.Errorf("wire row = %q", lines[3])
	}
}

func TestRecorder_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewRecorder(dir, 2, testWire)
	if err != nil {
		t.Fatal(err)
	}
	st := sampleState()
	if err := rec.Capture(0, st); err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	records, err := LoadTimeline(filepath.Join(dir, GroupFile(0)))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Kind != KindBead || records[2].Kind != KindWire {
		t.Errorf("unexpected kinds %v %v", records[0].Kind, records[2].Kind)
	}
	if records[1].Y != 0.8 || records[1].R != 0.12 {
		t.Errorf("second bead = %+v", records[1])
	}
}

func TestRecorder_ShapeMismatch(t *testing.T) {
	rec, err := NewRecorder(t.TempDir(), 3, testWire)
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Close()

	if err := rec.Capture(0, sampleState()); !errors.Is(err, pbd.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestLoadTimeline_Missing(t *testing.T) {
	if _, err := LoadTimeline(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func openFDs(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skip("no /proc/self/fd on this platform")
	}
	return len(entries)
}

func TestRecorder_ManyGroupsHoldNoFiles(t *testing.T) {
	const groups = 4096
	dir := t.TempDir()

	st := pbd.NewState(groups, 2)
	for i := range st.Beads {
		st.Beads[i] = pbd.NewBead(0.1, pbd.Vec2{X: 1.3})
	}

	before := openFDs(t)
	rec, err := NewRecorder(dir, groups, testWire)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for f := 0; f < 2; f++ {
		if err := rec.Capture(f, st); err != nil {
			t.Fatalf("capture %d failed: %v", f, err)
		}
	}
	if held := openFDs(t) - before; held > 4 {
		t.Errorf("recorder holds %d descriptors open between captures", held)
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	records, err := LoadTimeline(filepath.Join(dir, GroupFile(groups-1)))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(records) != 2*3 {
		t.Errorf("expected 6 rows in last group, got %d", len(records))
	}
}

func TestRecorder_CaptureAfterClose(t *testing.T) {
	rec, err := NewRecorder(t.TempDir(), 2, testWire)
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}
	if err := rec.Capture(0, sampleState()); err == nil {
		t.Error("expected error capturing into a closed recorder")
	}
}
