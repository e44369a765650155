// Package compute provides the parallel execution backends that run the
// per-group frame kernel.
//
// A backend owns a device-resident copy of the bead buffer. The host declares
// the buffer shape once, uploads a copy, dispatches one kernel invocation per
// group (a lane) and reads the result back:
//
//	backend, _ := compute.New("cpu", 0)
//	_ = backend.Allocate(compute.Shape{Groups: 64, BeadsPerGroup: 8})
//	_ = backend.Upload(state.Beads, wire)
//	timing, _ := backend.Dispatch(solver.Frame)
//	_ = backend.Readback(state.Beads)
//
// Available backends:
//
//   - cpu: one goroutine lane per group, bounded by a worker limit
//   - serial: lanes run one after another on the calling goroutine
//
// Both produce bit-identical results because lanes never share memory.
package compute
