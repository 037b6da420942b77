package stage

import (
	"context"
	"errors"
)

// sliceStream serves a fixed signal block by block, then io.EOF-like errEnd.
type sliceStream struct {
	data []float64
	pos  int
	err  error
}

var errEnd = errors.New("end of test stream")

func (s *sliceStream) Read(block []float64) error {
	if s.err != nil {
		return s.err
	}

	if s.pos >= len(s.data) {
		return errEnd
	}

	n := copy(block, s.data[s.pos:])
	clear(block[n:])
	s.pos += n

	return nil
}

// recordSink keeps every written block.
type recordSink struct {
	blocks  [][]float64
	device  string
	devices map[string]bool
}

func (r *recordSink) Write(block []float64) error {
	r.blocks = append(r.blocks, append([]float64(nil), block...))
	return nil
}

func (r *recordSink) SetDevice(_ context.Context, id string) error {
	if !r.devices[id] {
		return errors.New("unknown device")
	}

	r.device = id

	return nil
}

func (r *recordSink) Device() string { return r.device }

func zeroCrossingsUp(data []float64) int {
	n := 0
	for i := 1; i < len(data); i++ {
		if data[i-1] < 0 && data[i] >= 0 {
			n++
		}
	}

	return n
}
