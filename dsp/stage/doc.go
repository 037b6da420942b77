// Package stage provides the processing stages that make up a voice graph.
//
// A stage is an opaque unit with an input port, an output port, or both.
// Stages process one block in place per render pass; the graph that owns
// them decides which blocks reach which stage. Optional capabilities are
// expressed as small interfaces and detected with type assertions:
//   - Controllable: one named, bounded, steppable control value.
//   - Producer: fills a block from an input Stream (Source).
//   - Consumer: forwards a block to an output Sink (Destination).
//   - Resetter: clears internal history.
//
// Stages in this package:
//   - Gain: scalar volume.
//   - Delay: fractional delay line, used as a comb filter.
//   - PitchShift: modulated dual-tap delay pitch shifter.
//   - Analyser: passthrough tap exposing spectral snapshots.
//   - Source, Destination: adapters for capture and playback collaborators.
package stage
