// Package voice builds named voices, each a small set of stages and
// parameters, and swaps them in and out of an AudioGraph.
//
// A Registry maps voice names to factories. The Assembler owns the graph of
// one capture session: Select retires the current voice, builds the
// requested one, registers it with the graph and reconnects the input.
package voice
