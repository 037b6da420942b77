// Package device provides the PortAudio capture stream and playback sinks
// the graph reads from and writes to. The cgo-free in-memory backend used
// for offline rendering and tests lives in package memory.
package device
