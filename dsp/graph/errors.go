package graph

import "errors"

var (
	// ErrNoInput is returned when a graph is built without a captured stream.
	// It is the only error that prevents a session from starting.
	ErrNoInput = errors.New("graph: input stream is required")

	// ErrNoSink is returned when a graph is built without an output sink.
	ErrNoSink = errors.New("graph: output sink is required")

	// ErrDuplicateNode reports a stage registered twice in the same role.
	ErrDuplicateNode = errors.New("node already registered")

	// ErrDuplicateParam reports a parameter registered twice.
	ErrDuplicateParam = errors.New("param already registered")

	// ErrInvalidSink reports a failed output device switch.
	ErrInvalidSink = errors.New("invalid output sink")

	// ErrParamIndex is returned for a parameter index outside the current voice.
	ErrParamIndex = errors.New("param index out of range")

	// ErrParamSpec is returned for a parameter with an inconsistent range.
	ErrParamSpec = errors.New("invalid param spec")

	// ErrNoPort is returned when a connection needs a port the stage lacks.
	ErrNoPort = errors.New("stage has no such port")

	// ErrStarted is returned by Start when the render loop is already running.
	ErrStarted = errors.New("graph: render loop already started")

	// ErrCycle is returned when a connection would close a loop.
	ErrCycle = errors.New("connection would create a cycle")
)
