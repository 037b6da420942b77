package tui

import "time"

// tickMsg refreshes the spectrum display.
type tickMsg time.Time

// sinkMsg reports the result of an output device change.
type sinkMsg struct {
	Role   string
	Device string
	Err    error
}

// voiceMsg reports the result of a voice change.
type voiceMsg struct {
	Voice string
	Err   error
}
