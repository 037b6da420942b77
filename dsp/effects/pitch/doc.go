// Package pitch provides reusable non-I/O pitch-shifting processors.
//
// Included processors:
//   - PitchShifter: streaming time-domain shifter built on a modulated delay line.
package pitch
