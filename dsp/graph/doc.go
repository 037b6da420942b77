// Package graph implements the routing graph of a live voice-changing
// session.
//
// An AudioGraph owns a fixed scaffold:
//
//	source -> input gain -> [voice stages] -> master gain -> analyser
//	                     \-> (bypass) ----/              -> main destination
//	                                                     -> monitor gain -> monitor destination
//
// and a replaceable set of voice stages registered between input gain and
// master gain. Two gates reshape the live connections without rebuilding the
// scaffold: Toggle switches between the voice path and a direct bypass, and
// ToggleMonitor feeds or mutes the monitor branch. Parameters bound to the
// current voice are exposed by index for a control surface.
//
// Graph mutation and rendering are serialised, so a render pass always sees
// a consistent set of connections.
package graph
