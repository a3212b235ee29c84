// Package display owns the panel power state machine and the narrow
// interface the rest of the system drives the hardware through.
package display

import "image"

// Panel is the surface exposed by an e-paper driver. All operations are
// blocking and fallible; the Controller decides when each may be called.
type Panel interface {
	// Init powers up and initializes the panel. May take tens of seconds on
	// real hardware.
	Init() error
	// DisplayFull pushes a complete frame.
	DisplayFull(img image.Image) error
	// DisplayPartial refreshes only the given region. Valid only in 1-bit
	// partial-update mode.
	DisplayPartial(img image.Image, region image.Rectangle) error
	// Sleep puts the panel into its low-power state.
	Sleep() error
}
