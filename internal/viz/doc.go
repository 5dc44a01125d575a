// Package viz renders frequency sweeps and mode shapes.
//
// Terminal output uses asciigraph for |det| curves and a Braille [Canvas] for
// mode shapes. [Explorer] is a Bubble Tea program that steps through a sweep
// and draws the mode at each root. PNG output goes through gonum/plot.
//
// # Key Bindings
//
//	h/l, ←/→ - Move the frequency cursor
//	n/p      - Jump to the next or previous root
//	m        - Toggle the mode shape view
//	+/-      - Scale the drawn displacement
//	q        - Quit
package viz
