// Package layout derives responsive layout state from a viewport width.
package layout

// Breakpoint is the minimum width, in CSS pixels, treated as a wide screen.
const Breakpoint = 800

// State is recomputed on every resize notification and never cached.
type State struct {
	Width       int  `json:"width"`
	WideScreen  bool `json:"wideScreen"`
	Columns     int  `json:"columns"`
	ShowSidebar bool `json:"showSidebar"`
}

// Compute returns the layout for width. Non-positive widths are treated as narrow.
func Compute(width int) State {
	if width < 0 {
		width = 0
	}
	wide := width >= Breakpoint
	s := State{Width: width, WideScreen: wide, Columns: 1}
	if wide {
		s.Columns = 2
		s.ShowSidebar = true
	}
	return s
}
