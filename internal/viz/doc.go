// Package viz renders simulation output in the terminal.
//
//   - [Plot]: asciigraph trajectory plots with a marker row for event times
//   - [RenderSummary], [RenderEvents]: lipgloss tables for finished runs
//   - [Live]: Bubble Tea view that steps a run and shows events as they fire
//
// # Key Bindings (live view)
//
//	Space - Pause/Resume
//	+/-   - More/fewer steps per frame
//	Tab   - Cycle plotted component
//	T     - Cycle color themes
//	Q     - Quit
package viz
