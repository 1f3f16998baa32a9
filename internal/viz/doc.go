// Package viz renders the model field in the terminal.
//
//   - [Heatmap]: colour or character heatmap of a row-major field
//   - [Live]: Bubble Tea viewer that steps a model and redraws it
//   - Theme selection with 3 built-in colour ramps
//
// # Key Bindings
//
//	Space - Pause/Resume stepping
//	S     - Single step while paused
//	R     - Reinitialize the model
//	T     - Cycle colour themes
//	Q     - Quit and finalize the model
package viz
