// Package ui implements the interactive conversion view using bubbletea's Elm architecture.
//
// The TUI runs one conversion end to end:
//  1. [ConvertView] : Live search progress with a progress bar and spinner
//  2. [ResultView] : Destination URL, track counts, and the missed-track list
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the Converter, providing non-blocking status reporting during conversions.
//
// Keyboard navigation uses vim-style bindings (j/k for the missed list, q to quit) with contextual help displayed via charmbracelet/bubbles/help.
package ui
