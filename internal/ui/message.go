package ui

import (
	"github.com/playlistor/playlistor/internal/models"
	"github.com/playlistor/playlistor/internal/tasks"
)

// progressMsg carries one conversion progress update into the Elm loop.
type progressMsg tasks.ProgressUpdate

// conversionDoneMsg signals the conversion goroutine has finished.
type conversionDoneMsg struct {
	result *models.ConversionResult
	err    error
}
