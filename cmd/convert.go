package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/playlistor/playlistor/internal/formatter"
	"github.com/playlistor/playlistor/internal/models"
	"github.com/playlistor/playlistor/internal/parser"
	"github.com/playlistor/playlistor/internal/shared"
	"github.com/playlistor/playlistor/internal/tasks"
	"github.com/playlistor/playlistor/internal/ui"
)

// Convert runs a full conversion for the playlist URL argument.
func (r *Runner) Convert(ctx context.Context, cmd *cli.Command) error {
	rawURL := cmd.StringArg("url")
	if rawURL == "" {
		return fmt.Errorf("%w: playlist URL", shared.ErrMissingArgument)
	}

	r.reloadConfig(cmd.String("config"))
	if err := r.destinations(ctx); err != nil {
		return err
	}

	dir, err := r.resolveDirection(cmd.String("direction"), rawURL)
	if err != nil {
		return err
	}

	source, err := parser.ForURL(rawURL, r.parsers()...)
	if err != nil {
		return err
	}

	r.logger.Info("parsing source playlist", "url", rawURL, "direction", dir.String())
	playlist, err := source.Parse(ctx, rawURL)
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	converter := r.newConverter(db)

	run := func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.ConversionResult, error) {
		return r.convertWithRetry(ctx, converter, *playlist, dir, progress)
	}

	var result *models.ConversionResult
	if cmd.Bool("tui") {
		model := ui.NewModel(ctx, playlist.Title, run)
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("failed to run UI: %w", err)
		}
		return nil
	}

	result, err = r.runWithPlainProgress(ctx, *playlist, dir, run)
	if err != nil {
		return err
	}

	r.printSummary(*playlist, result)

	if reportDir := cmd.String("report-dir"); reportDir != "" {
		report, err := formatter.WriteMarkdownReport(*playlist, result, reportDir)
		if err != nil {
			return err
		}
		r.writePlain("Report written to %s\n", report.Directory)
	}

	if missedCSV := cmd.String("missed-csv"); missedCSV != "" && len(result.MissedTracks) > 0 {
		path, err := formatter.WriteMissedCSV(result, missedCSV)
		if err != nil {
			return err
		}
		r.writePlain("Missed tracks written to %s\n", path)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	return nil
}

// resolveDirection uses the explicit flag when given, the URL otherwise.
func (r *Runner) resolveDirection(flag, rawURL string) (models.Direction, error) {
	if flag != "" {
		dir, err := models.ParseDirection(flag)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		return dir, nil
	}
	return parser.DirectionForURL(rawURL)
}

// convertWithRetry re-runs the conversion on retryable upstream failures,
// waiting the configured backoff between attempts.
func (r *Runner) convertWithRetry(ctx context.Context, converter *tasks.Converter, playlist models.SourcePlaylist, dir models.Direction, progress chan<- tasks.ProgressUpdate) (*models.ConversionResult, error) {
	attempts := r.config.Conversion.MaxRetries
	if attempts <= 0 {
		attempts = 3
	}
	backoff := r.config.Conversion.RetryBackoff()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := converter.Convert(ctx, playlist, dir, progress)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, shared.ErrRetryableUpstream) {
			return nil, err
		}

		lastErr = err
		if attempt == attempts {
			break
		}

		r.logger.Warn("conversion hit a retryable upstream error",
			"attempt", attempt, "backoff", backoff, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, lastErr
}

// runWithPlainProgress drains progress updates to plain terminal output.
func (r *Runner) runWithPlainProgress(ctx context.Context, playlist models.SourcePlaylist, dir models.Direction, run ui.RunFunc) (*models.ConversionResult, error) {
	r.writePlain("Converting '%s' (%s)\n", playlist.Title, dir.String())
	r.writePlain("Source: %s\n\n", playlist.CanonicalURL)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			switch update.Phase {
			case tasks.SearchTracks:
				if update.Step == 0 {
					r.writePlain("🔍 %s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.CreatePlaylist, tasks.SubmitTracks:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := run(ctx, progressCh)
	close(progressCh)
	<-drained

	return result, err
}

func (r *Runner) printSummary(playlist models.SourcePlaylist, result *models.ConversionResult) {
	r.writePlain("\n")
	r.writePlainHeader("Conversion Complete!")
	r.writePlain("Source: %s (%d tracks)\n", playlist.Title, len(playlist.Tracks))
	r.writePlain("Matched: %d tracks\n", result.MatchedCount())
	if result.PlaylistURL != "" {
		r.writePlain("Playlist: %s\n", result.PlaylistURL)
	}

	if len(result.MissedTracks) > 0 {
		r.writePlain("\nCould not match %d tracks:\n", len(result.MissedTracks))
		for _, track := range result.MissedTracks {
			r.writePlain("  - %s - %s\n", track.ArtistLine(), track.Name)
		}
	}
}
