package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/playlistor/playlistor/internal/repositories"
)

// History lists recorded conversions, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	journal := repositories.NewConversionRepository(db)
	records, err := journal.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, true)
	}

	if len(records) == 0 {
		r.writePlain("No conversions recorded yet.\n")
		return nil
	}

	r.writePlain("Found %d conversions:\n\n", len(records))
	for i, record := range records {
		r.writePlain("%d. %s\n", i+1, record.Name)
		r.writePlain("   %s → %s (%d tracks)\n", record.SourceService, record.DestinationService, record.TrackCount)
		if record.DestinationURL != "" {
			r.writePlain("   %s\n", record.DestinationURL)
		}
		r.writePlain("   %s\n\n", record.CreatedAt.Format("2006-01-02 15:04"))
	}

	return nil
}
