package main

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"
	"github.com/urfave/cli/v3"

	"github.com/playlistor/playlistor/internal/parser"
	"github.com/playlistor/playlistor/internal/queue"
	"github.com/playlistor/playlistor/internal/shared"
)

// WorkerRun consumes conversion jobs from the queue until interrupted.
func (r *Runner) WorkerRun(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))
	if err := r.destinations(ctx); err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	converter := r.newConverter(db)

	handler := func(ctx context.Context, job queue.ConversionJob) error {
		source, err := parser.ForURL(job.PlaylistURL, r.parsers()...)
		if err != nil {
			return err
		}

		playlist, err := source.Parse(ctx, job.PlaylistURL)
		if err != nil {
			return err
		}

		result, err := converter.Convert(ctx, *playlist, job.Direction, nil)
		if err != nil {
			return err
		}

		r.logger.Info("conversion job finished",
			"job", job.ID, "tracks", result.TrackCount, "matched", result.MatchedCount(), "missed", len(result.MissedTracks))
		return nil
	}

	conn, err := amqp.Dial(r.config.Queue.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	defer conn.Close()

	worker, err := queue.NewWorkerFromConnection(conn, r.config.Queue.Name, handler, r.logger,
		queue.WithRetryBackoff(r.config.Conversion.RetryBackoff()),
		queue.WithMaxAttempts(r.config.Conversion.MaxRetries),
	)
	if err != nil {
		return err
	}

	return worker.Start(ctx)
}

// WorkerEnqueue publishes one conversion job for the URL argument.
func (r *Runner) WorkerEnqueue(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	rawURL := cmd.StringArg("url")
	if rawURL == "" {
		return fmt.Errorf("%w: playlist URL", shared.ErrMissingArgument)
	}

	dir, err := parser.DirectionForURL(rawURL)
	if err != nil {
		return err
	}

	conn, err := amqp.Dial(r.config.Queue.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	defer conn.Close()

	publisher, err := queue.NewPublisherFromConnection(conn, r.config.Queue.Name)
	if err != nil {
		return err
	}
	defer publisher.Close()

	job := queue.ConversionJob{
		ID:          shared.GenerateID(),
		PlaylistURL: rawURL,
		Direction:   dir,
	}

	if err := publisher.Publish(job); err != nil {
		return err
	}

	r.writePlain("✓ Job %s enqueued (%s)\n", job.ID, dir.String())
	return nil
}
