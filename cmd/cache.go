package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/playlistor/playlistor/internal/cache"
	"github.com/playlistor/playlistor/internal/repositories"
)

// CacheStats shows track mapping and counter statistics.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	mappings := repositories.NewMappingRepository(db)
	counters := repositories.NewCounterRepository(db)

	mappingCount, err := mappings.Count()
	if err != nil {
		return err
	}

	playlists, err := counters.Value(repositories.PlaylistCounter)
	if err != nil {
		return err
	}

	r.writePlainHeader("Cache Statistics")
	r.writePlain("Track mappings: %d\n", mappingCount)
	r.writePlain("Playlists created: %d\n", playlists)

	if mem, ok := r.results.(*cache.MemoryCache); ok {
		r.writePlain("Result cache entries: %d\n", mem.Len())
	}

	return nil
}

// CacheClear empties the in-memory result cache.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	mem, ok := r.results.(*cache.MemoryCache)
	if !ok {
		return fmt.Errorf("result cache does not support clearing")
	}

	mem.Clear()
	r.writePlain("✓ Result cache cleared\n")
	return nil
}
