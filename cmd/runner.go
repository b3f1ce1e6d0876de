package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/playlistor/playlistor/internal/cache"
	"github.com/playlistor/playlistor/internal/parser"
	"github.com/playlistor/playlistor/internal/repositories"
	"github.com/playlistor/playlistor/internal/services"
	"github.com/playlistor/playlistor/internal/shared"
	"github.com/playlistor/playlistor/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	spotify    *services.SpotifyService
	appleMusic *services.AppleMusicService
	results    cache.Cache
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Spotify    *services.SpotifyService
	AppleMusic *services.AppleMusicService
	Results    cache.Cache
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Results == nil {
		opts.Results = cache.NewMemoryCache()
	}

	return &Runner{
		config:     opts.Config,
		spotify:    opts.Spotify,
		appleMusic: opts.AppleMusic,
		results:    opts.Results,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, convertCommand, workerCommand, cacheCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig replaces the runner config from the given path when the file exists.
func (r *Runner) reloadConfig(configPath string) {
	if _, err := os.Stat(configPath); err != nil {
		return
	}
	config, err := shared.LoadConfig(configPath)
	if err != nil {
		r.logger.Warn("failed to load config, keeping current", "path", configPath, "error", err)
		return
	}
	r.config = config
}

// openDatabase opens the configured SQLite database with pooling applied.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, nil
}

// destinations ensures both services exist and carry whatever credentials the
// config holds. Missing credentials surface later, on the first API call.
func (r *Runner) destinations(ctx context.Context) error {
	if r.spotify == nil {
		spotify, err := services.NewSpotifyService(r.config.Credentials.Spotify.Map())
		if err != nil {
			return err
		}
		r.spotify = spotify
	}

	if token := r.config.Credentials.Spotify.Token(); token != nil {
		r.spotify.SetToken(ctx, token)
	}

	if r.appleMusic == nil {
		r.appleMusic = services.NewAppleMusicService(
			r.config.Credentials.AppleMusic.DeveloperToken,
			r.config.Credentials.AppleMusic.Storefront,
		)
	}

	if userToken := r.config.Credentials.AppleMusic.MusicUserToken; userToken != "" {
		if err := r.appleMusic.Authenticate(ctx, map[string]string{"music_user_token": userToken}); err != nil {
			return err
		}
	}

	return nil
}

// newConverter assembles the conversion engine over the given database.
func (r *Runner) newConverter(db *sql.DB) *tasks.Converter {
	mappings := repositories.NewMappingCacheAdapter(repositories.NewMappingRepository(db))
	journal := repositories.NewConversionRepository(db)
	counters := repositories.NewCounterRepository(db)

	return tasks.NewConverter(r.spotify, r.appleMusic, r.logger,
		tasks.WithMappingStore(mappings),
		tasks.WithConversionLog(journal),
		tasks.WithCounter(counters),
		tasks.WithResultCache(r.results, r.config.Conversion.CacheTTL()),
		tasks.WithSearchRate(int(r.config.Conversion.SearchesPerSecond)),
		tasks.WithProduction(r.config.Conversion.Production),
	)
}

// parsers returns the source parsers in dispatch order.
func (r *Runner) parsers() []parser.Parser {
	return []parser.Parser{
		parser.NewAppleMusicParser(r.httpClient),
		parser.NewSpotifyParser(r.spotify),
	}
}

// saveSpotifyToken persists an OAuth token back to the config file.
func (r *Runner) saveSpotifyToken(configPath string, token *oauth2.Token) error {
	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if err := shared.SaveConfig(configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
