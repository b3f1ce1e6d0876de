package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/playlistor/playlistor/internal/models"
	"github.com/playlistor/playlistor/internal/shared"
)

// ConflictKey selects which service id column anchors a mapping upsert.
// Conversions keyed by the originating service update the opposite column
// on conflict, so the reverse direction refreshes the other id.
type ConflictKey int

const (
	// BySpotifyID upserts on the spotify_id column (Apple Music → Spotify).
	BySpotifyID ConflictKey = iota
	// ByAppleMusicID upserts on the apple_music_id column (Spotify → Apple Music).
	ByAppleMusicID
)

func (k ConflictKey) column() string {
	if k == ByAppleMusicID {
		return "apple_music_id"
	}
	return "spotify_id"
}

func (k ConflictKey) opposite() string {
	if k == ByAppleMusicID {
		return "spotify_id"
	}
	return "apple_music_id"
}

// MappingRepository persists confirmed cross-service track identities.
type MappingRepository struct {
	db *sql.DB
}

// NewMappingRepository creates a new MappingRepository with the given database connection
func NewMappingRepository(db *sql.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// UpsertMany writes a batch of track mappings in one transaction.
//
// On a conflict with the key column the existing row is refreshed in place:
// name, artists, and the opposite-service id are updated, never duplicated.
func (r *MappingRepository) UpsertMany(mappings []models.TrackMapping, key ConflictKey) error {
	if len(mappings) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO track_mappings (id, name, artists, spotify_id, apple_music_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(%s) DO UPDATE SET
			name = excluded.name,
			artists = excluded.artists,
			%s = excluded.%s,
			updated_at = excluded.updated_at
	`, key.column(), key.opposite(), key.opposite())

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, mapping := range mappings {
		_, err := stmt.Exec(
			shared.GenerateID(),
			mapping.Name,
			mapping.Artists,
			nullable(mapping.SpotifyID),
			nullable(mapping.AppleMusicID),
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert mapping for %q: %w", mapping.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mappings: %w", err)
	}

	return nil
}

// GetBySpotifyID retrieves a mapping by its Spotify catalog id.
func (r *MappingRepository) GetBySpotifyID(id string) (*models.TrackMapping, error) {
	return r.getBy("spotify_id", id)
}

// GetByAppleMusicID retrieves a mapping by its Apple Music catalog id.
func (r *MappingRepository) GetByAppleMusicID(id string) (*models.TrackMapping, error) {
	return r.getBy("apple_music_id", id)
}

func (r *MappingRepository) getBy(column, id string) (*models.TrackMapping, error) {
	query := fmt.Sprintf(`
		SELECT name, artists, spotify_id, apple_music_id
		FROM track_mappings
		WHERE %s = ?
	`, column)

	var (
		mapping      models.TrackMapping
		spotifyID    sql.NullString
		appleMusicID sql.NullString
	)

	err := r.db.QueryRow(query, id).Scan(&mapping.Name, &mapping.Artists, &spotifyID, &appleMusicID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no mapping for %s %s", shared.ErrTrackNotFound, column, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan mapping: %w", err)
	}

	mapping.SpotifyID = spotifyID.String
	mapping.AppleMusicID = appleMusicID.String

	return &mapping, nil
}

// Count returns the number of stored mappings.
func (r *MappingRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM track_mappings").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count mappings: %w", err)
	}
	return count, nil
}

// nullable maps an empty string to NULL so the UNIQUE columns ignore
// mappings that lack one side's id.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
