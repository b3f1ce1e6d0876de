package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/playlistor/playlistor/internal/models"
	"github.com/playlistor/playlistor/internal/shared"
)

// ConversionRecord is one row of the created-playlists log.
type ConversionRecord struct {
	ID                 string
	Name               string
	Creator            string
	ArtworkURL         string
	SourceURL          string
	DestinationURL     string
	SourceService      string
	DestinationService string
	TrackCount         int
	CreatedAt          time.Time
}

// ConversionRepository appends one row per successful conversion.
// The log is append-only: there is no update or delete path.
type ConversionRepository struct {
	db *sql.DB
}

// NewConversionRepository creates a new ConversionRepository with the given database connection
func NewConversionRepository(db *sql.DB) *ConversionRepository {
	return &ConversionRepository{db: db}
}

// Append records a completed conversion.
func (r *ConversionRepository) Append(playlist models.SourcePlaylist, result models.ConversionResult) error {
	query := `
		INSERT INTO conversions (id, name, creator, artwork_url, source_url, destination_url, source_service, destination_service, track_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		shared.GenerateID(),
		playlist.Title,
		playlist.Creator,
		nullable(playlist.ArtworkURL),
		playlist.CanonicalURL,
		nullable(result.PlaylistURL),
		result.Source,
		result.Destination,
		result.TrackCount,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversion: %w", err)
	}

	return nil
}

// List retrieves conversion records, newest first, bounded by limit.
func (r *ConversionRepository) List(limit int) ([]ConversionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, name, creator, artwork_url, source_url, destination_url, source_service, destination_service, track_count, created_at
		FROM conversions
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer rows.Close()

	var records []ConversionRecord
	for rows.Next() {
		var (
			record         ConversionRecord
			artworkURL     sql.NullString
			destinationURL sql.NullString
		)

		err := rows.Scan(
			&record.ID,
			&record.Name,
			&record.Creator,
			&artworkURL,
			&record.SourceURL,
			&destinationURL,
			&record.SourceService,
			&record.DestinationService,
			&record.TrackCount,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}

		record.ArtworkURL = artworkURL.String
		record.DestinationURL = destinationURL.String
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}
