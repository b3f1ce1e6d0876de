package repositories

import (
	"github.com/playlistor/playlistor/internal/models"
)

// MappingCacheAdapter exposes MappingRepository as a direction-aware store.
//
// The conflict column follows the destination service: an apple-music to
// spotify conversion discovers spotify ids, so rows collide on spotify_id,
// and vice versa.
type MappingCacheAdapter struct {
	repo *MappingRepository
}

// NewMappingCacheAdapter wraps repo for use by the conversion engine.
func NewMappingCacheAdapter(repo *MappingRepository) *MappingCacheAdapter {
	return &MappingCacheAdapter{repo: repo}
}

// UpsertMany persists mappings keyed by the destination service id column.
func (a *MappingCacheAdapter) UpsertMany(mappings []models.TrackMapping, dir models.Direction) error {
	key := BySpotifyID
	if dir.Destination() == models.ServiceAppleMusic {
		key = ByAppleMusicID
	}
	return a.repo.UpsertMany(mappings, key)
}
