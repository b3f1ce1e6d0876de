// Package repositories implements SQLite persistence for the conversion engine.
//
// Three stores back the engine, none of which is a system of record:
//
//   - [MappingRepository] : the track-mapping cache. Batch upserts keyed by
//     whichever service originated the conversion; uniqueness on both service
//     id columns means a conflicting row gains the opposite-service id rather
//     than duplicating. Integrity conflicts are deduplication working as
//     intended, not failures.
//   - [ConversionRepository] : append-only log of created playlists, one row
//     per successful conversion. No update or delete path.
//   - [CounterRepository] : monotonic named counters for observability.
//
// All writes happen after the destination playlist exists, so losing any of
// them costs a future optimization at worst.
package repositories
