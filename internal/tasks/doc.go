// Package tasks implements the playlist conversion engine.
//
// # Core Operation
//
// [Converter.Convert] turns a parsed source playlist into a destination
// playlist in one sequential pass:
//
//  1. Short-circuit on a fresh result-cache entry (production mode only),
//     returning a degraded replay result with no track-level detail.
//  2. Search the destination catalog once per source track, in order.
//     Any failure is a miss; one bad query never aborts the conversion.
//  3. Create the destination playlist and submit matched ids in chunks
//     bounded by the destination's batch limit.
//  4. Persist track mappings, append the conversion log row, write the
//     result cache, and bump the playlist counter, all best-effort.
//
// # Error Classification
//
// A 5xx during playlist submission surfaces as [shared.ErrRetryableUpstream]
// after matched mappings are persisted, so a retried run benefits from the
// mapping cache even though the retry re-executes the whole conversion.
// Any other submission failure is fatal and propagates immediately.
//
// # Progress Reporting
//
// All operations send [ProgressUpdate] values on a caller-supplied channel
// using select with default, so a slow or absent consumer never blocks the
// conversion. Exactly one update is sent per track regardless of outcome.
//
// # Collaborators
//
// [Converter] depends on capability interfaces only: [services.Destination]
// per direction, plus optional [MappingStore], [ConversionLog], [Counter],
// and [cache.Cache]. A nil collaborator disables that side effect.
package tasks
