// Package models defines the domain entities for playlist conversion.
//
// The package contains two categories of types:
//
// 1. Conversion inputs: immutable values produced by the parser layer
//   - [SourcePlaylist] : parsed playlist metadata with its ordered track list
//   - [SourceTrack] : one track as published on the source service
//
// 2. Conversion outputs and persistence values:
//   - [MatchOutcome] : per-track result of a destination catalog search
//   - [ConversionResult] : the terminal result of one conversion
//   - [TrackMapping] : a confirmed cross-service track identity, persisted
//     as an optimization cache for future conversions
//
// [Direction] selects which service is the source and which is the
// destination for one conversion.
package models
