// Package series turns a station's raw timeseries into the day's corrected
// readings and their maximum.
//
// Pipeline:
//   - Ingest: filter to one calendar date, drop bad entries, sort ascending
//   - Correct: undo the station's own half-degree rounding on reporting boundaries
//   - FindExtremum: daily maximum, latest reading, and the settled flag
package series
