// Package mesowest fetches station timeseries from the Synoptic Data
// (MesoWest) API and hands them to the series package as RawSeries.
//
// Endpoint:
//   - https://api.mesowest.net/v2/stations/timeseries
//
// Readings are passed through as the decimal text the API returned, so no
// precision is lost before correction.
package mesowest
