// Package model defines shared data types used across the scanner.
//
// Conventions:
//   - Prices: integer cents (0-100 = $0.00-$1.00)
//   - Temperatures: shopspring decimal values, never binary floats
//   - Timestamps: time.Time carrying the station's reported UTC offset
//   - Tickers: "<SERIES>-<DATE TOKEN>-<STRIKE>", e.g. "KXHIGHNY-25JUN13-B81.5"
package model
