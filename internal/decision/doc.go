// Package decision turns a market, its parsed condition, and the day's
// maximum reading into a buy-No recommendation.
//
// Two strategies are available and selected by Config:
//   - probabilistic: expected value of No over the reading's uncertainty support
//   - conservative: only markets the rounded maximum has already resolved No
package decision
