package decision

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-highs/internal/condition"
	"github.com/rickgao/kalshi-highs/internal/model"
	"github.com/rickgao/kalshi-highs/internal/nws"
	"github.com/rickgao/kalshi-highs/internal/probability"
	"github.com/rickgao/kalshi-highs/internal/series"
)

// ErrInvalidPrice is returned for asks outside the venue's 0-100 cent range.
var ErrInvalidPrice = errors.New("invalid price")

// StrategyName selects a Strategy.
type StrategyName string

const (
	StrategyConservative  StrategyName = "conservative"
	StrategyProbabilistic StrategyName = "probabilistic"
)

// Reading is the day's maximum as the decision engine sees it.
type Reading struct {
	PointF decimal.Decimal  // Fahrenheit point estimate
	Window *series.Interval // Celsius uncertainty window, nil if exact
}

// ReadingFrom builds a Reading from a tracked extremum.
func ReadingFrom(e series.Extremum) Reading {
	return Reading{
		PointF: e.Max.Fahrenheit,
		Window: e.Max.Uncertainty(),
	}
}

// Rounded returns the official integer value of the point estimate.
func (r Reading) Rounded() int {
	return nws.Round(r.PointF)
}

// ActionKind is what to do with a market.
type ActionKind int

const (
	NoTrade ActionKind = iota
	Trade
)

// Action is a recommendation. Side and Price are set only for Trade.
type Action struct {
	Kind  ActionKind
	Side  model.Side
	Price int // cents
}

// IsTrade reports whether the action recommends a trade.
func (a Action) IsTrade() bool { return a.Kind == Trade }

func (a Action) String() string {
	if a.Kind != Trade {
		return "no trade"
	}
	return "buy " + string(a.Side)
}

// Decision is the engine's output for one market.
type Decision struct {
	Market    model.Market
	Condition condition.Condition
	Strategy  StrategyName

	// Assessment is nil for the conservative strategy.
	Assessment *probability.Assessment

	NoProbability   decimal.Decimal
	ExpectedValue   decimal.Decimal // cents per contract
	MarketImpliedNo decimal.Decimal // no ask / payout
	Edge            decimal.Decimal // NoProbability − MarketImpliedNo

	Action Action
	Reason string
}
