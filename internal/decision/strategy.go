package decision

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-highs/internal/condition"
	"github.com/rickgao/kalshi-highs/internal/model"
	"github.com/rickgao/kalshi-highs/internal/probability"
)

var (
	coinFlip   = decimal.New(5, -1)
	evSentinel = decimal.NewFromInt(-1)
)

// ExpectedValue returns noProb × payout − price when noProb is better than a
// coin flip, and −1 otherwise regardless of price.
func ExpectedValue(noProb, price, payout decimal.Decimal) decimal.Decimal {
	if noProb.LessThanOrEqual(coinFlip) {
		return evSentinel
	}
	return noProb.Mul(payout).Sub(price)
}

// Strategy decides a single market. Prices have already been validated.
type Strategy interface {
	Name() StrategyName
	Decide(m model.Market, cond condition.Condition, r Reading) Decision
}

// Probabilistic recommends No when its expected value over the reading's
// uncertainty support exceeds MinExpectedValue.
type Probabilistic struct {
	MinExpectedValue decimal.Decimal // cents
	Payout           decimal.Decimal // cents
}

func (p Probabilistic) Name() StrategyName { return StrategyProbabilistic }

func (p Probabilistic) Decide(m model.Market, cond condition.Condition, r Reading) Decision {
	a := probability.Assess(r.PointF, r.Window, cond)
	price := decimal.NewFromInt(int64(m.NoAsk))

	d := newDecision(m, cond, p.Name(), p.Payout)
	d.Assessment = &a
	d.NoProbability = a.NoProbability
	d.ExpectedValue = ExpectedValue(a.NoProbability, price, p.Payout)
	d.Edge = a.NoProbability.Sub(d.MarketImpliedNo)

	if d.ExpectedValue.GreaterThan(p.MinExpectedValue) {
		d.Action = Action{Kind: Trade, Side: model.SideNo, Price: m.NoAsk}
		d.Reason = fmt.Sprintf("expected value %s above minimum %s", d.ExpectedValue.StringFixed(2), p.MinExpectedValue)
		return d
	}
	d.Reason = fmt.Sprintf("expected value %s not above minimum %s", d.ExpectedValue.StringFixed(2), p.MinExpectedValue)
	return d
}

// Conservative recommends No only when the condition lies entirely below the
// rounded maximum and the rounded maximum already fails it. It never relies
// on the uncertainty window, so it cannot be fooled by it, and it fires less
// often.
type Conservative struct {
	MaxAsk int             // exclusive upper bound on the No ask, cents
	Payout decimal.Decimal // cents
}

func (c Conservative) Name() StrategyName { return StrategyConservative }

func (c Conservative) Decide(m model.Market, cond condition.Condition, r Reading) Decision {
	rounded := r.Rounded()

	d := newDecision(m, cond, c.Name(), c.Payout)
	d.NoProbability = decimal.Zero
	d.ExpectedValue = evSentinel

	if !cond.EntirelyBelow(rounded) {
		d.Reason = fmt.Sprintf("condition not entirely below rounded max %d", rounded)
		return d
	}
	if cond.Holds(rounded) {
		d.Reason = fmt.Sprintf("rounded max %d does not resolve No", rounded)
		return d
	}

	d.NoProbability = decimal.NewFromInt(1)
	d.ExpectedValue = c.Payout.Sub(decimal.NewFromInt(int64(m.NoAsk)))
	d.Edge = d.NoProbability.Sub(d.MarketImpliedNo)

	if m.NoAsk <= 0 || m.NoAsk >= c.MaxAsk {
		d.Reason = fmt.Sprintf("no ask %d outside (0, %d)", m.NoAsk, c.MaxAsk)
		return d
	}

	d.Action = Action{Kind: Trade, Side: model.SideNo, Price: m.NoAsk}
	d.Reason = fmt.Sprintf("rounded max %d resolves No", rounded)
	return d
}

func newDecision(m model.Market, cond condition.Condition, name StrategyName, payout decimal.Decimal) Decision {
	return Decision{
		Market:          m,
		Condition:       cond,
		Strategy:        name,
		MarketImpliedNo: decimal.NewFromInt(int64(m.NoAsk)).Div(payout),
		Action:          Action{Kind: NoTrade},
	}
}
