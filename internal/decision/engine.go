package decision

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-highs/internal/condition"
	"github.com/rickgao/kalshi-highs/internal/model"
	"github.com/rickgao/kalshi-highs/internal/nws"
)

// Config selects and parameterizes a strategy.
type Config struct {
	Strategy         StrategyName
	MinExpectedValue float64 // cents; used by probabilistic
	Payout           int     // cents per winning contract
	MaxAsk           int     // cents, exclusive; used by conservative
}

// DefaultConfig returns the conservative strategy with the usual thresholds.
func DefaultConfig() Config {
	return Config{
		Strategy:         StrategyConservative,
		MinExpectedValue: 1.0,
		Payout:           model.PayoutCents,
		MaxAsk:           95,
	}
}

// Engine evaluates markets with one configured strategy.
type Engine struct {
	strategy Strategy
}

// NewEngine builds an Engine from cfg. Zero Payout and MaxAsk take their
// defaults; MinExpectedValue may be zero on purpose and is left alone.
func NewEngine(cfg Config) (*Engine, error) {
	defaults := DefaultConfig()
	if cfg.Strategy == "" {
		cfg.Strategy = defaults.Strategy
	}
	if cfg.Payout == 0 {
		cfg.Payout = defaults.Payout
	}
	if cfg.MaxAsk == 0 {
		cfg.MaxAsk = defaults.MaxAsk
	}

	payout := decimal.NewFromInt(int64(cfg.Payout))

	var s Strategy
	switch cfg.Strategy {
	case StrategyConservative:
		s = Conservative{MaxAsk: cfg.MaxAsk, Payout: payout}
	case StrategyProbabilistic:
		minEV, err := nws.FromFloat(cfg.MinExpectedValue)
		if err != nil {
			return nil, fmt.Errorf("min expected value: %w", err)
		}
		s = Probabilistic{MinExpectedValue: minEV, Payout: payout}
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}

	return &Engine{strategy: s}, nil
}

// NewEngineWithStrategy wraps an existing Strategy.
func NewEngineWithStrategy(s Strategy) *Engine {
	return &Engine{strategy: s}
}

// Strategy returns the configured strategy's name.
func (e *Engine) Strategy() StrategyName {
	return e.strategy.Name()
}

// Evaluate decides one market. Unpriced markets and asks outside 0-100
// cents fail with ErrInvalidPrice and are never acted upon.
func (e *Engine) Evaluate(m model.Market, cond condition.Condition, r Reading) (Decision, error) {
	if m.Unpriced {
		return Decision{}, fmt.Errorf("%w: %s has no no ask", ErrInvalidPrice, m.Ticker)
	}
	if !model.ValidPrice(m.NoAsk) {
		return Decision{}, fmt.Errorf("%w: %s no ask %d", ErrInvalidPrice, m.Ticker, m.NoAsk)
	}
	return e.strategy.Decide(m, cond, r), nil
}
