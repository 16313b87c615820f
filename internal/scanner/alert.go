package scanner

import (
	"fmt"
	"strings"

	"github.com/rickgao/kalshi-highs/internal/decision"
	"github.com/rickgao/kalshi-highs/internal/series"
)

const alertTimeLayout = "2006-01-02 15:04 -0700"

// ComposeAlert builds the subject and body of a trade alert. The report must
// carry an extremum.
func ComposeAlert(cfg Config, report *Report) (subject, body string) {
	ext := report.Extremum

	if report.Strategy == decision.StrategyConservative {
		subject = fmt.Sprintf("Kalshi Alert: High Temp %s Market(s) Resolved NO for %s", stationLabel(cfg), report.DateToken)
	} else {
		subject = fmt.Sprintf("Kalshi Alert: High Temp %s +EV NO Trade(s) for %s", stationLabel(cfg), report.DateToken)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Station %s, %s (strategy: %s)\n", cfg.StationID, report.Date, report.Strategy)
	fmt.Fprintf(&b, "Max so far: %s°F at %s (officially %d°F)\n",
		ext.Max.Fahrenheit.StringFixed(2), ext.Max.Timestamp.Format(alertTimeLayout), ext.Rounded())
	if w := ext.Max.Uncertainty(); w != nil {
		fmt.Fprintf(&b, "Reading was pre-rounded; true value between %s and %s °C\n", w.Low, w.High)
	}
	fmt.Fprintf(&b, "Latest: %s°F at %s\n",
		ext.Latest.Fahrenheit.StringFixed(2), ext.Latest.Timestamp.Format(alertTimeLayout))
	if ext.Settled {
		b.WriteString("The high appears to have been reached.\n")
	} else {
		b.WriteString("Temperature may still be rising.\n")
	}

	b.WriteString("\nRecommended trades:\n")
	for _, d := range report.Decisions {
		if !d.Action.IsTrade() {
			continue
		}
		fmt.Fprintf(&b, "  %s (%s): buy NO at %d¢, EV %s¢\n",
			d.Market.Ticker, d.Market.Subtitle, d.Action.Price, d.ExpectedValue.StringFixed(2))
	}

	b.WriteString("\nAll markets by expected value:\n")
	for _, d := range report.Decisions {
		fmt.Fprintf(&b, "  %-28s %-16s no ask %3d¢  P(NO) %s  EV %7s  %s\n",
			d.Market.Ticker, d.Condition, d.Market.NoAsk,
			d.NoProbability.StringFixed(3), d.ExpectedValue.StringFixed(2), d.Action)
	}
	if len(report.Skipped) > 0 {
		b.WriteString("\nSkipped:\n")
		for _, sk := range report.Skipped {
			fmt.Fprintf(&b, "  %s: %s\n", sk.Ticker, sk.Reason)
		}
	}

	fmt.Fprintf(&b, "\nTemperature log (last %d readings):\n", cfg.LogLines)
	writeReadings(&b, tail(report.Readings, cfg.LogLines), ext.Max)

	return subject, b.String()
}

func stationLabel(cfg Config) string {
	if cfg.UsualTime == "" {
		return cfg.StationID
	}
	return cfg.StationID + " " + cfg.UsualTime
}

func tail(obs []series.CorrectedObservation, n int) []series.CorrectedObservation {
	if n <= 0 || len(obs) <= n {
		return obs
	}
	return obs[len(obs)-n:]
}

func writeReadings(b *strings.Builder, obs []series.CorrectedObservation, peak series.CorrectedObservation) {
	for _, o := range obs {
		fmt.Fprintf(b, "  %s  %6s°%s  %7s°F", o.Timestamp.Format(alertTimeLayout), o.Raw, o.Unit, o.Fahrenheit.StringFixed(2))
		if o.Timestamp.Equal(peak.Timestamp) {
			b.WriteString("  <-- max")
		}
		b.WriteString("\n")
	}
}
