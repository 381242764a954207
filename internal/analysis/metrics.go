package analysis

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"optiscope/domain/core"
	"optiscope/domain/optimization"
)

// DefaultAnnualizationFactor is the trading periods per year used by the Calmar ratio
const DefaultAnnualizationFactor = 252

// MetricsCalculator computes whole-dataset trading metrics
type MetricsCalculator struct {
	AnnualizationFactor float64
}

// NewMetricsCalculator uses DefaultAnnualizationFactor when factor is not positive
func NewMetricsCalculator(factor float64) MetricsCalculator {
	if factor <= 0 {
		factor = DefaultAnnualizationFactor
	}
	return MetricsCalculator{AnnualizationFactor: factor}
}

// Compute derives AdvancedMetrics from the filtered profit and drawdown columns.
//
// Profit factor and risk/reward divide by 1 instead of 0 when no run lost money, so an
// all-winning set reports profit_factor == total profit. Sharpe is mean/stddev of profit
// with no risk-free rate.
func (m MetricsCalculator) Compute(f *FilteredTable) (*optimization.AdvancedMetrics, error) {
	if f == nil {
		return nil, core.ErrNotComputed
	}
	if f.ProfitColumn == "" {
		return nil, core.NewMissingColumnError("profit", f.Columns)
	}

	profits := stats.Float64Data(f.Profits())
	out := &optimization.AdvancedMetrics{TotalOptimizations: f.Len()}
	if len(profits) == 0 {
		return out, nil
	}

	out.TotalProfit, _ = profits.Sum()
	out.AverageProfit, _ = profits.Mean()
	out.MaxProfit, _ = profits.Max()
	out.MinProfit, _ = profits.Min()

	drawdowns := stats.Float64Data(f.Drawdowns())
	if len(drawdowns) > 0 {
		out.MaxDrawdown, _ = drawdowns.Max()
		out.AverageDrawdown, _ = drawdowns.Mean()
	}
	if out.MaxDrawdown > 0 {
		out.CalmarRatio = out.AverageProfit * m.AnnualizationFactor / out.MaxDrawdown
		out.RecoveryFactor = out.TotalProfit / out.MaxDrawdown
	}

	if len(profits) > 1 {
		mean, std := stat.MeanStdDev(profits, nil)
		if std > 0 {
			out.SharpeRatio = mean / std
		}
	}

	var wins, losses stats.Float64Data
	for _, p := range profits {
		switch {
		case p > 0:
			wins = append(wins, p)
		case p < 0:
			losses = append(losses, p)
		}
	}
	out.WinningRuns = len(wins)
	out.LosingRuns = len(losses)
	out.WinRate = float64(len(wins)) / float64(len(profits)) * 100

	totalWins := 0.0
	if len(wins) > 0 {
		totalWins, _ = wins.Sum()
		out.AverageWin, _ = wins.Mean()
	}
	totalLosses, lossDivisor := 1.0, 1.0
	if len(losses) > 0 {
		sumLoss, _ := losses.Sum()
		meanLoss, _ := losses.Mean()
		totalLosses = -sumLoss
		out.AverageLoss = -meanLoss
		lossDivisor = out.AverageLoss
	}
	out.ProfitFactor = totalWins / totalLosses
	out.RiskRewardRatio = out.AverageWin / lossDivisor

	return out, nil
}
