// Package budget produces the error-budget section of the report.
//
// The figures are placeholders: the monthly allowance comes from a fixed SLO
// target and window, and the remaining percentage is a configured constant.
// Neither is derived from collected data.
package budget

import (
	"math"
	"time"

	"github.com/ppiankov/canaryspectre/internal/models"
	"github.com/ppiankov/canaryspectre/pkg/config"
)

// Reporter returns the error-budget figures
type Reporter struct {
	sloTarget float64
	window    time.Duration
	remaining float64
}

// NewReporter creates a reporter from cfg
func NewReporter(cfg *config.Config) *Reporter {
	return &Reporter{
		sloTarget: cfg.SLOTarget,
		window:    cfg.BudgetWindow,
		remaining: cfg.RemainingErrorBudgetPercentage,
	}
}

// AllowedDowntime is the downtime a target allows over window, in seconds,
// rounded to two decimals.
func AllowedDowntime(target float64, window time.Duration) float64 {
	seconds := (1 - target) * window.Seconds()
	return math.Round(seconds*100) / 100
}

// Report returns the budget section
func (r *Reporter) Report() models.ErrorBudget {
	return models.ErrorBudget{
		MonthlyErrorBudgetSeconds:      models.Float(AllowedDowntime(r.sloTarget, r.window)),
		RemainingErrorBudgetPercentage: models.Float(r.remaining),
	}
}
