package metrics

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/canaryspectre/internal/models"
	"github.com/ppiankov/canaryspectre/pkg/config"
)

// Collector gathers the per-variant scalars and request rates
type Collector struct {
	querier Querier
	config  *config.Config
}

// NewCollector creates a collector that reads through querier
func NewCollector(querier Querier, cfg *config.Config) *Collector {
	return &Collector{querier: querier, config: cfg}
}

type query struct {
	expr string
	dst  **string
}

// Queries lists the expressions Collect runs, in order.
func (c *Collector) Queries() []string {
	var snapshot models.MetricsSnapshot
	plan := c.plan(&snapshot)
	exprs := make([]string, len(plan))
	for i, q := range plan {
		exprs[i] = q.expr
	}
	return exprs
}

func (c *Collector) plan(s *models.MetricsSnapshot) []query {
	cfg := c.config
	rate := func(version string) string {
		return fmt.Sprintf(`rate(http_requests_total{version="%s"}[%s])`, version, cfg.RateWindow)
	}
	return []query{
		{fmt.Sprintf(`http_requests_total{app="%s"}`, cfg.MainApp), &s.MainDeployment.HTTPRequestsTotal},
		{fmt.Sprintf(`process_cpu_seconds_total{app="%s"}`, cfg.MainApp), &s.MainDeployment.ProcessCPUSecondsTotal},
		{fmt.Sprintf(`process_resident_memory_bytes{app="%s"}`, cfg.MainApp), &s.MainDeployment.ProcessResidentMemoryBytes},
		{fmt.Sprintf(`http_requests_total{app="%s"}`, cfg.CanaryApp), &s.CanaryDeployment.HTTPRequestsTotal},
		{fmt.Sprintf(`process_cpu_seconds_total{app="%s"}`, cfg.CanaryApp), &s.CanaryDeployment.ProcessCPUSecondsTotal},
		{fmt.Sprintf(`process_resident_memory_bytes{app="%s"}`, cfg.CanaryApp), &s.CanaryDeployment.ProcessResidentMemoryBytes},
		{rate(cfg.MainVersion), &s.RequestRates.MainRequestRate},
		{rate(cfg.CanaryVersion), &s.RequestRates.CanaryRequestRate},
	}
}

// Collect runs every query sequentially. Absent and failed samples both
// render as nil; failures are logged so they can be told apart.
func (c *Collector) Collect(ctx context.Context) models.MetricsSnapshot {
	var snapshot models.MetricsSnapshot

	for _, q := range c.plan(&snapshot) {
		sample := c.querier.Query(ctx, q.expr)
		switch sample.State {
		case models.SampleFailed:
			slog.Warn("metrics query failed",
				slog.String("query", q.expr),
				slog.String("error", sample.Err.Error()),
			)
		case models.SampleAbsent:
			slog.Debug("metrics query returned no series", slog.String("query", q.expr))
		}
		*q.dst = sample.Ptr()
	}

	return snapshot
}
