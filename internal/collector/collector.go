package collector

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ppiankov/canaryspectre/internal/budget"
	"github.com/ppiankov/canaryspectre/internal/cluster"
	"github.com/ppiankov/canaryspectre/internal/metrics"
	"github.com/ppiankov/canaryspectre/internal/models"
	"github.com/ppiankov/canaryspectre/internal/traffic"
	"github.com/ppiankov/canaryspectre/pkg/config"
)

// Collector assembles the canary report
type Collector interface {
	Collect(ctx context.Context) (*models.Report, error)
}

// TrafficRunner runs the synthetic traffic test
type TrafficRunner interface {
	Run(ctx context.Context) (models.TrafficResults, error)
}

// BudgetReporter returns the error-budget figures
type BudgetReporter interface {
	Report() models.ErrorBudget
}

// Sources are the external systems the report is built from
type Sources struct {
	Cluster cluster.Inspector
	Metrics metrics.Querier
	Traffic TrafficRunner
	Budget  BudgetReporter
}

// collector implements the Collector interface
type collector struct {
	config   *config.Config
	sources  Sources
	progress io.Writer
}

// New creates a collector over explicit sources. Progress lines go to
// progress, which may be nil.
func New(cfg *config.Config, sources Sources, progress io.Writer) Collector {
	if progress == nil {
		progress = io.Discard
	}
	return &collector{
		config:   cfg,
		sources:  sources,
		progress: progress,
	}
}

// NewFromConfig wires the real cluster, metrics and traffic sources
func NewFromConfig(cfg *config.Config, progress io.Writer) (Collector, error) {
	inspector, err := cluster.New(cfg)
	if err != nil {
		slog.Warn("failed to initialize cluster inspector, continuing without cluster data",
			slog.String("source", cfg.ClusterSource),
			slog.String("error", err.Error()),
		)
		inspector = cluster.Unavailable(err)
	}

	querier, err := metrics.NewClient(cfg.PrometheusURL, cfg.MetricsTimeout, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics client: %w", err)
	}

	return New(cfg, Sources{
		Cluster: inspector,
		Metrics: querier,
		Traffic: traffic.NewSampler(cfg, nil),
		Budget:  budget.NewReporter(cfg),
	}, progress), nil
}

// Collect runs each step in order. Only the traffic test can fail the run.
func (c *collector) Collect(ctx context.Context) (*models.Report, error) {
	report := &models.Report{}

	fmt.Fprintln(c.progress, "☸️  Gathering deployment and service data...")
	report.Deployment = cluster.Inspect(ctx, c.sources.Cluster, c.config)

	fmt.Fprintln(c.progress, "📊 Gathering metrics...")
	report.Metrics = metrics.NewCollector(c.sources.Metrics, c.config).Collect(ctx)

	fmt.Fprintln(c.progress, "🚦 Running traffic distribution test...")
	results, err := c.sources.Traffic.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("traffic test failed: %w", err)
	}
	report.TrafficTestResults = results

	fmt.Fprintln(c.progress, "🧮 Calculating error budget...")
	report.ErrorBudget = c.sources.Budget.Report()

	report.Observations = models.Observations{
		UnexpectedBehaviors:   c.config.UnexpectedBehaviors,
		SuggestedImprovements: c.config.SuggestedImprovements,
	}

	return report, nil
}
