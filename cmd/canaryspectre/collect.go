package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/canaryspectre/internal/collector"
	"github.com/ppiankov/canaryspectre/internal/reporter"
	"github.com/ppiankov/canaryspectre/pkg/config"
	"github.com/spf13/cobra"
)

// NewCollectCmd creates the collect command
func NewCollectCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	// String variables for custom duration parsing
	var metricsTimeoutStr string
	var delayStr string
	var requestTimeoutStr string
	var budgetWindowStr string
	var configPath string

	cmd := &cobra.Command{
		Use:     "collect",
		Aliases: []string{"populate"},
		Short:   "Collect canary diagnostics and write the report",
		Long: `Inspect the canary deployment, query Prometheus, send a short burst of
synthetic traffic through the ingress and write everything to one report.

Cluster and metrics failures are recorded as null values. A failed
traffic request aborts the run.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error

			if cfg.MetricsTimeout, err = config.ParseDuration(metricsTimeoutStr); err != nil {
				return fmt.Errorf("invalid --metrics-timeout duration: %w", err)
			}
			if cfg.RequestDelay, err = config.ParseDuration(delayStr); err != nil {
				return fmt.Errorf("invalid --delay duration: %w", err)
			}
			if cfg.RequestTimeout, err = config.ParseDuration(requestTimeoutStr); err != nil {
				return fmt.Errorf("invalid --request-timeout duration: %w", err)
			}
			if cfg.BudgetWindow, err = config.ParseDuration(budgetWindowStr); err != nil {
				return fmt.Errorf("invalid --budget-window duration: %w", err)
			}

			if err := loadConfigFile(cmd, cfg, configPath); err != nil {
				return err
			}

			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			progress := cmd.OutOrStdout()
			if cfg.OutputPath == reporter.StdoutPath {
				progress = cmd.ErrOrStderr()
			}

			col, err := collector.NewFromConfig(cfg, progress)
			if err != nil {
				return fmt.Errorf("failed to create collector: %w", err)
			}
			return runCollect(cmd.Context(), cfg, col, cmd.OutOrStdout(), progress)
		},
	}

	// Kubernetes flags
	cmd.Flags().StringVarP(&cfg.Namespace, "namespace", "n", cfg.Namespace, "Namespace of the canary deployment")
	cmd.Flags().StringVar(&cfg.KubeConfig, "kubeconfig", "", "Path to kubeconfig (default: in-cluster, then ~/.kube/config)")
	cmd.Flags().StringVar(&cfg.ClusterSource, "cluster-source", cfg.ClusterSource, "Cluster data source (api, kubectl)")
	cmd.Flags().StringVar(&cfg.KubectlPath, "kubectl", cfg.KubectlPath, "kubectl binary used by --cluster-source kubectl")
	cmd.Flags().IntVar(&cfg.K8sRateLimit, "k8s-rate-limit", cfg.K8sRateLimit, "Kubernetes API rate limit (requests/sec, 0 for unthrottled)")
	cmd.Flags().StringVar(&cfg.MainPodPattern, "main-pod-pattern", cfg.MainPodPattern, "Substring counted as a main pod")
	cmd.Flags().StringVar(&cfg.CanaryPodPattern, "canary-pod-pattern", cfg.CanaryPodPattern, "Substring counted as a canary pod")
	cmd.Flags().StringVar(&cfg.MainService, "main-service", cfg.MainService, "Main service name")
	cmd.Flags().StringVar(&cfg.CanaryService, "canary-service", cfg.CanaryService, "Canary service name")
	cmd.Flags().StringVar(&cfg.IngressHost, "ingress-host", cfg.IngressHost, "Ingress host recorded in the report")

	// Metrics flags
	cmd.Flags().StringVar(&cfg.PrometheusURL, "prometheus-url", cfg.PrometheusURL, "Prometheus base URL")
	cmd.Flags().StringVar(&metricsTimeoutStr, "metrics-timeout", "10s", "Per-query timeout (e.g., 5s, 1m)")
	cmd.Flags().StringVar(&cfg.MainApp, "main-app", cfg.MainApp, "app label of the main deployment")
	cmd.Flags().StringVar(&cfg.CanaryApp, "canary-app", cfg.CanaryApp, "app label of the canary deployment")
	cmd.Flags().StringVar(&cfg.MainVersion, "main-version", cfg.MainVersion, "version label of the main deployment")
	cmd.Flags().StringVar(&cfg.CanaryVersion, "canary-version", cfg.CanaryVersion, "version label of the canary deployment")
	cmd.Flags().StringVar(&cfg.RateWindow, "rate-window", cfg.RateWindow, "Range used by the request rate queries")

	// Traffic flags
	cmd.Flags().StringVar(&cfg.TrafficURL, "traffic-url", cfg.TrafficURL, "URL the traffic test sends requests to")
	cmd.Flags().IntVar(&cfg.Requests, "requests", cfg.Requests, "Number of traffic test requests")
	cmd.Flags().StringVar(&delayStr, "delay", "100ms", "Delay between traffic test requests")
	cmd.Flags().StringVar(&requestTimeoutStr, "request-timeout", "10s", "Per-request timeout")
	cmd.Flags().StringVar(&cfg.CanaryMarker, "canary-marker", cfg.CanaryMarker, "Response body substring identifying the canary")

	// Report flags
	cmd.Flags().Float64Var(&cfg.SLOTarget, "slo-target", cfg.SLOTarget, "Availability target the error budget is derived from")
	cmd.Flags().StringVar(&budgetWindowStr, "budget-window", "30d", "Error budget window (e.g., 7d, 30d)")
	cmd.Flags().Float64Var(&cfg.RemainingErrorBudgetPercentage, "remaining-budget", cfg.RemainingErrorBudgetPercentage, "Remaining error budget percentage")
	cmd.Flags().StringVar(&cfg.UnexpectedBehaviors, "unexpected-behaviors", cfg.UnexpectedBehaviors, "Observed unexpected behaviors")
	cmd.Flags().StringVar(&cfg.SuggestedImprovements, "suggested-improvements", cfg.SuggestedImprovements, "Suggested improvements")

	// Output flags
	cmd.Flags().StringVarP(&cfg.OutputPath, "output", "o", cfg.OutputPath, "Report path ('-' for stdout)")
	cmd.Flags().StringVar(&cfg.Format, "format", cfg.Format, "Output format (yaml, json)")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file (default: .canaryspectre.yaml in cwd, then home)")

	// Operational flags
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "Dry run mode (don't write output)")

	return cmd
}

// loadConfigFile applies the --config file, or the first auto-discovered
// one, underneath any flags set on the command line.
func loadConfigFile(cmd *cobra.Command, cfg *config.Config, path string) error {
	var (
		fileCfg *config.FileConfig
		source  string
		err     error
	)

	if strings.TrimSpace(path) != "" {
		fileCfg, err = config.LoadFile(path)
		source = path
	} else {
		fileCfg, source, err = config.AutoLoadFile()
	}
	if err != nil {
		return err
	}
	if fileCfg == nil {
		return nil
	}

	slog.Debug("loaded config file", slog.String("path", source))
	return fileCfg.Apply(cfg, cmd.Flags().Changed)
}

// runCollect executes the collection workflow. The report goes to stdout
// when the output path is "-"; progress lines go to out.
func runCollect(ctx context.Context, cfg *config.Config, col collector.Collector, stdout, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()

	slog.Debug("starting collection",
		slog.String("namespace", cfg.Namespace),
		slog.String("cluster_source", cfg.ClusterSource),
		slog.String("prometheus_url", cfg.PrometheusURL),
		slog.String("traffic_url", cfg.TrafficURL),
		slog.Int("requests", cfg.Requests),
	)

	report, err := col.Collect(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect report: %w", err)
	}
	fmt.Fprintf(out, "✓ Traffic: %d/%d canary responses (%.2f%%)\n",
		report.TrafficTestResults.CanaryResponsesReceived,
		report.TrafficTestResults.TotalRequestsSent,
		float64(report.TrafficTestResults.ActualCanaryPercentage))

	if cfg.DryRun {
		fmt.Fprintln(out, "🏃 Dry run mode - skipping output")
	} else {
		fmt.Fprintln(out, "📝 Writing report...")
		if err := reporter.New(cfg, stdout).Generate(report); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
		if cfg.OutputPath != reporter.StdoutPath {
			fmt.Fprintf(out, "✓ %s has been populated with the gathered data.\n", cfg.OutputPath)
		}
	}

	fmt.Fprintf(out, "\n✅ Collection complete in %s!\n", time.Since(startTime).Round(time.Millisecond))
	return nil
}
