package cluster

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ppiankov/canaryspectre/internal/models"
	"github.com/ppiankov/canaryspectre/pkg/config"
)

// Inspector reads deployment state from the cluster
type Inspector interface {
	// PodListing returns a text listing of pods in the namespace, one per line.
	PodListing(ctx context.Context) (string, error)
	// ServiceAddresses maps service name to cluster IP.
	ServiceAddresses(ctx context.Context) (map[string]string, error)
	// IngressAddress returns the first load balancer IP of the first ingress,
	// or "" when none is assigned.
	IngressAddress(ctx context.Context) (string, error)
}

// New builds the inspector selected by cfg.ClusterSource
func New(cfg *config.Config) (Inspector, error) {
	if cfg.ClusterSource == config.ClusterSourceKubectl {
		return NewKubectlInspector(cfg.KubectlPath, cfg.KubeConfig, cfg.Namespace, ExecRunner), nil
	}

	client, err := NewClient(cfg.KubeConfig)
	if err != nil {
		return nil, err
	}
	return NewAPIInspector(client, cfg.Namespace, cfg.K8sRateLimit), nil
}

// CountPods counts occurrences of pattern in the listing. This is substring
// counting: a pattern that prefixes other pod names counts those too.
func CountPods(listing, pattern string) int {
	if pattern == "" {
		return 0
	}
	return strings.Count(listing, pattern)
}

// Inspect queries the cluster and folds every failure into zero counts or
// nil addresses. It never fails the run.
func Inspect(ctx context.Context, inspector Inspector, cfg *config.Config) models.DeploymentStatus {
	status := models.DeploymentStatus{
		IngressDetails: models.IngressDetails{Host: cfg.IngressHost},
	}

	listing, err := inspector.PodListing(ctx)
	if err != nil {
		slog.Warn("failed to list pods",
			slog.String("namespace", cfg.Namespace),
			slog.String("error", err.Error()),
		)
	} else {
		status.PodsStatus.MainPodsRunning = CountPods(listing, cfg.MainPodPattern)
		status.PodsStatus.CanaryPodsRunning = CountPods(listing, cfg.CanaryPodPattern)
	}

	services, err := inspector.ServiceAddresses(ctx)
	if err != nil {
		slog.Warn("failed to list services",
			slog.String("namespace", cfg.Namespace),
			slog.String("error", err.Error()),
		)
	} else {
		status.ServiceEndpoints.MainServiceClusterIP = models.StringPtr(services[cfg.MainService])
		status.ServiceEndpoints.CanaryServiceClusterIP = models.StringPtr(services[cfg.CanaryService])
	}

	address, err := inspector.IngressAddress(ctx)
	if err != nil {
		slog.Warn("failed to read ingress status",
			slog.String("namespace", cfg.Namespace),
			slog.String("error", err.Error()),
		)
	} else {
		status.IngressDetails.Address = models.StringPtr(strings.TrimSpace(address))
	}

	slog.Debug("cluster inspected",
		slog.Int("main_pods", status.PodsStatus.MainPodsRunning),
		slog.Int("canary_pods", status.PodsStatus.CanaryPodsRunning),
	)

	return status
}

type unavailable struct {
	err error
}

// Unavailable returns an inspector whose every call fails with err. It lets
// the run continue when no cluster connection could be set up.
func Unavailable(err error) Inspector {
	return unavailable{err: err}
}

func (u unavailable) PodListing(context.Context) (string, error) {
	return "", u.err
}

func (u unavailable) ServiceAddresses(context.Context) (map[string]string, error) {
	return nil, u.err
}

func (u unavailable) IngressAddress(context.Context) (string, error) {
	return "", u.err
}
