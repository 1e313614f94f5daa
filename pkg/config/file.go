package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFileYAML is the canonical config filename.
	DefaultConfigFileYAML = ".canaryspectre.yaml"
	// DefaultConfigFileYML is a compatible alternate config filename.
	DefaultConfigFileYML = ".canaryspectre.yml"
)

// FileConfig represents values loaded from a .canaryspectre.yaml file.
type FileConfig struct {
	Namespace        string `yaml:"namespace"`
	KubeConfig       string `yaml:"kubeconfig"`
	ClusterSource    string `yaml:"cluster_source"`
	KubectlPath      string `yaml:"kubectl"`
	K8sRateLimit     *int   `yaml:"k8s_rate_limit"`
	MainPodPattern   string `yaml:"main_pod_pattern"`
	CanaryPodPattern string `yaml:"canary_pod_pattern"`
	MainService      string `yaml:"main_service"`
	CanaryService    string `yaml:"canary_service"`
	IngressHost      string `yaml:"ingress_host"`

	PrometheusURL  string `yaml:"prometheus_url"`
	MetricsTimeout string `yaml:"metrics_timeout"`
	MainApp        string `yaml:"main_app"`
	CanaryApp      string `yaml:"canary_app"`
	MainVersion    string `yaml:"main_version"`
	CanaryVersion  string `yaml:"canary_version"`
	RateWindow     string `yaml:"rate_window"`

	TrafficURL     string `yaml:"traffic_url"`
	Requests       *int   `yaml:"requests"`
	Delay          string `yaml:"delay"`
	RequestTimeout string `yaml:"request_timeout"`
	CanaryMarker   string `yaml:"canary_marker"`

	SLOTarget       *float64 `yaml:"slo_target"`
	BudgetWindow    string   `yaml:"budget_window"`
	RemainingBudget *float64 `yaml:"remaining_error_budget_percentage"`
	Unexpected      string   `yaml:"unexpected_behaviors"`
	Improvements    string   `yaml:"suggested_improvements"`
	Output          string   `yaml:"output"`
	Format          string   `yaml:"format"`
}

// Normalize trims string fields.
func (fc *FileConfig) Normalize() {
	if fc == nil {
		return
	}
	for _, s := range []*string{
		&fc.Namespace, &fc.KubeConfig, &fc.ClusterSource, &fc.KubectlPath,
		&fc.MainPodPattern, &fc.CanaryPodPattern, &fc.MainService, &fc.CanaryService,
		&fc.IngressHost, &fc.PrometheusURL, &fc.MetricsTimeout, &fc.MainApp,
		&fc.CanaryApp, &fc.MainVersion, &fc.CanaryVersion, &fc.RateWindow,
		&fc.TrafficURL, &fc.Delay, &fc.RequestTimeout, &fc.CanaryMarker,
		&fc.BudgetWindow, &fc.Unexpected, &fc.Improvements, &fc.Output, &fc.Format,
	} {
		*s = strings.TrimSpace(*s)
	}
}

// Apply copies file values onto cfg. Values whose flag name is reported as
// changed by the caller are left alone so explicit flags win.
func (fc *FileConfig) Apply(cfg *Config, changed func(flag string) bool) error {
	if fc == nil || cfg == nil {
		return nil
	}
	if changed == nil {
		changed = func(string) bool { return false }
	}

	setString := func(flag, value string, dst *string) {
		if value != "" && !changed(flag) {
			*dst = value
		}
	}
	setDuration := func(flag, value string, dst *time.Duration) error {
		if value == "" || changed(flag) {
			return nil
		}
		d, err := ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s in config file: %w", flag, err)
		}
		*dst = d
		return nil
	}

	setString("namespace", fc.Namespace, &cfg.Namespace)
	setString("kubeconfig", fc.KubeConfig, &cfg.KubeConfig)
	setString("cluster-source", fc.ClusterSource, &cfg.ClusterSource)
	setString("kubectl", fc.KubectlPath, &cfg.KubectlPath)
	setString("main-pod-pattern", fc.MainPodPattern, &cfg.MainPodPattern)
	setString("canary-pod-pattern", fc.CanaryPodPattern, &cfg.CanaryPodPattern)
	setString("main-service", fc.MainService, &cfg.MainService)
	setString("canary-service", fc.CanaryService, &cfg.CanaryService)
	setString("ingress-host", fc.IngressHost, &cfg.IngressHost)
	setString("prometheus-url", fc.PrometheusURL, &cfg.PrometheusURL)
	setString("main-app", fc.MainApp, &cfg.MainApp)
	setString("canary-app", fc.CanaryApp, &cfg.CanaryApp)
	setString("main-version", fc.MainVersion, &cfg.MainVersion)
	setString("canary-version", fc.CanaryVersion, &cfg.CanaryVersion)
	setString("rate-window", fc.RateWindow, &cfg.RateWindow)
	setString("traffic-url", fc.TrafficURL, &cfg.TrafficURL)
	setString("canary-marker", fc.CanaryMarker, &cfg.CanaryMarker)
	setString("unexpected-behaviors", fc.Unexpected, &cfg.UnexpectedBehaviors)
	setString("suggested-improvements", fc.Improvements, &cfg.SuggestedImprovements)
	setString("output", fc.Output, &cfg.OutputPath)
	setString("format", fc.Format, &cfg.Format)

	if fc.K8sRateLimit != nil && !changed("k8s-rate-limit") {
		cfg.K8sRateLimit = *fc.K8sRateLimit
	}
	if fc.Requests != nil && !changed("requests") {
		cfg.Requests = *fc.Requests
	}
	if fc.SLOTarget != nil && !changed("slo-target") {
		cfg.SLOTarget = *fc.SLOTarget
	}
	if fc.RemainingBudget != nil && !changed("remaining-budget") {
		cfg.RemainingErrorBudgetPercentage = *fc.RemainingBudget
	}

	for _, d := range []struct {
		flag  string
		value string
		dst   *time.Duration
	}{
		{"metrics-timeout", fc.MetricsTimeout, &cfg.MetricsTimeout},
		{"delay", fc.Delay, &cfg.RequestDelay},
		{"request-timeout", fc.RequestTimeout, &cfg.RequestTimeout},
		{"budget-window", fc.BudgetWindow, &cfg.BudgetWindow},
	} {
		if err := setDuration(d.flag, d.value, d.dst); err != nil {
			return err
		}
	}

	return nil
}

// AutoLoadFile discovers and loads the first available config file.
func AutoLoadFile() (*FileConfig, string, error) {
	candidates := []string{
		DefaultConfigFileYAML,
		DefaultConfigFileYML,
	}

	if homeDir, err := os.UserHomeDir(); err == nil && strings.TrimSpace(homeDir) != "" {
		candidates = append(candidates,
			filepath.Join(homeDir, DefaultConfigFileYAML),
			filepath.Join(homeDir, DefaultConfigFileYML),
		)
	}

	return LoadFirstExistingFile(candidates)
}

// LoadFirstExistingFile loads the first config file that exists in paths.
func LoadFirstExistingFile(paths []string) (*FileConfig, string, error) {
	for _, path := range paths {
		candidate := strings.TrimSpace(path)
		if candidate == "" {
			continue
		}

		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("failed to access config file %q: %w", candidate, err)
		}
		if info.IsDir() {
			return nil, "", fmt.Errorf("config path %q is a directory, expected a file", candidate)
		}

		cfg, err := LoadFile(candidate)
		if err != nil {
			return nil, "", err
		}
		return cfg, candidate, nil
	}

	return nil, "", nil
}

// LoadFile loads config values from a specific YAML file path.
func LoadFile(path string) (*FileConfig, error) {
	filename := strings.TrimSpace(path)
	if filename == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", filename, err)
	}

	cfg := &FileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", filename, err)
	}

	cfg.Normalize()
	return cfg, nil
}
