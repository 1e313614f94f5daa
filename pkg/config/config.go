package config

import "time"

// Cluster sources
const (
	ClusterSourceAPI     = "api"
	ClusterSourceKubectl = "kubectl"
)

// Output formats
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Config holds all runtime configuration
type Config struct {
	// Kubernetes settings
	Namespace        string
	KubeConfig       string
	ClusterSource    string
	KubectlPath      string
	K8sRateLimit     int // calls per second, 0 disables throttling
	MainPodPattern   string
	CanaryPodPattern string
	MainService      string
	CanaryService    string
	IngressHost      string

	// Metrics settings
	PrometheusURL  string
	MetricsTimeout time.Duration
	MainApp        string
	CanaryApp      string
	MainVersion    string
	CanaryVersion  string
	RateWindow     string

	// Traffic test settings
	TrafficURL     string
	Requests       int
	RequestDelay   time.Duration
	RequestTimeout time.Duration
	CanaryMarker   string

	// Error budget settings
	SLOTarget                      float64
	BudgetWindow                   time.Duration
	RemainingErrorBudgetPercentage float64

	// Observations
	UnexpectedBehaviors   string
	SuggestedImprovements string

	// Output settings
	OutputPath string
	Format     string

	// Operational flags
	DryRun bool
}

// DefaultConfig returns the values the canary-demo setup expects
func DefaultConfig() *Config {
	return &Config{
		Namespace:        "canary-demo",
		ClusterSource:    ClusterSourceAPI,
		KubectlPath:      "kubectl",
		K8sRateLimit:     10,
		MainPodPattern:   "canary-demo-d",
		CanaryPodPattern: "canary-demo-canary",
		MainService:      "canary-demo",
		CanaryService:    "canary-demo-canary",
		IngressHost:      "canary-demo.local",

		PrometheusURL:  "http://localhost:9090",
		MetricsTimeout: 10 * time.Second,
		MainApp:        "main-deployment",
		CanaryApp:      "canary-deployment",
		MainVersion:    "v1",
		CanaryVersion:  "v2",
		RateWindow:     "5m",

		TrafficURL:     "http://canary-demo.local",
		Requests:       20,
		RequestDelay:   100 * time.Millisecond,
		RequestTimeout: 10 * time.Second,
		CanaryMarker:   "canary-deployment",

		SLOTarget:                      0.999,
		BudgetWindow:                   30 * 24 * time.Hour,
		RemainingErrorBudgetPercentage: 100.00,

		UnexpectedBehaviors:   "No unexpected behaviors noted.",
		SuggestedImprovements: "Consider optimizing traffic routing logic for more balanced distribution.",

		OutputPath: "answers.yml",
		Format:     FormatYAML,
		DryRun:     false,
	}
}
