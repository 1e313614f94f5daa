package models

// Report is the complete output structure. It always carries the five
// top-level sections, even when every leaf inside them is null.
type Report struct {
	Deployment         DeploymentStatus `json:"deployment" yaml:"deployment"`
	Metrics            MetricsSnapshot  `json:"metrics" yaml:"metrics"`
	TrafficTestResults TrafficResults   `json:"traffic_test_results" yaml:"traffic_test_results"`
	ErrorBudget        ErrorBudget      `json:"error_budget" yaml:"error_budget"`
	Observations       Observations     `json:"observations" yaml:"observations"`
}

// DeploymentStatus is what the cluster inspector saw
type DeploymentStatus struct {
	PodsStatus       PodsStatus       `json:"pods_status" yaml:"pods_status"`
	ServiceEndpoints ServiceEndpoints `json:"service_endpoints" yaml:"service_endpoints"`
	IngressDetails   IngressDetails   `json:"ingress_details" yaml:"ingress_details"`
}

// PodsStatus holds substring counts over the namespace pod listing
type PodsStatus struct {
	MainPodsRunning   int `json:"main_pods_running" yaml:"main_pods_running"`
	CanaryPodsRunning int `json:"canary_pods_running" yaml:"canary_pods_running"`
}

// ServiceEndpoints holds the cluster IPs of the two services
type ServiceEndpoints struct {
	MainServiceClusterIP   *string `json:"main_service_cluster_ip" yaml:"main_service_cluster_ip"`
	CanaryServiceClusterIP *string `json:"canary_service_cluster_ip" yaml:"canary_service_cluster_ip"`
}

// IngressDetails holds the load balancer address and the published host
type IngressDetails struct {
	Address *string `json:"address" yaml:"address"`
	Host    string  `json:"host" yaml:"host"`
}

// MetricsSnapshot groups the per-variant scalars and the request rates
type MetricsSnapshot struct {
	MainDeployment   DeploymentMetrics `json:"main_deployment_metrics" yaml:"main_deployment_metrics"`
	CanaryDeployment DeploymentMetrics `json:"canary_deployment_metrics" yaml:"canary_deployment_metrics"`
	RequestRates     RequestRates      `json:"prometheus_metrics" yaml:"prometheus_metrics"`
}

// DeploymentMetrics are raw sample values as returned by the metrics API
type DeploymentMetrics struct {
	HTTPRequestsTotal          *string `json:"http_requests_total" yaml:"http_requests_total"`
	ProcessCPUSecondsTotal     *string `json:"process_cpu_seconds_total" yaml:"process_cpu_seconds_total"`
	ProcessResidentMemoryBytes *string `json:"process_resident_memory_bytes" yaml:"process_resident_memory_bytes"`
}

// RequestRates are per-version request rates
type RequestRates struct {
	MainRequestRate   *string `json:"main_request_rate" yaml:"main_request_rate"`
	CanaryRequestRate *string `json:"canary_request_rate" yaml:"canary_request_rate"`
}

// TrafficResults is the outcome of the synthetic traffic test
type TrafficResults struct {
	TotalRequestsSent       int   `json:"total_requests_sent" yaml:"total_requests_sent"`
	MainResponsesReceived   int   `json:"main_responses_received" yaml:"main_responses_received"`
	CanaryResponsesReceived int   `json:"canary_responses_received" yaml:"canary_responses_received"`
	ActualCanaryPercentage  Float `json:"actual_canary_percentage" yaml:"actual_canary_percentage"`
}

// ErrorBudget holds placeholder budget figures
type ErrorBudget struct {
	MonthlyErrorBudgetSeconds      Float `json:"monthly_error_budget_seconds" yaml:"monthly_error_budget_seconds"`
	RemainingErrorBudgetPercentage Float `json:"remaining_error_budget_percentage" yaml:"remaining_error_budget_percentage"`
}

// Observations is free text
type Observations struct {
	UnexpectedBehaviors   string `json:"unexpected_behaviors" yaml:"unexpected_behaviors"`
	SuggestedImprovements string `json:"suggested_improvements" yaml:"suggested_improvements"`
}
