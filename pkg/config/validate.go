package config

import (
	"fmt"
	"strings"
)

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if strings.TrimSpace(c.Namespace) == "" {
		return fmt.Errorf("namespace is required")
	}
	switch c.ClusterSource {
	case ClusterSourceAPI, ClusterSourceKubectl:
	default:
		return fmt.Errorf("invalid cluster source %q: must be %q or %q", c.ClusterSource, ClusterSourceAPI, ClusterSourceKubectl)
	}
	switch c.Format {
	case FormatYAML, FormatJSON:
	default:
		return fmt.Errorf("invalid format %q: must be %q or %q", c.Format, FormatYAML, FormatJSON)
	}
	if c.Requests < 0 {
		return fmt.Errorf("invalid request count %d: must be >= 0", c.Requests)
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("invalid request delay %s: must be >= 0", c.RequestDelay)
	}
	if c.K8sRateLimit < 0 {
		return fmt.Errorf("invalid k8s rate limit %d: must be >= 0", c.K8sRateLimit)
	}
	if c.SLOTarget <= 0 || c.SLOTarget > 1 {
		return fmt.Errorf("invalid slo target %v: must be in (0, 1]", c.SLOTarget)
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("output path is required")
	}
	return nil
}
