package cluster

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

const (
	serviceTemplate = `jsonpath={range .items[*]}{.metadata.name} {.spec.clusterIP}{"\n"}{end}`
	ingressTemplate = `jsonpath={.items[0].status.loadBalancer.ingress[0].ip}`
)

// CommandRunner runs a command and returns its trimmed stdout
type CommandRunner func(ctx context.Context, name string, args ...string) (string, error)

// ExecRunner runs the command as a subprocess
func ExecRunner(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	if err != nil {
		return out, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// KubectlInspector reads cluster state by shelling out to kubectl
type KubectlInspector struct {
	kubectl    string
	kubeconfig string
	namespace  string
	run        CommandRunner
}

// NewKubectlInspector creates a kubectl-backed inspector
func NewKubectlInspector(kubectl, kubeconfig, namespace string, run CommandRunner) *KubectlInspector {
	if kubectl == "" {
		kubectl = "kubectl"
	}
	if run == nil {
		run = ExecRunner
	}
	return &KubectlInspector{
		kubectl:    kubectl,
		kubeconfig: kubeconfig,
		namespace:  namespace,
		run:        run,
	}
}

func (k *KubectlInspector) get(ctx context.Context, args ...string) (string, error) {
	full := make([]string, 0, len(args)+5)
	if k.kubeconfig != "" {
		full = append(full, "--kubeconfig", k.kubeconfig)
	}
	full = append(full, "get")
	full = append(full, args...)
	full = append(full, "-n", k.namespace)
	return k.run(ctx, k.kubectl, full...)
}

// PodListing returns the plain `kubectl get pods` table
func (k *KubectlInspector) PodListing(ctx context.Context) (string, error) {
	return k.get(ctx, "pods")
}

// ServiceAddresses parses "name clusterIP" lines
func (k *KubectlInspector) ServiceAddresses(ctx context.Context) (map[string]string, error) {
	out, err := k.get(ctx, "services", "-o", serviceTemplate)
	if err != nil {
		return nil, err
	}

	addresses := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			slog.Debug("skipping malformed service line", slog.String("line", line))
			continue
		}
		addresses[fields[0]] = fields[1]
	}
	return addresses, nil
}

// IngressAddress returns the first ingress IP
func (k *KubectlInspector) IngressAddress(ctx context.Context) (string, error) {
	return k.get(ctx, "ingress", "-o", ingressTemplate)
}
