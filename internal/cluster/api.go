package cluster

import (
	"context"
	"fmt"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const apiCallTimeout = 10 * time.Second

// APIInspector reads cluster state through the Kubernetes API
type APIInspector struct {
	client      *Client
	rateLimiter *RateLimiter
	namespace   string
}

// NewAPIInspector creates an inspector limited to rps API calls per second
func NewAPIInspector(client *Client, namespace string, rps int) *APIInspector {
	return &APIInspector{
		client:      client,
		rateLimiter: NewRateLimiter(rps),
		namespace:   namespace,
	}
}

func (a *APIInspector) begin(ctx context.Context, call string) (context.Context, context.CancelFunc, error) {
	if err := a.rateLimiter.Wait(ctx, call); err != nil {
		return nil, nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, apiCallTimeout)
	return callCtx, cancel, nil
}

// PodListing renders "name phase" per pod
func (a *APIInspector) PodListing(ctx context.Context) (string, error) {
	callCtx, cancel, err := a.begin(ctx, "list pods")
	if err != nil {
		return "", err
	}
	defer cancel()

	pods, err := a.client.Clientset().CoreV1().Pods(a.namespace).List(callCtx, metav1.ListOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to list pods: %w", err)
	}

	var b strings.Builder
	for _, pod := range pods.Items {
		fmt.Fprintf(&b, "%s %s\n", pod.Name, pod.Status.Phase)
	}
	return b.String(), nil
}

// ServiceAddresses maps every service in the namespace to its ClusterIP
func (a *APIInspector) ServiceAddresses(ctx context.Context) (map[string]string, error) {
	callCtx, cancel, err := a.begin(ctx, "list services")
	if err != nil {
		return nil, err
	}
	defer cancel()

	services, err := a.client.Clientset().CoreV1().Services(a.namespace).List(callCtx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	addresses := make(map[string]string, len(services.Items))
	for _, svc := range services.Items {
		addresses[svc.Name] = svc.Spec.ClusterIP
	}
	return addresses, nil
}

// IngressAddress returns the first LoadBalancer IP of the first ingress
func (a *APIInspector) IngressAddress(ctx context.Context) (string, error) {
	callCtx, cancel, err := a.begin(ctx, "list ingresses")
	if err != nil {
		return "", err
	}
	defer cancel()

	ingresses, err := a.client.Clientset().NetworkingV1().Ingresses(a.namespace).List(callCtx, metav1.ListOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to list ingresses: %w", err)
	}
	if len(ingresses.Items) == 0 {
		return "", nil
	}

	lb := ingresses.Items[0].Status.LoadBalancer.Ingress
	if len(lb) == 0 {
		return "", nil
	}
	return lb[0].IP, nil
}
