package cluster

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/canaryspectre/pkg/config"
)

type stubInspector struct {
	listing    string
	listingErr error
	services   map[string]string
	svcErr     error
	ingress    string
	ingressErr error
}

func (s *stubInspector) PodListing(context.Context) (string, error) {
	return s.listing, s.listingErr
}

func (s *stubInspector) ServiceAddresses(context.Context) (map[string]string, error) {
	return s.services, s.svcErr
}

func (s *stubInspector) IngressAddress(context.Context) (string, error) {
	return s.ingress, s.ingressErr
}

const podTable = `NAME                                      READY   STATUS    RESTARTS   AGE
canary-demo-deployment-7d9c8b6f5-abcde    1/1     Running   0          3h
canary-demo-deployment-7d9c8b6f5-fghij    1/1     Running   0          3h
canary-demo-deployment-7d9c8b6f5-klmno    1/1     Running   0          3h
canary-demo-canary-6f7b9c4d8-pqrst        1/1     Running   0          1h`

func TestCountPods(t *testing.T) {
	cases := []struct {
		name    string
		listing string
		pattern string
		want    int
	}{
		{name: "main_pattern", listing: podTable, pattern: "canary-demo-d", want: 3},
		{name: "canary_pattern", listing: podTable, pattern: "canary-demo-canary", want: 1},
		{name: "substring_not_token", listing: "xcanary-demo-dx canary-demo-d", pattern: "canary-demo-d", want: 2},
		{name: "repeated_in_one_line", listing: "canary-demo-canary/canary-demo-canary", pattern: "canary-demo-canary", want: 2},
		{name: "empty_listing", listing: "", pattern: "canary-demo-d", want: 0},
		{name: "empty_pattern", listing: podTable, pattern: "", want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CountPods(tc.listing, tc.pattern); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestCountPodsMatchesGeneratedListing(t *testing.T) {
	for n := 0; n < 5; n++ {
		for m := 0; m < 5; m++ {
			var lines []string
			for i := 0; i < n; i++ {
				lines = append(lines, "canary-demo-deployment-x Running")
			}
			for i := 0; i < m; i++ {
				lines = append(lines, "canary-demo-canary-y Running")
			}
			listing := strings.Join(lines, "\n")
			if got := CountPods(listing, "canary-demo-d"); got != n {
				t.Fatalf("n=%d m=%d: expected main %d, got %d", n, m, n, got)
			}
			if got := CountPods(listing, "canary-demo-canary"); got != m {
				t.Fatalf("n=%d m=%d: expected canary %d, got %d", n, m, m, got)
			}
		}
	}
}

func TestInspect(t *testing.T) {
	cfg := config.DefaultConfig()

	t.Run("all_present", func(t *testing.T) {
		status := Inspect(context.Background(), &stubInspector{
			listing:  podTable,
			services: map[string]string{"canary-demo": "10.96.0.10", "canary-demo-canary": "10.96.0.11", "other": "10.96.0.12"},
			ingress:  " 192.168.49.2 ",
		}, cfg)

		if status.PodsStatus.MainPodsRunning != 3 || status.PodsStatus.CanaryPodsRunning != 1 {
			t.Fatalf("unexpected pod counts: %+v", status.PodsStatus)
		}
		if ip := status.ServiceEndpoints.MainServiceClusterIP; ip == nil || *ip != "10.96.0.10" {
			t.Fatalf("unexpected main service IP: %v", ip)
		}
		if ip := status.ServiceEndpoints.CanaryServiceClusterIP; ip == nil || *ip != "10.96.0.11" {
			t.Fatalf("unexpected canary service IP: %v", ip)
		}
		if addr := status.IngressDetails.Address; addr == nil || *addr != "192.168.49.2" {
			t.Fatalf("unexpected ingress address: %v", addr)
		}
		if status.IngressDetails.Host != "canary-demo.local" {
			t.Fatalf("unexpected ingress host: %q", status.IngressDetails.Host)
		}
	})

	t.Run("missing_fields_are_nil", func(t *testing.T) {
		status := Inspect(context.Background(), &stubInspector{
			services: map[string]string{"canary-demo": "10.96.0.10"},
		}, cfg)

		if status.ServiceEndpoints.CanaryServiceClusterIP != nil {
			t.Fatalf("expected nil canary service IP, got %v", *status.ServiceEndpoints.CanaryServiceClusterIP)
		}
		if status.IngressDetails.Address != nil {
			t.Fatalf("expected nil ingress address, got %v", *status.IngressDetails.Address)
		}
	})

	t.Run("failures_collapse_to_zero_and_nil", func(t *testing.T) {
		boom := errors.New("connection refused")
		status := Inspect(context.Background(), &stubInspector{
			listing:    podTable,
			listingErr: boom,
			svcErr:     boom,
			ingressErr: boom,
		}, cfg)

		if status.PodsStatus.MainPodsRunning != 0 || status.PodsStatus.CanaryPodsRunning != 0 {
			t.Fatalf("expected zero counts on failure, got %+v", status.PodsStatus)
		}
		if status.ServiceEndpoints.MainServiceClusterIP != nil || status.ServiceEndpoints.CanaryServiceClusterIP != nil {
			t.Fatalf("expected nil service IPs on failure, got %+v", status.ServiceEndpoints)
		}
		if status.IngressDetails.Address != nil {
			t.Fatalf("expected nil ingress address on failure")
		}
		if status.IngressDetails.Host != cfg.IngressHost {
			t.Fatalf("expected host to survive failures, got %q", status.IngressDetails.Host)
		}
	})
}

func TestNewSelectsKubectl(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ClusterSource = config.ClusterSourceKubectl

	inspector, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := inspector.(*KubectlInspector); !ok {
		t.Fatalf("expected *KubectlInspector, got %T", inspector)
	}
}
