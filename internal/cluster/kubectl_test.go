package cluster

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type recordedCall struct {
	name string
	args []string
}

func fakeRunner(outputs map[string]string, errs map[string]error, calls *[]recordedCall) CommandRunner {
	return func(_ context.Context, name string, args ...string) (string, error) {
		*calls = append(*calls, recordedCall{name: name, args: args})
		resource := ""
		for i, arg := range args {
			if arg == "get" && i+1 < len(args) {
				resource = args[i+1]
				break
			}
		}
		return outputs[resource], errs[resource]
	}
}

func TestKubectlInspectorCommands(t *testing.T) {
	var calls []recordedCall
	inspector := NewKubectlInspector("/usr/local/bin/kubectl", "/tmp/kubeconfig", "canary-demo", fakeRunner(nil, nil, &calls))

	ctx := context.Background()
	_, _ = inspector.PodListing(ctx)
	_, _ = inspector.ServiceAddresses(ctx)
	_, _ = inspector.IngressAddress(ctx)

	want := []recordedCall{
		{name: "/usr/local/bin/kubectl", args: []string{"--kubeconfig", "/tmp/kubeconfig", "get", "pods", "-n", "canary-demo"}},
		{name: "/usr/local/bin/kubectl", args: []string{"--kubeconfig", "/tmp/kubeconfig", "get", "services", "-o", serviceTemplate, "-n", "canary-demo"}},
		{name: "/usr/local/bin/kubectl", args: []string{"--kubeconfig", "/tmp/kubeconfig", "get", "ingress", "-o", ingressTemplate, "-n", "canary-demo"}},
	}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("unexpected kubectl calls:\n got  %#v\n want %#v", calls, want)
	}
}

func TestKubectlInspectorDefaults(t *testing.T) {
	var calls []recordedCall
	inspector := NewKubectlInspector("", "", "ns", fakeRunner(nil, nil, &calls))
	_, _ = inspector.PodListing(context.Background())

	if len(calls) != 1 || calls[0].name != "kubectl" {
		t.Fatalf("expected default kubectl binary, got %#v", calls)
	}
	if calls[0].args[0] != "get" {
		t.Fatalf("expected no kubeconfig flag, got %v", calls[0].args)
	}
}

func TestKubectlInspectorServiceParsing(t *testing.T) {
	var calls []recordedCall
	outputs := map[string]string{
		"services": "canary-demo 10.96.0.10\ncanary-demo-canary 10.96.0.11\n\nbroken-line\nkubernetes 10.96.0.1",
	}
	inspector := NewKubectlInspector("kubectl", "", "canary-demo", fakeRunner(outputs, nil, &calls))

	addresses, err := inspector.ServiceAddresses(context.Background())
	if err != nil {
		t.Fatalf("ServiceAddresses failed: %v", err)
	}
	want := map[string]string{
		"canary-demo":        "10.96.0.10",
		"canary-demo-canary": "10.96.0.11",
		"kubernetes":         "10.96.0.1",
	}
	if !reflect.DeepEqual(addresses, want) {
		t.Fatalf("expected %v, got %v", want, addresses)
	}
}

func TestKubectlInspectorFailure(t *testing.T) {
	var calls []recordedCall
	errs := map[string]error{"ingress": errors.New("array index out of bounds")}
	inspector := NewKubectlInspector("kubectl", "", "canary-demo", fakeRunner(nil, errs, &calls))

	if _, err := inspector.IngressAddress(context.Background()); err == nil {
		t.Fatal("expected ingress error")
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, err := ExecRunner(context.Background(), "canaryspectre-no-such-binary")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}
