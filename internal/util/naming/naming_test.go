package naming

import "testing"

func TestNamingFunctions(t *testing.T) {
	cluster := "demo"

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"NodeGroup", NodeGroup(cluster, "workers"), "demo-workers"},
		{"ClusterRole", ClusterRole(cluster), "demo-cluster-role"},
		{"NodeRole", NodeRole(cluster), "demo-node-role"},
		{"ManifestFile", ManifestFile(cluster), "demo-cluster.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, expected %q", tt.got, tt.expected)
			}
		})
	}
}

func TestBelongsTo(t *testing.T) {
	if !BelongsTo("demo", "demo-alb") {
		t.Error("expected demo-alb to match cluster demo")
	}
	if !BelongsTo("demo", "k8s-demo-ingress") {
		t.Error("expected k8s-demo-ingress to match cluster demo")
	}
	if BelongsTo("demo", "other-alb") {
		t.Error("expected other-alb not to match cluster demo")
	}
	if BelongsTo("", "demo-alb") || BelongsTo("demo", "") {
		t.Error("empty inputs must never match")
	}
}
