package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imamik/eksops/internal/diagnostics"
	"github.com/imamik/eksops/internal/orchestrator"
	awsplat "github.com/imamik/eksops/internal/platform/aws"
	"github.com/imamik/eksops/internal/reaper"
)

func TestRenderStatusPlain(t *testing.T) {
	obs := &orchestrator.Observation{
		State: orchestrator.StateReady,
		Cluster: &awsplat.Cluster{
			Name:     "demo",
			Status:   "ACTIVE",
			Version:  "1.30",
			Endpoint: "https://demo.eks.example.com",
			VPCID:    "vpc-123",
		},
		NodeGroups: []awsplat.NodeGroup{
			{Name: "demo-ng-1", Status: "ACTIVE", MinNodes: 1, MaxNodes: 3, DesiredNodes: 2},
		},
	}

	out := RenderStatus(obs, "demo", "us-east-1", false)
	assert.Contains(t, out, "demo (us-east-1)")
	assert.Contains(t, out, "State: Ready")
	assert.Contains(t, out, "1.30")
	assert.Contains(t, out, "demo-ng-1")
	assert.Contains(t, out, "2 desired (min 1, max 3)")
}

func TestRenderStatusAbsentCluster(t *testing.T) {
	out := RenderStatus(&orchestrator.Observation{State: orchestrator.StateAbsent}, "demo", "us-east-1", false)
	assert.Contains(t, out, "State: Absent")
	assert.NotContains(t, out, "Endpoint")
}

func TestRenderDiagnostics(t *testing.T) {
	report := &diagnostics.Report{
		ClusterName: "demo",
		Checks: []diagnostics.Check{
			{Name: "nodes-ready", Status: diagnostics.StatusPass, Evidence: "2/2 nodes Ready"},
			{Name: "coredns", Status: diagnostics.StatusFail, Evidence: "deployment not present", Remediation: "check coredns"},
			{Name: "managed-addons", Status: diagnostics.StatusUnknown, Evidence: "throttled"},
		},
	}

	out := RenderDiagnostics(report, false)
	assert.Contains(t, out, "2/2 nodes Ready")
	assert.Contains(t, out, "remediation: check coredns")
	assert.Contains(t, out, "Some checks failed")
}

func TestRenderOrphans(t *testing.T) {
	orphans := []reaper.OrphanResource{
		{Kind: reaper.KindLoadBalancer, ID: "demo-alb", MatchedBy: reaper.MatchedByName},
		{Kind: reaper.KindNatGateway, ID: "nat-123", MatchedBy: reaper.MatchedByTag},
	}

	out := RenderOrphans(orphans, "demo", false)
	assert.Contains(t, out, "demo-alb")
	assert.Contains(t, out, "matched by name-substring")
	assert.Contains(t, out, "nat-123")
	assert.Contains(t, out, "billing")

	empty := RenderOrphans(nil, "demo", false)
	assert.Contains(t, empty, "No orphaned resources")
}
