package orchestrator

import (
	awsplat "github.com/imamik/eksops/internal/platform/aws"
)

// ClusterState is the derived lifecycle state of a cluster. It is never
// stored or asserted by the tool; every invocation re-derives it from
// observation of the external system.
type ClusterState string

const (
	StateAbsent   ClusterState = "Absent"
	StateCreating ClusterState = "Creating"
	StateReady    ClusterState = "Ready"
	StateDegraded ClusterState = "Degraded"
	StateDeleting ClusterState = "Deleting"
	StateGone     ClusterState = "Gone"
)

// DeriveState maps an observed cluster and its node groups onto the
// lifecycle state. A nil cluster means the control plane does not exist.
func DeriveState(cluster *awsplat.Cluster, groups []awsplat.NodeGroup) ClusterState {
	if cluster == nil {
		return StateAbsent
	}

	switch cluster.Status {
	case "CREATING", "PENDING", "UPDATING":
		return StateCreating
	case "DELETING":
		return StateDeleting
	case "FAILED":
		return StateDegraded
	case "ACTIVE":
		// Control plane up; node groups decide readiness.
	default:
		return StateDegraded
	}

	for _, ng := range groups {
		switch ng.Status {
		case "CREATE_FAILED", "DELETE_FAILED", "DEGRADED":
			return StateDegraded
		case "CREATING", "UPDATING":
			return StateCreating
		case "DELETING":
			return StateDeleting
		}
	}
	return StateReady
}

// ClusterHandle identifies a cluster that reached Ready. It is passed to the
// addon installer and the diagnostics runner.
type ClusterHandle struct {
	Name              string
	Region            string
	ARN               string
	Endpoint          string
	OIDCIssuer        string
	VPCID             string
	KubernetesVersion string
}

// Observation is one point-in-time snapshot of external cluster state.
type Observation struct {
	State      ClusterState
	Cluster    *awsplat.Cluster
	NodeGroups []awsplat.NodeGroup
}
