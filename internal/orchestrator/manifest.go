package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"github.com/imamik/eksops/internal/config"
	"github.com/imamik/eksops/internal/util/naming"
)

// Manifest is the declarative document handed to the provisioning API. It is
// rendered per invocation and not meant to survive the run.
type Manifest struct {
	APIVersion string           `json:"apiVersion"`
	Kind       string           `json:"kind"`
	Metadata   ManifestMetadata `json:"metadata"`
	Spec       ManifestSpec     `json:"spec"`
}

// ManifestMetadata identifies the cluster the manifest describes.
type ManifestMetadata struct {
	Name   string            `json:"name"`
	Region string            `json:"region"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// ManifestSpec carries the cluster, network, IAM, node group, addon and
// logging blocks.
type ManifestSpec struct {
	KubernetesVersion string              `json:"kubernetesVersion"`
	Network           ManifestNetwork     `json:"network"`
	IAM               ManifestIAM         `json:"iam"`
	NodeGroups        []ManifestNodeGroup `json:"nodeGroups"`
	Addons            []ManifestAddon     `json:"addons,omitempty"`
	Logging           ManifestLogging     `json:"logging"`
}

// ManifestNetwork is the network block.
type ManifestNetwork struct {
	VPCCIDR   string   `json:"vpcCIDR,omitempty"`
	SubnetIDs []string `json:"subnetIDs,omitempty"`
}

// ManifestIAM is the IAM/OIDC block.
type ManifestIAM struct {
	ClusterRoleARN string `json:"clusterRoleARN"`
	NodeRoleARN    string `json:"nodeRoleARN"`
	WithOIDC       bool   `json:"withOIDC"`
}

// ManifestNodeGroup is one node group entry.
type ManifestNodeGroup struct {
	Name            string            `json:"name"`
	InstanceType    string            `json:"instanceType"`
	MinSize         int               `json:"minSize"`
	MaxSize         int               `json:"maxSize"`
	DesiredCapacity int               `json:"desiredCapacity"`
	VolumeSize      int               `json:"volumeSize,omitempty"`
	VolumeType      string            `json:"volumeType,omitempty"`
	VolumeEncrypted bool              `json:"volumeEncrypted,omitempty"`
	PrivateNetwork  bool              `json:"privateNetworking"`
	Labels          map[string]string `json:"labels,omitempty"`
}

// ManifestAddon is one addon entry.
type ManifestAddon struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ManifestLogging is the control plane logging block.
type ManifestLogging struct {
	Enabled bool     `json:"enabled"`
	Types   []string `json:"types,omitempty"`
}

// BuildManifest renders the validated spec into the declarative form, with
// the resolved subnet IDs and role ARNs filled in.
func BuildManifest(spec *config.ClusterSpec, subnetIDs []string, clusterRoleARN, nodeRoleARN string) *Manifest {
	m := &Manifest{
		APIVersion: "eksops.io/v1alpha1",
		Kind:       "ClusterManifest",
		Metadata: ManifestMetadata{
			Name:   spec.Name,
			Region: spec.Region,
			Tags:   ownershipTags(spec),
		},
		Spec: ManifestSpec{
			KubernetesVersion: spec.KubernetesVersion,
			Network: ManifestNetwork{
				VPCCIDR:   spec.VPCCIDR,
				SubnetIDs: subnetIDs,
			},
			IAM: ManifestIAM{
				ClusterRoleARN: clusterRoleARN,
				NodeRoleARN:    nodeRoleARN,
				WithOIDC:       true,
			},
			Logging: ManifestLogging{
				Enabled: true,
				Types:   []string{"api", "audit", "controllerManager"},
			},
		},
	}

	for _, ng := range spec.NodeGroups {
		m.Spec.NodeGroups = append(m.Spec.NodeGroups, ManifestNodeGroup{
			Name:            naming.NodeGroup(spec.Name, ng.Name),
			InstanceType:    ng.InstanceType,
			MinSize:         ng.MinNodes,
			MaxSize:         ng.MaxNodes,
			DesiredCapacity: ng.DesiredNodes,
			VolumeSize:      ng.VolumeSizeGB,
			VolumeType:      ng.VolumeType,
			VolumeEncrypted: ng.VolumeEncrypted,
			PrivateNetwork:  ng.Private,
			Labels:          ng.Labels,
		})
	}
	for _, addon := range spec.Addons {
		m.Spec.Addons = append(m.Spec.Addons, ManifestAddon{
			Name:    addon.Name,
			Version: addon.Version,
		})
	}

	return m
}

// Render marshals the manifest to YAML.
func (m *Manifest) Render() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to render cluster manifest: %w", err)
	}
	return data, nil
}

// WriteTransient writes the rendered manifest to the OS temp dir and returns
// its path. The file documents what was submitted; nothing reads it back.
func (m *Manifest) WriteTransient() (string, error) {
	data, err := m.Render()
	if err != nil {
		return "", err
	}
	path := filepath.Join(os.TempDir(), naming.ManifestFile(m.Metadata.Name))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write cluster manifest: %w", err)
	}
	return path, nil
}

// ownershipTags merges the spec tags with the cluster ownership tag that the
// reaper matches on.
func ownershipTags(spec *config.ClusterSpec) map[string]string {
	tags := make(map[string]string, len(spec.Tags)+1)
	for k, v := range spec.Tags {
		tags[k] = v
	}
	tags[spec.OwnershipTag()] = "owned"
	return tags
}
