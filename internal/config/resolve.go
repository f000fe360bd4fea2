package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variable names recognized as overrides. They cover the single
// node group case; multi-pool clusters are configured through the file.
const (
	EnvClusterName   = "CLUSTER_NAME"
	EnvRegion        = "REGION"
	EnvK8sVersion    = "K8S_VERSION"
	EnvVPCCIDR       = "VPC_CIDR"
	EnvNodeGroupName = "NODEGROUP_NAME"
	EnvInstanceType  = "INSTANCE_TYPE"
	EnvMinNodes      = "MIN_NODES"
	EnvMaxNodes      = "MAX_NODES"
	EnvDesiredNodes  = "DESIRED_NODES"
	EnvVolumeSize    = "VOLUME_SIZE"
)

// defaults returns the built-in base spec. Everything here can be overridden
// by environment variables, and those in turn by the config file.
func defaults() *ClusterSpec {
	return &ClusterSpec{
		Region:            "us-east-1",
		KubernetesVersion: "1.30",
		VPCCIDR:           "10.0.0.0/16",
		NodeGroups: []NodeGroupSpec{
			{
				Name:            "ng-1",
				InstanceType:    "t3.medium",
				MinNodes:        1,
				MaxNodes:        3,
				DesiredNodes:    2,
				VolumeSizeGB:    20,
				VolumeType:      "gp3",
				VolumeEncrypted: true,
				Private:         true,
			},
		},
		Addons:             DefaultAddons(),
		WaitTimeoutMinutes: 40,
	}
}

// Resolve merges built-in defaults, environment overrides and an optional
// YAML config file into a validated ClusterSpec. Precedence: explicit config
// file values > environment variables > defaults.
//
// Resolve is pure over its inputs: env is passed in rather than read from the
// process environment, and no global state is touched.
func Resolve(env map[string]string, configFile string) (*ClusterSpec, error) {
	spec := defaults()

	var violations []string
	applyEnv(spec, env, &violations)

	if configFile != "" {
		if err := loadFile(spec, configFile); err != nil {
			return nil, err
		}
	}

	if spec.Addons == nil {
		spec.Addons = DefaultAddons()
	}

	violations = append(violations, spec.validate()...)
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return spec, nil
}

// EnvFromOS snapshots the recognized override variables from the process
// environment, so callers can stay on the pure Resolve contract.
func EnvFromOS() map[string]string {
	env := make(map[string]string)
	for _, key := range []string{
		EnvClusterName, EnvRegion, EnvK8sVersion, EnvVPCCIDR,
		EnvNodeGroupName, EnvInstanceType, EnvMinNodes, EnvMaxNodes,
		EnvDesiredNodes, EnvVolumeSize,
	} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env
}

// applyEnv overlays recognized environment variables onto the spec. Node
// sizing variables address the first node group, matching the single-pool
// environment contract.
func applyEnv(spec *ClusterSpec, env map[string]string, violations *[]string) {
	if v := env[EnvClusterName]; v != "" {
		spec.Name = v
	}
	if v := env[EnvRegion]; v != "" {
		spec.Region = v
	}
	if v := env[EnvK8sVersion]; v != "" {
		spec.KubernetesVersion = v
	}
	if v := env[EnvVPCCIDR]; v != "" {
		spec.VPCCIDR = v
	}

	ng := &spec.NodeGroups[0]
	if v := env[EnvNodeGroupName]; v != "" {
		ng.Name = v
	}
	if v := env[EnvInstanceType]; v != "" {
		ng.InstanceType = v
	}
	applyIntEnv(env, EnvMinNodes, &ng.MinNodes, violations)
	applyIntEnv(env, EnvMaxNodes, &ng.MaxNodes, violations)
	applyIntEnv(env, EnvDesiredNodes, &ng.DesiredNodes, violations)
	applyIntEnv(env, EnvVolumeSize, &ng.VolumeSizeGB, violations)

	// Keep desired inside an explicitly narrowed range when the caller set
	// only the bounds. An explicit DESIRED_NODES is validated as given.
	if _, ok := env[EnvDesiredNodes]; !ok {
		if _, minSet := env[EnvMinNodes]; minSet && ng.DesiredNodes < ng.MinNodes {
			ng.DesiredNodes = ng.MinNodes
		}
		if _, maxSet := env[EnvMaxNodes]; maxSet && ng.DesiredNodes > ng.MaxNodes {
			ng.DesiredNodes = ng.MaxNodes
		}
	}
}

func applyIntEnv(env map[string]string, key string, dst *int, violations *[]string) {
	v, ok := env[key]
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*violations = append(*violations, fmt.Sprintf("%s=%q is not a number", key, v))
		return
	}
	*dst = n
}

// loadFile decodes the YAML config file over the spec. Only fields present in
// the file are set, which is what gives file values precedence without
// clobbering env-derived ones.
func loadFile(spec *ClusterSpec, path string) error {
	// #nosec G304 - path is an operator-supplied config file
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, spec); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}
