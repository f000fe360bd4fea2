package addons

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/eksops/internal/config"
	"github.com/imamik/eksops/internal/orchestrator"
	awsplat "github.com/imamik/eksops/internal/platform/aws"
	"github.com/imamik/eksops/internal/util/retry"
)

type fakeAddonAPI struct {
	mu sync.Mutex

	present        map[string]string // addon name -> installed version
	createErrs     map[string]error  // addon name -> scripted create failure
	createCalls    map[string]int
	resolveErr     error
	resolvedSuffix string
}

func newFakeAddonAPI() *fakeAddonAPI {
	return &fakeAddonAPI{
		present:        map[string]string{},
		createErrs:     map[string]error{},
		createCalls:    map[string]int{},
		resolvedSuffix: "-eksbuild.1",
	}
}

func (f *fakeAddonAPI) DescribeAddon(_ context.Context, _, name string) (*awsplat.Addon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if version, ok := f.present[name]; ok {
		return &awsplat.Addon{Name: name, Version: version, Status: "ACTIVE"}, nil
	}
	return nil, &ekstypes.ResourceNotFoundException{Message: aws.String("addon not found")}
}

func (f *fakeAddonAPI) CreateAddon(_ context.Context, _, name, version string, _ map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls[name]++
	if err, ok := f.createErrs[name]; ok {
		return err
	}
	f.present[name] = version
	return nil
}

func (f *fakeAddonAPI) ResolveAddonVersion(_ context.Context, name, kubernetesVersion string) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return "v" + kubernetesVersion + f.resolvedSuffix, nil
}

type fakeHelm struct {
	mu       sync.Mutex
	installs []string
	values   map[string]interface{}
	err      error
}

func (f *fakeHelm) InstallOrUpgrade(_ []byte, _, releaseName, _, _, _ string, values map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.installs = append(f.installs, releaseName)
	f.values = values
	return nil
}

type quietObserver struct{}

func (quietObserver) Printf(string, ...interface{}) {}

func testHandle() *orchestrator.ClusterHandle {
	return &orchestrator.ClusterHandle{
		Name:              "demo",
		Region:            "us-east-1",
		VPCID:             "vpc-123",
		KubernetesVersion: "1.30",
	}
}

func newTestInstaller(api ManagedAddonAPI, helm HelmInstaller) *Installer {
	inst := NewInstaller(api, helm, []byte("kubeconfig"), map[string]string{"kubernetes.io/cluster/demo": "owned"}, quietObserver{})
	inst.retryOpts = []retry.Option{retry.WithInitialDelay(time.Millisecond)}
	return inst
}

func TestInstallDefaultsWhenNoneNamed(t *testing.T) {
	api := newFakeAddonAPI()
	inst := newTestInstaller(api, &fakeHelm{})

	results, err := inst.Install(context.Background(), testHandle(), nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, OutcomeInstalled, r.Outcome)
		assert.Equal(t, "v1.30-eksbuild.1", r.Version)
	}
	assert.Len(t, api.present, 3)
}

func TestInstallIsIdempotent(t *testing.T) {
	api := newFakeAddonAPI()
	api.present["coredns"] = "v1.11.1-eksbuild.4"
	inst := newTestInstaller(api, &fakeHelm{})

	results, err := inst.Install(context.Background(), testHandle(), []config.AddonSpec{
		{Name: "coredns", Version: "latest"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeAlreadyPresent, results[0].Outcome)
	assert.Equal(t, "v1.11.1-eksbuild.4", results[0].Version)
	assert.Zero(t, api.createCalls["coredns"])
}

func TestInstallPinnedVersionSkipsResolution(t *testing.T) {
	api := newFakeAddonAPI()
	api.resolveErr = fmt.Errorf("resolution must not be called")
	inst := newTestInstaller(api, &fakeHelm{})

	results, err := inst.Install(context.Background(), testHandle(), []config.AddonSpec{
		{Name: "vpc-cni", Version: "v1.18.0-eksbuild.1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "v1.18.0-eksbuild.1", results[0].Version)
	assert.Equal(t, "v1.18.0-eksbuild.1", api.present["vpc-cni"])
}

func TestInstallOneMalformedAddonDoesNotAbortSiblings(t *testing.T) {
	api := newFakeAddonAPI()
	api.createErrs["kube-proxy"] = &ekstypes.InvalidParameterException{
		Message: aws.String("addon version is malformed"),
	}
	inst := newTestInstaller(api, &fakeHelm{})

	specs := []config.AddonSpec{
		{Name: "vpc-cni", Version: "latest"},
		{Name: "coredns", Version: "latest"},
		{Name: "kube-proxy", Version: "latest"},
		{Name: "aws-ebs-csi-driver", Version: "latest"},
	}
	results, err := inst.Install(context.Background(), testHandle(), specs)

	var partial *PartialFailureError
	require.ErrorAs(t, err, &partial)
	require.Len(t, partial.Failed, 1)
	assert.Equal(t, "kube-proxy", partial.Failed[0].Name)
	assert.Contains(t, err.Error(), "1 of 4")

	require.Len(t, results, 4)
	succeeded := 0
	for _, r := range results {
		if r.Outcome == OutcomeInstalled {
			succeeded++
		}
	}
	assert.Equal(t, 3, succeeded)
}

func TestValidationFailureIsNotRetried(t *testing.T) {
	api := newFakeAddonAPI()
	api.createErrs["coredns"] = &ekstypes.InvalidParameterException{
		Message: aws.String("bad request"),
	}
	inst := newTestInstaller(api, &fakeHelm{})

	_, err := inst.Install(context.Background(), testHandle(), []config.AddonSpec{
		{Name: "coredns", Version: "latest"},
	})
	require.Error(t, err)
	assert.Equal(t, 1, api.createCalls["coredns"])
}

func TestTransientFailureIsRetried(t *testing.T) {
	calls := 0
	flaky := &flakyAddonAPI{fakeAddonAPI: newFakeAddonAPI(), failures: 1, calls: &calls}
	inst := newTestInstaller(flaky, &fakeHelm{})

	results, err := inst.Install(context.Background(), testHandle(), []config.AddonSpec{
		{Name: "vpc-cni", Version: "latest"},
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeInstalled, results[0].Outcome)
	assert.Equal(t, 2, calls)
}

// flakyAddonAPI fails the first N create calls with a retryable throttle.
type flakyAddonAPI struct {
	*fakeAddonAPI
	failures int
	calls    *int
}

func (f *flakyAddonAPI) CreateAddon(ctx context.Context, clusterName, name, version string, tags map[string]string) error {
	*f.calls++
	if *f.calls <= f.failures {
		return &ekstypes.ServerException{Message: aws.String("throttled, try again")}
	}
	return f.fakeAddonAPI.CreateAddon(ctx, clusterName, name, version, tags)
}

func TestLoadBalancerControllerGoesThroughHelm(t *testing.T) {
	api := newFakeAddonAPI()
	helm := &fakeHelm{}
	inst := newTestInstaller(api, helm)

	results, err := inst.Install(context.Background(), testHandle(), []config.AddonSpec{
		{Name: "aws-load-balancer-controller", Version: "latest"},
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeInstalled, results[0].Outcome)
	require.Equal(t, []string{"aws-load-balancer-controller"}, helm.installs)
	assert.Equal(t, "demo", helm.values["clusterName"])
	assert.Equal(t, "vpc-123", helm.values["vpcId"])
	// The managed addon API must not see the chart-based addon.
	assert.Zero(t, api.createCalls["aws-load-balancer-controller"])
}

func TestChartAddonWithoutHelmFails(t *testing.T) {
	inst := NewInstaller(newFakeAddonAPI(), nil, nil, nil, quietObserver{})

	_, err := inst.Install(context.Background(), testHandle(), []config.AddonSpec{
		{Name: "aws-load-balancer-controller", Version: "latest"},
	})
	var partial *PartialFailureError
	require.ErrorAs(t, err, &partial)
	assert.Contains(t, partial.Failed[0].Err.Error(), "helm")
}

func TestUnnamedAddonFails(t *testing.T) {
	inst := newTestInstaller(newFakeAddonAPI(), &fakeHelm{})

	_, err := inst.Install(context.Background(), testHandle(), []config.AddonSpec{
		{Name: "", Version: "latest"},
	})
	var partial *PartialFailureError
	require.ErrorAs(t, err, &partial)
	assert.Contains(t, partial.Failed[0].Err.Error(), "no name")
}
