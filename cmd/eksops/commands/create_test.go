package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	cmd := Create()

	require.NotNil(t, cmd)
	assert.Equal(t, "create", cmd.Use)
	assert.Contains(t, cmd.Long, "AlreadyExists")
	assert.NotNil(t, cmd.RunE)
}

func TestCreate_Flags(t *testing.T) {
	cmd := Create()

	timeout := cmd.Flags().Lookup("timeout")
	require.NotNil(t, timeout)
	assert.Equal(t, "0", timeout.DefValue)

	dryRun := cmd.Flags().Lookup("dry-run")
	require.NotNil(t, dryRun)
	assert.Equal(t, "false", dryRun.DefValue)

	skipAddons := cmd.Flags().Lookup("skip-addons")
	require.NotNil(t, skipAddons)
	assert.Equal(t, "false", skipAddons.DefValue)
}

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2026-01-01")
	cmd := Version()

	require.NotNil(t, cmd)
	assert.Equal(t, "version", cmd.Use)
	assert.NotNil(t, cmd.Run)
}
