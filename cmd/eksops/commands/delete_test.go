package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelete(t *testing.T) {
	cmd := Delete()

	require.NotNil(t, cmd)
	assert.Equal(t, "delete", cmd.Use)
	assert.Contains(t, cmd.Long, "WARNING")
	assert.Contains(t, cmd.Long, "orphan")
	assert.NotNil(t, cmd.RunE)
}

func TestDelete_ConfirmFlag(t *testing.T) {
	cmd := Delete()

	flag := cmd.Flags().Lookup("confirm")
	require.NotNil(t, flag, "confirm flag should exist")
	assert.Equal(t, "", flag.DefValue)
	assert.Contains(t, flag.Usage, "DELETE")
}

func TestDelete_SkipOrphanScanFlag(t *testing.T) {
	cmd := Delete()

	flag := cmd.Flags().Lookup("skip-orphan-scan")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}
