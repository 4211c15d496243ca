package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"migrate", "migrate-legacy", "create-admin", "close-expired-qr", "cleanup-tokens", "seed"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestMigrateLegacyDelayFlag(t *testing.T) {
	cmd := newMigrateLegacyCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--delay", "1s"}))
	assert.True(t, cmd.Flags().Changed("delay"))
	d, err := cmd.Flags().GetDuration("delay")
	require.NoError(t, err)
	assert.Equal(t, "1s", d.String())
}
