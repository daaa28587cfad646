package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_ConfigFlag(t *testing.T) {
	t.Run("defaults to the environment", func(t *testing.T) {
		t.Setenv(configEnv, "/etc/paybatch/server.yaml")
		flag := newRootCmd().PersistentFlags().Lookup("config")
		require.NotNil(t, flag)
		assert.Equal(t, "/etc/paybatch/server.yaml", flag.DefValue)
	})

	t.Run("missing file fails before serving", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")})
		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load config")
	})

	t.Run("rejects positional arguments", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"serve"})
		assert.Error(t, cmd.Execute())
	})
}

func TestRootCmd_Version(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), version)
}
