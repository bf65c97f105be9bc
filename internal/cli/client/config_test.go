package client

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	old := getConfigPathFunc
	getConfigPathFunc = func() (string, error) { return path, nil }
	t.Cleanup(func() { getConfigPathFunc = old })
	return path
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := defaultGetConfigPath()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.True(t, strings.HasSuffix(path, filepath.Join("plantrec", "config.json")))
}

func TestGlobalConfig_RoundTrip(t *testing.T) {
	path := useTempConfig(t)

	cfg, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg)

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://plants.local", UserID: "u1"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cfg, err = LoadGlobalConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "http://plants.local", cfg.APIURL)
	assert.Equal(t, "u1", cfg.UserID)
}

func TestGlobalConfig_InvalidJSON(t *testing.T) {
	path := useTempConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0600))

	_, err := LoadGlobalConfig()
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestSaveGlobalConfig_Nil(t *testing.T) {
	useTempConfig(t)
	assert.Error(t, SaveGlobalConfig(nil))
}

func newFlagCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("api-url", "", "")
	cmd.Flags().String("user", "", "")
	return cmd
}

func TestNewAPIClientWithCmd_Cascade(t *testing.T) {
	t.Run("flag beats env and config", func(t *testing.T) {
		useTempConfig(t)
		require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://config", UserID: "config-user"}))
		t.Setenv(envAPIURL, "http://env")
		t.Setenv(envUserID, "env-user")

		cmd := newFlagCmd()
		require.NoError(t, cmd.Flags().Set("api-url", "http://flag"))

		api, err := NewAPIClientWithCmd(cmd)
		require.NoError(t, err)
		assert.Equal(t, "http://flag", api.baseURL)
		assert.Equal(t, "env-user", api.userID)
	})

	t.Run("config fills what env leaves empty", func(t *testing.T) {
		useTempConfig(t)
		require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://config", UserID: "config-user"}))
		t.Setenv(envAPIURL, "")
		t.Setenv(envUserID, "")

		api, err := NewAPIClientWithCmd(newFlagCmd())
		require.NoError(t, err)
		assert.Equal(t, "http://config", api.baseURL)
		assert.Equal(t, "config-user", api.userID)
	})

	t.Run("defaults without any source", func(t *testing.T) {
		useTempConfig(t)
		t.Setenv(envAPIURL, "")
		t.Setenv(envUserID, "")

		api, err := NewAPIClientWithCmd(nil)
		require.NoError(t, err)
		assert.Equal(t, defaultAPIURL, api.baseURL)
		assert.Empty(t, api.userID)
	})
}

func TestConfigureCmd(t *testing.T) {
	useTempConfig(t)
	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://old", UserID: "keep"}))

	cmd := ConfigureCmd()
	cmd.SetOut(&strings.Builder{})
	cmd.SetArgs([]string{"--set-api-url", "http://new"})
	require.NoError(t, cmd.Execute())

	cfg, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://new", cfg.APIURL)
	assert.Equal(t, "keep", cfg.UserID)
}
