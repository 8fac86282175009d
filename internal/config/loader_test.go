package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  listen: ":8081"
  path: "/bugs"
  maxBodyBytes: 32768
  readTimeout: "15s"

tracker:
  credential: "lin_api_test"
  teamId: "team-1"
  projectId: "project-1"
  timeout: "10s"

rateLimit:
  enabled: true
  algorithm: "fixed_window"
  maxRequests: 20
  window: "30s"
  identityPolicy: "reject"
  store:
    type: "redis"
    redis:
      address: "localhost:6379"
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Server.Listen)
	assert.Equal(t, "/bugs", cfg.Server.Path)
	assert.Equal(t, int64(32768), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout.Duration())

	assert.Equal(t, "lin_api_test", cfg.Tracker.Credential)
	assert.Equal(t, "team-1", cfg.Tracker.TeamID)
	assert.Equal(t, 10*time.Second, cfg.Tracker.Timeout.Duration())

	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, AlgorithmFixedWindow, cfg.RateLimit.Algorithm)
	assert.Equal(t, 20, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window.Duration())
	assert.Equal(t, IdentityPolicyReject, cfg.RateLimit.IdentityPolicy)
	assert.Equal(t, StoreTypeRedis, cfg.RateLimit.Store.Type)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromReader_Defaults(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(`
tracker:
  credential: "c"
  teamId: "t"
  projectId: "p"
`))
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.Server.Listen)
	assert.Equal(t, DefaultReportPath, cfg.Server.Path)
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.Server.MaxBodyBytes)
	assert.Equal(t, DefaultTrackerEndpoint, cfg.Tracker.Endpoint)
	assert.Equal(t, DefaultUpstreamTimeout, cfg.Tracker.Timeout.Duration())
	assert.Equal(t, AlgorithmSlidingWindow, cfg.RateLimit.Algorithm)
	assert.Equal(t, IdentityPolicyAdmit, cfg.RateLimit.IdentityPolicy)
	assert.Equal(t, StoreTypeMemory, cfg.RateLimit.Store.Type)
	assert.Equal(t, SecretsProviderEnv, cfg.Secrets.Provider)
}

func TestLoadFromReader_InvalidYAML(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("{not yaml"))
	assert.Error(t, err)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("TEST_CREDENTIAL", "lin_api_env")

	cfg, err := LoadFromReader(strings.NewReader(`
tracker:
  credential: "${TEST_CREDENTIAL}"
  teamId: "${TEST_UNSET_TEAM:-fallback-team}"
  projectId: "${TEST_UNSET_PROJECT}"
`))
	require.NoError(t, err)

	assert.Equal(t, "lin_api_env", cfg.Tracker.Credential)
	assert.Equal(t, "fallback-team", cfg.Tracker.TeamID, "default applies when unset")
	assert.Equal(t, "", cfg.Tracker.ProjectID, "unset without default is empty")
}

func TestSubstituteEnvVars_SetOverridesDefault(t *testing.T) {
	t.Setenv("TEST_TEAM", "from-env")

	cfg, err := LoadFromReader(strings.NewReader(`
tracker:
  teamId: "${TEST_TEAM:-fallback}"
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Tracker.TeamID)
}

func TestAuthConfig_Enabled(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(`
auth:
  token: "s3cret"
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Auth.Token)
	assert.True(t, cfg.Auth.Enabled())
	assert.Equal(t, "s3cret", *cfg.Auth.Token)

	cfg, err = LoadFromReader(strings.NewReader(`server: {listen: ":1"}`))
	require.NoError(t, err)
	assert.Nil(t, cfg.Auth.Token)
	assert.False(t, cfg.Auth.Enabled())
}
