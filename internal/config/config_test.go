package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("nonexistent", "")
	require.NoError(t, err)
	assert.Equal(t, 8787, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Mock.MaxPageSize)
	assert.False(t, cfg.Mock.StrictApprovals)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	content := `
server:
  port: 9000
mock:
  strict_approvals: true
  max_page_size: 50
  faults:
    - capability: dashboard
      tenant_id: t1
      count: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("APP_MOCK_MAX_PAGE_SIZE", "25")

	cfg, err := Load("test", path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Mock.StrictApprovals)
	assert.Equal(t, 25, cfg.Mock.MaxPageSize, "环境变量优先于配置文件")
	require.Len(t, cfg.Mock.Faults, 1)
	assert.Equal(t, FaultConfig{Capability: "dashboard", TenantID: "t1", Count: 1}, cfg.Mock.Faults[0])
	assert.Equal(t, ":9000", cfg.Server.Addr())
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load("test", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{Server: ServerConfig{Port: 8080}, Mock: MockConfig{MaxPageSize: 10}}
	assert.NoError(t, cfg.Validate())

	cfg.Mock.Faults = []FaultConfig{{Count: 1}}
	assert.Error(t, cfg.Validate())

	cfg = Config{Server: ServerConfig{Port: 0}, Mock: MockConfig{MaxPageSize: 10}}
	assert.Error(t, cfg.Validate())
}
