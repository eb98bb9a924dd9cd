package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	// 目录里没有 config.yaml，全部落回默认值
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.NotEmpty(t, cfg.MySQL.DSN)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.False(t, cfg.Order.StrictStock)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Len(t, cfg.Auth.Nodes, 3)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9090
redis:
  addr: "10.0.0.5:6379"
order:
  strictstock: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "10.0.0.5:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Order.StrictStock)
	// 文件没写的项保持默认
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.NotEmpty(t, cfg.JWT.Secret)
}

func TestServerAddrEmptyHost(t *testing.T) {
	s := ServerConfig{Port: 8080}
	assert.Equal(t, "0.0.0.0:8080", s.Addr())
}
