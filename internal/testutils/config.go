package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-xliff-filters/internal/config"
)

// NewTestConfig 创建通用测试配置，缓存目录位于测试临时目录，请求结束后删除
func NewTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.CacheFolder = filepath.Join(t.TempDir(), "cache")
	require.NoError(t, os.MkdirAll(cfg.CacheFolder, 0o755))
	cfg.DeleteOnClose = true
	cfg.Engine.Command = "true"
	cfg.LogLevel = "error"
	cfg.ConverterVersion = "1.0"
	return cfg
}

// WriteConfig 把配置写成 TOML 文件并返回路径
func WriteConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xliff-filters.toml")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, toml.NewEncoder(f).Encode(cfg))
	return path
}

// WriteRules 在 dir 下写入 <name>.rules 自定义断句规则
func WriteRules(t *testing.T, dir, name, srx string) string {
	t.Helper()
	path := filepath.Join(dir, name+".rules")
	require.NoError(t, os.WriteFile(path, []byte(srx), 0o644))
	return path
}
