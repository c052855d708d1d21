package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建配置目录失败: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}

// newTestConfig 返回不读取文件与环境变量的空白配置，测试可直接注入内部 map。
func newTestConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(false, false)
	if err != nil {
		t.Fatalf("构造空配置失败: %v", err)
	}
	return cfg
}
