package requirement

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matysek/pip-accel/internal/config"
)

// testConfig 构造一个数据目录指向临时目录的配置快照，并确保 sources 子目录存在。
func testConfig(t *testing.T, dataDir string) *config.Config {
	t.Helper()
	t.Setenv(config.EnvDataDirectory, dataDir)
	cfg, err := config.Load(false, true)
	if err != nil {
		t.Fatalf("构造测试配置失败: %v", err)
	}
	if err := os.MkdirAll(cfg.SourceIndex(), 0o755); err != nil {
		t.Fatalf("创建源码索引目录失败: %v", err)
	}
	return cfg
}

// loadConfigWithoutSourceIndex 构造配置但刻意不创建 sources 目录，
// 用于验证扫描错误原样上抛。调用方需要先设置 PIP_ACCEL_CACHE。
func loadConfigWithoutSourceIndex(t *testing.T) (*config.Config, error) {
	t.Helper()
	return config.Load(false, true)
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}
}

// newSdistDir 构造一个只带源码发行版证据的解包目录。
func newSdistDir(t *testing.T, name, version string) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "setup.py"), "from setuptools import setup\nsetup()\n")
	writeTestFile(t, filepath.Join(dir, "PKG-INFO"),
		"Metadata-Version: 2.1\nName: "+name+"\nVersion: "+version+"\n")
	return dir
}

// newWheelDir 构造一个只带 wheel 证据的解包目录。
func newWheelDir(t *testing.T, name, version string) string {
	t.Helper()
	dir := t.TempDir()
	distInfo := filepath.Join(dir, name+"-"+version+".dist-info")
	writeTestFile(t, filepath.Join(distInfo, "WHEEL"), "Wheel-Version: 1.0\n")
	writeTestFile(t, filepath.Join(distInfo, "METADATA"),
		"Metadata-Version: 2.1\nName: "+name+"\nVersion: "+version+"\n")
	return dir
}

// countingReader 记录每个访问器被调用的次数，用于验证派生字段只计算一次。
type countingReader struct {
	meta        *Metadata
	sourceCalls int
	wheelCalls  int
}

func (c *countingReader) ReadSourceMetadata(string) (*Metadata, error) {
	c.sourceCalls++
	return c.meta, nil
}

func (c *countingReader) ReadWheelMetadata(string) (*Metadata, error) {
	c.wheelCalls++
	return c.meta, nil
}
