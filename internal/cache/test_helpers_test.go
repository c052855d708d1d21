package cache

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/matysek/pip-accel/internal/config"
	"github.com/matysek/pip-accel/internal/requirement"
)

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

// testRequirement 构造一个带源码发行版证据的需求描述符。
func testRequirement(t *testing.T, cfg *config.Config, name, version string, editable bool) *requirement.Requirement {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "setup.py"), "from setuptools import setup\nsetup()\n")
	writeTestFile(t, filepath.Join(dir, "PKG-INFO"),
		"Metadata-Version: 2.1\nName: "+name+"\nVersion: "+version+"\n")
	return requirement.New(cfg, &requirement.ResolvedRequirement{
		PackageName: name,
		SourceDir:   dir,
		Develop:     editable,
	})
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

// writeSourceArchive 在源码索引目录放置一个指定修改时间的归档。
func writeSourceArchive(t *testing.T, cfg *config.Config, name string, modTime time.Time) {
	t.Helper()
	path := filepath.Join(cfg.SourceIndex(), name)
	writeTestFile(t, path, "archive")
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("设置归档时间失败: %v", err)
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func mustPut(t *testing.T, backend Backend, key, content string, modTime time.Time) *Entry {
	t.Helper()
	entry, err := backend.Put(context.Background(), key, bytes.NewReader([]byte(content)), PutOptions{ModTime: modTime})
	if err != nil {
		t.Fatalf("写入缓存失败: %v", err)
	}
	return entry
}

func readAll(t *testing.T, result *ReadResult) string {
	t.Helper()
	defer result.Reader.Close()
	data, err := io.ReadAll(result.Reader)
	if err != nil {
		t.Fatalf("读取缓存正文失败: %v", err)
	}
	return string(data)
}
