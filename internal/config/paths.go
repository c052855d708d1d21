package config

import (
	"os"
	"path/filepath"
	"strings"
)

// NormalizePath 统一路径形态：展开 ~ 为当前用户主目录并转成绝对路径。
// 所有路径型配置值在返回给调用方之前都必须经过这里，保证可以直接比较。
func NormalizePath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
