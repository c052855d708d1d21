package requirement

import (
	"os"
	"path/filepath"
)

// DistributionFormat 表示需求的发行格式：需要构建的源码发行版，或已预构建的 wheel。
type DistributionFormat int

const (
	// FormatUnknown 仅作为错误路径上的零值出现，永远不会被成功探测返回。
	FormatUnknown DistributionFormat = iota
	// SourceDistribution 表示需要先构建再安装的源码发行版。
	SourceDistribution
	// WheelDistribution 表示可直接安装的预构建发行版。
	WheelDistribution
)

func (f DistributionFormat) String() string {
	switch f {
	case SourceDistribution:
		return "sdist"
	case WheelDistribution:
		return "wheel"
	default:
		return "unknown"
	}
}

// detectFormat 通过两份独立的磁盘证据判定发行格式：setup.py 是源码发行版的
// 构建脚本标记，*.dist-info/WHEEL 是 wheel 的元数据标记。两份证据同时出现或
// 同时缺失都必须报错，静默猜测会污染缓存键。
func detectFormat(requirement, directory string) (DistributionFormat, error) {
	probablySdist := fileExists(filepath.Join(directory, "setup.py"))

	wheelMarkers, err := filepath.Glob(filepath.Join(directory, "*.dist-info", "WHEEL"))
	if err != nil {
		return FormatUnknown, err
	}
	probablyWheel := len(wheelMarkers) > 0

	switch {
	case probablyWheel && !probablySdist:
		return WheelDistribution, nil
	case probablySdist && !probablyWheel:
		return SourceDistribution, nil
	case probablySdist && probablyWheel:
		return FormatUnknown, &AmbiguousDistributionFormatError{
			Requirement: requirement,
			Directory:   directory,
		}
	default:
		return FormatUnknown, &UnknownDistributionFormatError{
			Requirement: requirement,
			Directory:   directory,
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
