package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matysek/pip-accel/internal/lazy"
)

// 可覆盖各项设置的环境变量名称。非空的环境变量永远优先于配置文件与默认值。
const (
	EnvConfigFile    = "PIP_ACCEL_CONFIG"
	EnvDataDirectory = "PIP_ACCEL_CACHE"
	EnvDownloadCache = "PIP_DOWNLOAD_CACHE"
	EnvAutoInstall   = "PIP_ACCEL_AUTO_INSTALL"
	EnvS3Bucket      = "PIP_ACCEL_S3_BUCKET"
	EnvS3Prefix      = "PIP_ACCEL_S3_PREFIX"
	EnvLogLevel      = "PIP_ACCEL_LOG_LEVEL"
	EnvLogFile       = "PIP_ACCEL_LOG_FILE"
)

// cacheFormatRevision 是二进制缓存布局的版本号。该值被编码进缓存目录与缓存键，
// 任何不向后兼容的布局改动都必须同时提升它，避免新旧缓存互相污染。
const cacheFormatRevision = 7

// Config 是启动时构建的一次性配置快照：环境变量在构造时截取，配置文件按
// 优先级顺序合并，所有派生字段首次读取后缓存，之后不再感知外部变化。
// 构造完成后 Config 只读，可以安全地被多个 goroutine 共享。
type Config struct {
	environment map[string]string
	options     map[string]string

	// euid 返回当前进程的有效 UID，测试中可替换以覆盖 root/非 root 两条默认路径。
	euid func() int

	dataDirectory lazy.Value[string]
	sourceIndex   lazy.Value[string]
	binaryCache   lazy.Value[string]
	downloadCache lazy.Value[string]
	autoInstall   lazy.Result[TriState]
	s3CacheBucket lazy.Value[string]
	s3CachePrefix lazy.Value[string]
	logLevel      lazy.Value[string]
	logFile       lazy.Value[string]
}

// Load 构建配置快照。loadFiles 控制是否按固定顺序加载候选配置文件，
// loadEnvironment 控制是否截取进程环境变量；两者均关闭时得到纯默认值配置。
func Load(loadFiles, loadEnvironment bool) (*Config, error) {
	cfg := &Config{
		environment: map[string]string{},
		options:     map[string]string{},
		euid:        os.Geteuid,
	}

	if loadEnvironment {
		cfg.environment = snapshotEnvironment()
	}

	if loadFiles {
		for _, path := range cfg.availableConfigurationFiles() {
			if err := cfg.LoadConfigurationFile(path); err != nil {
				return nil, err
			}
		}
	}

	return cfg, nil
}

// snapshotEnvironment 把进程环境变量复制成 map，之后对 os.Setenv 的调用不再生效。
func snapshotEnvironment() map[string]string {
	env := make(map[string]string, len(os.Environ()))
	for _, pair := range os.Environ() {
		if key, value, ok := strings.Cut(pair, "="); ok {
			env[key] = value
		}
	}
	return env
}

// Get 按「环境变量 > 配置文件 > 默认值」的优先级取值。
// 空字符串视为未设置：置空的环境变量不会遮蔽配置文件里的值。
func (c *Config) Get(environmentVariable, configurationOption, defaultValue string) string {
	if value := c.environment[environmentVariable]; value != "" {
		return value
	}
	if value := c.options[configurationOption]; value != "" {
		return value
	}
	return defaultValue
}

// CacheFormatRevision 返回缓存布局版本号。
func (c *Config) CacheFormatRevision() int {
	return cacheFormatRevision
}

// DataDirectory 返回 pip-accel 数据文件的根目录。
//
//   - 环境变量：$PIP_ACCEL_CACHE
//   - 配置项：data-directory
//   - 默认值：root 用户为 /var/cache/pip-accel，普通用户为 ~/.pip-accel
func (c *Config) DataDirectory() string {
	return c.dataDirectory.Get(func() string {
		fallback := "~/.pip-accel"
		if c.euid() == 0 {
			fallback = "/var/cache/pip-accel"
		}
		return NormalizePath(c.Get(EnvDataDirectory, "data-directory", fallback))
	})
}

// SourceIndex 返回源码包索引目录，始终是 DataDirectory 下的 sources 子目录。
func (c *Config) SourceIndex() string {
	return c.sourceIndex.Get(func() string {
		return filepath.Join(c.DataDirectory(), "sources")
	})
}

// BinaryCache 返回二进制缓存目录，始终是 DataDirectory 下的 binaries 子目录。
func (c *Config) BinaryCache() string {
	return c.binaryCache.Get(func() string {
		return filepath.Join(c.DataDirectory(), "binaries")
	})
}

// DownloadCache 返回 pip 下载缓存目录。
//
//   - 环境变量：$PIP_DOWNLOAD_CACHE
//   - 配置项：download-cache
//   - 默认值：~/.pip/download-cache
func (c *Config) DownloadCache() string {
	return c.downloadCache.Get(func() string {
		return NormalizePath(c.Get(EnvDownloadCache, "download-cache", "~/.pip/download-cache"))
	})
}

// AutoInstall 返回是否自动安装缺失系统依赖的三态开关：
// 开、关、未设置（运行时询问用户）。无法解析的取值返回错误而不是猜测。
//
//   - 环境变量：$PIP_ACCEL_AUTO_INSTALL
//   - 配置项：auto-install
func (c *Config) AutoInstall() (TriState, error) {
	return c.autoInstall.Get(func() (TriState, error) {
		return ParseTriState(c.Get(EnvAutoInstall, "auto-install", ""))
	})
}

// S3CacheBucket 返回远端二进制缓存服务的地址（键名沿用 s3-bucket），
// 空字符串表示未启用远端缓存。
//
//   - 环境变量：$PIP_ACCEL_S3_BUCKET
//   - 配置项：s3-bucket
func (c *Config) S3CacheBucket() string {
	return c.s3CacheBucket.Get(func() string {
		return c.Get(EnvS3Bucket, "s3-bucket", "")
	})
}

// S3CachePrefix 返回远端缓存键的公共前缀，用于在共享 bucket 内划分命名空间。
//
//   - 环境变量：$PIP_ACCEL_S3_PREFIX
//   - 配置项：s3-prefix
func (c *Config) S3CachePrefix() string {
	return c.s3CachePrefix.Get(func() string {
		return c.Get(EnvS3Prefix, "s3-prefix", "")
	})
}

// LogLevel 返回日志级别（logrus 可解析的字符串）。
func (c *Config) LogLevel() string {
	return c.logLevel.Get(func() string {
		return c.Get(EnvLogLevel, "log-level", "info")
	})
}

// LogFile 返回日志文件路径，空字符串表示仅输出到 stdout。
func (c *Config) LogFile() string {
	return c.logFile.Get(func() string {
		if path := c.Get(EnvLogFile, "log-file", ""); path != "" {
			return NormalizePath(path)
		}
		return ""
	})
}
