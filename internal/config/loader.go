package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// 配置文件候选位置。三个位置都是可选的，按「系统级 → 用户级 → 环境变量指定」
// 的顺序加载，后加载的文件按键覆盖先加载的文件。
const (
	// GlobalConfigFile 是系统级配置文件位置。
	GlobalConfigFile = "/etc/pip-accel.conf"
	// LocalConfigFile 是用户级配置文件位置。
	LocalConfigFile = "~/.pip-accel/pip-accel.conf"
	// ConfigSection 是每个配置文件都必须包含的 INI 节名。
	ConfigSection = "pip-accel"
)

// availableConfigurationFiles 返回实际存在的候选配置文件绝对路径，保持优先级顺序。
func (c *Config) availableConfigurationFiles() []string {
	known := []string{GlobalConfigFile, LocalConfigFile, c.environment[EnvConfigFile]}

	var available []string
	for _, name := range known {
		if name == "" {
			continue
		}
		path := NormalizePath(name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			available = append(available, path)
		}
	}
	return available
}

// LoadConfigurationFile 解析一个 INI 配置文件并把 [pip-accel] 节合并进当前快照，
// 已存在的键会被覆盖。文件无法解析或缺少必需节时返回 ConfigurationError；
// 不存在的文件应在调用前过滤掉，这里不做静默跳过。
func (c *Config) LoadConfigurationFile(path string) error {
	path = NormalizePath(path)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")

	if err := v.ReadInConfig(); err != nil {
		return &ConfigurationError{
			Path:   path,
			Reason: "无法解析配置文件",
			Err:    err,
		}
	}

	// viper 的 INI 视图只保留有值的键，空的配置节不会留下痕迹，
	// 所以配置节是否存在单独用 ini 解析器判定：空节合法，缺节报错。
	if err := requireSection(path); err != nil {
		return err
	}

	for key, value := range v.GetStringMapString(ConfigSection) {
		c.options[key] = value
	}
	return nil
}

// requireSection 校验配置文件包含 [pip-accel] 节（允许为空）。
func requireSection(path string) error {
	raw, err := ini.Load(path)
	if err != nil {
		return &ConfigurationError{
			Path:   path,
			Reason: "无法解析配置文件",
			Err:    err,
		}
	}
	if _, err := raw.GetSection(ConfigSection); err != nil {
		return &ConfigurationError{
			Path:   path,
			Reason: fmt.Sprintf("缺少 [%s] 配置节", ConfigSection),
		}
	}
	return nil
}
