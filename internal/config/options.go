package config

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// FileOptions 是合并后的配置键中被识别的子集。未识别的键保留在原始 map 里
// 但不影响任何设置；这个类型化视图供 -check-config 输出生效配置时使用。
type FileOptions struct {
	DataDirectory string   `mapstructure:"data-directory"`
	DownloadCache string   `mapstructure:"download-cache"`
	AutoInstall   TriState `mapstructure:"auto-install"`
	S3Bucket      string   `mapstructure:"s3-bucket"`
	S3Prefix      string   `mapstructure:"s3-prefix"`
	LogLevel      string   `mapstructure:"log-level"`
	LogFile       string   `mapstructure:"log-file"`
}

// FileOptions 把合并后的配置 map 解码成类型化结构，顺带校验 auto-install 的写法。
func (c *Config) FileOptions() (*FileOptions, error) {
	var opts FileOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: triStateDecodeHook(),
		Result:     &opts,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(c.options); err != nil {
		return nil, fmt.Errorf("解析配置键失败: %w", err)
	}
	return &opts, nil
}

// UnknownOptions 返回配置文件中不被识别的键，便于 -check-config 提示拼写错误。
func (c *Config) UnknownOptions() []string {
	recognized := map[string]struct{}{
		"data-directory": {},
		"download-cache": {},
		"auto-install":   {},
		"s3-bucket":      {},
		"s3-prefix":      {},
		"log-level":      {},
		"log-file":       {},
	}

	var unknown []string
	for key := range c.options {
		if _, ok := recognized[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// triStateDecodeHook 让 mapstructure 能把字符串形式的布尔写法解码成 TriState。
func triStateDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(TriState(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return ParseTriState(v)
		case bool:
			if v {
				return TriStateYes, nil
			}
			return TriStateNo, nil
		case TriState:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 TriState 类型: %T", v)
		}
	}
}
