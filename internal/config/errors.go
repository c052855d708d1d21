package config

import "fmt"

// ConfigurationError 表示某个配置文件存在但内容不合法（解析失败或缺少必需节）。
// 它携带出错文件的路径，启动期直接上抛，不做任何降级。
type ConfigurationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Reason, e.Path, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Reason, e.Path)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
