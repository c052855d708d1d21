package config

import (
	"fmt"
	"strings"
)

// TriState 是显式建模的三态布尔：开、关、未设置。auto-install 使用它来区分
// 「用户明确选择」与「运行时需要询问」，避免在调用点散落 nil 检查。
type TriState int

const (
	// TriStateUnset 表示用户没有做出选择，届时应询问用户。
	TriStateUnset TriState = iota
	// TriStateYes 表示明确开启。
	TriStateYes
	// TriStateNo 表示明确关闭。
	TriStateNo
)

func (t TriState) String() string {
	switch t {
	case TriStateYes:
		return "yes"
	case TriStateNo:
		return "no"
	default:
		return "unset"
	}
}

// ParseTriState 解析常见的布尔写法（on/off、yes/no、true/false、1/0），
// 空字符串映射为 TriStateUnset，无法识别的取值返回错误而不是默认其一。
func ParseTriState(value string) (TriState, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return TriStateUnset, nil
	case "1", "yes", "true", "on", "y":
		return TriStateYes, nil
	case "0", "no", "false", "off", "n":
		return TriStateNo, nil
	default:
		return TriStateUnset, fmt.Errorf("无法解析布尔值: %q", value)
	}
}
