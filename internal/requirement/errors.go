package requirement

import "fmt"

// AmbiguousDistributionFormatError 表示解包目录同时具备源码发行版与 wheel 的
// 特征。该需求的处理必须终止，不允许退回到任何一种格式。
type AmbiguousDistributionFormatError struct {
	Requirement string
	Directory   string
}

func (e *AmbiguousDistributionFormatError) Error() string {
	return fmt.Sprintf("需求 %s 在 %s 下同时具有源码发行版与 wheel 的特征，无法判定格式", e.Requirement, e.Directory)
}

// UnknownDistributionFormatError 表示解包目录里找不到任何能判定格式的证据。
type UnknownDistributionFormatError struct {
	Requirement string
	Directory   string
}

func (e *UnknownDistributionFormatError) Error() string {
	return fmt.Sprintf("需求 %s 在 %s 下既不像源码发行版也不像 wheel，无法判定格式", e.Requirement, e.Directory)
}

// WrongDistributionFormatError 表示调用方对已判定的格式使用了错误的元数据访问器。
// 这是程序内部的契约违规，不是可恢复的运行时条件。
type WrongDistributionFormatError struct {
	Requirement string
	Want        DistributionFormat
	Got         DistributionFormat
}

func (e *WrongDistributionFormatError) Error() string {
	return fmt.Sprintf("需求 %s 的格式是 %s，不能使用 %s 的元数据访问器", e.Requirement, e.Got, e.Want)
}
