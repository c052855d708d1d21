package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/matysek/pip-accel/internal/requirement"
)

// BaseFields 构建 action + 数据目录等基础字段，便于不同入口复用。
func BaseFields(action, dataDirectory string) logrus.Fields {
	return logrus.Fields{
		"action":   action,
		"data_dir": dataDirectory,
	}
}

// RequirementFields 提供需求的身份字段，供安装/缓存日志复用。
func RequirementFields(req *requirement.Requirement) logrus.Fields {
	return logrus.Fields{
		"requirement": req.Name(),
		"lineage":     req.Lineage().String(),
		"editable":    req.Editable(),
	}
}
