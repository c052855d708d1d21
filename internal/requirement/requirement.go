package requirement

import (
	"fmt"
	"os"
	"time"

	"github.com/matysek/pip-accel/internal/config"
	"github.com/matysek/pip-accel/internal/lazy"
)

// Lineage 表示需求进入安装集合的方式。
type Lineage int

const (
	// Direct 表示需求由顶层安装请求显式指定。
	Direct Lineage = iota
	// Transitive 表示需求作为其它需求的依赖被引入。
	Transitive
)

func (l Lineage) String() string {
	if l == Transitive {
		return "transitive"
	}
	return "direct"
}

// Requirement 包装一个已解析的安装需求，并按需派生缓存键所需的身份与新鲜度
// 信息。所有派生字段只计算一次；同一需求图内的多个 Requirement 互不共享可变
// 状态，可以并发求值。
type Requirement struct {
	cfg    *config.Config
	raw    InstallRequirement
	reader MetadataReader

	format          lazy.Result[DistributionFormat]
	version         lazy.Result[string]
	relatedArchives lazy.Result[[]string]
	lastModified    lazy.Result[time.Time]
	sdistMetadata   lazy.Result[*Metadata]
	wheelMetadata   lazy.Result[*Metadata]

	// now 可在测试中替换，用于验证「无匹配归档时视为刚更新」的偏置。
	now func() time.Time
}

// New 以默认的文件元数据读取器包装一个已解析需求。
func New(cfg *config.Config, raw InstallRequirement) *Requirement {
	return NewWithReader(cfg, raw, FileMetadataReader{})
}

// NewWithReader 允许注入自定义元数据读取器，主要供测试与嵌入方使用。
func NewWithReader(cfg *config.Config, raw InstallRequirement, reader MetadataReader) *Requirement {
	return &Requirement{
		cfg:    cfg,
		raw:    raw,
		reader: reader,
		now:    time.Now,
	}
}

// Name 返回规范化包名。
func (r *Requirement) Name() string {
	return r.raw.Name()
}

// SourceDirectory 返回解包后源码所在目录。读取任何派生字段之前，调用方必须
// 保证目录内容已完整解包。
func (r *Requirement) SourceDirectory() string {
	return r.raw.SourceDirectory()
}

// Editable 返回是否以可编辑模式安装。可编辑安装从不进入缓存。
func (r *Requirement) Editable() bool {
	return r.raw.Editable()
}

// Lineage 返回该需求是顶层显式指定（direct）还是被依赖引入（transitive），
// 依据原始需求记录的回溯引用判定。
func (r *Requirement) Lineage() Lineage {
	if r.raw.ComesFrom() != nil {
		return Transitive
	}
	return Direct
}

// label 渲染需求行形态的标识（如 foo==1.0），供错误信息定位出问题的需求。
// 版本取自需求行的约束而不是元数据：错误路径上元数据往往不可用。
func (r *Requirement) label() string {
	return r.Name() + r.raw.Specifier()
}

// DistributionFormat 返回探测到的发行格式。每个描述符只探测一次，之后的
// 元数据访问必须与这里的结果一致。
func (r *Requirement) DistributionFormat() (DistributionFormat, error) {
	return r.format.Get(func() (DistributionFormat, error) {
		return detectFormat(r.label(), r.SourceDirectory())
	})
}

// Version 返回解析出的版本号，按发行格式从对应的元数据中读取。
func (r *Requirement) Version() (string, error) {
	return r.version.Get(func() (string, error) {
		format, err := r.DistributionFormat()
		if err != nil {
			return "", err
		}
		var meta *Metadata
		if format == WheelDistribution {
			meta, err = r.WheelMetadata()
		} else {
			meta, err = r.SdistMetadata()
		}
		if err != nil {
			return "", err
		}
		return meta.Version, nil
	})
}

// SdistMetadata 返回源码发行版的元数据。对 wheel 调用属于契约违规，返回
// WrongDistributionFormatError 而不是悄悄改道。
func (r *Requirement) SdistMetadata() (*Metadata, error) {
	return r.sdistMetadata.Get(func() (*Metadata, error) {
		format, err := r.DistributionFormat()
		if err != nil {
			return nil, err
		}
		if format != SourceDistribution {
			return nil, &WrongDistributionFormatError{
				Requirement: r.label(),
				Want:        SourceDistribution,
				Got:         format,
			}
		}
		return r.reader.ReadSourceMetadata(r.SourceDirectory())
	})
}

// WheelMetadata 返回 wheel 发行版的元数据，对源码发行版调用同样属于契约违规。
func (r *Requirement) WheelMetadata() (*Metadata, error) {
	return r.wheelMetadata.Get(func() (*Metadata, error) {
		format, err := r.DistributionFormat()
		if err != nil {
			return nil, err
		}
		if format != WheelDistribution {
			return nil, &WrongDistributionFormatError{
				Requirement: r.label(),
				Want:        WheelDistribution,
				Got:         format,
			}
		}
		return r.reader.ReadWheelMetadata(r.SourceDirectory())
	})
}

// RelatedArchives 返回源码索引目录中与本需求同名同版本的归档文件，匹配对
// 大小写以及 - 和 _ 的差异不敏感。结果只用于 LastModified 的计算。
func (r *Requirement) RelatedArchives() ([]string, error) {
	return r.relatedArchives.Get(func() ([]string, error) {
		version, err := r.Version()
		if err != nil {
			return nil, err
		}
		return findRelatedArchives(r.cfg.SourceIndex(), r.Name(), version)
	})
}

// LastModified 返回相关归档中最新的修改时间，驱动缓存失效判定。找不到任何
// 归档时返回当前时间：在「复用过期产物」与「多做一次构建」之间刻意偏向后者。
func (r *Requirement) LastModified() (time.Time, error) {
	return r.lastModified.Get(func() (time.Time, error) {
		archives, err := r.RelatedArchives()
		if err != nil {
			return time.Time{}, err
		}
		if len(archives) == 0 {
			return r.now(), nil
		}

		var newest time.Time
		for _, archive := range archives {
			info, err := os.Stat(archive)
			if err != nil {
				return time.Time{}, err
			}
			if info.ModTime().After(newest) {
				newest = info.ModTime()
			}
		}
		return newest, nil
	})
}

// String 渲染 "<name> (<version>)"，版本尚不可知时用 unknown 占位。
func (r *Requirement) String() string {
	version, err := r.Version()
	if err != nil {
		version = "unknown"
	}
	return fmt.Sprintf("%s (%s)", r.Name(), version)
}
