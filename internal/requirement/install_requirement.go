package requirement

// InstallRequirement 暴露描述符需要的解析结果最小接口，由安装驱动围绕真实的
// 依赖解析产物做适配。ComesFrom 是指向引入方需求的回溯引用（直接需求返回
// nil）；它只是查找关系，描述符不持有也不延长需求图的生命周期。
type InstallRequirement interface {
	// Name 返回规范化的包名。
	Name() string
	// Specifier 返回需求行里原样的版本约束（如 ==1.0、>=2,<3），未指定时为空。
	Specifier() string
	// SourceDirectory 返回解包后源码所在目录。
	SourceDirectory() string
	// Editable 返回是否以可编辑模式（链接工作目录）安装。
	Editable() bool
	// ComesFrom 返回引入该需求的上游需求，直接需求返回 nil。
	ComesFrom() InstallRequirement
}

// ResolvedRequirement 是 InstallRequirement 的直接实现，供安装驱动与测试使用。
type ResolvedRequirement struct {
	PackageName string
	Constraint  string
	SourceDir   string
	Develop     bool
	Origin      InstallRequirement
}

func (r *ResolvedRequirement) Name() string                  { return r.PackageName }
func (r *ResolvedRequirement) Specifier() string             { return r.Constraint }
func (r *ResolvedRequirement) SourceDirectory() string       { return r.SourceDir }
func (r *ResolvedRequirement) Editable() bool                { return r.Develop }
func (r *ResolvedRequirement) ComesFrom() InstallRequirement { return r.Origin }
