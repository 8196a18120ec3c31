// Package engine 描述外部文档处理引擎的一次调用：一个作业由有序的步骤组成，
// 引擎负责过滤、分句、抽取与合并等算法本身。
package engine

// StepKind 步骤类型
type StepKind string

// 步骤类型常量
const (
	StepFilter      StepKind = "filter"
	StepAddHints    StepKind = "add-hints"
	StepSegment     StepKind = "segment"
	StepRemoveHints StepKind = "remove-hints"
	StepExtract     StepKind = "extract"
	StepWhitespace  StepKind = "whitespace-correction"
	StepMerge       StepKind = "merge"
)

// UTF8 输出编码总是 UTF-8
const UTF8 = "UTF-8"

// Step 作业中的一个步骤
type Step struct {
	Kind   StepKind          `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Job 一次引擎调用
type Job struct {
	ID             string `json:"id"`
	Root           string `json:"root"`            // 工作根目录，打包目录创建在这里
	Input          string `json:"input"`           // 输入文件
	InputEncoding  string `json:"input_encoding"`  // 输入编码
	OutputEncoding string `json:"output_encoding"` // 输出编码
	Output         string `json:"output,omitempty"`
	Source         string `json:"source"`
	Target         string `json:"target"`
	FilterConfig   string `json:"filter_config"`
	PackName       string `json:"pack_name,omitempty"`
	Steps          []Step `json:"steps"`
}

// Add 追加步骤
func (j *Job) Add(kind StepKind, params map[string]string) *Job {
	j.Steps = append(j.Steps, Step{Kind: kind, Params: params})
	return j
}

// Kinds 按顺序返回步骤类型
func (j *Job) Kinds() []StepKind {
	kinds := make([]StepKind, len(j.Steps))
	for i, s := range j.Steps {
		kinds[i] = s.Kind
	}
	return kinds
}

// Has 是否包含某类步骤
func (j *Job) Has(kind StepKind) bool {
	for _, s := range j.Steps {
		if s.Kind == kind {
			return true
		}
	}
	return false
}

// Step 返回第一个指定类型的步骤
func (j *Job) Step(kind StepKind) (Step, bool) {
	for _, s := range j.Steps {
		if s.Kind == kind {
			return s, true
		}
	}
	return Step{}, false
}

// Engine 外部引擎。一次调用是不可取消的原子操作。
type Engine interface {
	Run(job *Job) error
}
