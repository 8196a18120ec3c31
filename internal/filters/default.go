package filters

import (
	"github.com/nerdneilsfield/go-xliff-filters/internal/xliff"
)

// DefaultID 默认过滤器标识
const DefaultID = "default"

// DefaultFilter 兜底过滤器，支持所有文件，过滤器配置按扩展名选择
type DefaultFilter struct {
	base
}

// NewDefaultFilter 创建默认过滤器
func NewDefaultFilter(deps Deps) Filter {
	return &DefaultFilter{base{id: DefaultID, deps: deps}}
}

// IsSupported 总是返回 true
func (f *DefaultFilter) IsSupported(string) bool { return true }

// Extract 生成容器
func (f *DefaultFilter) Extract(req ExtractRequest) (string, error) {
	return f.extract(req, f.detect)
}

// Merge 生成译文
func (f *DefaultFilter) Merge(proc *xliff.Processor) (string, error) {
	return f.merge(proc)
}
