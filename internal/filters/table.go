package filters

import (
	"github.com/nerdneilsfield/go-xliff-filters/internal/format"
	"github.com/nerdneilsfield/go-xliff-filters/internal/xliff"
)

// TableID 表格过滤器标识
const TableID = "table"

// TableFilter 逗号或制表符分隔的表格
type TableFilter struct {
	base
}

// NewTableFilter 创建表格过滤器
func NewTableFilter(deps Deps) Filter {
	return &TableFilter{base{id: TableID, deps: deps}}
}

// IsSupported 支持 .csv/.tsv
func (f *TableFilter) IsSupported(path string) bool {
	return hasExtension(path, "csv", "tsv")
}

// Extract 生成容器，csv 与 tsv 使用各自的表格配置
func (f *TableFilter) Extract(req ExtractRequest) (string, error) {
	b := f.base
	b.filterConfig = format.Classify(req.File).FilterConfig
	return b.extract(req, f.detect)
}

// Merge 生成译文
func (f *TableFilter) Merge(proc *xliff.Processor) (string, error) {
	return f.merge(proc)
}
