package filters

import (
	"github.com/nerdneilsfield/go-xliff-filters/internal/encoding"
	"github.com/nerdneilsfield/go-xliff-filters/internal/xliff"
)

// HTMLID HTML 过滤器标识
const HTMLID = "html"

// HTMLConfig 定制的 HTML 过滤器配置
const HTMLConfig = "okf_html-custom"

// HTMLFilter 使用定制 HTML 配置的过滤器。文档自身声明的编码优先于统计推断。
type HTMLFilter struct {
	base
}

// NewHTMLFilter 创建 HTML 过滤器
func NewHTMLFilter(deps Deps) Filter {
	return &HTMLFilter{base{id: HTMLID, filterConfig: HTMLConfig, deps: deps}}
}

// IsSupported 支持 .html/.htm/.xhtml
func (f *HTMLFilter) IsSupported(path string) bool {
	return hasExtension(path, "html", "htm", "xhtml")
}

// Extract 生成容器
func (f *HTMLFilter) Extract(req ExtractRequest) (string, error) {
	return f.extract(req, func(path string) (encoding.Encoding, error) {
		enc, err := f.detect(path)
		if err != nil {
			return "", err
		}
		// 未声明编码的 HTML 按 UTF-8 处理
		if enc == "" {
			return encoding.Default, nil
		}
		return enc, nil
	})
}

// Merge 生成译文
func (f *HTMLFilter) Merge(proc *xliff.Processor) (string, error) {
	return f.merge(proc)
}
