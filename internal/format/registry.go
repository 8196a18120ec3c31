package format

import (
	"path/filepath"
	"strings"
	"sync"
)

// Kind 格式大类
type Kind int

const (
	// KindOther 普通单语文档
	KindOther Kind = iota
	// KindBilingual 已经是双语交换格式
	KindBilingual
	// KindOCR 需要先做 OCR 的扫描件或图片
	KindOCR
)

// String 返回格式大类名称
func (k Kind) String() string {
	switch k {
	case KindBilingual:
		return "bilingual"
	case KindOCR:
		return "ocr"
	default:
		return "other"
	}
}

// Format 文件格式，仅由扩展名决定
type Format struct {
	Extension    string // 小写、不带点
	Kind         Kind
	FilterConfig string // 引擎过滤器配置 ID
}

// IsBilingual 是否双语格式
func (f Format) IsBilingual() bool { return f.Kind == KindBilingual }

// IsOCR 是否 OCR 来源格式
func (f Format) IsOCR() bool { return f.Kind == KindOCR }

// DefaultFilterConfig 未知扩展名使用的过滤器配置
const DefaultFilterConfig = "okf_plaintext"

// Registry 扩展名到格式的映射表
type Registry struct {
	mu      sync.RWMutex
	formats map[string]Format
}

// globalRegistry 全局注册表实例
var globalRegistry = NewRegistry()

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]Format)}
}

// Register 注册扩展名
func Register(ext string, kind Kind, filterConfig string) {
	globalRegistry.Register(ext, kind, filterConfig)
}

// Classify 根据文件名判断格式
func Classify(filename string) Format {
	return globalRegistry.Classify(filename)
}

// Lookup 根据扩展名查找格式
func Lookup(ext string) (Format, bool) {
	return globalRegistry.Lookup(ext)
}

// Register 注册扩展名映射
func (r *Registry) Register(ext string, kind Kind, filterConfig string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ext = normalize(ext)
	r.formats[ext] = Format{Extension: ext, Kind: kind, FilterConfig: filterConfig}
}

// Lookup 根据扩展名查找格式
func (r *Registry) Lookup(ext string) (Format, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formats[normalize(ext)]
	return f, ok
}

// Classify 根据文件名判断格式，未注册的扩展名归为普通格式
func (r *Registry) Classify(filename string) Format {
	ext := Extension(filename)
	if f, ok := r.Lookup(ext); ok {
		return f
	}
	return Format{Extension: ext, Kind: KindOther, FilterConfig: DefaultFilterConfig}
}

// Extension 返回小写、不带点的扩展名
func Extension(filename string) string {
	return normalize(filepath.Ext(filename))
}

func normalize(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// init 初始化默认扩展名映射
func init() {
	// 双语格式
	for _, ext := range []string{"xlf", "xliff", "sdlxliff", "mqxliff", "mxliff", "txlf"} {
		Register(ext, KindBilingual, "okf_xliff")
	}
	Register("po", KindBilingual, "okf_po")
	Register("tmx", KindBilingual, "okf_tmx")
	Register("ttx", KindBilingual, "okf_ttx")
	Register("txml", KindBilingual, "okf_txml")

	// OCR 来源
	for _, ext := range []string{"pdf", "jpg", "jpeg", "png", "tif", "tiff", "bmp", "gif"} {
		Register(ext, KindOCR, "okf_openxml")
	}

	// Office
	for _, ext := range []string{"docx", "docm", "dotx", "xlsx", "xlsm", "xltx", "pptx", "pptm", "potx"} {
		Register(ext, KindOther, "okf_openxml")
	}
	for _, ext := range []string{"odt", "ods", "odp", "odg", "ott", "ots", "otp"} {
		Register(ext, KindOther, "okf_openoffice")
	}
	Register("idml", KindOther, "okf_idml")

	// 标记语言
	for _, ext := range []string{"html", "htm", "xhtml", "xht"} {
		Register(ext, KindOther, "okf_html")
	}
	Register("xml", KindOther, "okf_xml")
	Register("md", KindOther, "okf_markdown")
	Register("markdown", KindOther, "okf_markdown")

	// 文本与数据
	Register("txt", KindOther, "okf_plaintext")
	Register("csv", KindOther, "okf_table_csv")
	Register("tsv", KindOther, "okf_table_tsv")
	Register("properties", KindOther, "okf_properties")
	Register("json", KindOther, "okf_json")
	Register("yml", KindOther, "okf_yaml")
	Register("yaml", KindOther, "okf_yaml")
	Register("dtd", KindOther, "okf_dtd")
	Register("strings", KindOther, "okf_regex-macStrings")
	Register("resx", KindOther, "okf_xml-resx")
}
