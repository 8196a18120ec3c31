package xliff

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
	"github.com/nerdneilsfield/go-xliff-filters/internal/format"
	"github.com/nerdneilsfield/go-xliff-filters/internal/pack"
)

// ContainerExtension 容器文件扩展名
const ContainerExtension = ".xlf"

// DerivedGenerator 由打包目录生成译文文件
type DerivedGenerator interface {
	GenerateDerivedFile(p *pack.Pack) (string, error)
}

// FormatConverter 把文件转换为另一种格式（例如旧版二进制 Office 格式）
type FormatConverter interface {
	Convert(path string, target format.Format) (string, error)
}

// Processor 单个容器的处理器，语言、过滤器标识和打包目录都按需计算并缓存
type Processor struct {
	path          string
	reconstructor *Reconstructor
	converter     FormatConverter
	logger        *zap.Logger

	languages  *LocalePair
	filter     string
	hasFilter  bool
	filterRead bool
	result     *Result
}

// ProcessorOption 处理器选项
type ProcessorOption func(*Processor)

// WithConverter 设置格式转换器
func WithConverter(c FormatConverter) ProcessorOption {
	return func(p *Processor) { p.converter = c }
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) ProcessorOption {
	return func(p *Processor) { p.logger = logger }
}

// NewProcessor 创建处理器，path 必须是已存在的 .xlf 文件
func NewProcessor(path string, r *Reconstructor, opts ...ProcessorOption) (*Processor, error) {
	if err := checkContainerPath(path); err != nil {
		return nil, err
	}
	p := &Processor{path: path, reconstructor: r, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	if p.reconstructor == nil {
		p.reconstructor = NewReconstructor(nil, p.logger)
	}
	return p, nil
}

func checkContainerPath(path string) error {
	if path == "" {
		return errs.InvalidInput("the input file does not exist")
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return errs.InvalidInput("the input file does not exist").WithFile(path)
	}
	if !strings.EqualFold(filepath.Ext(path), ContainerExtension) {
		return errs.InvalidInput("the input file is not a .xlf file").WithFile(path)
	}
	return nil
}

// Path 容器路径
func (p *Processor) Path() string { return p.path }

// Languages 源语言与目标语言
func (p *Processor) Languages() (LocalePair, error) {
	if p.languages == nil {
		pair, err := ExtractLanguages(p.path)
		if err != nil {
			return LocalePair{}, err
		}
		p.languages = &pair
	}
	return *p.languages, nil
}

// Filter 容器声明的过滤器标识
func (p *Processor) Filter() (string, bool, error) {
	if !p.filterRead {
		id, ok, err := ExtractFilterIdentityFile(p.path)
		if err != nil {
			return "", false, errs.Wrap(err, errs.CodeInvalidInput, "cannot read container").WithFile(p.path)
		}
		p.filter, p.hasFilter, p.filterRead = id, ok, true
	}
	return p.filter, p.hasFilter, nil
}

// Reconstruct 在容器旁边还原打包目录
func (p *Processor) Reconstruct() (*Result, error) {
	if p.result == nil {
		res, err := p.reconstructor.Reconstruct(p.path, filepath.Dir(p.path))
		if err != nil {
			return nil, err
		}
		p.result = res
		p.languages = &res.Languages
	}
	return p.result, nil
}

// Pack 还原后的打包目录
func (p *Processor) Pack() (*pack.Pack, error) {
	res, err := p.Reconstruct()
	if err != nil {
		return nil, err
	}
	return res.Pack, nil
}

// OriginalFile 取出嵌入的原始文件，必要时转换回上传时的格式
func (p *Processor) OriginalFile() (string, error) {
	res, err := p.Reconstruct()
	if err != nil {
		return "", err
	}
	return p.convertToOriginalFormat(res.Pack.OriginalFile(), res.OriginalAttr)
}

// DerivedFile 生成译文文件，必要时转换回上传时的格式
func (p *Processor) DerivedFile(gen DerivedGenerator) (string, error) {
	res, err := p.Reconstruct()
	if err != nil {
		return "", err
	}
	derived, err := gen.GenerateDerivedFile(res.Pack)
	if err != nil {
		return "", err
	}
	return p.convertToOriginalFormat(derived, res.OriginalAttr)
}

// convertToOriginalFormat OCR 来源的文件不会被转换回原格式
func (p *Processor) convertToOriginalFormat(path, originalName string) (string, error) {
	if p.converter == nil || originalName == "" {
		return path, nil
	}
	original := format.Classify(originalName)
	current := format.Classify(path)
	if current.Extension == original.Extension || original.IsOCR() {
		return path, nil
	}

	p.logger.Info("converting file back to its original format",
		zap.String("file", filepath.Base(path)),
		zap.String("format", original.Extension))
	converted, err := p.converter.Convert(path, original)
	if err != nil {
		return "", errs.Wrap(err, errs.CodePipelineFailure, "format conversion failed").WithFile(filepath.Base(path))
	}
	return converted, nil
}
