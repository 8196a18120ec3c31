// Package filters 按能力选择格式过滤器：抽取时取第一个支持输入文件的过滤器，
// 合并时按容器中记录的过滤器标识分派。
package filters

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-xliff-filters/internal/encoding"
	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
	"github.com/nerdneilsfield/go-xliff-filters/internal/pipeline"
	"github.com/nerdneilsfield/go-xliff-filters/internal/xliff"
)

// ExtractRequest 抽取参数
type ExtractRequest struct {
	File             string
	Source           string
	Target           string
	Segmentation     string
	SegmentBilingual bool
}

// Filter 格式过滤器
type Filter interface {
	// ID 写入容器 filter 属性的标识
	ID() string
	// IsSupported 是否支持该文件
	IsSupported(path string) bool
	// Extract 生成容器，返回容器路径
	Extract(req ExtractRequest) (string, error)
	// Merge 由容器生成译文文件
	Merge(proc *xliff.Processor) (string, error)
}

// Deps 过滤器依赖
type Deps struct {
	Orchestrator *pipeline.Orchestrator
	Detector     encoding.Detector
	Converter    xliff.FormatConverter
	ToolID       string
	Logger       *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Factory 过滤器工厂
type Factory func(deps Deps) Filter

// base 过滤器的公共实现：检测编码、生成打包目录、组装容器
type base struct {
	id           string
	filterConfig string // 空表示按扩展名选择
	deps         Deps
}

func (b *base) ID() string { return b.id }

func (b *base) extract(req ExtractRequest, detect func(string) (encoding.Encoding, error)) (string, error) {
	if req.File == "" {
		return "", errs.InvalidInput("input file is not valid")
	}
	enc, err := detect(req.File)
	if err != nil {
		return "", errs.Wrap(err, errs.CodeInvalidInput, "cannot read input file").WithFile(filepath.Base(req.File))
	}

	p, err := b.deps.Orchestrator.GeneratePack(pipeline.GenerateRequest{
		Source:           req.Source,
		Target:           req.Target,
		Encoding:         enc,
		File:             req.File,
		Segmentation:     req.Segmentation,
		FilterConfig:     b.filterConfig,
		SegmentBilingual: req.SegmentBilingual,
	})
	if err != nil {
		return "", err
	}

	out := req.File + xliff.ContainerExtension
	err = xliff.BuildFile(p, xliff.BuildOptions{
		Languages:    xliff.LocalePair{Source: req.Source, Target: req.Target},
		OriginalName: filepath.Base(req.File),
		Filter:       b.id,
		ToolID:       b.deps.ToolID,
	}, out)
	if err != nil {
		return "", err
	}

	b.deps.logger().Info("container created",
		zap.String("filter", b.id),
		zap.String("file", filepath.Base(req.File)),
		zap.String("encoding", enc.Code()))
	return out, nil
}

func (b *base) detect(path string) (encoding.Encoding, error) {
	if b.deps.Detector == nil {
		return encoding.Default, nil
	}
	return b.deps.Detector.Detect(path)
}

func (b *base) merge(proc *xliff.Processor) (string, error) {
	return proc.DerivedFile(b.deps.Orchestrator)
}

func hasExtension(path string, exts ...string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
