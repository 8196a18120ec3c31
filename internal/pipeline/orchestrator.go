// Package pipeline 按顺序组织外部引擎的调用：抽取时生成打包目录，
// 合并时由打包目录生成译文文件。
package pipeline

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/nerdneilsfield/go-xliff-filters/internal/encoding"
	"github.com/nerdneilsfield/go-xliff-filters/internal/engine"
	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
	"github.com/nerdneilsfield/go-xliff-filters/internal/format"
	"github.com/nerdneilsfield/go-xliff-filters/internal/pack"
	"github.com/nerdneilsfield/go-xliff-filters/internal/segmentation"
	"github.com/nerdneilsfield/go-xliff-filters/internal/xliff"
)

// MergeFilterConfig 合并时读取 manifest 使用的过滤器配置
const MergeFilterConfig = "okf_rainbowkit-noprompt"

// GenerateRequest 生成打包目录的参数
type GenerateRequest struct {
	Source           string
	Target           string
	Encoding         encoding.Encoding
	File             string
	Segmentation     string // 自定义分句规则名，空表示默认规则
	FilterConfig     string // 覆盖按扩展名选择的过滤器配置
	SegmentBilingual bool
}

// Orchestrator 流水线编排器
type Orchestrator struct {
	engine engine.Engine
	policy *segmentation.Policy
	logger *zap.Logger
}

// New 创建编排器
func New(eng engine.Engine, policy *segmentation.Policy, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == nil {
		policy = segmentation.NewPolicy("", logger)
	}
	return &Orchestrator{engine: eng, policy: policy, logger: logger}
}

// GeneratePack 执行 过滤 → [分句] → 抽取，返回引擎在输入文件旁边生成的打包目录
func (o *Orchestrator) GeneratePack(req GenerateRequest) (*pack.Pack, error) {
	source, target, err := validate(req)
	if err != nil {
		return nil, err
	}

	f := format.Classify(req.File)
	plan, err := o.policy.Choose(f, req.Segmentation, req.SegmentBilingual)
	if err != nil {
		return nil, err
	}

	filterConfig := req.FilterConfig
	if filterConfig == "" {
		filterConfig = f.FilterConfig
	}

	root := filepath.Dir(req.File)
	base := filepath.Base(req.File)
	ext := filepath.Ext(base)

	job := &engine.Job{
		Root:           root,
		Input:          req.File,
		InputEncoding:  req.Encoding.Code(),
		OutputEncoding: engine.UTF8,
		Output:         filepath.Join(root, strings.TrimSuffix(base, ext)+".out"+ext),
		Source:         source.String(),
		Target:         target.String(),
		FilterConfig:   filterConfig,
		PackName:       pack.FolderName,
	}
	job.Add(engine.StepFilter, map[string]string{"config": filterConfig})

	switch plan.Mode {
	case segmentation.ModeCustomRules:
		job.Add(engine.StepSegment, map[string]string{"rules": plan.RulesPath})
	case segmentation.ModeDefaultWithHints:
		job.Add(engine.StepAddHints, map[string]string{
			"locale":   source.String(),
			"unspaced": strconv.FormatBool(segmentation.NeedsBoundaryHints(source)),
		})
		job.Add(engine.StepSegment, map[string]string{"rules": plan.RulesPath})
		job.Add(engine.StepRemoveHints, nil)
	}

	job.Add(engine.StepExtract, map[string]string{"pack": pack.FolderName})

	o.logger.Info("generating pack",
		zap.String("file", base),
		zap.String("format", f.Kind.String()),
		zap.String("segmentation", plan.Mode.String()),
		zap.String("encoding", req.Encoding.Code()))

	if err := o.engine.Run(job); err != nil {
		return nil, errs.Wrap(err, errs.CodePipelineFailure, "exception generating pack").WithFile(base)
	}

	p, err := pack.Open(filepath.Join(root, pack.FolderName))
	if err != nil {
		return nil, errs.Wrap(err, errs.CodePipelineFailure, "the pack could not be created").WithFile(base)
	}
	return p, nil
}

// GenerateDerivedFile 执行 过滤 → 空白修正 → 合并，返回 done 目录下的译文文件
func (o *Orchestrator) GenerateDerivedFile(p *pack.Pack) (string, error) {
	fail := func(err error) (string, error) {
		return "", errs.Wrap(err, errs.CodePipelineFailure, "exception generating target file").WithFile(p.Filename())
	}

	langs, err := xliff.ExtractLanguages(p.Xlf())
	if err != nil {
		return fail(err)
	}

	job := &engine.Job{
		Root:           filepath.Dir(p.Folder()),
		Input:          p.Manifest(),
		InputEncoding:  engine.UTF8,
		OutputEncoding: engine.UTF8,
		Source:         langs.Source,
		Target:         langs.Target,
		FilterConfig:   MergeFilterConfig,
		PackName:       pack.FolderName,
	}
	job.Add(engine.StepFilter, map[string]string{
		"config":   MergeFilterConfig,
		"original": format.Classify(p.Filename()).FilterConfig,
	})
	job.Add(engine.StepWhitespace, nil)
	job.Add(engine.StepMerge, nil)

	o.logger.Info("generating derived file",
		zap.String("file", p.Filename()),
		zap.String("source", langs.Source),
		zap.String("target", langs.Target))

	if err := o.engine.Run(job); err != nil {
		return fail(err)
	}

	derived := p.DerivedFile()
	if info, err := os.Stat(derived); err != nil || info.IsDir() {
		return fail(errs.New(errs.CodePipelineFailure, "merge produced no output"))
	}
	return derived, nil
}

func validate(req GenerateRequest) (language.Tag, language.Tag, error) {
	if req.Source == "" {
		return language.Tag{}, language.Tag{}, errs.InvalidInput("source language cannot be empty")
	}
	if req.Target == "" {
		return language.Tag{}, language.Tag{}, errs.InvalidInput("target language cannot be empty")
	}
	source, err := language.Parse(req.Source)
	if err != nil {
		return language.Tag{}, language.Tag{}, errs.InvalidInput("invalid source language %q", req.Source)
	}
	target, err := language.Parse(req.Target)
	if err != nil {
		return language.Tag{}, language.Tag{}, errs.InvalidInput("invalid target language %q", req.Target)
	}
	if req.Encoding == "" {
		return language.Tag{}, language.Tag{}, errs.InvalidInput("input encoding cannot be empty")
	}
	if req.File == "" {
		return language.Tag{}, language.Tag{}, errs.InvalidInput("input file is not valid")
	}
	info, err := os.Stat(req.File)
	if err != nil || info.IsDir() {
		return language.Tag{}, language.Tag{}, errs.InvalidInput("input file is not valid").WithFile(req.File)
	}
	return source, target, nil
}
