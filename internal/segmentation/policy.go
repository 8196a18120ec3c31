// Package segmentation 决定抽取前是否分句，以及使用哪一套分句规则。
package segmentation

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
	"github.com/nerdneilsfield/go-xliff-filters/internal/format"
)

// RulesExtension 自定义规则文件扩展名
const RulesExtension = ".rules"

// Mode 分句方式
type Mode int

const (
	// ModeSkip 不分句
	ModeSkip Mode = iota
	// ModeCustomRules 直接使用自定义规则文件
	ModeCustomRules
	// ModeDefaultWithHints 默认规则，前后包裹边界提示的插入与移除
	ModeDefaultWithHints
)

// String 返回分句方式名称
func (m Mode) String() string {
	switch m {
	case ModeSkip:
		return "skip"
	case ModeCustomRules:
		return "custom-rules"
	case ModeDefaultWithHints:
		return "default-with-hints"
	default:
		return "unknown"
	}
}

// Plan 分句计划
type Plan struct {
	Mode      Mode
	RulesPath string // ModeSkip 时为空
}

// Segments 是否需要分句
func (p Plan) Segments() bool {
	return p.Mode != ModeSkip
}

// Policy 分句策略
type Policy struct {
	customFolder string
	logger       *zap.Logger
}

// NewPolicy 创建分句策略，customFolder 为空表示未配置自定义规则目录
func NewPolicy(customFolder string, logger *zap.Logger) *Policy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{customFolder: customFolder, logger: logger}
}

// Choose 根据格式、规则名和双语分句开关得出分句计划。
// 所有错误都在调用引擎之前返回。
func (p *Policy) Choose(f format.Format, name string, segmentBilingual bool) (Plan, error) {
	if f.IsBilingual() && !segmentBilingual {
		return Plan{Mode: ModeSkip}, nil
	}

	name = strings.TrimSpace(name)
	if name != "" {
		path, err := p.customRulesPath(name)
		if err != nil {
			return Plan{}, err
		}
		p.logger.Info("using custom segmentation rules", zap.String("path", path))
		return Plan{Mode: ModeCustomRules, RulesPath: path}, nil
	}

	path, err := DefaultRulesFile()
	if err != nil {
		return Plan{}, errs.Wrap(err, errs.CodeConfiguration, "default segmentation rules unavailable")
	}
	return Plan{Mode: ModeDefaultWithHints, RulesPath: path}, nil
}

func (p *Policy) customRulesPath(name string) (string, error) {
	if p.customFolder == "" {
		return "", errs.Configuration("custom segmentation rules %q requested, but no segmentation folder configured", name)
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", errs.InvalidInput("invalid segmentation name %q", name)
	}

	path := filepath.Join(p.customFolder, name+RulesExtension)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", errs.Wrap(err, errs.CodePermissionDenied, "custom segmentation file cannot be read").WithFile(path)
		}
		return "", errs.Wrap(err, errs.CodeNotFound, "custom segmentation file not found").WithFile(path)
	}
	if !info.Mode().IsRegular() {
		return "", errs.New(errs.CodeNotFound, "custom segmentation file not found").WithFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", errs.Wrap(err, errs.CodePermissionDenied, "custom segmentation file cannot be read").WithFile(path)
	}
	defer f.Close()

	set, err := ParseRules(f)
	if err != nil {
		var e *errs.Error
		if errors.As(err, &e) {
			return "", e.WithFile(path)
		}
		return "", err
	}
	for _, u := range set.Uncompiled {
		p.logger.Warn("segmentation pattern not checked locally",
			zap.String("path", path), zap.String("pattern", u))
	}
	p.logger.Debug("custom segmentation rules parsed",
		zap.Strings("languages", set.LanguageRules),
		zap.Int("rules", set.Rules))

	return path, nil
}
