package version

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Producer 写入容器 tool-id 的生产者名称
const Producer = "matecat-converter"

// Version 当前构建的转换器版本，发布时通过 -ldflags 注入
var Version = ""

var toolIDPattern = regexp.MustCompile(Producer + `(\s+([^"]+))?`)

// Outcome 版本比对结果
type Outcome int

const (
	// Match 版本一致
	Match Outcome = iota
	// BadToolID tool-id 不是本系统生成的
	BadToolID
	// MissingProducerVersion tool-id 没有版本号
	MissingProducerVersion
	// LocalVersionUnknown 本地版本未知
	LocalVersionUnknown
	// Mismatch 版本不一致
	Mismatch
)

// String 返回结果名称
func (o Outcome) String() string {
	switch o {
	case Match:
		return "match"
	case BadToolID:
		return "bad-tool-id"
	case MissingProducerVersion:
		return "missing-producer-version"
	case LocalVersionUnknown:
		return "local-version-unknown"
	case Mismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// ToolID 生成 tool-id 属性值
func ToolID(version string) string {
	if version == "" {
		return Producer
	}
	return Producer + " " + version
}

// Checker 比对容器生产者版本与本地版本，只记录警告，从不阻止处理
type Checker struct {
	local  string
	logger *zap.Logger
}

// NewChecker 创建版本检查器
func NewChecker(local string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{local: local, logger: logger}
}

// Check 检查 tool-id
func (c *Checker) Check(toolID string) Outcome {
	outcome, producer := Compare(toolID, c.local)

	switch outcome {
	case BadToolID:
		c.logger.Warn("bad tool-id attribute", zap.String("tool_id", toolID))
	case MissingProducerVersion:
		c.logger.Warn("missing producer version in input XLIFF", zap.String("tool_id", toolID))
	case LocalVersionUnknown:
		c.logger.Warn("XLIFF producer version is known but server version is unknown",
			zap.String("xliff_version", producer))
	case Mismatch:
		c.logger.Warn("converters versions mismatch",
			zap.String("xliff_version", producer),
			zap.String("server_version", c.local))
	}
	return outcome
}

// Compare 纯函数形式的版本比对，同时返回解析出的生产者版本
func Compare(toolID, local string) (Outcome, string) {
	m := toolIDPattern.FindStringSubmatch(toolID)
	if m == nil {
		return BadToolID, ""
	}
	producer := strings.TrimSpace(m[2])
	switch {
	case producer == "":
		return MissingProducerVersion, ""
	case local == "":
		return LocalVersionUnknown, producer
	case producer != local:
		return Mismatch, producer
	default:
		return Match, producer
	}
}
