package segmentation

import (
	_ "embed"
	"fmt"
	"os"
	"sync"
)

//go:embed rules/default.srx
var defaultRules []byte

var (
	defaultRulesOnce sync.Once
	defaultRulesPath string
	defaultRulesErr  error
)

// DefaultRules 返回内置默认分句规则内容
func DefaultRules() []byte {
	return defaultRules
}

// DefaultRulesFile 把内置默认规则写入只读临时文件并返回路径。
// 整个进程只写一次，之后只读共享。
func DefaultRulesFile() (string, error) {
	defaultRulesOnce.Do(func() {
		defaultRulesPath, defaultRulesErr = materialize(defaultRules)
	})
	return defaultRulesPath, defaultRulesErr
}

func materialize(content []byte) (string, error) {
	f, err := os.CreateTemp("", "xliff-filters-srx-rules-*.srx")
	if err != nil {
		return "", fmt.Errorf("cannot create a temp file for default rules: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("cannot write default rules: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("cannot write default rules: %w", err)
	}
	if err := os.Chmod(f.Name(), 0o444); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("cannot protect default rules: %w", err)
	}
	return f.Name(), nil
}
