package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExecEngine 通过子进程驱动外部引擎：作业写成 JSON，
// 以 `<command> <args...> --job <path>` 调用
type ExecEngine struct {
	command string
	args    []string
	timeout time.Duration
	logger  *zap.Logger
}

// ExecOptions 子进程引擎选项
type ExecOptions struct {
	Command string
	Args    []string
	Timeout time.Duration // 0 表示不限时
}

// NewExecEngine 创建子进程引擎
func NewExecEngine(opts ExecOptions, logger *zap.Logger) *ExecEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecEngine{
		command: opts.Command,
		args:    opts.Args,
		timeout: opts.Timeout,
		logger:  logger,
	}
}

// IsAvailable 引擎命令是否存在
func (e *ExecEngine) IsAvailable() bool {
	if e.command == "" {
		return false
	}
	_, err := exec.LookPath(e.command)
	return err == nil
}

// Run 执行作业
func (e *ExecEngine) Run(job *Job) error {
	if !e.IsAvailable() {
		return fmt.Errorf("engine command not found: %q", e.command)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	jobFile := filepath.Join(job.Root, "job-"+job.ID+".json")
	if err := os.WriteFile(jobFile, data, 0o644); err != nil {
		return fmt.Errorf("write job file: %w", err)
	}
	defer os.Remove(jobFile)

	ctx := context.Background()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := append(append([]string{}, e.args...), "--job", jobFile)
	cmd := exec.CommandContext(ctx, e.command, args...)
	cmd.Dir = job.Root
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	e.logger.Debug("running engine",
		zap.String("job", job.ID),
		zap.String("command", e.command),
		zap.Strings("steps", stepNames(job)))

	err = cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("engine timed out after %s", e.timeout)
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return fmt.Errorf("engine failed: %w: %s", err, msg)
	}

	e.logger.Debug("engine finished",
		zap.String("job", job.ID),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func stepNames(job *Job) []string {
	names := make([]string, len(job.Steps))
	for i, s := range job.Steps {
		names[i] = string(s.Kind)
	}
	return names
}
