package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-xliff-filters/internal/config"
	"github.com/nerdneilsfield/go-xliff-filters/internal/encoding"
	"github.com/nerdneilsfield/go-xliff-filters/internal/engine"
	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
	"github.com/nerdneilsfield/go-xliff-filters/internal/filters"
	"github.com/nerdneilsfield/go-xliff-filters/internal/logger"
	"github.com/nerdneilsfield/go-xliff-filters/internal/pipeline"
	"github.com/nerdneilsfield/go-xliff-filters/internal/project"
	"github.com/nerdneilsfield/go-xliff-filters/internal/segmentation"
	"github.com/nerdneilsfield/go-xliff-filters/internal/version"
	"github.com/nerdneilsfield/go-xliff-filters/internal/xliff"
)

// rootOptions 全局标志
type rootOptions struct {
	cfgFile   string
	debugMode bool
	force     bool

	// 测试时替换外部引擎
	engine engine.Engine
	logger *zap.Logger
}

// Option 根命令选项
type Option func(*rootOptions)

// WithEngine 使用指定的引擎代替配置中的外部命令
func WithEngine(e engine.Engine) Option {
	return func(o *rootOptions) { o.engine = e }
}

// WithLogger 使用指定的日志记录器
func WithLogger(l *zap.Logger) Option {
	return func(o *rootOptions) { o.logger = l }
}

// NewRootCommand 创建根命令
func NewRootCommand(ver, commit, buildDate string, opts ...Option) *cobra.Command {
	ro := &rootOptions{}
	for _, opt := range opts {
		opt(ro)
	}

	rootCmd := &cobra.Command{
		Use:   "xliff-filters",
		Short: "把文档转换为可还原的 XLIFF 容器，并从译后的容器生成目标文件",
		Long: `xliff-filters 通过外部过滤引擎把文档抽取为 XLIFF，
并把原始文件与 manifest 嵌入同一个容器，合并时可以完整还原。

命令:
  extract   文档 → 容器
  merge     容器 → 译文
  original  容器 → 原始文件
  inspect   查看容器内容`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", ver, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&ro.cfgFile, "config", "", "配置文件路径（默认 $HOME/.xliff-filters.yaml）")
	rootCmd.PersistentFlags().BoolVar(&ro.debugMode, "debug", false, "启用调试模式")
	rootCmd.PersistentFlags().BoolVarP(&ro.force, "force", "f", false, "覆盖已存在的输出文件")

	rootCmd.AddCommand(
		newExtractCommand(ro),
		newMergeCommand(ro),
		newOriginalCommand(ro),
		newInspectCommand(ro),
	)
	return rootCmd
}

// app 一次命令执行所需的组件
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	router   *filters.Router
	projects *project.Factory
	local    string
}

// setup 加载配置并组装组件
func (ro *rootOptions) setup() (*app, error) {
	cfg, err := config.LoadConfig(ro.cfgFile)
	if err != nil {
		return nil, err
	}
	if ro.debugMode {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}

	log := ro.logger
	if log == nil {
		if log, err = logger.NewLoggerWithLevel(cfg.LogLevel); err != nil {
			return nil, err
		}
	}

	if err := cfg.ResolveFolders(log); err != nil {
		return nil, err
	}

	eng := ro.engine
	if eng == nil {
		exec := engine.NewExecEngine(engine.ExecOptions{
			Command: cfg.Engine.Command,
			Args:    cfg.Engine.Args,
			Timeout: cfg.Engine.Timeout,
		}, log)
		if !exec.IsAvailable() {
			log.Warn("engine command not found in PATH", zap.String("command", cfg.Engine.Command))
		}
		eng = exec
	}

	local := cfg.ConverterVersion
	if local == "" {
		local = version.Version
	}

	orchestrator := pipeline.New(eng, segmentation.NewPolicy(cfg.CustomSegmentationFolder, log), log)
	router, err := filters.NewRouter(filters.Deps{
		Orchestrator: orchestrator,
		Detector:     encoding.NewSniffer(log),
		ToolID:       version.ToolID(local),
		Logger:       log,
	}, filters.RouterOptions{
		Order:         cfg.Filters.Order,
		Reconstructor: xliff.NewReconstructor(version.NewChecker(local, log), log),
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		log:    log,
		router: router,
		projects: project.NewFactory(project.Options{
			CacheFolder:   cfg.CacheFolder,
			ErrorsFolder:  cfg.ErrorsFolder,
			DeleteOnClose: cfg.DeleteOnClose,
			MaxFileSize:   cfg.MaxFileSize,
		}, log),
		local: local,
	}, nil
}

// withProject 把输入文件复制到新的工作目录中处理，结束时按结果关闭
func (a *app) withProject(input string, fn func(p *project.Project) error) (err error) {
	in, err := os.Open(input)
	if err != nil {
		return errs.InvalidInput("cannot open input file").WithFile(input)
	}
	defer in.Close()

	p, err := a.projects.Create(filepath.Base(input), in)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(err == nil); cerr != nil {
			a.log.Warn("closing project failed", zap.String("id", p.ID()), zap.Error(cerr))
		}
	}()
	return fn(p)
}

// copyOutput 把结果复制到 dest
func copyOutput(src, dest string, force bool) error {
	if !force {
		if _, err := os.Stat(dest); err == nil {
			return errs.InvalidInput("output file already exists, use --force to overwrite").WithFile(dest)
		}
	}
	if dir := filepath.Dir(dest); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output folder: %w", err)
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
