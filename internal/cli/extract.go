package cli

import (
	"errors"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-xliff-filters/internal/errs"
	"github.com/nerdneilsfield/go-xliff-filters/internal/filters"
	"github.com/nerdneilsfield/go-xliff-filters/internal/project"
)

// newExtractCommand 文档 → 容器
func newExtractCommand(ro *rootOptions) *cobra.Command {
	var (
		source           string
		target           string
		segmentationName string
		segmentBilingual bool
		output           string
	)

	cmd := &cobra.Command{
		Use:   "extract [flags] <file>...",
		Short: "把文档抽取为 XLIFF 容器",
		Long: `把文档抽取为 XLIFF 容器。原始文件和 manifest 会嵌入容器，
合并时无需再提供原文件。

用法示例：
  xliff-filters extract -s en-US -t fr-FR report.docx
  xliff-filters extract -s en-US -t de-DE *.html
  xliff-filters extract -s ja-JP -t en-US --segmentation legal page.html -o out/page.xlf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" || target == "" {
				return errs.InvalidInput("--source and --target are required")
			}
			if output != "" && len(args) > 1 {
				return errs.InvalidInput("--output only works with a single input file")
			}
			a, err := ro.setup()
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			var bar *pterm.ProgressbarPrinter
			if len(args) > 1 {
				bar, _ = pterm.DefaultProgressbar.
					WithTotal(len(args)).
					WithTitle("抽取进度").
					WithWriter(cmd.ErrOrStderr()).
					Start()
			}

			var failed []error
			for _, input := range args {
				dest := output
				if dest == "" {
					dest = input + ".xlf"
				}
				err := a.withProject(input, func(p *project.Project) error {
					container, err := a.router.Extract(filters.ExtractRequest{
						File:             p.File(),
						Source:           source,
						Target:           target,
						Segmentation:     segmentationName,
						SegmentBilingual: segmentBilingual,
					})
					if err != nil {
						return err
					}
					return copyOutput(container, dest, ro.force)
				})
				if bar != nil {
					bar.Increment()
				}
				if err != nil {
					color.New(color.FgRed).Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", filepath.Base(input), err)
					failed = append(failed, err)
					continue
				}
				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ %s → %s\n", filepath.Base(input), dest)
			}
			if bar != nil {
				_, _ = bar.Stop()
			}
			return errors.Join(failed...)
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "源语言，例如 en-US")
	cmd.Flags().StringVarP(&target, "target", "t", "", "目标语言，例如 fr-FR")
	cmd.Flags().StringVar(&segmentationName, "segmentation", "", "自定义断句规则名（不含 .rules）")
	cmd.Flags().BoolVar(&segmentBilingual, "segment-bilingual", false, "对双语格式也进行断句")
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出路径（默认 <file>.xlf）")
	return cmd
}
