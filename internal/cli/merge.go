package cli

import (
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-xliff-filters/internal/project"
	"github.com/nerdneilsfield/go-xliff-filters/internal/xliff"
)

// newMergeCommand 容器 → 译文
func newMergeCommand(ro *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "merge [flags] <file.xlf>",
		Short: "由译后的容器生成目标语言文件",
		Long: `由译后的容器生成目标语言文件，默认写到容器旁边的 <名称>_<目标语言><扩展名>。

用法示例：
  xliff-filters merge report.docx.xlf
  xliff-filters merge report.docx.xlf -o report.fr.docx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ro.setup()
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			input := args[0]
			return a.withProject(input, func(p *project.Project) error {
				derived, err := a.router.Merge(p.File())
				if err != nil {
					return err
				}
				dest := output
				if dest == "" {
					langs, err := xliff.ExtractLanguages(p.File())
					if err != nil {
						return err
					}
					dest = filepath.Join(filepath.Dir(input), derivedName(filepath.Base(derived), langs.Target))
				}
				if err := copyOutput(derived, dest, ro.force); err != nil {
					return err
				}
				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ %s → %s\n", filepath.Base(input), dest)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "输出路径")
	return cmd
}

// newOriginalCommand 容器 → 原始文件
func newOriginalCommand(ro *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "original [flags] <file.xlf>",
		Short: "取出容器中嵌入的原始文件",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ro.setup()
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			input := args[0]
			return a.withProject(input, func(p *project.Project) error {
				proc, err := a.router.Processor(p.File())
				if err != nil {
					return err
				}
				original, err := proc.OriginalFile()
				if err != nil {
					return err
				}
				dest := output
				if dest == "" {
					dest = filepath.Join(filepath.Dir(input), filepath.Base(original))
				}
				if err := copyOutput(original, dest, ro.force); err != nil {
					return err
				}
				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ %s → %s\n", filepath.Base(input), dest)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "输出路径（默认容器旁边的原文件名）")
	return cmd
}

// derivedName report.docx + fr-FR → report_fr-FR.docx，目标语言为空时用 translated
func derivedName(name, target string) string {
	if target == "" {
		target = "translated"
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + target + ext
}
