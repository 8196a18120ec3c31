package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-xliff-filters/internal/config"
	"github.com/nerdneilsfield/go-xliff-filters/internal/version"
	"github.com/nerdneilsfield/go-xliff-filters/internal/xliff"
)

// newInspectCommand 查看容器内容，不写出任何文件
func newInspectCommand(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.xlf>",
		Short: "查看容器的语言、过滤器和嵌入文件",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(ro.cfgFile)
			if err != nil {
				return err
			}
			local := cfg.ConverterVersion
			if local == "" {
				local = version.Version
			}

			s, err := xliff.Inspect(args[0], local)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgCyan, color.Bold).Fprintln(out, args[0])

			tw := table.NewWriter()
			tw.SetOutputMirror(out)
			tw.AppendHeader(table.Row{"项", "值"})
			tw.AppendRow(table.Row{"源语言", s.Languages.Source})
			tw.AppendRow(table.Row{"目标语言", s.Languages.Target})
			tw.AppendRow(table.Row{"过滤器", orNone(s.Filter)})
			tw.AppendRow(table.Row{"original", s.OriginalAttr})
			tw.AppendRow(table.Row{"datatype", s.Datatype})
			tw.AppendRow(table.Row{"还原文件名", s.Filename})
			tw.AppendRow(table.Row{"原始文件大小", fmt.Sprintf("%d bytes", s.OriginalSize)})
			tw.AppendRow(table.Row{"BLAKE3", s.Digest})
			tw.AppendRow(table.Row{"manifest 大小", fmt.Sprintf("%d bytes", s.ManifestSize)})
			tw.AppendRow(table.Row{"标记数", s.Markers})
			tw.AppendRow(table.Row{"tool-id", orNone(s.ToolID)})
			tw.AppendRow(table.Row{"版本比对", s.VersionOutcome.String()})
			tw.SetStyle(table.StyleLight)
			tw.Render()

			if s.VersionOutcome == version.Mismatch {
				color.New(color.FgYellow).Fprintf(out, "! produced by %s, running %s\n", s.Producer, local)
			}
			return nil
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
