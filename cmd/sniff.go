package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/moyu-x/image-tidy/app"
	"github.com/moyu-x/image-tidy/tui"
)

var sniffCmd = &cobra.Command{
	Use:   "sniff <files...>",
	Short: "识别文件的真实图片格式，不修改文件",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, r := range app.SniffFiles(afero.NewOsFs(), args) {
			if r.Err != nil {
				fmt.Fprintf(out, "%s\t错误: %v\n", r.Path, r.Err)
				continue
			}
			line := fmt.Sprintf("%s\t%s", r.Path, r.Format)
			if r.Hint != "" {
				line += "\t" + r.Hint
			}
			if r.Expected != "" {
				line += "\t" + tui.FormatRename("", r.Expected)
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sniffCmd)
}
