package cmd

import (
	"github.com/spf13/cobra"

	"github.com/moyu-x/image-tidy/app"
)

var fixCmd = &cobra.Command{
	Use:   "fix <directory>",
	Short: "清理文件名末尾字符并按真实格式修正扩展名",
	Long: `依次处理目录中的每个文件（不递归）:
1. 去掉文件名末尾的 ' " , ) 和空格
2. 读取文件头识别图片格式，扩展名不符时改为正确的扩展名
3. 目标文件名已存在时追加 _1、_2 …… 直到不冲突`,
	Args: cobra.ExactArgs(1),
	RunE: runFixMode(app.ModeFix),
}

var cleanCmd = &cobra.Command{
	Use:   "clean <directory>",
	Short: "只清理文件名末尾的引号、逗号、括号和空格",
	Args:  cobra.ExactArgs(1),
	RunE:  runFixMode(app.ModeClean),
}

var fixextCmd = &cobra.Command{
	Use:   "fixext <directory>",
	Short: "只按文件头修正图片扩展名",
	Args:  cobra.ExactArgs(1),
	RunE:  runFixMode(app.ModeFixExt),
}

func runFixMode(mode app.Mode) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		exts, _ := cmd.Flags().GetStringSlice("ext")
		if len(exts) == 0 {
			exts = cfg.Scan.Extensions
		}

		opts := &app.FixOptions{
			Dir:        args[0],
			Mode:       mode,
			DryRun:     dryRun,
			Extensions: exts,
			Log:        logOptions(cfg),
			Journal:    journalOptions(cfg),
		}

		_, err = app.RunFix(cmd.Context(), opts)
		return err
	}
}

func init() {
	for _, c := range []*cobra.Command{fixCmd, cleanCmd, fixextCmd} {
		c.Flags().StringSlice("ext", nil, "只处理这些扩展名，例如 --ext jpg,png；修正扩展名时默认只处理常见图片")
		rootCmd.AddCommand(c)
	}
}
