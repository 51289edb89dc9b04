package cmd

import (
	"github.com/spf13/cobra"

	"github.com/moyu-x/image-tidy/app"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "下载文章页面中的全部图片",
	Long: `抓取文章页面，提取其中的图片地址并逐个下载到输出目录。
文件名以内容的真实格式为准，同名文件已存在时追加序号，内容相同则跳过。
页面需要验证时会把页面保存为输出目录上一级的 page_debug.html。
也可以用 --html 处理浏览器保存的页面，或用 --clipboard 从剪贴板读取地址。`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := &app.FetchOptions{
		OutDir:    mustString(cmd, "out"),
		HTMLFile:  mustString(cmd, "html"),
		DryRun:    dryRun,
		UserAgent: cfg.Fetch.UserAgent,
		Delay:     cfg.Fetch.Delay,
		Timeout:   cfg.Fetch.Timeout,
		Prefix:    cfg.Fetch.Prefix,
		MinSize:   cfg.Fetch.MinSize,
		Verify:    cfg.Fetch.Verify,
		Log:       logOptions(cfg),
		Journal:   journalOptions(cfg),
	}
	if len(args) > 0 {
		opts.URL = args[0]
	}
	opts.Clipboard, _ = cmd.Flags().GetBool("clipboard")
	if cmd.Flags().Changed("prefix") {
		opts.Prefix = mustString(cmd, "prefix")
	}
	if cmd.Flags().Changed("delay") {
		opts.Delay, _ = cmd.Flags().GetDuration("delay")
	}
	if cmd.Flags().Changed("no-verify") {
		opts.Verify = false
	}

	_, err = app.RunFetch(cmd.Context(), opts)
	return err
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func init() {
	fetchCmd.Flags().StringP("out", "o", "images", "输出目录")
	fetchCmd.Flags().String("html", "", "离线处理已保存的页面文件")
	fetchCmd.Flags().Bool("clipboard", false, "从剪贴板读取文章地址")
	fetchCmd.Flags().String("prefix", "", "无法推断文件名时使用的前缀")
	fetchCmd.Flags().Duration("delay", 0, "两次请求之间的间隔")
	fetchCmd.Flags().Bool("no-verify", false, "不校验下载内容能否解码")

	rootCmd.AddCommand(fetchCmd)
}
