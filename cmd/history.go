package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moyu-x/image-tidy/app"
	"github.com/moyu-x/image-tidy/tui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "查看改名日志",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runID, _ := cmd.Flags().GetString("run")

		records, err := app.History(cfg.Journal.Path, limit, runID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderHistory(records))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "l", 50, "最多显示的记录数，0 表示全部")
	historyCmd.Flags().String("run", "", "只显示某次运行的记录")

	rootCmd.AddCommand(historyCmd)
}
