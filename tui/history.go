package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/moyu-x/image-tidy/internal"
)

// RenderHistory 渲染改名日志
func RenderHistory(records []internal.JournalRecord) string {
	if len(records) == 0 {
		return hintStyle.Render("暂无记录")
	}

	var b strings.Builder
	lastRun := ""
	for _, rec := range records {
		if rec.RunID != lastRun {
			if lastRun != "" {
				b.WriteString("\n")
			}
			ts := time.Unix(rec.CreatedAt, 0).Format("2006-01-02 15:04:05")
			b.WriteString(labelStyle.Render(fmt.Sprintf("%s  %s", ts, rec.Dir)))
			b.WriteString(" " + hintStyle.Render(rec.RunID) + "\n")
			lastRun = rec.RunID
		}

		line := "  " + FormatRename(rec.Original, rec.Final)
		if rec.Reason != "" {
			line += " " + hintStyle.Render("["+rec.Reason+"]")
		}
		if rec.Status == internal.StatusFailed && rec.Error != "" {
			line += " " + errorStyle.Render(rec.Error)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
