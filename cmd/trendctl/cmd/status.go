package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Pranjal6955/TrendCatcherEngine/pkg/api"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the scheduled scrape job status",
	Long:  `Show the scrape job's schedule, whether a run is in flight, and the outcome of recent runs.`,
	Run: func(cmd *cobra.Command, args []string) {
		client := NewTrendClient(viper.GetString("url"))
		status, err := client.JobStatus()
		if err != nil {
			cmd.Printf("Error: %v\n", err)
			return
		}

		printJobStatus(cmd, status)
	},
}

func printJobStatus(cmd *cobra.Command, status *api.JobStatusResponse) {
	cmd.Printf("%sScrape Job%s\n", colorBold, colorReset)
	cmd.Println("──────────────────────────────")
	cmd.Printf("%sSchedule:%s   %s\n", colorDim, colorReset, status.Schedule)

	if status.Running {
		cmd.Printf("%sState:%s      %s⏳ running%s since %s\n", colorDim, colorReset,
			colorYellow, colorReset, formatTimeWithRelative(status.StartedAt))
	} else {
		cmd.Printf("%sState:%s      idle\n", colorDim, colorReset)
	}
	cmd.Printf("%sLast run:%s   %s\n", colorDim, colorReset, formatTimeWithRelative(status.LastRunAt))
	cmd.Printf("%sTotal runs:%s %d\n", colorDim, colorReset, status.TotalRuns)

	if len(status.History) == 0 {
		return
	}

	cmd.Printf("\n%sRecent runs:%s\n", colorBold, colorReset)
	for _, rec := range status.History {
		if rec.Error != "" {
			cmd.Printf("%s %s  %s%s%s\n", colorRed+"✗"+colorReset,
				rec.StartedAt.Format("2006-01-02 15:04"), colorRed, rec.Error, colorReset)
			continue
		}
		cmd.Printf("%s %s  %d products in %s (%d ok, %d failed, %d skipped, %d retried)\n",
			colorGreen+"✓"+colorReset, rec.StartedAt.Format("2006-01-02 15:04"),
			rec.Total, rec.Duration, rec.Success, rec.Failed, rec.Skipped, rec.Retried)
	}
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func statusIcon(status string) string {
	switch status {
	case "CHEAPER":
		return colorGreen + "▼" + colorReset
	case "COSTLY":
		return colorRed + "▲" + colorReset
	case "SAME":
		return colorCyan + "•" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status string) string {
	switch status {
	case "CHEAPER":
		return colorGreen + status + colorReset
	case "COSTLY":
		return colorRed + status + colorReset
	case "SAME":
		return colorCyan + status + colorReset
	default:
		return status
	}
}

func formatTimeWithRelative(t *time.Time) string {
	if t == nil {
		return "-"
	}
	relative := relativeTime(*t)
	return fmt.Sprintf("%s %s(%s ago)%s", t.Format("Mon, 02 Jan 2006 15:04:05 MST"), colorDim, relative, colorReset)
}

func relativeTime(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh", int(duration.Hours()))
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
