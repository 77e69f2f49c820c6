package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Trigger a full scrape run",
	Long: `Start a scrape run over all active products in the background.
Refused if a run is already in progress.`,
	Run: func(cmd *cobra.Command, args []string) {
		client := NewTrendClient(viper.GetString("url"))
		result, err := client.TriggerScrape()
		if err != nil {
			if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusConflict {
				cmd.Println("A scrape run is already in progress. Check 'trendctl status'.")
				return
			}
			cmd.Printf("Error: %v\n", err)
			return
		}

		cmd.Printf("✓ %s\n", result.Message)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
