package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var historyCmd = &cobra.Command{
	Use:   "history [product_id]",
	Short: "Show a product's price history",
	Long: `Show recorded price observations for a product, newest first.

Example:
  trendctl history 7b8a... --limit 20`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		productID := args[0]
		limit, _ := cmd.Flags().GetInt("limit")

		client := NewTrendClient(viper.GetString("url"))
		result, err := client.GetHistory(productID, limit)
		if err != nil {
			if apiErr, ok := err.(*APIError); ok {
				cmd.Printf("Error (%d): %s\n", apiErr.StatusCode, apiErr.Message)
			} else {
				cmd.Printf("Error: %v\n", err)
			}
			return
		}

		if len(result.History) == 0 {
			cmd.Println("No observations yet.")
			return
		}

		for _, e := range result.History {
			line := statusIcon(e.Status) + " " + e.CheckedAt.Format("2006-01-02 15:04")
			if e.PreviousPrice != nil {
				cmd.Printf("%s  %.2f (%+.2f%%, was %.2f)\n", line, e.Price, e.PercentageChange, *e.PreviousPrice)
			} else {
				cmd.Printf("%s  %.2f (first check)\n", line, e.Price)
			}
		}
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "l", 30, "Maximum number of observations to show")

	rootCmd.AddCommand(historyCmd)
}
