package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checkCmd = &cobra.Command{
	Use:   "check [product_id]",
	Short: "Run an on-demand price check",
	Long: `Scrape the product page right now and classify the price against the
previous observation. The result is recorded in the price history like a
scheduled check.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		productID := args[0]

		client := NewTrendClient(viper.GetString("url"))
		result, err := client.CheckProduct(productID)
		if err != nil {
			if apiErr, ok := err.(*APIError); ok {
				cmd.Printf("Error (%d): %s\n", apiErr.StatusCode, apiErr.Message)
			} else {
				cmd.Printf("Error: %v\n", err)
			}
			return
		}

		cmd.Printf("%s %sPrice Check%s\n", statusIcon(result.Status), colorBold, colorReset)
		cmd.Println("──────────────────────────────")
		cmd.Printf("%sStatus:%s    %s\n", colorDim, colorReset, colorizeStatus(result.Status))
		cmd.Printf("%sPrice:%s     %.2f\n", colorDim, colorReset, result.CurrentPrice)

		if result.FirstCheck {
			cmd.Println("First observation for this product.")
			return
		}
		if result.PreviousPrice != nil {
			cmd.Printf("%sPrevious:%s  %.2f\n", colorDim, colorReset, *result.PreviousPrice)
		}
		cmd.Printf("%sChange:%s    %+.2f (%+.2f%%)\n", colorDim, colorReset,
			result.PriceDifference, result.PercentageChange)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
