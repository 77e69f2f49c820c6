package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Pranjal6955/TrendCatcherEngine/pkg/api"
)

var addCmd = &cobra.Command{
	Use:   "add [product_url]",
	Short: "Start tracking a product URL",
	Long: `Register a product URL for price monitoring.

The URL must belong to a supported site. The product is checked on the
next scheduled run, or immediately with 'trendctl check'.

Example:
  trendctl add "https://www.amazon.in/dp/B0EXAMPLE"
  trendctl add "https://www.flipkart.com/p/itm123" --name "Running Shoes"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		productURL := args[0]
		name, _ := cmd.Flags().GetString("name")

		client := NewTrendClient(viper.GetString("url"))
		result, err := client.CreateProduct(api.CreateProductRequest{URL: productURL, Name: name})
		if err != nil {
			if apiErr, ok := err.(*APIError); ok {
				cmd.Printf("Error (%d): %s\n", apiErr.StatusCode, apiErr.Message)
			} else {
				cmd.Printf("Error: %v\n", err)
			}
			return
		}

		cmd.Printf("✓ Product tracked!\nID: %s\nSource: %s\n", result.ID, result.Source)
	},
}

func init() {
	addCmd.Flags().StringP("name", "n", "", "Display name (optional, filled by the first scrape)")

	rootCmd.AddCommand(addCmd)
}
