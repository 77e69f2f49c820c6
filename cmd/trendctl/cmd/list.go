package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Pranjal6955/TrendCatcherEngine/pkg/api"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked products",
	Long: `List tracked products with their current price statistics.

Example:
  trendctl list
  trendctl list --active`,
	Run: func(cmd *cobra.Command, args []string) {
		activeOnly, _ := cmd.Flags().GetBool("active")

		client := NewTrendClient(viper.GetString("url"))
		result, err := client.ListProducts(activeOnly)
		if err != nil {
			cmd.Printf("Error: %v\n", err)
			return
		}

		if result.Total == 0 {
			cmd.Println("No products tracked yet. Add one with 'trendctl add'.")
			return
		}

		for _, p := range result.Products {
			printProduct(cmd, p)
			cmd.Println()
		}
		cmd.Printf("%d product(s)\n", result.Total)
	},
}

func printProduct(cmd *cobra.Command, p api.ProductResponse) {
	active := colorGreen + "active" + colorReset
	if !p.IsActive {
		active = colorDim + "inactive" + colorReset
	}
	cmd.Printf("%s%s%s (%s)\n", colorBold, p.Name, colorReset, active)
	cmd.Printf("%sID:%s       %s\n", colorDim, colorReset, p.ID)
	cmd.Printf("%sSource:%s   %s\n", colorDim, colorReset, p.Source)
	cmd.Printf("%sCurrent:%s  %s %.2f\n", colorDim, colorReset, p.Currency, p.CurrentPrice)
	if p.LowestPrice != nil {
		cmd.Printf("%sRange:%s    %.2f - %.2f (avg %.2f)\n", colorDim, colorReset,
			*p.LowestPrice, p.HighestPrice, p.AveragePrice)
	}
	cmd.Printf("%sChecks:%s   %d, last %s\n", colorDim, colorReset,
		p.TotalChecks, formatTimeWithRelative(p.LastCheckedAt))
}

func init() {
	listCmd.Flags().BoolP("active", "a", false, "Only show actively monitored products")

	rootCmd.AddCommand(listCmd)
}
