package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "trendctl",
	Short: "Trendctl is a command line tool for the TrendCatcher price monitoring engine",
	Long: `trendctl is the command-line interface for the TrendCatcher price monitoring engine.

TrendCatcher tracks product prices across e-commerce sites, records every
observation, and classifies each new price against the previous one
(CHEAPER, COSTLY or SAME).

Common workflows:

  Start tracking a product:
    trendctl add --url "https://www.amazon.in/dp/B0EXAMPLE"

  List tracked products:
    trendctl list --active

  Check a product right now:
    trendctl check <product-id>

  Show a product's price history:
    trendctl history <product-id> --limit 20

  Trigger a full scrape run:
    trendctl run

  Inspect the scheduled job:
    trendctl status

Configuration:
  Set the API endpoint via environment variables or a config file:
    TRENDCATCHER_API_URL    API endpoint (default: http://localhost:8080)

For more information, visit: https://github.com/Pranjal6955/TrendCatcherEngine`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".trendctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".trendctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "TRENDCATCHER_VARNAME"
	viper.SetEnvPrefix("TRENDCATCHER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.trendctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:8080", "TrendCatcher API URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
	viper.BindEnv("url", "TRENDCATCHER_API_URL")
}
