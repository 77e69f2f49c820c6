package cmd

import (
	"testing"

	"github.com/spf13/viper"
)

// resetViper clears viper state between tests and restores the url binding.
func resetViper() {
	viper.Reset()
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
	viper.BindEnv("url", "TRENDCATCHER_API_URL")
}

func TestRootCommand_DefaultURL(t *testing.T) {
	resetViper()

	url := viper.GetString("url")
	if url != "http://localhost:8080" {
		t.Errorf("expected default url http://localhost:8080, got: %s", url)
	}
}

func TestRootCommand_EnvVarBinding(t *testing.T) {
	resetViper()

	t.Setenv("TRENDCATCHER_API_URL", "http://example.com:9000")
	viper.AutomaticEnv()

	url := viper.GetString("url")
	if url != "http://example.com:9000" {
		t.Errorf("expected env url http://example.com:9000, got: %s", url)
	}
}
