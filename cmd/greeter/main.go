package main

import (
	"fmt"
	"os"

	"github.com/benaskins/greeter/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "greeter",
	Short:         "Serve a static greeting over HTTP",
	Long:          "Serve a static greeting on GET /. The port comes from PORT (default 5001), optionally set through an env file.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var (
	envFile      string
	settingsPath string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Env file loaded before PORT is read (missing is fine)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "config", config.DefaultPath(), "YAML settings file (missing is fine)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
