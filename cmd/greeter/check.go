package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/benaskins/greeter/internal/config"
	"github.com/benaskins/greeter/internal/port"
	"github.com/spf13/cobra"
)

type checkResult struct {
	Port      int      `json:"port"`
	Defaulted bool     `json:"defaulted"`
	Available bool     `json:"available"`
	Warnings  []string `json:"warnings,omitempty"`
	Error     string   `json:"error,omitempty"`
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Show the resolved port and whether it can be bound",
	Long:  "Load the env file, resolve PORT the same way serve does, and probe the port. Exits non-zero when the port is unavailable.",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var checkJSON bool

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	var warnings []string
	if err := config.LoadEnvFile(envFile); err != nil {
		warnings = append(warnings, err.Error())
	}

	cfg, resolveErr := config.Resolve(os.Getenv)
	if resolveErr != nil {
		warnings = append(warnings, resolveErr.Error())
	}
	result := checkResult{Port: cfg.Port, Defaulted: cfg.Defaulted, Warnings: warnings}

	probeErr := port.Check(cfg.Port)
	result.Available = probeErr == nil
	if probeErr != nil {
		result.Error = probeErr.Error()
	}

	out := cmd.OutOrStdout()
	if checkJSON {
		if err := printJSON(out, result); err != nil {
			return err
		}
	} else {
		source := config.PortEnv
		if result.Defaulted {
			source = "default"
		}
		fmt.Fprintf(out, "PORT    %d (%s)\n", result.Port, source)
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "WARN    %s\n", w)
		}
		if result.Available {
			fmt.Fprintln(out, "STATUS  available")
		} else {
			fmt.Fprintln(out, "STATUS  unavailable")
		}
	}

	if probeErr != nil {
		return probeErr
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
