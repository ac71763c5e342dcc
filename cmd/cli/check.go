package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that configuration loads and report which credentials are set",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "server port:    %s\n", cfg.ServerPort)
	fmt.Fprintf(out, "slack channel:  %s\n", valueOrUnset(cfg.SlackChannel))
	fmt.Fprintf(out, "slack token:    %s\n", setOrUnset(cfg.SlackAPIToken))
	fmt.Fprintf(out, "gitea token:    %s\n", setOrUnset(cfg.GiteaAPIToken))
	fmt.Fprintf(out, "webhook secret: %s\n", setOrUnset(cfg.GiteaWebhookSecret))
	return nil
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

func setOrUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return "(set)"
}
