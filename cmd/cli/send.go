package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avisser/pr-herald/internal/app"
	"github.com/avisser/pr-herald/internal/core"
	"github.com/avisser/pr-herald/internal/notify"
)

var (
	payloadPath string
	threadTS    string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Replay a webhook payload file through the notification pipeline",
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().StringVar(&payloadPath, "payload", "", "path to a JSON webhook payload file (required)")
	sendCmd.Flags().StringVar(&threadTS, "thread", "", "parent message timestamp to post a threaded reply")
	_ = sendCmd.MarkFlagRequired("payload")
}

func runSend(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	payload, err := os.ReadFile(payloadPath)
	if err != nil {
		return fmt.Errorf("reading payload file: %w", err)
	}

	event, err := core.ParseEvent(payload)
	if err != nil {
		return fmt.Errorf("parsing payload: %w", err)
	}

	pipeline := app.NewPipeline(cfg, log)
	ts, err := pipeline.PostNotification(cmd.Context(), event, threadTS)
	if errors.Is(err, notify.ErrNothingToSend) {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to send: no recipients resolved")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), ts)
	return nil
}
