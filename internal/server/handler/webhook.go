// Package handler provides the HTTP handlers for inbound forge webhooks.
package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/avisser/pr-herald/internal/config"
	"github.com/avisser/pr-herald/internal/core"
)

// maxPayloadBytes caps the webhook body read; Gitea PR payloads are far
// smaller than this.
const maxPayloadBytes = 1 << 20

// WebhookHandler processes incoming pull request webhooks from Gitea.
type WebhookHandler struct {
	cfg        *config.Config
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates a new webhook handler with the given configuration and dispatcher.
func NewWebhookHandler(cfg *config.Config, dispatcher core.JobDispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle processes Gitea webhook requests.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		h.logger.Error("could not read webhook body", "error", err)
		http.Error(w, "Could not read body", http.StatusBadRequest)
		return
	}

	if h.cfg.GiteaWebhookSecret != "" {
		if err := verifySignature(payload, r.Header.Get("X-Gitea-Signature"), h.cfg.GiteaWebhookSecret); err != nil {
			h.logger.Error("invalid webhook payload signature", "error", err)
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}
	}

	event, err := core.ParseEvent(payload)
	if err != nil {
		h.logger.Error("could not parse webhook", "error", err)
		http.Error(w, "Could not parse webhook", http.StatusBadRequest)
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), event); err != nil {
		h.logger.Error("failed to dispatch notification job", "error", err, "repo", event.Repository.FullName)
		http.Error(w, "Failed to queue notification", http.StatusInternalServerError)
		return
	}

	h.logger.Info("notification job dispatched successfully",
		"repo", event.Repository.FullName, "pr", event.PullRequest.ID, "action", event.Action)
	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprint(w, "Notification accepted")
}

// verifySignature checks the hex-encoded HMAC-SHA256 signature Gitea sends
// in X-Gitea-Signature against the shared webhook secret.
func verifySignature(payload []byte, signature, secret string) error {
	if signature == "" {
		return fmt.Errorf("missing X-Gitea-Signature header")
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("signature is not valid hex: %w", err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
