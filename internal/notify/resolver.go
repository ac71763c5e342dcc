package notify

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/avisser/pr-herald/internal/core"
	"github.com/avisser/pr-herald/internal/forge"
)

// Identities maps forge usernames to verified emails resolved against the
// forge. The event itself stays immutable; resolved values win over the
// anonymized emails embedded in it.
type Identities map[string]string

// Email returns the resolved email for a user, or the user's original
// (anonymized) email when no resolution succeeded.
func (ids Identities) Email(u core.User) string {
	if email, ok := ids[u.Username]; ok {
		return email
	}
	return u.Email
}

// Resolver deanonymizes the identities named in an event. Every lookup is
// best-effort and independent: a failed lookup leaves that user's
// anonymized email in place and never affects the others.
type Resolver struct {
	forge  forge.Client
	logger *slog.Logger
}

// NewResolver creates a resolver backed by the given forge client.
func NewResolver(forgeClient forge.Client, logger *slog.Logger) *Resolver {
	return &Resolver{forge: forgeClient, logger: logger}
}

// Resolve looks up the sender, the pull request author, and, for review
// requests, the requested reviewer.
func (r *Resolver) Resolve(ctx context.Context, event *core.Event) Identities {
	base, err := url.Parse(event.PullRequest.HTMLURL)
	if err != nil {
		r.logger.Warn("cannot derive forge base URL from pull request URL",
			"url", event.PullRequest.HTMLURL, "error", err)
		return Identities{}
	}

	ids := Identities{}
	r.resolveInto(ctx, ids, base, event.Sender.Username)
	r.resolveInto(ctx, ids, base, event.PullRequest.User.Username)
	if event.Action == core.ActionReviewRequested && event.RequestedReviewer != nil {
		r.resolveInto(ctx, ids, base, event.RequestedReviewer.Username)
	}
	return ids
}

func (r *Resolver) resolveInto(ctx context.Context, ids Identities, base *url.URL, username string) {
	email, err := r.forge.ResolveEmail(ctx, base, username)
	if err != nil {
		r.logger.Debug("keeping anonymized email", "username", username, "error", err)
		return
	}
	ids[username] = email
}
