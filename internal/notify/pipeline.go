package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/avisser/pr-herald/internal/chat"
	"github.com/avisser/pr-herald/internal/core"
	"github.com/avisser/pr-herald/internal/forge"
)

// Pipeline wires identity resolution, recipient mapping, rendering, and
// delivery into the single operation the transport layer invokes.
type Pipeline struct {
	resolver *Resolver
	chat     chat.Client
	channel  string
	logger   *slog.Logger
}

// NewPipeline creates the notification pipeline for a fixed target channel.
func NewPipeline(forgeClient forge.Client, chatClient chat.Client, channel string, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		resolver: NewResolver(forgeClient, logger),
		chat:     chatClient,
		channel:  channel,
		logger:   logger,
	}
}

// PostNotification processes one event end to end and returns the timestamp
// of the posted message, for the caller to persist and pass back as
// parentTS on a later related event to continue the thread.
//
// Identity and chat lookups degrade gracefully; the only errors surfaced
// are rendering errors (ErrNothingToSend, ErrMalformedRepoName) and
// delivery failures.
func (p *Pipeline) PostNotification(ctx context.Context, event *core.Event, parentTS string) (string, error) {
	ids := p.resolver.Resolve(ctx, event)
	recipients := p.resolveRecipients(ctx, event, ids)

	notification, err := Render(event, recipients)
	if err != nil {
		return "", err
	}

	ts, err := p.chat.PostMessage(ctx, p.channel, notification, parentTS)
	if err != nil {
		return "", fmt.Errorf("delivering %s notification for %s: %w",
			event.Action, event.Repository.FullName, err)
	}
	return ts, nil
}

// resolveRecipients builds the ordered chat recipient list for an event.
// Which emails are candidates depends on the action kind; each is mapped
// to a Slack account independently and lookup failures drop that one
// recipient.
func (p *Pipeline) resolveRecipients(ctx context.Context, event *core.Event, ids Identities) []string {
	var emails []string
	switch event.Action {
	case core.ActionReviewRequested:
		if event.RequestedReviewer != nil {
			emails = []string{ids.Email(*event.RequestedReviewer)}
		}
	case core.ActionReviewed:
		emails = []string{ids.Email(event.PullRequest.User)}
	case core.ActionCreated:
		emails = p.mentionEmails(ctx, event)
	}

	var recipients []string
	for _, email := range emails {
		id, err := p.chat.LookupUserByEmail(ctx, email)
		if err != nil {
			p.logger.Debug("no chat account for email, dropping recipient", "error", err)
			continue
		}
		recipients = append(recipients, id)
	}
	return recipients
}

// mentionEmails scans the comment for @-mentions and resolves each against
// the forge. A failed lookup silently drops that mention.
func (p *Pipeline) mentionEmails(ctx context.Context, event *core.Event) []string {
	if event.Comment == nil {
		return nil
	}
	base, err := url.Parse(event.PullRequest.HTMLURL)
	if err != nil {
		p.logger.Warn("cannot derive forge base URL from pull request URL",
			"url", event.PullRequest.HTMLURL, "error", err)
		return nil
	}

	var emails []string
	for _, username := range ScanMentions(event.Comment.Body) {
		email, err := p.resolver.forge.ResolveEmail(ctx, base, username)
		if err != nil {
			p.logger.Debug("dropping unresolvable mention", "username", username, "error", err)
			continue
		}
		emails = append(emails, email)
	}
	return emails
}
