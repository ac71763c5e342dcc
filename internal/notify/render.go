package notify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/avisser/pr-herald/internal/chat"
	"github.com/avisser/pr-herald/internal/core"
)

// ErrNothingToSend marks the one case where a valid event produces no
// notification at all: a comment whose mentions map to zero chat accounts.
// Callers treat it as "nothing to send", not an operational error.
var ErrNothingToSend = errors.New("no recipients resolved, nothing to send")

// ErrMalformedRepoName is returned when the repository full name cannot be
// split into owner and name, which the opened-PR header requires.
var ErrMalformedRepoName = errors.New("repository full name is not in owner/name form")

// Render produces the notification for an event given the already-resolved
// chat recipients. It is a pure function: the same event and recipients
// always yield the same blocks.
//
// Recipients are Slack user IDs in resolution order. Kinds other than
// comment mentions render even with zero recipients, falling back to raw
// forge usernames.
func Render(event *core.Event, recipients []string) (*core.Notification, error) {
	switch event.Action {
	case core.ActionOpened:
		return renderOpened(event)
	case core.ActionReviewed:
		return renderReviewed(event, recipients), nil
	case core.ActionReviewRequested:
		return renderReviewRequested(event, recipients), nil
	case core.ActionCreated:
		return renderCommentMention(recipients)
	default:
		return renderBasic(event), nil
	}
}

// pullRequestLink formats the pull request as a Slack mrkdwn hyperlink.
func pullRequestLink(pr core.PullRequest) string {
	return fmt.Sprintf("<%s|%s>", pr.HTMLURL, pr.Title)
}

func renderOpened(event *core.Event) (*core.Notification, error) {
	owner, name, ok := strings.Cut(event.Repository.FullName, "/")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRepoName, event.Repository.FullName)
	}

	n := &core.Notification{}
	n.Header(fmt.Sprintf("%s | %s", owner, name))
	n.Section(fmt.Sprintf("Pull request %s opened by %s",
		pullRequestLink(event.PullRequest), event.Sender.Username))
	n.Section(quoteBody(event.PullRequest.Body))
	return n, nil
}

func renderReviewed(event *core.Event, recipients []string) *core.Notification {
	recipient := event.PullRequest.User.Username
	if len(recipients) > 0 {
		recipient = chat.Mention(recipients[0])
	}

	n := &core.Notification{}
	return n.Section(fmt.Sprintf("%s, %s has %s your PR",
		recipient, event.Sender.Username, event.Review.Verb()))
}

func renderReviewRequested(event *core.Event, recipients []string) *core.Notification {
	recipient := event.RequestedReviewer.Username
	if len(recipients) > 0 {
		recipient = chat.Mention(recipients[0])
	}

	n := &core.Notification{}
	return n.Section(fmt.Sprintf("%s, %s has requested you to review %s",
		recipient, event.Sender.Username, pullRequestLink(event.PullRequest)))
}

func renderCommentMention(recipients []string) (*core.Notification, error) {
	if len(recipients) == 0 {
		return nil, ErrNothingToSend
	}

	mentions := make([]string, 0, len(recipients))
	for _, id := range recipients {
		mentions = append(mentions, chat.Mention(id))
	}

	n := &core.Notification{}
	return n.Section(fmt.Sprintf("%s, you were mentioned in a comment",
		strings.Join(mentions, " "))), nil
}

func renderBasic(event *core.Event) *core.Notification {
	n := &core.Notification{}
	return n.Section(fmt.Sprintf("%s was %s",
		pullRequestLink(event.PullRequest), event.Action))
}

// quoteBody prefixes every physical line of the pull request body with a
// quote marker so the original text cannot be mistaken for live,
// actionable content.
func quoteBody(body string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(body, "\n") {
		if line == "" {
			continue
		}
		b.WriteString(">")
		b.WriteString(line)
	}
	return b.String()
}
