// Package chat maps emails to Slack identities and delivers rendered
// notifications to a Slack channel.
package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"

	"github.com/avisser/pr-herald/internal/core"
)

// Client defines the operations this service needs from the chat platform.
// Identity lookups are best-effort for callers; message delivery is not.
type Client interface {
	// LookupUserByEmail returns the Slack user ID registered for an email.
	// Any failure, including an unknown email, is an error the caller is
	// expected to swallow.
	LookupUserByEmail(ctx context.Context, email string) (string, error)

	// PostMessage delivers a rendered notification to the channel. A
	// non-empty parentTS posts the message as a threaded reply under that
	// timestamp. It returns the timestamp of the posted message.
	PostMessage(ctx context.Context, channel string, n *core.Notification, parentTS string) (string, error)
}

type slackClient struct {
	token  string
	api    *slack.Client
	logger *slog.Logger
}

// NewClient wraps the Slack Web API client. An empty token is allowed at
// construction; each call fails individually until one is configured.
func NewClient(token string, logger *slog.Logger) Client {
	return &slackClient{token: token, api: slack.New(token), logger: logger}
}

// Mention formats a Slack user ID as an @-mention in message markup.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

func (c *slackClient) LookupUserByEmail(ctx context.Context, email string) (string, error) {
	if c.token == "" {
		return "", fmt.Errorf("slack API token is not configured")
	}

	user, err := c.api.GetUserByEmailContext(ctx, email)
	if err != nil {
		return "", fmt.Errorf("slack user lookup: %w", err)
	}
	return user.ID, nil
}

func (c *slackClient) PostMessage(ctx context.Context, channel string, n *core.Notification, parentTS string) (string, error) {
	if c.token == "" {
		return "", fmt.Errorf("slack API token is not configured")
	}
	if channel == "" {
		return "", fmt.Errorf("slack channel is not configured")
	}

	opts := []slack.MsgOption{slack.MsgOptionBlocks(toSlackBlocks(n)...)}
	if parentTS != "" {
		opts = append(opts, slack.MsgOptionTS(parentTS))
	}

	_, ts, err := c.api.PostMessageContext(ctx, channel, opts...)
	if err != nil {
		c.logger.Error("failed to post slack message", "channel", channel, "error", err)
		return "", fmt.Errorf("posting slack message: %w", err)
	}
	return ts, nil
}

// toSlackBlocks translates the platform-agnostic notification blocks into
// Slack Block Kit blocks. Header text is plain, section text is mrkdwn so
// <url|title> links and <@id> mentions render.
func toSlackBlocks(n *core.Notification) []slack.Block {
	blocks := make([]slack.Block, 0, len(n.Blocks))
	for _, b := range n.Blocks {
		switch b.Type {
		case core.BlockHeader:
			blocks = append(blocks, slack.NewHeaderBlock(
				slack.NewTextBlockObject(slack.PlainTextType, b.Text, false, false)))
		default:
			blocks = append(blocks, slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, b.Text, false, false), nil, nil))
		}
	}
	return blocks
}
