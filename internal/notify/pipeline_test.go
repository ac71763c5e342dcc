package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avisser/pr-herald/internal/core"
)

type fakeForge struct {
	emails  map[string]string // username -> email
	lookups []string
	bases   []string
}

func (f *fakeForge) ResolveEmail(_ context.Context, base *url.URL, username string) (string, error) {
	f.lookups = append(f.lookups, username)
	f.bases = append(f.bases, base.String())
	email, ok := f.emails[username]
	if !ok {
		return "", fmt.Errorf("user %q not found", username)
	}
	return email, nil
}

type fakeChat struct {
	users      map[string]string // email -> slack user ID
	posted     []*core.Notification
	parents    []string
	channels   []string
	postErr    error
	responseTS string
}

func (f *fakeChat) LookupUserByEmail(_ context.Context, email string) (string, error) {
	id, ok := f.users[email]
	if !ok {
		return "", fmt.Errorf("users_not_found")
	}
	return id, nil
}

func (f *fakeChat) PostMessage(_ context.Context, channel string, n *core.Notification, parentTS string) (string, error) {
	if f.postErr != nil {
		return "", f.postErr
	}
	f.posted = append(f.posted, n)
	f.parents = append(f.parents, parentTS)
	f.channels = append(f.channels, channel)
	return f.responseTS, nil
}

func testPipeline(forgeClient *fakeForge, chatClient *fakeChat) *Pipeline {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPipeline(forgeClient, chatClient, "C999", logger)
}

func TestPostNotification_ResolutionIsFailOpen(t *testing.T) {
	event := sampleEvent(core.ActionOpened)
	forgeClient := &fakeForge{} // every lookup fails
	chatClient := &fakeChat{responseTS: "1700000000.000100"}

	ts, err := testPipeline(forgeClient, chatClient).PostNotification(context.Background(), event, "")
	require.NoError(t, err)
	assert.Equal(t, "1700000000.000100", ts)
	require.Len(t, chatClient.posted, 1)
	// Untouched anonymized identities never break delivery.
	assert.Contains(t, chatClient.posted[0].Blocks[1].Text, "opened by alice")
}

func TestPostNotification_LookupURLDerivedFromPRURL(t *testing.T) {
	event := sampleEvent(core.ActionOpened)
	forgeClient := &fakeForge{}
	chatClient := &fakeChat{responseTS: "1.2"}

	_, err := testPipeline(forgeClient, chatClient).PostNotification(context.Background(), event, "")
	require.NoError(t, err)
	require.NotEmpty(t, forgeClient.bases)
	for _, base := range forgeClient.bases {
		assert.Equal(t, "https://git.example/acme/widgets/pulls/1", base)
	}
	// Sender and author are both resolved, independently.
	assert.Equal(t, []string{"alice", "alice"}, forgeClient.lookups)
}

func TestPostNotification_ReviewRequestedResolvesReviewer(t *testing.T) {
	event := sampleEvent(core.ActionReviewRequested)
	event.RequestedReviewer = &core.User{Email: "anon3@noreply", Username: "bob"}
	forgeClient := &fakeForge{emails: map[string]string{"bob": "bob@corp.example"}}
	chatClient := &fakeChat{
		users:      map[string]string{"bob@corp.example": "U42"},
		responseTS: "3.4",
	}

	_, err := testPipeline(forgeClient, chatClient).PostNotification(context.Background(), event, "")
	require.NoError(t, err)
	require.Len(t, chatClient.posted, 1)
	assert.Contains(t, chatClient.posted[0].Blocks[0].Text, "<@U42>,")
}

func TestPostNotification_ReviewRequestedFallsBackToUsername(t *testing.T) {
	event := sampleEvent(core.ActionReviewRequested)
	event.RequestedReviewer = &core.User{Email: "anon3@noreply", Username: "bob"}
	forgeClient := &fakeForge{emails: map[string]string{"bob": "bob@corp.example"}}
	chatClient := &fakeChat{responseTS: "3.4"} // email maps to no chat account

	_, err := testPipeline(forgeClient, chatClient).PostNotification(context.Background(), event, "")
	require.NoError(t, err)
	require.Len(t, chatClient.posted, 1)
	assert.Contains(t, chatClient.posted[0].Blocks[0].Text, "bob, alice has requested you to review")
	assert.NotContains(t, chatClient.posted[0].Blocks[0].Text, "<@")
}

func TestPostNotification_CommentMentions(t *testing.T) {
	event := sampleEvent(core.ActionCreated)
	event.Comment = &core.Comment{Body: "> @ghost quoted\n@bob @carol please look"}
	forgeClient := &fakeForge{emails: map[string]string{
		"alice": "alice@corp.example",
		"bob":   "bob@corp.example",
		"carol": "carol@corp.example",
	}}
	chatClient := &fakeChat{
		users: map[string]string{
			"bob@corp.example":   "U1",
			"carol@corp.example": "U2",
		},
		responseTS: "5.6",
	}

	_, err := testPipeline(forgeClient, chatClient).PostNotification(context.Background(), event, "")
	require.NoError(t, err)
	require.Len(t, chatClient.posted, 1)
	assert.Equal(t, "<@U1> <@U2>, you were mentioned in a comment", chatClient.posted[0].Blocks[0].Text)
}

func TestPostNotification_CommentWithoutResolvedMentionsSendsNothing(t *testing.T) {
	event := sampleEvent(core.ActionCreated)
	event.Comment = &core.Comment{Body: "@ghost please look"}
	forgeClient := &fakeForge{emails: map[string]string{"alice": "alice@corp.example"}}
	chatClient := &fakeChat{responseTS: "7.8"}

	ts, err := testPipeline(forgeClient, chatClient).PostNotification(context.Background(), event, "")
	assert.ErrorIs(t, err, ErrNothingToSend)
	assert.Empty(t, ts)
	assert.Empty(t, chatClient.posted)
}

func TestPostNotification_ThreadsUnderParent(t *testing.T) {
	event := sampleEvent(core.ActionClosed)
	forgeClient := &fakeForge{}
	chatClient := &fakeChat{responseTS: "9.1"}

	_, err := testPipeline(forgeClient, chatClient).PostNotification(context.Background(), event, "1700000000.000100")
	require.NoError(t, err)
	require.Len(t, chatClient.parents, 1)
	assert.Equal(t, "1700000000.000100", chatClient.parents[0])
	assert.Equal(t, "C999", chatClient.channels[0])
}

func TestPostNotification_DeliveryFailureIsSurfaced(t *testing.T) {
	event := sampleEvent(core.ActionOpened)
	forgeClient := &fakeForge{}
	chatClient := &fakeChat{postErr: fmt.Errorf("channel_not_found")}

	_, err := testPipeline(forgeClient, chatClient).PostNotification(context.Background(), event, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestResolverKeepsAnonymizedEmailOnFailure(t *testing.T) {
	event := sampleEvent(core.ActionReviewed)
	event.Review = &core.Review{Type: core.ReviewApproved}
	forgeClient := &fakeForge{} // lookups fail
	resolver := NewResolver(forgeClient, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ids := resolver.Resolve(context.Background(), event)
	assert.Equal(t, "anon@noreply", ids.Email(event.PullRequest.User))
}
