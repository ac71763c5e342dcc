package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avisser/pr-herald/internal/core"
)

func sampleEvent(action core.ActionKind) *core.Event {
	return &core.Event{
		Action: action,
		PullRequest: core.PullRequest{
			ID:      1,
			Title:   "Fix bug",
			Body:    "line1\nline2",
			User:    core.User{Email: "anon@noreply", Username: "alice"},
			HTMLURL: "https://git.example/acme/widgets/pulls/1",
			State:   core.StateOpen,
		},
		Sender:     core.User{Email: "anon2@noreply", Username: "alice"},
		Repository: core.Repository{FullName: "acme/widgets"},
	}
}

func TestRenderOpened(t *testing.T) {
	n, err := Render(sampleEvent(core.ActionOpened), nil)
	require.NoError(t, err)
	require.Len(t, n.Blocks, 3)

	assert.Equal(t, core.BlockHeader, n.Blocks[0].Type)
	assert.Equal(t, "acme | widgets", n.Blocks[0].Text)

	assert.Equal(t, core.BlockSection, n.Blocks[1].Type)
	assert.Equal(t, "Pull request <https://git.example/acme/widgets/pulls/1|Fix bug> opened by alice", n.Blocks[1].Text)

	assert.Equal(t, core.BlockSection, n.Blocks[2].Type)
	assert.Equal(t, ">line1\n>line2", n.Blocks[2].Text)
}

func TestRenderOpened_MalformedRepoName(t *testing.T) {
	event := sampleEvent(core.ActionOpened)
	event.Repository.FullName = "widgets"

	_, err := Render(event, nil)
	assert.ErrorIs(t, err, ErrMalformedRepoName)
}

func TestRenderReviewed(t *testing.T) {
	event := sampleEvent(core.ActionReviewed)
	event.Sender.Username = "bob"

	tests := []struct {
		name       string
		reviewType core.ReviewType
		recipients []string
		want       string
	}{
		{
			name:       "approved with chat handle",
			reviewType: core.ReviewApproved,
			recipients: []string{"U123"},
			want:       "<@U123>, bob has approved your PR",
		},
		{
			name:       "rejected falls back to author username",
			reviewType: core.ReviewRejected,
			want:       "alice, bob has rejected your PR",
		},
		{
			name:       "commented",
			reviewType: core.ReviewCommented,
			recipients: []string{"U123"},
			want:       "<@U123>, bob has commented on your PR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event.Review = &core.Review{Type: tt.reviewType}
			n, err := Render(event, tt.recipients)
			require.NoError(t, err)
			require.Len(t, n.Blocks, 1)
			assert.Equal(t, tt.want, n.Blocks[0].Text)
		})
	}
}

func TestRenderReviewRequested(t *testing.T) {
	event := sampleEvent(core.ActionReviewRequested)
	event.Sender.Username = "alice"
	event.RequestedReviewer = &core.User{Email: "anon3@noreply", Username: "bob"}

	t.Run("with chat handle", func(t *testing.T) {
		n, err := Render(event, []string{"U777"})
		require.NoError(t, err)
		require.Len(t, n.Blocks, 1)
		assert.Equal(t,
			"<@U777>, alice has requested you to review <https://git.example/acme/widgets/pulls/1|Fix bug>",
			n.Blocks[0].Text)
	})

	t.Run("falls back to reviewer username", func(t *testing.T) {
		n, err := Render(event, nil)
		require.NoError(t, err)
		require.Len(t, n.Blocks, 1)
		assert.Contains(t, n.Blocks[0].Text, "bob, alice has requested you to review")
	})
}

func TestRenderCommentMention(t *testing.T) {
	event := sampleEvent(core.ActionCreated)
	event.Comment = &core.Comment{Body: "@bob @carol take a look"}

	t.Run("no recipients suppresses the notification", func(t *testing.T) {
		_, err := Render(event, nil)
		assert.ErrorIs(t, err, ErrNothingToSend)
	})

	t.Run("recipients are listed space-joined in order", func(t *testing.T) {
		n, err := Render(event, []string{"U1", "U2"})
		require.NoError(t, err)
		require.Len(t, n.Blocks, 1)
		assert.Equal(t, "<@U1> <@U2>, you were mentioned in a comment", n.Blocks[0].Text)
	})
}

func TestRenderBasicActions(t *testing.T) {
	for _, action := range []core.ActionKind{core.ActionClosed, core.ActionReopened, core.ActionMerged} {
		t.Run(string(action), func(t *testing.T) {
			n, err := Render(sampleEvent(action), nil)
			require.NoError(t, err)
			require.Len(t, n.Blocks, 1)
			assert.Equal(t,
				"<https://git.example/acme/widgets/pulls/1|Fix bug> was "+string(action),
				n.Blocks[0].Text)
		})
	}
}

func TestRenderIsPure(t *testing.T) {
	event := sampleEvent(core.ActionOpened)
	first, err := Render(event, nil)
	require.NoError(t, err)
	second, err := Render(event, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestQuoteBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "two lines", body: "line1\nline2", want: ">line1\n>line2"},
		{name: "single line", body: "only", want: ">only"},
		{name: "trailing newline", body: "line1\n", want: ">line1\n"},
		{name: "empty body", body: "", want: ""},
		{name: "blank middle line", body: "a\n\nb", want: ">a\n>\n>b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quoteBody(tt.body))
		})
	}
}
