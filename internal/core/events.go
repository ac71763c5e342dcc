// Package core defines the essential interfaces and data structures that form
// the backbone of the application: the parsed forge event, the closed set of
// action kinds, and the contracts between the webhook layer and the
// notification jobs.
package core

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// ActionKind identifies what happened to a pull request. The wire value is
// the snake_case tag from the webhook payload and doubles as the display
// form for generic notifications ("... was reopened").
type ActionKind string

const (
	ActionOpened          ActionKind = "opened"
	ActionClosed          ActionKind = "closed"
	ActionReopened        ActionKind = "reopened"
	ActionMerged          ActionKind = "merged"
	ActionCreated         ActionKind = "created"
	ActionReviewed        ActionKind = "reviewed"
	ActionReviewRequested ActionKind = "review_requested"
)

// User is a forge account as it appears in webhook payloads. The email is
// usually an anonymized placeholder until identity resolution replaces it.
type User struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// PullRequestState is the lifecycle state of a pull request.
type PullRequestState string

const (
	StateOpen   PullRequestState = "open"
	StateClosed PullRequestState = "closed"
)

// UnmarshalJSON rejects states outside the open/closed set.
func (s *PullRequestState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch PullRequestState(raw) {
	case StateOpen, StateClosed:
		*s = PullRequestState(raw)
		return nil
	default:
		return fmt.Errorf("unknown pull request state %q", raw)
	}
}

// PullRequest is the snapshot of the affected pull request taken at
// event-parse time.
type PullRequest struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Body     string           `json:"body"`
	Comments int64            `json:"comments"`
	User     User             `json:"user"`
	HTMLURL  string           `json:"html_url"`
	State    PullRequestState `json:"state"`
}

// Repository holds the fully-qualified "owner/name" of the repository.
type Repository struct {
	FullName string `json:"full_name"`
}

// Comment is a pull request comment; only the body is ever inspected.
type Comment struct {
	Body string `json:"body"`
}

// ReviewType tags a submitted review as approval, rejection, or plain
// comment. The wire values are Gitea's review webhook type strings.
type ReviewType string

const (
	ReviewApproved  ReviewType = "pull_request_review_approved"
	ReviewRejected  ReviewType = "pull_request_review_rejected"
	ReviewCommented ReviewType = "pull_request_review_comment"
)

// Review is the payload of a reviewed action.
type Review struct {
	Type    ReviewType `json:"type"`
	Content string     `json:"content"`
}

// Verb returns the past-tense display verb for the review outcome.
func (r Review) Verb() string {
	switch r.Type {
	case ReviewRejected:
		return "rejected"
	case ReviewCommented:
		return "commented on"
	default:
		return "approved"
	}
}

// Event is the typed representation of one inbound webhook. Exactly one of
// the per-kind payload fields is set, matching Action. Events are immutable
// after ParseEvent returns; identity resolution layers overrides on top
// instead of mutating the embedded users.
type Event struct {
	Action            ActionKind
	Comment           *Comment // set when Action == ActionCreated
	Review            *Review  // set when Action == ActionReviewed
	RequestedReviewer *User    // set when Action == ActionReviewRequested
	PullRequest       PullRequest
	Sender            User
	Repository        Repository
}

// wireEvent mirrors the raw payload: the action tag is flattened alongside
// the rest of the event, and the pull request may arrive under the "issue"
// alias instead.
type wireEvent struct {
	Action            string       `json:"action"`
	PullRequest       *PullRequest `json:"pull_request"`
	Issue             *PullRequest `json:"issue"`
	Sender            *User        `json:"sender"`
	Repository        *Repository  `json:"repository"`
	Comment           *Comment     `json:"comment"`
	Review            *Review      `json:"review"`
	RequestedReviewer *User        `json:"requested_reviewer"`
}

// ParseEvent decodes and validates an inbound webhook payload. It acts as an
// anti-corruption layer: unknown fields are ignored, but a missing required
// field, a malformed value, or an unrecognized action tag is a hard error
// and the event is not processed at all.
func ParseEvent(payload []byte) (*Event, error) {
	var raw wireEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decoding webhook payload: %w", err)
	}

	pr := raw.PullRequest
	if pr == nil {
		pr = raw.Issue
	}
	if pr == nil {
		return nil, fmt.Errorf("payload has neither pull_request nor issue")
	}
	if u, err := url.Parse(pr.HTMLURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("pull request html_url %q is not an absolute URL", pr.HTMLURL)
	}
	if raw.Sender == nil || raw.Sender.Username == "" {
		return nil, fmt.Errorf("sender information is missing from the payload")
	}
	if raw.Repository == nil || raw.Repository.FullName == "" {
		return nil, fmt.Errorf("repository information is missing from the payload")
	}

	event := &Event{
		Action:      ActionKind(raw.Action),
		PullRequest: *pr,
		Sender:      *raw.Sender,
		Repository:  *raw.Repository,
	}

	switch event.Action {
	case ActionOpened, ActionClosed, ActionReopened, ActionMerged:
	case ActionCreated:
		if raw.Comment == nil {
			return nil, fmt.Errorf("created event is missing the comment payload")
		}
		event.Comment = raw.Comment
	case ActionReviewed:
		if raw.Review == nil {
			return nil, fmt.Errorf("reviewed event is missing the review payload")
		}
		switch raw.Review.Type {
		case ReviewApproved, ReviewRejected, ReviewCommented:
		default:
			return nil, fmt.Errorf("unknown review type %q", raw.Review.Type)
		}
		event.Review = raw.Review
	case ActionReviewRequested:
		if raw.RequestedReviewer == nil || raw.RequestedReviewer.Username == "" {
			return nil, fmt.Errorf("review_requested event is missing the requested reviewer")
		}
		event.RequestedReviewer = raw.RequestedReviewer
	default:
		return nil, fmt.Errorf("unrecognized action tag %q", raw.Action)
	}

	return event, nil
}
