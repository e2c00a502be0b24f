package ideas

import (
	"context"
	"fmt"
	"strings"
)

// EditAction is a submitted choice on the edit form.
type EditAction string

const (
	ActionPublish EditAction = "publish"
	ActionDraft   EditAction = "draft"
	ActionCancel  EditAction = "cancel"
)

// ParseEditAction validates a form value.
func ParseEditAction(raw string) (EditAction, error) {
	switch action := EditAction(strings.ToLower(strings.TrimSpace(raw))); action {
	case ActionPublish, ActionDraft, ActionCancel:
		return action, nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidInput, raw)
	}
}

// EditState is where a post sits in the composer.
type EditState int

const (
	// Viewing shows the post read-only.
	Viewing EditState = iota
	// Editing shows the edit form. Only authorized viewers reach it.
	Editing
)

// EditOutcome records how the last edit ended.
type EditOutcome int

const (
	OutcomeNone EditOutcome = iota
	OutcomeSaved
	OutcomeCancelled
)

// Edit is one pass through the composer for a single post.
type Edit struct {
	State   EditState
	Outcome EditOutcome
	Post    Post
}

// BeginEdit moves a post from Viewing to Editing. The returned edit carries
// the current title and content to prefill the form.
func (s *Service) BeginEdit(ctx context.Context, viewer Viewer, id int64) (Edit, error) {
	if !s.CanEdit(viewer) {
		return Edit{State: Viewing}, ErrUnauthorized
	}
	post, err := s.Get(ctx, viewer, id)
	if err != nil {
		return Edit{State: Viewing}, err
	}
	return Edit{State: Editing, Post: post}, nil
}

// SubmitEdit leaves Editing: cancel returns to Viewing untouched, publish and
// draft save the post with the matching draft flag. On failure the edit stays
// in Editing with the submitted values so the form can be shown again.
func (s *Service) SubmitEdit(ctx context.Context, viewer Viewer, id int64, action EditAction, title, content string) (Edit, error) {
	pending := Edit{State: Editing, Post: Post{ID: id, Title: title, Content: content, Draft: action == ActionDraft}}
	if !s.CanEdit(viewer) {
		return Edit{State: Viewing}, ErrUnauthorized
	}
	switch action {
	case ActionCancel:
		return Edit{State: Viewing, Outcome: OutcomeCancelled, Post: Post{ID: id}}, nil
	case ActionPublish, ActionDraft:
		post, err := s.Update(ctx, viewer, id, title, content, action == ActionDraft)
		if err != nil {
			return pending, err
		}
		return Edit{State: Viewing, Outcome: OutcomeSaved, Post: post}, nil
	default:
		return pending, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, action)
	}
}
