package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/sgsgita/moderation-backend/pkg/i18n"
)

type captureDispatcher struct {
	intents []*domain.NotificationIntent
	err     error
}

func (d *captureDispatcher) Send(_ context.Context, intent *domain.NotificationIntent) error {
	if d.err != nil {
		return d.err
	}
	d.intents = append(d.intents, intent)
	return nil
}

func testBundle() *i18n.Bundle {
	b := i18n.NewBundle(i18n.LocaleEn)
	for locale, msgs := range i18n.DefaultMessages() {
		b.LoadMessages(locale, msgs)
	}
	return b
}

func testItem() *domain.QueueItem {
	return &domain.QueueItem{
		ID:          42,
		PostingUID:  "uid-42",
		PostingType: domain.PostingTypeStory,
		Title:       "Monsoon trek report",
		AuthorID:    "author-7",
	}
}

func TestBuildIntent_Approve(t *testing.T) {
	emitter := NewEmitter(&captureDispatcher{}, testBundle())

	intent := emitter.BuildIntent(testItem(), &domain.ActionRequest{
		Action: domain.ActionApprove,
		Actor:  domain.ActorIdentity{ID: "mod-1", Role: domain.RoleModerator},
	})
	if intent == nil {
		t.Fatal("expected an intent")
	}
	if intent.RecipientRole != domain.RecipientAuthor {
		t.Errorf("expected author recipient, got %s", intent.RecipientRole)
	}
	if intent.RecipientID != "author-7" {
		t.Errorf("expected recipient author-7, got %s", intent.RecipientID)
	}
	if intent.TemplateKind != domain.TemplatePostingApproved {
		t.Errorf("expected posting_approved template, got %s", intent.TemplateKind)
	}
	if intent.Subject != `Your posting "Monsoon trek report" has been approved` {
		t.Errorf("unexpected subject: %q", intent.Subject)
	}
	if intent.ID == "" {
		t.Error("expected a generated intent id")
	}
	if intent.Context.QueueItemID != 42 || intent.Context.ActorID != "mod-1" {
		t.Errorf("unexpected context: %+v", intent.Context)
	}
}

func TestBuildIntent_RejectCarriesFeedback(t *testing.T) {
	emitter := NewEmitter(&captureDispatcher{}, testBundle())

	intent := emitter.BuildIntent(testItem(), &domain.ActionRequest{
		Action:   domain.ActionReject,
		Actor:    domain.ActorIdentity{ID: "mod-1", Role: domain.RoleModerator},
		Reason:   "spam",
		Feedback: "Please remove the referral links and resubmit.",
	})
	if intent == nil {
		t.Fatal("expected an intent")
	}
	if intent.RecipientRole != domain.RecipientAuthor {
		t.Errorf("expected author recipient, got %s", intent.RecipientRole)
	}
	if intent.TemplateKind != domain.TemplatePostingRejected {
		t.Errorf("expected posting_rejected template, got %s", intent.TemplateKind)
	}
	if intent.Context.Reason != "spam" {
		t.Errorf("expected reason spam, got %s", intent.Context.Reason)
	}
	if intent.Context.ReasonLabel != "Spam or self-promotion" {
		t.Errorf("expected reason label, got %q", intent.Context.ReasonLabel)
	}
	if intent.Context.Feedback == "" {
		t.Error("expected feedback relayed to the author")
	}
	if intent.Subject != `Your posting "Monsoon trek report" was not approved: Spam or self-promotion` {
		t.Errorf("unexpected subject: %q", intent.Subject)
	}
}

func TestBuildIntent_EscalateTargetsAdmins(t *testing.T) {
	emitter := NewEmitter(&captureDispatcher{}, testBundle())

	intent := emitter.BuildIntent(testItem(), &domain.ActionRequest{
		Action: domain.ActionEscalate,
		Actor:  domain.ActorIdentity{ID: "mod-1", Role: domain.RoleModerator},
		Reason: "legal_risk",
		Notes:  "Possible defamation, want a second look.",
	})
	if intent == nil {
		t.Fatal("expected an intent")
	}
	if intent.RecipientRole != domain.RecipientAdmins {
		t.Errorf("expected admin recipient role, got %s", intent.RecipientRole)
	}
	if intent.RecipientID != "" {
		t.Errorf("expected role-addressed intent without recipient id, got %s", intent.RecipientID)
	}
	if intent.TemplateKind != domain.TemplateEscalationReview {
		t.Errorf("expected escalation_review template, got %s", intent.TemplateKind)
	}
	if intent.Context.Notes == "" {
		t.Error("expected notes relayed to the reviewing admin")
	}
}

func TestEmitTransition_DispatchesOnce(t *testing.T) {
	dispatcher := &captureDispatcher{}
	emitter := NewEmitter(dispatcher, testBundle())

	emitter.EmitTransition(context.Background(), testItem(), &domain.ActionRequest{
		Action: domain.ActionApprove,
		Actor:  domain.ActorIdentity{ID: "mod-1", Role: domain.RoleModerator},
	})

	if len(dispatcher.intents) != 1 {
		t.Fatalf("expected exactly 1 dispatched intent, got %d", len(dispatcher.intents))
	}
}

func TestEmitTransition_SwallowsDispatchFailure(t *testing.T) {
	dispatcher := &captureDispatcher{err: errors.New("broker down")}
	emitter := NewEmitter(dispatcher, testBundle())

	// Must not panic or propagate; the transition is already committed.
	emitter.EmitTransition(context.Background(), testItem(), &domain.ActionRequest{
		Action: domain.ActionApprove,
		Actor:  domain.ActorIdentity{ID: "mod-1", Role: domain.RoleModerator},
	})
}
