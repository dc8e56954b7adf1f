package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/sgsgita/moderation-backend/pkg/i18n"
	"github.com/sgsgita/moderation-backend/pkg/logger"
)

// Emitter turns accepted transitions into notification intents: the content
// author hears about approve and reject, the admin group hears about
// escalate. Exactly one intent per affected party.
type Emitter struct {
	dispatcher Dispatcher
	bundle     *i18n.Bundle
}

// NewEmitter creates an Emitter
func NewEmitter(dispatcher Dispatcher, bundle *i18n.Bundle) *Emitter {
	return &Emitter{dispatcher: dispatcher, bundle: bundle}
}

// BuildIntent derives the notification intent for one accepted transition.
// Returns nil for transitions that notify nobody.
func (e *Emitter) BuildIntent(item *domain.QueueItem, req *domain.ActionRequest) *domain.NotificationIntent {
	intent := &domain.NotificationIntent{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Context: domain.NotificationContext{
			QueueItemID: item.ID,
			PostingUID:  item.PostingUID,
			PostingType: item.PostingType,
			Title:       item.Title,
			Action:      req.Action,
			ActorID:     req.Actor.ID,
		},
	}

	switch req.Action {
	case domain.ActionApprove:
		intent.RecipientRole = domain.RecipientAuthor
		intent.RecipientID = item.AuthorID
		intent.TemplateKind = domain.TemplatePostingApproved
		intent.Subject = e.bundle.T(i18n.LocaleEn, "notify.posting_approved.subject", item.Title)

	case domain.ActionReject:
		intent.RecipientRole = domain.RecipientAuthor
		intent.RecipientID = item.AuthorID
		intent.TemplateKind = domain.TemplatePostingRejected
		intent.Context.Reason = req.Reason
		intent.Context.ReasonLabel = domain.RejectReasons[req.Reason]
		intent.Context.Feedback = req.Feedback
		intent.Subject = e.bundle.T(i18n.LocaleEn, "notify.posting_rejected.subject", item.Title, intent.Context.ReasonLabel)

	case domain.ActionEscalate:
		intent.RecipientRole = domain.RecipientAdmins
		intent.TemplateKind = domain.TemplateEscalationReview
		intent.Context.Reason = req.Reason
		intent.Context.ReasonLabel = domain.EscalationReasons[req.Reason]
		intent.Context.Notes = req.Notes
		intent.Subject = e.bundle.T(i18n.LocaleEn, "notify.escalation_review.subject", item.Title)

	default:
		return nil
	}

	return intent
}

// EmitTransition builds and dispatches the intent for one transition.
// Best-effort: a dispatch failure is logged and swallowed, never returned,
// because the transition is already committed.
func (e *Emitter) EmitTransition(ctx context.Context, item *domain.QueueItem, req *domain.ActionRequest) {
	intent := e.BuildIntent(item, req)
	if intent == nil {
		return
	}

	if err := e.dispatcher.Send(ctx, intent); err != nil {
		logger.GetLogger().Warn().
			Err(err).
			Str("intent_id", intent.ID).
			Uint64("queue_item_id", item.ID).
			Str("template", intent.TemplateKind).
			Msg("failed to dispatch notification intent")
	}
}
