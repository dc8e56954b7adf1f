package domain

import "time"

// Notification recipients and template kinds
const (
	RecipientAuthor = "author"
	RecipientAdmins = "admin"

	TemplatePostingApproved  = "posting_approved"
	TemplatePostingRejected  = "posting_rejected"
	TemplateEscalationReview = "escalation_review"
)

// NotificationContext carries the template data for one intent
type NotificationContext struct {
	QueueItemID uint64 `json:"queue_item_id"`
	PostingUID  string `json:"posting_uid"`
	PostingType string `json:"posting_type"`
	Title       string `json:"title"`
	Action      Action `json:"action"`
	ActorID     string `json:"actor_id"`
	Reason      string `json:"reason,omitempty"`
	ReasonLabel string `json:"reason_label,omitempty"`
	Feedback    string `json:"feedback,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// NotificationIntent describes a message for the external dispatcher to
// deliver. The engine emits intents after a transition commits and never
// waits on delivery; a failed dispatch leaves the transition intact.
type NotificationIntent struct {
	ID            string              `json:"id"`
	RecipientRole string              `json:"recipient_role"`
	RecipientID   string              `json:"recipient_id,omitempty"`
	TemplateKind  string              `json:"template_kind"`
	Subject       string              `json:"subject"`
	Context       NotificationContext `json:"context"`
	CreatedAt     time.Time           `json:"created_at"`
}
