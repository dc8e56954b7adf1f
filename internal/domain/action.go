package domain

import "time"

// Action is a moderation decision submitted against a queue item
type Action string

// Moderation actions
const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionEscalate Action = "escalate"
)

// Valid reports whether a is a known action
func (a Action) Valid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionEscalate:
		return true
	}
	return false
}

// Role is an actor role as supplied by the identity layer. The engine
// trusts it as given.
type Role string

// Actor roles
const (
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleModerator || r == RoleAdmin
}

// ActorIdentity is the pre-authenticated acting moderator
type ActorIdentity struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// ActionRequest is an attempted transition. ExpectedVersion is the version
// the actor last observed; the request is rejected whole if it no longer
// matches the stored version at write time.
type ActionRequest struct {
	QueueItemID     uint64        `json:"-"`
	Actor           ActorIdentity `json:"-"`
	ExpectedVersion *uint64       `json:"expected_version"`
	Action          Action        `json:"action"`
	Reason          string        `json:"reason,omitempty"`
	Feedback        string        `json:"feedback,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	Priority        int           `json:"priority,omitempty"`
}

// EnqueueRequest submits a posting for review. PostingUID is generated
// when the content service does not supply one.
type EnqueueRequest struct {
	PostingUID  string `json:"posting_uid" validate:"omitempty,max=36"`
	PostingType string `json:"posting_type" binding:"required" validate:"required,oneof=story photo event comment"`
	Title       string `json:"title" binding:"required,max=255"`
	Excerpt     string `json:"excerpt"`
	AuthorID    string `json:"author_id" binding:"required,max=50"`
}

// TransitionEvent describes one accepted transition for the live feed and
// the analytics sink. Built after the transaction commits.
type TransitionEvent struct {
	QueueItemID      uint64    `json:"queue_item_id"`
	PostingUID       string    `json:"posting_uid"`
	PostingType      string    `json:"posting_type"`
	FromState        State     `json:"from_state"`
	ToState          State     `json:"to_state"`
	Action           Action    `json:"action"`
	ActorID          string    `json:"actor_id"`
	ActorRole        Role      `json:"actor_role"`
	ResultingVersion uint64    `json:"resulting_version"`
	OccurredAt       time.Time `json:"occurred_at"`
	Reason           string    `json:"reason,omitempty"`
}
