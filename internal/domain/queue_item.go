package domain

import "time"

// State is the review state of a queue item
type State string

// Review states. pending is the initial state; approved and rejected are
// terminal and accept no further actions.
const (
	StatePending   State = "pending"
	StateEscalated State = "escalated"
	StateApproved  State = "approved"
	StateRejected  State = "rejected"
)

// Valid reports whether s is a known review state
func (s State) Valid() bool {
	switch s {
	case StatePending, StateEscalated, StateApproved, StateRejected:
		return true
	}
	return false
}

// Terminal reports whether s accepts no further actions
func (s State) Terminal() bool {
	return s == StateApproved || s == StateRejected
}

// Posting types accepted on enqueue
const (
	PostingTypeStory   = "story"
	PostingTypePhoto   = "photo"
	PostingTypeEvent   = "event"
	PostingTypeComment = "comment"
)

// ValidPostingType reports whether t is an accepted posting type
func ValidPostingType(t string) bool {
	switch t {
	case PostingTypeStory, PostingTypePhoto, PostingTypeEvent, PostingTypeComment:
		return true
	}
	return false
}

// QueueItem represents a posting under moderation review.
// Version increments by exactly 1 per accepted transition and is the
// optimistic-concurrency stamp; it starts at 0 on enqueue so that the
// history row count always equals the version.
type QueueItem struct {
	ID               uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostingUID       string     `gorm:"column:posting_uid;type:varchar(36);uniqueIndex" json:"posting_uid"`
	PostingType      string     `gorm:"column:posting_type;type:varchar(20);index" json:"posting_type"`
	Title            string     `gorm:"column:title;type:varchar(255)" json:"title"`
	Excerpt          string     `gorm:"column:excerpt;type:text" json:"excerpt"`
	AuthorID         string     `gorm:"column:author_id;type:varchar(50);index" json:"author_id"`
	State            State      `gorm:"column:state;type:varchar(20);index" json:"state"`
	Version          uint64     `gorm:"column:version;not null;default:0" json:"version"`
	Priority         int        `gorm:"column:priority;default:0" json:"priority"`
	EscalationReason *string    `gorm:"column:escalation_reason;type:varchar(50)" json:"escalation_reason,omitempty"`
	LastActorID      *string    `gorm:"column:last_actor_id;type:varchar(50)" json:"last_actor_id,omitempty"`
	LastActionAt     *time.Time `gorm:"column:last_action_at" json:"last_action_at,omitempty"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name
func (QueueItem) TableName() string {
	return "queue_items"
}

// Sort keys and orders accepted by QueueFilter
const (
	SortByCreatedAt = "created_at"
	SortByPriority  = "priority"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// QueueFilter describes a queue listing query. All supplied predicates are
// combined conjunctively. Page is 1-indexed.
type QueueFilter struct {
	States      []State
	FromDate    *time.Time
	ToDate      *time.Time
	PostingType string
	Search      string
	SortBy      string
	SortOrder   string
	Page        int
	PerPage     int
}

// QueuePage is the result of a queue listing query. An empty page is a
// valid result with Total 0, not an error.
type QueuePage struct {
	Items      []QueueItem `json:"items"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
	HasNext    bool        `json:"has_next"`
	HasPrev    bool        `json:"has_prev"`
}

// QueueStats summarizes the queue for the moderator dashboard
type QueueStats struct {
	Pending      int64      `json:"pending"`
	Escalated    int64      `json:"escalated"`
	Approved     int64      `json:"approved"`
	Rejected     int64      `json:"rejected"`
	DecidedToday int64      `json:"decided_today"`
	OldestOpenAt *time.Time `json:"oldest_open_at,omitempty"`
}
