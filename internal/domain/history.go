package domain

import "time"

// HistoryRecord is an immutable audit entry capturing one accepted state
// transition. Written exactly once, inside the same transaction as the
// transition itself; never updated or deleted. The ordered sequence of
// records for an item is the authoritative reconstruction of its lifecycle:
// replaying the ToState values from pending yields the current state, and
// the record count equals the item's version.
type HistoryRecord struct {
	ID               uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QueueItemID      uint64    `gorm:"column:queue_item_id;index" json:"queue_item_id"`
	FromState        State     `gorm:"column:from_state;type:varchar(20)" json:"from_state"`
	ToState          State     `gorm:"column:to_state;type:varchar(20)" json:"to_state"`
	Action           Action    `gorm:"column:action;type:varchar(20)" json:"action"`
	ActorID          string    `gorm:"column:actor_id;type:varchar(50)" json:"actor_id"`
	ActorRole        Role      `gorm:"column:actor_role;type:varchar(20)" json:"actor_role"`
	Reason           *string   `gorm:"column:reason;type:varchar(50)" json:"reason,omitempty"`
	Feedback         *string   `gorm:"column:feedback;type:text" json:"feedback,omitempty"`
	Notes            *string   `gorm:"column:notes;type:text" json:"notes,omitempty"`
	OccurredAt       time.Time `gorm:"column:occurred_at;index" json:"occurred_at"`
	ResultingVersion uint64    `gorm:"column:resulting_version" json:"resulting_version"`
}

// TableName returns the table name
func (HistoryRecord) TableName() string {
	return "moderation_history"
}
