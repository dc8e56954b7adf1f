package analytics

// DailyDecisions is one day's decision counts
type DailyDecisions struct {
	Date      string `json:"date"`
	Approved  uint64 `json:"approved"`
	Rejected  uint64 `json:"rejected"`
	Escalated uint64 `json:"escalated"`
}

// ActorActivity is one reviewer's decision count over the report window
type ActorActivity struct {
	ActorID   string `json:"actor_id"`
	Decisions uint64 `json:"decisions"`
}

// ReasonCount is one rejection category's frequency
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  uint64 `json:"count"`
}

// DecisionReport aggregates moderation activity for the admin dashboard
type DecisionReport struct {
	Days          int              `json:"days"`
	TotalDecided  uint64           `json:"total_decided"`
	Daily         []DailyDecisions `json:"daily"`
	TopActors     []ActorActivity  `json:"top_actors"`
	RejectReasons []ReasonCount    `json:"reject_reasons"`
}
