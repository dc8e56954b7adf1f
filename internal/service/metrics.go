package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var transitionAcceptedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_transitions_accepted_total",
	Help: "Number of accepted queue item transitions",
}, []string{"action", "to_state", "actor_role"})

var transitionRefusedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_transitions_refused_total",
	Help: "Number of refused transition attempts, by refusal kind",
}, []string{"kind"})

var enqueuedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_items_enqueued_total",
	Help: "Number of postings accepted into the review queue",
}, []string{"posting_type"})

// Refusal kinds for transitionRefusedCount
const (
	refusalInvalidPayload    = "invalid_payload"
	refusalNotFound          = "not_found"
	refusalTerminalState     = "terminal_state"
	refusalIllegalTransition = "illegal_transition"
	refusalRoleDenied        = "role_denied"
	refusalVersionConflict   = "version_conflict"
)
