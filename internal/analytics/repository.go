package analytics

import (
	"context"
	"fmt"

	"github.com/sgsgita/moderation-backend/internal/domain"
)

// Repository writes decision events to ClickHouse and serves the admin
// aggregates. Writes are async: losing an analytics row on a crash is
// acceptable, the durable truth lives in the history table.
type Repository struct {
	ch *ClickHouseClient
}

// NewRepository creates a new analytics Repository
func NewRepository(ch *ClickHouseClient) *Repository {
	return &Repository{ch: ch}
}

// EnsureSchema creates the decision_events table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	return r.ch.Exec(ctx, `CREATE TABLE IF NOT EXISTS decision_events (
		queue_item_id UInt64,
		posting_uid String,
		posting_type LowCardinality(String),
		from_state LowCardinality(String),
		to_state LowCardinality(String),
		action LowCardinality(String),
		actor_id String,
		actor_role LowCardinality(String),
		resulting_version UInt64,
		reason String,
		occurred_at DateTime,
		date_partition Date DEFAULT toDate(occurred_at)
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(date_partition)
	ORDER BY (occurred_at, queue_item_id)`)
}

// RecordTransition inserts one decision event
func (r *Repository) RecordTransition(ctx context.Context, event *domain.TransitionEvent) error {
	return r.ch.AsyncInsert(ctx, `INSERT INTO decision_events
		(queue_item_id, posting_uid, posting_type, from_state, to_state, action, actor_id, actor_role, resulting_version, reason, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.QueueItemID,
		event.PostingUID,
		event.PostingType,
		string(event.FromState),
		string(event.ToState),
		string(event.Action),
		event.ActorID,
		string(event.ActorRole),
		event.ResultingVersion,
		event.Reason,
		event.OccurredAt,
	)
}

// DecisionReport aggregates the last N days of moderation activity
func (r *Repository) DecisionReport(ctx context.Context, days int) (*DecisionReport, error) {
	report := &DecisionReport{Days: days}

	var total uint64
	row := r.ch.QueryRow(ctx, `SELECT countIf(action IN ('approve', 'reject'))
		FROM decision_events
		WHERE date_partition >= today() - ?`, days)
	if err := row.Scan(&total); err != nil {
		return nil, fmt.Errorf("total query failed: %w", err)
	}
	report.TotalDecided = total

	rows, err := r.ch.Query(ctx, `SELECT toString(date_partition) as day,
		countIf(action = 'approve') as approved,
		countIf(action = 'reject') as rejected,
		countIf(action = 'escalate') as escalated
		FROM decision_events
		WHERE date_partition >= today() - ?
		GROUP BY date_partition ORDER BY date_partition ASC`, days)
	if err != nil {
		return nil, fmt.Errorf("daily query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d DailyDecisions
		if err := rows.Scan(&d.Date, &d.Approved, &d.Rejected, &d.Escalated); err != nil {
			return nil, fmt.Errorf("daily scan failed: %w", err)
		}
		report.Daily = append(report.Daily, d)
	}

	actorRows, err := r.ch.Query(ctx, `SELECT actor_id, count() as decisions
		FROM decision_events
		WHERE date_partition >= today() - ? AND action IN ('approve', 'reject')
		GROUP BY actor_id ORDER BY decisions DESC LIMIT 10`, days)
	if err != nil {
		return nil, fmt.Errorf("actor query failed: %w", err)
	}
	defer actorRows.Close()

	for actorRows.Next() {
		var a ActorActivity
		if err := actorRows.Scan(&a.ActorID, &a.Decisions); err != nil {
			return nil, fmt.Errorf("actor scan failed: %w", err)
		}
		report.TopActors = append(report.TopActors, a)
	}

	reasonRows, err := r.ch.Query(ctx, `SELECT reason, count() as cnt
		FROM decision_events
		WHERE date_partition >= today() - ? AND action = 'reject' AND reason != ''
		GROUP BY reason ORDER BY cnt DESC`, days)
	if err != nil {
		return nil, fmt.Errorf("reason query failed: %w", err)
	}
	defer reasonRows.Close()

	for reasonRows.Next() {
		var rc ReasonCount
		if err := reasonRows.Scan(&rc.Reason, &rc.Count); err != nil {
			return nil, fmt.Errorf("reason scan failed: %w", err)
		}
		report.RejectReasons = append(report.RejectReasons, rc)
	}

	return report, nil
}
