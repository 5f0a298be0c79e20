// Package persistence implements the PostgreSQL decision audit log.
package persistence

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"brain_server/core/domain"
)

// DecisionLogAdapter implements domain.DecisionLog. Every classified message
// leaves one append-only row; nothing updates or deletes rows from the
// application side.
type DecisionLogAdapter struct {
	db *sqlx.DB
}

// NewDecisionLogAdapter creates a new DecisionLogAdapter.
func NewDecisionLogAdapter(db *sqlx.DB) *DecisionLogAdapter {
	return &DecisionLogAdapter{db: db}
}

// Ensure DecisionLogAdapter implements DecisionLog
var _ domain.DecisionLog = (*DecisionLogAdapter)(nil)

// EnsureSchema creates the audit table if it does not exist.
func (a *DecisionLogAdapter) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS decision_log (
			id                TEXT PRIMARY KEY,
			company_id        TEXT NOT NULL,
			platform          TEXT NOT NULL,
			user_id           TEXT NOT NULL,
			message           TEXT NOT NULL,
			mood              TEXT NOT NULL,
			emotional_state   TEXT NOT NULL,
			intent            TEXT NOT NULL,
			operator_required BOOLEAN NOT NULL DEFAULT FALSE,
			risk_level        TEXT NOT NULL,
			risk_score        INT NOT NULL DEFAULT 0,
			tone              TEXT NOT NULL,
			response_length   TEXT NOT NULL,
			sales_mode        TEXT NOT NULL,
			next_action       TEXT NOT NULL,
			confidence        DOUBLE PRECISION NOT NULL,
			detail            JSONB,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_decision_log_customer
			ON decision_log (company_id, platform, user_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_decision_log_operator
			ON decision_log (company_id, operator_required, created_at DESC);
	`
	_, err := a.db.ExecContext(ctx, schema)
	return err
}

// Append writes one decision row.
func (a *DecisionLogAdapter) Append(ctx context.Context, companyID, platform, userID, message string, d *domain.DecisionRecord) error {
	detail, err := json.Marshal(d)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO decision_log (
			id, company_id, platform, user_id, message,
			mood, emotional_state, intent, operator_required,
			risk_level, risk_score, tone, response_length,
			sales_mode, next_action, confidence, detail, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16, $17, $18
		)
	`

	_, err = a.db.ExecContext(
		ctx, query,
		d.ID, companyID, platform, userID, message,
		d.Mood, d.EmotionalState, d.Intent, d.OperatorRequired,
		d.RiskLevel, d.RiskScore, d.Tone, d.ResponseLength,
		d.SalesMode, d.NextAction, d.Confidence, detail, d.CreatedAt,
	)
	return err
}

// ListRecent returns the latest decisions for one customer, newest first.
func (a *DecisionLogAdapter) ListRecent(ctx context.Context, companyID, platform, userID string, limit int) ([]*domain.DecisionRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT detail
		FROM decision_log
		WHERE company_id = $1 AND platform = $2 AND user_id = $3
		ORDER BY created_at DESC
		LIMIT $4
	`

	rows, err := a.db.QueryxContext(ctx, query, companyID, platform, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.DecisionRecord
	for rows.Next() {
		var detail []byte
		if err := rows.Scan(&detail); err != nil {
			return nil, err
		}
		var record domain.DecisionRecord
		if err := json.Unmarshal(detail, &record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}
