package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

// AuditRepository stores automation execution records. Writes are
// best-effort from the engine's perspective; this repository itself is an
// ordinary transactional insert.
type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AutomationAudit) error
	ListByTicket(ctx context.Context, ticketID string, limit int) ([]domain.AutomationAudit, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository builds repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Record(ctx context.Context, entry *domain.AutomationAudit) error {
	const query = `
        INSERT INTO automation_audit (ticket_id, rule_id, trigger, outcome, detail)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.RuleID,
		entry.Trigger,
		entry.Outcome,
		entry.Detail,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) ListByTicket(ctx context.Context, ticketID string, limit int) ([]domain.AutomationAudit, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
        SELECT id, ticket_id, rule_id, trigger, outcome, detail, created_at
        FROM automation_audit WHERE ticket_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, ticketID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AutomationAudit
	for rows.Next() {
		var entry domain.AutomationAudit
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.RuleID,
			&entry.Trigger,
			&entry.Outcome,
			&entry.Detail,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
