package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

const slaInstanceColumns = `
        ticket_id, first_response_due_at, first_response_at, resolution_due_at, completed_at,
        sla_paused_at, paused_duration_ms, first_response_at_risk_notified_at,
        resolution_at_risk_notified_at, first_response_breach_notified_at,
        resolution_breach_notified_at, created_at, updated_at`

// SlaInstanceRepository persists per-ticket SLA state. ListOpen feeds the
// periodic threshold sweep: instances with at least one unmet sub-clock.
type SlaInstanceRepository interface {
	Create(ctx context.Context, instance *domain.SlaInstance) error
	Update(ctx context.Context, instance *domain.SlaInstance) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.SlaInstance, error)
	ListOpen(ctx context.Context, limit int) ([]domain.SlaInstance, error)
}

type slaInstanceRepository struct {
	pool *pgxpool.Pool
}

// NewSlaInstanceRepository constructs repository.
func NewSlaInstanceRepository(pool *pgxpool.Pool) SlaInstanceRepository {
	return &slaInstanceRepository{pool: pool}
}

func (r *slaInstanceRepository) Create(ctx context.Context, instance *domain.SlaInstance) error {
	const query = `
        INSERT INTO sla_instances (ticket_id, first_response_due_at, resolution_due_at, created_at)
        VALUES ($1,$2,$3,$4)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		instance.TicketID,
		instance.FirstResponseDueAt,
		instance.ResolutionDueAt,
		instance.CreatedAt,
	).Scan(&instance.CreatedAt, &instance.UpdatedAt)
}

func (r *slaInstanceRepository) Update(ctx context.Context, instance *domain.SlaInstance) error {
	const query = `
        UPDATE sla_instances SET
            first_response_due_at=$1, first_response_at=$2, resolution_due_at=$3, completed_at=$4,
            sla_paused_at=$5, paused_duration_ms=$6, first_response_at_risk_notified_at=$7,
            resolution_at_risk_notified_at=$8, first_response_breach_notified_at=$9,
            resolution_breach_notified_at=$10, updated_at=NOW()
        WHERE ticket_id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		instance.FirstResponseDueAt,
		instance.FirstResponseAt,
		instance.ResolutionDueAt,
		instance.CompletedAt,
		instance.SlaPausedAt,
		instance.PausedDurationMs,
		instance.FirstResponseAtRiskNotifiedAt,
		instance.ResolutionAtRiskNotifiedAt,
		instance.FirstResponseBreachNotifiedAt,
		instance.ResolutionBreachNotifiedAt,
		instance.TicketID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slaInstanceRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.SlaInstance, error) {
	query := `SELECT ` + slaInstanceColumns + ` FROM sla_instances WHERE ticket_id=$1`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}
	instance, err := scanSlaInstance(rows)
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func (r *slaInstanceRepository) ListOpen(ctx context.Context, limit int) ([]domain.SlaInstance, error) {
	if limit <= 0 {
		limit = 500
	}
	query := `SELECT ` + slaInstanceColumns + `
        FROM sla_instances
        WHERE first_response_at IS NULL OR completed_at IS NULL
        ORDER BY created_at ASC
        LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SlaInstance
	for rows.Next() {
		instance, err := scanSlaInstance(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *instance)
	}
	return result, rows.Err()
}

func scanSlaInstance(rows pgx.Rows) (*domain.SlaInstance, error) {
	var instance domain.SlaInstance
	if err := rows.Scan(
		&instance.TicketID,
		&instance.FirstResponseDueAt,
		&instance.FirstResponseAt,
		&instance.ResolutionDueAt,
		&instance.CompletedAt,
		&instance.SlaPausedAt,
		&instance.PausedDurationMs,
		&instance.FirstResponseAtRiskNotifiedAt,
		&instance.ResolutionAtRiskNotifiedAt,
		&instance.FirstResponseBreachNotifiedAt,
		&instance.ResolutionBreachNotifiedAt,
		&instance.CreatedAt,
		&instance.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &instance, nil
}
