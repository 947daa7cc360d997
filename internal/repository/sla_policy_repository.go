package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

// SlaPolicyRepository resolves response/resolution targets. Lookup falls
// back to the platform default (team_id NULL) when the team has no
// explicit policy for the priority.
type SlaPolicyRepository interface {
	Upsert(ctx context.Context, policy *domain.SlaPolicy) error
	GetForTicket(ctx context.Context, teamID *string, priority domain.TicketPriority) (*domain.SlaPolicy, error)
	List(ctx context.Context) ([]domain.SlaPolicy, error)
}

type slaPolicyRepository struct {
	pool *pgxpool.Pool
}

// NewSlaPolicyRepository constructs repository.
func NewSlaPolicyRepository(pool *pgxpool.Pool) SlaPolicyRepository {
	return &slaPolicyRepository{pool: pool}
}

func (r *slaPolicyRepository) Upsert(ctx context.Context, policy *domain.SlaPolicy) error {
	const query = `
        INSERT INTO sla_policies (team_id, priority, first_response_hours, resolution_hours, business_hours_only)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT ((COALESCE(team_id, '')), priority)
        DO UPDATE SET first_response_hours=EXCLUDED.first_response_hours,
                      resolution_hours=EXCLUDED.resolution_hours,
                      business_hours_only=EXCLUDED.business_hours_only,
                      updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		policy.TeamID,
		policy.Priority,
		policy.FirstResponseHours,
		policy.ResolutionHours,
		policy.BusinessHoursOnly,
	).Scan(&policy.ID, &policy.CreatedAt, &policy.UpdatedAt)
}

func (r *slaPolicyRepository) GetForTicket(ctx context.Context, teamID *string, priority domain.TicketPriority) (*domain.SlaPolicy, error) {
	if teamID != nil {
		policy, err := r.getOne(ctx, teamID, priority)
		if err == nil {
			return policy, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	return r.getOne(ctx, nil, priority)
}

func (r *slaPolicyRepository) getOne(ctx context.Context, teamID *string, priority domain.TicketPriority) (*domain.SlaPolicy, error) {
	const query = `
        SELECT id, team_id, priority, first_response_hours, resolution_hours, business_hours_only, created_at, updated_at
        FROM sla_policies
        WHERE priority=$2 AND ((team_id IS NULL AND $1::text IS NULL) OR team_id=$1)`
	var policy domain.SlaPolicy
	if err := r.pool.QueryRow(ctx, query, teamID, priority).Scan(
		&policy.ID,
		&policy.TeamID,
		&policy.Priority,
		&policy.FirstResponseHours,
		&policy.ResolutionHours,
		&policy.BusinessHoursOnly,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *slaPolicyRepository) List(ctx context.Context) ([]domain.SlaPolicy, error) {
	const query = `
        SELECT id, team_id, priority, first_response_hours, resolution_hours, business_hours_only, created_at, updated_at
        FROM sla_policies ORDER BY team_id NULLS FIRST, priority`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SlaPolicy
	for rows.Next() {
		var policy domain.SlaPolicy
		if err := rows.Scan(
			&policy.ID,
			&policy.TeamID,
			&policy.Priority,
			&policy.FirstResponseHours,
			&policy.ResolutionHours,
			&policy.BusinessHoursOnly,
			&policy.CreatedAt,
			&policy.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, policy)
	}
	return result, rows.Err()
}
