package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-automation/internal/automation"
	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

// TicketRepository is the engine-side adapter for the ticket-management
// collaborator: a consistent snapshot read and a transactional mutation
// write with optimistic concurrency. It satisfies automation.TicketStore.
type TicketRepository interface {
	GetSnapshot(ctx context.Context, ticketID string) (*domain.TicketSnapshot, error)
	ApplyMutation(ctx context.Context, intent *domain.MutationIntent) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) GetSnapshot(ctx context.Context, ticketID string) (*domain.TicketSnapshot, error) {
	const query = `
        SELECT id, subject, description, status, priority, channel, team_id, assignee_id,
               category_id, requester_id, tags, custom_fields, version, created_at, updated_at
        FROM tickets WHERE id=$1`
	var snapshot domain.TicketSnapshot
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&snapshot.ID,
		&snapshot.Subject,
		&snapshot.Description,
		&snapshot.Status,
		&snapshot.Priority,
		&snapshot.Channel,
		&snapshot.TeamID,
		&snapshot.AssigneeID,
		&snapshot.CategoryID,
		&snapshot.RequesterID,
		&snapshot.Tags,
		&snapshot.CustomFieldValues,
		&snapshot.Version,
		&snapshot.CreatedAt,
		&snapshot.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// mutationColumns whitelists the ticket columns an intent may target.
var mutationColumns = map[domain.MutationField]string{
	domain.MutationTeam:     "team_id",
	domain.MutationAssignee: "assignee_id",
	domain.MutationPriority: "priority",
	domain.MutationStatus:   "status",
}

// ApplyMutation applies one field change under the row's version check.
// A version mismatch on an existing row reports automation.ErrConflict,
// which the dispatcher treats as retryable.
func (r *ticketRepository) ApplyMutation(ctx context.Context, intent *domain.MutationIntent) error {
	column, ok := mutationColumns[intent.Field]
	if !ok {
		return fmt.Errorf("unsupported mutation field %q", intent.Field)
	}

	query := fmt.Sprintf(
		`UPDATE tickets SET %s=$1, version=version+1, updated_at=NOW() WHERE id=$2 AND version=$3`,
		column)
	cmd, err := r.pool.Exec(ctx, query, intent.Value, intent.TicketID, intent.ExpectedVersion)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`, intent.TicketID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return fmt.Errorf("ticket %s version %d: %w", intent.TicketID, intent.ExpectedVersion, automation.ErrConflict)
}

// IsConflict reports whether err is the optimistic-concurrency conflict.
func IsConflict(err error) bool {
	return errors.Is(err, automation.ErrConflict)
}
