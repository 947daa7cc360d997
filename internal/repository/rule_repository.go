package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

// RuleRepository manages persistence for automation rules. The engine
// only reads; writes come from the admin API.
type RuleRepository interface {
	Create(ctx context.Context, rule *domain.AutomationRule) error
	Update(ctx context.Context, rule *domain.AutomationRule) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.AutomationRule, error)
	List(ctx context.Context) ([]domain.AutomationRule, error)
	ListByTrigger(ctx context.Context, trigger domain.TriggerType) ([]domain.AutomationRule, error)
}

type ruleRepository struct {
	pool *pgxpool.Pool
}

// NewRuleRepository constructs repository.
func NewRuleRepository(pool *pgxpool.Pool) RuleRepository {
	return &ruleRepository{pool: pool}
}

func (r *ruleRepository) Create(ctx context.Context, rule *domain.AutomationRule) error {
	const query = `
        INSERT INTO automation_rules (name, trigger, condition_tree, actions, priority, is_active, team_scope)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		rule.Name,
		rule.Trigger,
		rule.ConditionTree,
		rule.Actions,
		rule.Priority,
		rule.IsActive,
		rule.TeamScope,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func (r *ruleRepository) Update(ctx context.Context, rule *domain.AutomationRule) error {
	const query = `
        UPDATE automation_rules SET name=$1, trigger=$2, condition_tree=$3, actions=$4,
            priority=$5, is_active=$6, team_scope=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		rule.Name,
		rule.Trigger,
		rule.ConditionTree,
		rule.Actions,
		rule.Priority,
		rule.IsActive,
		rule.TeamScope,
		rule.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ruleRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM automation_rules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ruleRepository) GetByID(ctx context.Context, id string) (*domain.AutomationRule, error) {
	const query = `
        SELECT id, name, trigger, condition_tree, actions, priority, is_active, team_scope, created_at, updated_at
        FROM automation_rules WHERE id=$1`
	var rule domain.AutomationRule
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&rule.ID,
		&rule.Name,
		&rule.Trigger,
		&rule.ConditionTree,
		&rule.Actions,
		&rule.Priority,
		&rule.IsActive,
		&rule.TeamScope,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepository) List(ctx context.Context) ([]domain.AutomationRule, error) {
	const query = `
        SELECT id, name, trigger, condition_tree, actions, priority, is_active, team_scope, created_at, updated_at
        FROM automation_rules ORDER BY priority ASC, created_at ASC`
	return r.queryRules(ctx, query)
}

func (r *ruleRepository) ListByTrigger(ctx context.Context, trigger domain.TriggerType) ([]domain.AutomationRule, error) {
	const query = `
        SELECT id, name, trigger, condition_tree, actions, priority, is_active, team_scope, created_at, updated_at
        FROM automation_rules WHERE trigger=$1 AND is_active=TRUE
        ORDER BY priority ASC, created_at ASC`
	return r.queryRules(ctx, query, trigger)
}

func (r *ruleRepository) queryRules(ctx context.Context, query string, args ...any) ([]domain.AutomationRule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AutomationRule
	for rows.Next() {
		var rule domain.AutomationRule
		if err := rows.Scan(
			&rule.ID,
			&rule.Name,
			&rule.Trigger,
			&rule.ConditionTree,
			&rule.Actions,
			&rule.Priority,
			&rule.IsActive,
			&rule.TeamScope,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}
