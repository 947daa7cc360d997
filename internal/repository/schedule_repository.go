package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-automation/internal/domain"
)

// ScheduleRepository stores the single global business-hours schedule,
// versioned by edit time. Readers always get the version in effect now.
type ScheduleRepository interface {
	Get(ctx context.Context) (*domain.BusinessHoursSchedule, error)
	Save(ctx context.Context, schedule *domain.BusinessHoursSchedule) error
}

type scheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository constructs repository.
func NewScheduleRepository(pool *pgxpool.Pool) ScheduleRepository {
	return &scheduleRepository{pool: pool}
}

// The schedule lives in a single row keyed by id=1; Save overwrites it.
func (r *scheduleRepository) Get(ctx context.Context) (*domain.BusinessHoursSchedule, error) {
	const query = `SELECT schedule, updated_at FROM business_hours WHERE id=1`
	var schedule domain.BusinessHoursSchedule
	if err := r.pool.QueryRow(ctx, query).Scan(&schedule, &schedule.UpdatedAt); err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepository) Save(ctx context.Context, schedule *domain.BusinessHoursSchedule) error {
	const query = `
        INSERT INTO business_hours (id, schedule) VALUES (1, $1)
        ON CONFLICT (id) DO UPDATE SET schedule=EXCLUDED.schedule, updated_at=NOW()
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, schedule).Scan(&schedule.UpdatedAt)
}
