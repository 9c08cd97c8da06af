package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const policyColumns = `
	id, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
	late_threshold_minutes, early_leave_threshold_minutes, break_duration_minutes, updated_at`

type policyRepositoryImpl struct {
	db *database.DB
}

func NewPolicyRepository(db *database.DB) policy.PolicyRepository {
	return &policyRepositoryImpl{db: db}
}

func scanPolicy(row pgx.Row) (policy.WorkHoursPolicy, error) {
	var (
		p          policy.WorkHoursPolicy
		start, end string
	)
	err := row.Scan(&p.ID, &start, &end,
		&p.LateThresholdMinutes, &p.EarlyLeaveThresholdMinutes, &p.BreakDurationMinutes, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return policy.WorkHoursPolicy{}, policy.ErrPolicyNotFound
		}
		return policy.WorkHoursPolicy{}, fmt.Errorf("failed to read work hours policy: %w", err)
	}

	if p.StartTime, err = policy.ParseTimeOfDay(start); err != nil {
		return policy.WorkHoursPolicy{}, err
	}
	if p.EndTime, err = policy.ParseTimeOfDay(end); err != nil {
		return policy.WorkHoursPolicy{}, err
	}
	return p, nil
}

// Get implements policy.PolicyRepository.
func (r *policyRepositoryImpl) Get(ctx context.Context) (policy.WorkHoursPolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + policyColumns + `
		FROM work_hours_policies
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`
	return scanPolicy(q.QueryRow(ctx, query))
}

// GetEffectiveAt implements policy.PolicyRepository.
func (r *policyRepositoryImpl) GetEffectiveAt(ctx context.Context, at time.Time) (policy.WorkHoursPolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + policyColumns + `
		FROM work_hours_policies
		WHERE updated_at <= $1
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`
	return scanPolicy(q.QueryRow(ctx, query, at))
}

// GetByID implements policy.PolicyRepository.
func (r *policyRepositoryImpl) GetByID(ctx context.Context, id string) (policy.WorkHoursPolicy, error) {
	if _, err := uuid.Parse(id); err != nil {
		return policy.WorkHoursPolicy{}, policy.ErrPolicyNotFound
	}

	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + policyColumns + `
		FROM work_hours_policies
		WHERE id = $1`
	return scanPolicy(q.QueryRow(ctx, query, id))
}

// Set implements policy.PolicyRepository. Versions are append-only.
func (r *policyRepositoryImpl) Set(ctx context.Context, p policy.WorkHoursPolicy) (policy.WorkHoursPolicy, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return policy.WorkHoursPolicy{}, fmt.Errorf("failed to generate policy id: %w", err)
	}

	query := `
		INSERT INTO work_hours_policies (
			id, start_time, end_time,
			late_threshold_minutes, early_leave_threshold_minutes, break_duration_minutes, updated_at
		) VALUES ($1, $2::time, $3::time, $4, $5, $6, NOW())
		RETURNING ` + policyColumns
	stored, err := scanPolicy(q.QueryRow(ctx, query,
		id.String(), p.StartTime.String(), p.EndTime.String(),
		p.LateThresholdMinutes, p.EarlyLeaveThresholdMinutes, p.BreakDurationMinutes,
	))
	if err != nil {
		return policy.WorkHoursPolicy{}, fmt.Errorf("failed to insert work hours policy: %w", err)
	}
	return stored, nil
}
