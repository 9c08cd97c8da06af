package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const recordColumns = `
	id, employee_id, date, type, outcome, timestamp,
	is_late, late_minutes, is_early_leave, early_leave_minutes,
	work_hours, overtime_hours, latitude, longitude, policy_id,
	earned_amount, created_at`

type ledgerRepository struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) attendance.Ledger {
	return &ledgerRepository{db: db}
}

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Date, &rec.Type, &rec.Outcome, &rec.Timestamp,
		&rec.IsLate, &rec.LateMinutes, &rec.IsEarlyLeave, &rec.EarlyLeaveMinutes,
		&rec.WorkHours, &rec.OvertimeHours, &rec.Latitude, &rec.Longitude, &rec.PolicyID,
		&rec.EarnedAmount, &rec.CreatedAt,
	)
	return rec, err
}

func collectRecords(rows pgx.Rows) ([]attendance.Record, error) {
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance records: %w", err)
	}
	return records, nil
}

// FetchAttendance implements attendance.Ledger.
func (r *ledgerRepository) FetchAttendance(ctx context.Context, from, to time.Time, employeeID *string) ([]attendance.Record, error) {
	// No row can match an id that is not a uuid.
	if employeeID != nil && uuid.Validate(*employeeID) != nil {
		return nil, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE date BETWEEN $1::date AND $2::date`
	args := []interface{}{utils.FormatDate(from), utils.FormatDate(to)}
	if employeeID != nil {
		query += ` AND employee_id = $3`
		args = append(args, *employeeID)
	}
	query += ` ORDER BY timestamp ASC, id ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attendance between %s and %s: %w",
			utils.FormatDate(from), utils.FormatDate(to), err)
	}
	return collectRecords(rows)
}

// lockEmployeeDay serialises writers of one employee-day until tx ends.
func lockEmployeeDay(ctx context.Context, tx pgx.Tx, employeeID string, date time.Time) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text || ':' || $2::text))`,
		employeeID, utils.FormatDate(date))
	if err != nil {
		return fmt.Errorf("failed to lock employee day: %w", err)
	}
	return nil
}

// InsertAbsenceIfMissing implements attendance.Ledger.
func (r *ledgerRepository) InsertAbsenceIfMissing(ctx context.Context, rec attendance.Record) (bool, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("failed to generate record id: %w", err)
	}

	var inserted bool
	err = WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockEmployeeDay(ctx, tx, rec.EmployeeID, rec.Date); err != nil {
			return err
		}

		query := `
			INSERT INTO attendance_records (id, employee_id, date, type, outcome, timestamp, policy_id, earned_amount)
			SELECT $1::uuid, $2::uuid, $3::date, 'absent', 'absent', $4::timestamptz, $5::uuid, 0
			WHERE NOT EXISTS (
				SELECT 1 FROM attendance_records WHERE employee_id = $2::uuid AND date = $3::date
			)
			ON CONFLICT DO NOTHING`
		tag, err := tx.Exec(ctx, query, id.String(), rec.EmployeeID, utils.FormatDate(rec.Date), rec.Timestamp, rec.PolicyID)
		if err != nil {
			return fmt.Errorf("failed to insert absence for employee %s: %w", rec.EmployeeID, err)
		}
		inserted = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// InsertPunch implements attendance.Ledger.
func (r *ledgerRepository) InsertPunch(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to generate record id: %w", err)
	}
	rec.ID = id.String()

	var stored attendance.Record
	err = WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockEmployeeDay(ctx, tx, rec.EmployeeID, rec.Date); err != nil {
			return err
		}

		if rec.Outcome == attendance.OutcomeSuccess {
			if err := checkPunchAllowed(ctx, tx, rec); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO attendance_records (
				id, employee_id, date, type, outcome, timestamp,
				is_late, late_minutes, is_early_leave, early_leave_minutes,
				work_hours, overtime_hours, latitude, longitude, policy_id, earned_amount
			) VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING ` + recordColumns
		var err error
		stored, err = scanRecord(tx.QueryRow(ctx, query,
			rec.ID, rec.EmployeeID, utils.FormatDate(rec.Date), rec.Type, rec.Outcome, rec.Timestamp,
			rec.IsLate, rec.LateMinutes, rec.IsEarlyLeave, rec.EarlyLeaveMinutes,
			rec.WorkHours, rec.OvertimeHours, rec.Latitude, rec.Longitude, rec.PolicyID, rec.EarnedAmount,
		))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return attendance.ErrDuplicatePunch
			}
			return fmt.Errorf("failed to insert %s for employee %s: %w", rec.Type, rec.EmployeeID, err)
		}
		return nil
	})
	if err != nil {
		return attendance.Record{}, err
	}
	return stored, nil
}

func checkPunchAllowed(ctx context.Context, tx pgx.Tx, rec attendance.Record) error {
	query := `
		SELECT
			COALESCE(BOOL_OR(type = 'absent'), FALSE),
			COALESCE(BOOL_OR(type = 'check_in' AND outcome = 'success'), FALSE),
			COALESCE(BOOL_OR(type = 'check_out' AND outcome = 'success'), FALSE)
		FROM attendance_records
		WHERE employee_id = $1 AND date = $2::date`
	var hasAbsent, hasIn, hasOut bool
	if err := tx.QueryRow(ctx, query, rec.EmployeeID, utils.FormatDate(rec.Date)).Scan(&hasAbsent, &hasIn, &hasOut); err != nil {
		return fmt.Errorf("failed to read employee day: %w", err)
	}

	switch rec.Type {
	case attendance.TypeCheckIn:
		if hasAbsent {
			return attendance.ErrAbsenceRecorded
		}
		if hasIn {
			return attendance.ErrDuplicatePunch
		}
	case attendance.TypeCheckOut:
		if !hasIn {
			return attendance.ErrCheckInRequired
		}
		if hasOut {
			return attendance.ErrDuplicatePunch
		}
	}
	return nil
}

// List implements attendance.Ledger.
func (r *ledgerRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	if filter.EmployeeID != nil && *filter.EmployeeID != "" && uuid.Validate(*filter.EmployeeID) != nil {
		return nil, 0, nil
	}

	q := GetQuerier(ctx, r.db)

	baseWhere := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	if filter.Type != nil && *filter.Type != "" {
		baseWhere += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND date = $%d::date", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}

	// Date range filters
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND date >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND date <= $%d::date", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM attendance_records WHERE "+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	selectQuery := fmt.Sprintf(`SELECT %s
		FROM attendance_records
		WHERE %s
		ORDER BY timestamp DESC, id DESC
		LIMIT $%d OFFSET $%d`, recordColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	records, err := collectRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// FindAbsenceConflicts implements attendance.Ledger.
func (r *ledgerRepository) FindAbsenceConflicts(ctx context.Context, from, to time.Time) ([]attendance.Conflict, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.employee_id, a.date
		FROM attendance_records a
		WHERE a.type = 'absent'
			AND a.date BETWEEN $1::date AND $2::date
			AND EXISTS (
				SELECT 1 FROM attendance_records c
				WHERE c.employee_id = a.employee_id
					AND c.date = a.date
					AND c.type = 'check_in'
					AND c.outcome = 'success'
			)
		ORDER BY a.date, a.employee_id`

	rows, err := q.Query(ctx, query, utils.FormatDate(from), utils.FormatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query absence conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []attendance.Conflict
	for rows.Next() {
		var c attendance.Conflict
		if err := rows.Scan(&c.EmployeeID, &c.Date); err != nil {
			return nil, fmt.Errorf("failed to scan absence conflict: %w", err)
		}
		conflicts = append(conflicts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating absence conflicts: %w", err)
	}
	return conflicts, nil
}
