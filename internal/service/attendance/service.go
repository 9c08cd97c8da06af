package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

type AttendanceServiceImpl struct {
	attendance.Ledger
	employee.RosterRepository
	policies policy.Provider
	loc      *time.Location
	now      func() time.Time
}

// RecordPunch implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RecordPunch(ctx context.Context, req attendance.PunchRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	emp, err := a.RosterRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if emp.EmploymentStatus != employee.EmploymentStatusActive {
		return attendance.RecordResponse{}, employee.ErrEmployeeInactive
	}

	ts := a.now()
	if parsed := req.ParsedTimestamp(); parsed != nil {
		ts = *parsed
	}
	ts = ts.UTC()
	date := utils.DateOf(ts, a.loc)

	rec := attendance.Record{
		EmployeeID:   emp.ID,
		Date:         date,
		Type:         attendance.RecordType(req.Type),
		Outcome:      attendance.Outcome(req.Outcome),
		Timestamp:    ts,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		EarnedAmount: decimal.Zero,
	}

	// Failed attempts are kept as traces but never classified.
	if rec.Outcome == attendance.OutcomeSuccess {
		switch rec.Type {
		case attendance.TypeCheckIn:
			err = a.classifyCheckIn(ctx, &rec, emp)
		case attendance.TypeCheckOut:
			err = a.classifyCheckOut(ctx, &rec)
		default:
			err = attendance.ErrInvalidPunchType
		}
		if err != nil {
			return attendance.RecordResponse{}, err
		}
	}

	saved, err := a.Ledger.InsertPunch(ctx, rec)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to record punch: %w", err)
	}

	slog.Info("punch recorded",
		"employee_id", saved.EmployeeID,
		"date", utils.FormatDate(saved.Date),
		"type", saved.Type,
		"outcome", saved.Outcome,
		"is_late", saved.IsLate,
	)
	return attendance.ToResponse(saved), nil
}

func (a *AttendanceServiceImpl) classifyCheckIn(ctx context.Context, rec *attendance.Record, emp employee.Employee) error {
	p, err := a.policies.Current(ctx)
	if err != nil {
		return err
	}

	c := Classify(&rec.Timestamp, nil, rec.Date, p, a.loc)
	rec.IsLate = c.IsLate
	rec.LateMinutes = c.LateMinutes
	rec.PolicyID = &p.ID
	rec.EarnedAmount = emp.DailyRate
	return nil
}

// classifyCheckOut measures the day against the policy the check-in was stored under.
func (a *AttendanceServiceImpl) classifyCheckOut(ctx context.Context, rec *attendance.Record) error {
	records, err := a.Ledger.FetchAttendance(ctx, rec.Date, rec.Date, &rec.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to fetch attendance for check-out: %w", err)
	}

	var checkIn *attendance.Record
	for i := range records {
		if records[i].IsSuccessCheckIn() {
			checkIn = &records[i]
			break
		}
	}
	if checkIn == nil {
		return attendance.ErrCheckInRequired
	}

	var p policy.WorkHoursPolicy
	if checkIn.PolicyID != nil {
		p, err = a.policies.ByID(ctx, *checkIn.PolicyID)
	} else {
		p, err = a.policies.Current(ctx)
	}
	if err != nil {
		return err
	}

	c := Classify(&checkIn.Timestamp, &rec.Timestamp, rec.Date, p, a.loc)
	rec.IsEarlyLeave = c.IsEarlyLeave
	rec.EarlyLeaveMinutes = c.EarlyLeaveMinutes
	rec.WorkHours = c.WorkHours
	rec.OvertimeHours = c.OvertimeHours
	rec.PolicyID = &p.ID
	return nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.Ledger.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.ToResponse(rec))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

func NewAttendanceService(
	ledger attendance.Ledger,
	rosterRepo employee.RosterRepository,
	policies policy.Provider,
	loc *time.Location,
	now func() time.Time,
) attendance.AttendanceService {
	if now == nil {
		now = time.Now
	}
	return &AttendanceServiceImpl{
		Ledger:           ledger,
		RosterRepository: rosterRepo,
		policies:         policies,
		loc:              loc,
		now:              now,
	}
}
