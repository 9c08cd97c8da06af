package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	calendarService "github.com/cmlabs-hris/attendance-engine/internal/service/calendar"
	dashboardService "github.com/cmlabs-hris/attendance-engine/internal/service/dashboard"
	payrollService "github.com/cmlabs-hris/attendance-engine/internal/service/payroll"
	policyService "github.com/cmlabs-hris/attendance-engine/internal/service/policy"
	reconcileService "github.com/cmlabs-hris/attendance-engine/internal/service/reconcile"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"

	adminID = "0190a001-0000-7000-8000-00000000000a"
	aliceID = "0190a001-0000-7000-8000-000000000001"
	bobID   = "0190a001-0000-7000-8000-000000000002"
	carolID = "0190a001-0000-7000-8000-000000000003"
)

var wib = time.FixedZone("WIB", 7*60*60)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type handlerTestEnv struct {
	router http.Handler
	jwt    jwt.Service
	ledger *memory.Ledger
}

// handlerTestInit wires the real services over in-memory repositories. The
// clock is frozen at Monday 2024-03-04 10:00 WIB.
func handlerTestInit(t *testing.T, records ...attendance.Record) *handlerTestEnv {
	t.Helper()

	now := func() time.Time { return time.Date(2024, 3, 4, 10, 0, 0, 0, wib) }

	ledger := memory.NewLedger(records...)
	roster := memory.NewRoster(
		employee.Employee{ID: adminID, FullName: "Admin", Role: employee.RoleAdmin, EmploymentStatus: employee.EmploymentStatusActive},
		employee.Employee{ID: aliceID, FullName: "Alice", Role: employee.RoleStaff, EmploymentStatus: employee.EmploymentStatusActive, DailyRate: decimal.NewFromInt(150000)},
		employee.Employee{ID: bobID, FullName: "Bob", Role: employee.RoleStaff, EmploymentStatus: employee.EmploymentStatusActive, DailyRate: decimal.NewFromInt(100000)},
		employee.Employee{ID: carolID, FullName: "Carol", Role: employee.RoleStaff, EmploymentStatus: employee.EmploymentStatusInactive},
	)
	policies := policyService.NewPolicyService(memory.NewPolicies(policy.Default()))
	workingDays := calendarService.NewWorkingDays(memory.NewHolidays())

	reconcileSvc := reconcileService.NewReconcileService(ledger, roster, policies, workingDays, reconcileService.Options{
		Location: wib,
		Now:      now,
	})
	jwtSvc := jwt.NewJWTService(handlerTestSecret, "1h")

	router := NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), jwtSvc, Handlers{
		Attendance: NewAttendanceHandler(attendanceService.NewAttendanceService(ledger, roster, policies, wib, now)),
		Dashboard:  NewDashboardHandler(dashboardService.NewDashboardService(ledger, roster, workingDays, wib, now)),
		Payroll:    NewPayrollHandler(payrollService.NewPayrollService(ledger, roster, workingDays, payrollService.DefaultSettings(), wib, now)),
		Policy:     NewPolicyHandler(policies),
		Reconcile:  NewReconcileHandler(reconcileSvc, reconcileService.NewSyncDispatcher(reconcileSvc, wib, now, time.Second)),
	}, RouterOptions{AllowedOrigins: []string{"*"}, LogLevel: slog.LevelDebug})

	return &handlerTestEnv{router: router, jwt: jwtSvc, ledger: ledger}
}

func (e *handlerTestEnv) token(t *testing.T, employeeID string, role employee.Role) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken(employeeID, role)
	require.NoError(t, err)
	return token
}

func (e *handlerTestEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestRouter_HealthAndAuth(t *testing.T) {
	env := handlerTestInit(t)

	rec, _ := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/policy", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, _, err := jwt.NewJWTService("another-secret", "1h").GenerateAccessToken(aliceID, employee.RoleAdmin)
	require.NoError(t, err)
	rec, _ = env.do(t, http.MethodGet, "/api/v1/policy", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := env.do(t, http.MethodGet, "/api/v1/policy", env.token(t, aliceID, employee.RoleStaff), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p policy.PolicyResponse
	decodeData(t, body, &p)
	assert.Equal(t, "08:00", p.StartTime)
	assert.Equal(t, "17:00", p.EndTime)
}

func TestRouter_RecordPunch(t *testing.T) {
	env := handlerTestInit(t)
	alice := env.token(t, aliceID, employee.RoleStaff)

	// Staff cannot punch on behalf of someone else.
	rec, body := env.do(t, http.MethodPost, "/api/v1/attendance/punches", alice, map[string]any{
		"employee_id": bobID,
		"type":        "check_in",
		"timestamp":   "2024-03-04T08:20:00+07:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var in attendance.RecordResponse
	decodeData(t, body, &in)
	assert.Equal(t, aliceID, in.EmployeeID)
	assert.Equal(t, "2024-03-04", in.Date)
	assert.True(t, in.IsLate)
	assert.Equal(t, 5, in.LateMinutes)
	assert.Equal(t, "150000.00", in.EarnedAmount)

	rec, body = env.do(t, http.MethodPost, "/api/v1/attendance/punches", alice, map[string]any{
		"type":      "check_in",
		"timestamp": "2024-03-04T08:25:00+07:00",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", body.Error.Code)

	rec, body = env.do(t, http.MethodPost, "/api/v1/attendance/punches", alice, map[string]any{
		"type":      "check_out",
		"timestamp": "2024-03-04T17:30:00+07:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out attendance.RecordResponse
	decodeData(t, body, &out)
	assert.False(t, out.IsEarlyLeave)
	assert.Equal(t, 0.5, out.OvertimeHours)
	assert.Equal(t, 8.17, out.WorkHours)

	bob := env.token(t, bobID, employee.RoleStaff)
	rec, _ = env.do(t, http.MethodPost, "/api/v1/attendance/punches", bob, map[string]any{
		"type":      "check_out",
		"timestamp": "2024-03-04T17:00:00+07:00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = env.do(t, http.MethodPost, "/api/v1/attendance/punches", bob, map[string]any{
		"type":    "lunch",
		"outcome": "maybe",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body.Error.Details, "type")
	assert.Contains(t, body.Error.Details, "outcome")

	carol := env.token(t, carolID, employee.RoleStaff)
	rec, _ = env.do(t, http.MethodPost, "/api/v1/attendance/punches", carol, map[string]any{"type": "check_in"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_AdminOnlyRoutes(t *testing.T) {
	env := handlerTestInit(t)
	alice := env.token(t, aliceID, employee.RoleStaff)

	for _, path := range []string{
		"/api/v1/attendance",
		"/api/v1/dashboard/daily-stats",
		"/api/v1/reconciliations/invariants",
	} {
		rec, _ := env.do(t, http.MethodGet, path, alice, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}

	rec, _ := env.do(t, http.MethodPost, "/api/v1/reconciliations", alice, map[string]string{"date": "2024-03-01"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = env.do(t, http.MethodPut, "/api/v1/policy", alice, map[string]any{"start_time": "09:00", "end_time": "18:00"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_EmployeeRoutesAreSelfOrAdmin(t *testing.T) {
	env := handlerTestInit(t)
	alice := env.token(t, aliceID, employee.RoleStaff)
	admin := env.token(t, adminID, employee.RoleAdmin)

	rec, _ := env.do(t, http.MethodGet, "/api/v1/employees/"+bobID+"/calendar?month=2024-03", alice, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/employees/"+aliceID+"/calendar?month=2024-03", alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/employees/"+bobID+"/payroll-estimate?month=2024-03", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/employees/0190a001-0000-7000-8000-0000000000ff/calendar", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body := env.do(t, http.MethodGet, "/api/v1/employees/"+aliceID+"/calendar?month=March", alice, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body.Error.Details, "month")
}

// Alice checked in on time on Friday 2024-03-01, Bob left no trace and Carol
// is inactive. Requesting reconciliation marks only Bob absent.
func TestRouter_ReconcileThenDailyStats(t *testing.T) {
	friday := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	env := handlerTestInit(t, attendance.Record{
		EmployeeID: aliceID,
		Date:       friday,
		Type:       attendance.TypeCheckIn,
		Outcome:    attendance.OutcomeSuccess,
		Timestamp:  time.Date(2024, 3, 1, 8, 5, 0, 0, wib),
	})
	admin := env.token(t, adminID, employee.RoleAdmin)

	rec, body := env.do(t, http.MethodPost, "/api/v1/reconciliations", admin, map[string]string{"date": "2024-03-01"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result struct {
		Status   string `json:"status"`
		Inserted *int   `json:"inserted"`
	}
	decodeData(t, body, &result)
	assert.Equal(t, "completed", result.Status)
	require.NotNil(t, result.Inserted)
	assert.Equal(t, 1, *result.Inserted)

	// A second request is a no-op.
	rec, body = env.do(t, http.MethodPost, "/api/v1/reconciliations", admin, map[string]string{"date": "2024-03-01"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, body, &result)
	assert.Equal(t, 0, *result.Inserted)

	rec, body = env.do(t, http.MethodGet, "/api/v1/dashboard/daily-stats?date=2024-03-01", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Present int64 `json:"present"`
		Late    int64 `json:"late"`
		Absent  int64 `json:"absent"`
	}
	decodeData(t, body, &stats)
	assert.Equal(t, int64(1), stats.Present)
	assert.Equal(t, int64(0), stats.Late)
	assert.Equal(t, int64(1), stats.Absent)

	rec, body = env.do(t, http.MethodGet, "/api/v1/attendance?type=absent", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list attendance.ListAttendanceResponse
	decodeData(t, body, &list)
	require.Len(t, list.Attendances, 1)
	assert.Equal(t, bobID, list.Attendances[0].EmployeeID)

	rec, body = env.do(t, http.MethodGet, "/api/v1/reconciliations/invariants?start_date=2024-03-01&end_date=2024-03-04", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report struct {
		Count int `json:"count"`
	}
	decodeData(t, body, &report)
	assert.Equal(t, 0, report.Count)
}

func TestRouter_ReconcileRejectsBadDates(t *testing.T) {
	env := handlerTestInit(t)
	admin := env.token(t, adminID, employee.RoleAdmin)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/reconciliations", admin, map[string]string{"date": "2024-03-05"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := env.do(t, http.MethodPost, "/api/v1/reconciliations", admin, map[string]string{"date": "yesterday"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body.Error.Details, "date")
}

func TestRouter_SetPolicy(t *testing.T) {
	env := handlerTestInit(t)
	admin := env.token(t, adminID, employee.RoleAdmin)

	rec, body := env.do(t, http.MethodPut, "/api/v1/policy", admin, map[string]any{
		"start_time":                    "09:00",
		"end_time":                      "18:00",
		"late_threshold_minutes":        10,
		"early_leave_threshold_minutes": 10,
		"break_duration_minutes":        60,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stored policy.PolicyResponse
	decodeData(t, body, &stored)
	assert.Equal(t, "09:00", stored.StartTime)

	rec, body = env.do(t, http.MethodGet, "/api/v1/policy", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var current policy.PolicyResponse
	decodeData(t, body, &current)
	assert.Equal(t, stored.ID, current.ID)

	rec, _ = env.do(t, http.MethodPut, "/api/v1/policy", admin, map[string]any{
		"start_time": "18:00",
		"end_time":   "09:00",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
