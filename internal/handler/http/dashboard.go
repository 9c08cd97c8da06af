package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type DashboardHandler interface {
	GetDailyStats(w http.ResponseWriter, r *http.Request)
	GetMonthlyCalendar(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{
		dashboardService: dashboardService,
	}
}

// GetDailyStats handles GET /dashboard/daily-stats?date=YYYY-MM-DD
func (h *dashboardHandlerImpl) GetDailyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.GetDailyStats(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, stats)
}

// GetMonthlyCalendar handles GET /employees/{id}/calendar?month=YYYY-MM
func (h *dashboardHandlerImpl) GetMonthlyCalendar(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	calendar, err := h.dashboardService.GetMonthlyCalendar(r.Context(), employeeID, r.URL.Query().Get("month"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, calendar)
}
