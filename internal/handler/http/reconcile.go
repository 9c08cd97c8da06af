package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/reconcile"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

type ReconcileHandler interface {
	Request(w http.ResponseWriter, r *http.Request)
	GetInvariantReport(w http.ResponseWriter, r *http.Request)
}

type reconcileHandlerImpl struct {
	reconcileService reconcile.ReconcileService
	dispatcher       reconcile.Dispatcher
}

func NewReconcileHandler(reconcileService reconcile.ReconcileService, dispatcher reconcile.Dispatcher) ReconcileHandler {
	return &reconcileHandlerImpl{
		reconcileService: reconcileService,
		dispatcher:       dispatcher,
	}
}

// Request handles POST /reconciliations
func (h *reconcileHandlerImpl) Request(w http.ResponseWriter, r *http.Request) {
	var req reconcile.RequestReconciliation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode reconciliation request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	date, err := req.Validate()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.dispatcher.Request(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Status == reconcile.RequestCompleted {
		response.SuccessWithMessage(w, "Reconciliation completed", result)
		return
	}
	response.Accepted(w, "Reconciliation requested", result)
}

// GetInvariantReport handles GET /reconciliations/invariants
func (h *reconcileHandlerImpl) GetInvariantReport(w http.ResponseWriter, r *http.Request) {
	filter := reconcile.InvariantFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	report, err := h.reconcileService.GetInvariantReport(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, report)
}
