package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type CompensationHandler interface {
	Revise(w http.ResponseWriter, r *http.Request)
	GetActive(w http.ResponseWriter, r *http.Request)
	ListRevisions(w http.ResponseWriter, r *http.Request)
}

type compensationHandlerImpl struct {
	service compensation.Service
}

func NewCompensationHandler(service compensation.Service) CompensationHandler {
	return &compensationHandlerImpl{service: service}
}

func (h *compensationHandlerImpl) Revise(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	var req compensation.ReviseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = employeeID

	result, err := h.service.Revise(r.Context(), req, operatorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Compensation revised", result)
}

func (h *compensationHandlerImpl) GetActive(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	result, err := h.service.GetActive(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *compensationHandlerImpl) ListRevisions(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	result, err := h.service.ListRevisions(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
