package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Upsert(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reopen(w http.ResponseWriter, r *http.Request)
	ListByPeriod(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	service attendance.Service
}

func NewAttendanceHandler(service attendance.Service) AttendanceHandler {
	return &attendanceHandlerImpl{service: service}
}

func (h *attendanceHandlerImpl) Upsert(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpsertSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.Upsert(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// period parses the month/year pair shared by the per-summary routes.
func period(r *http.Request) (employeeID string, month, year int, ok bool) {
	employeeID = chi.URLParam(r, "employeeId")
	month, errM := strconv.Atoi(chi.URLParam(r, "month"))
	year, errY := strconv.Atoi(chi.URLParam(r, "year"))
	if employeeID == "" || errM != nil || errY != nil {
		return "", 0, 0, false
	}
	return employeeID, month, year, true
}

func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	employeeID, month, year, ok := period(r)
	if !ok {
		response.BadRequest(w, "Employee ID, month and year are required", nil)
		return
	}

	result, err := h.service.Get(r.Context(), employeeID, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *attendanceHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	employeeID, month, year, ok := period(r)
	if !ok {
		response.BadRequest(w, "Employee ID, month and year are required", nil)
		return
	}

	result, err := h.service.Approve(r.Context(), employeeID, month, year, operatorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *attendanceHandlerImpl) Reopen(w http.ResponseWriter, r *http.Request) {
	employeeID, month, year, ok := period(r)
	if !ok {
		response.BadRequest(w, "Employee ID, month and year are required", nil)
		return
	}

	result, err := h.service.Reopen(r.Context(), employeeID, month, year, operatorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *attendanceHandlerImpl) ListByPeriod(w http.ResponseWriter, r *http.Request) {
	month, errM := strconv.Atoi(r.URL.Query().Get("month"))
	year, errY := strconv.Atoi(r.URL.Query().Get("year"))
	if errM != nil || errY != nil {
		response.BadRequest(w, "month and year query parameters are required", nil)
		return
	}

	result, err := h.service.ListByPeriod(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
