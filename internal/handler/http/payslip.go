package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payslip"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayslipHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	GetByEmployeePeriod(w http.ResponseWriter, r *http.Request)
	ListByPayRun(w http.ResponseWriter, r *http.Request)
	MarkSent(w http.ResponseWriter, r *http.Request)
	Download(w http.ResponseWriter, r *http.Request)
}

type payslipHandlerImpl struct {
	service payslip.Service
}

func NewPayslipHandler(service payslip.Service) PayslipHandler {
	return &payslipHandlerImpl{service: service}
}

func (h *payslipHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *payslipHandlerImpl) GetByEmployeePeriod(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	month, errM := strconv.Atoi(chi.URLParam(r, "month"))
	year, errY := strconv.Atoi(chi.URLParam(r, "year"))
	if employeeID == "" || errM != nil || errY != nil {
		response.BadRequest(w, "Employee ID, month and year are required", nil)
		return
	}

	result, err := h.service.GetByEmployeePeriod(r.Context(), employeeID, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *payslipHandlerImpl) ListByPayRun(w http.ResponseWriter, r *http.Request) {
	payRunID := chi.URLParam(r, "id")
	result, err := h.service.ListByPayRun(r.Context(), payRunID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *payslipHandlerImpl) MarkSent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.service.MarkSent(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Download records the download and returns the payslip payload. Rendering
// to PDF happens client-side in the platform frontend.
func (h *payslipHandlerImpl) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.service.RecordDownload(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
