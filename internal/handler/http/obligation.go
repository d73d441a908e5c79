package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/obligation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ObligationHandler interface {
	CreateAdvance(w http.ResponseWriter, r *http.Request)
	GetAdvance(w http.ResponseWriter, r *http.Request)
	ListAdvances(w http.ResponseWriter, r *http.Request)
	CancelAdvance(w http.ResponseWriter, r *http.Request)
	RepayAdvance(w http.ResponseWriter, r *http.Request)

	CreateLoan(w http.ResponseWriter, r *http.Request)
	GetLoan(w http.ResponseWriter, r *http.Request)
	ListLoans(w http.ResponseWriter, r *http.Request)
	ApproveLoan(w http.ResponseWriter, r *http.Request)
	CancelLoan(w http.ResponseWriter, r *http.Request)
	MarkLoanDefaulted(w http.ResponseWriter, r *http.Request)
	PayLoanEMI(w http.ResponseWriter, r *http.Request)
}

type obligationHandlerImpl struct {
	service obligation.Service
}

func NewObligationHandler(service obligation.Service) ObligationHandler {
	return &obligationHandlerImpl{service: service}
}

func (h *obligationHandlerImpl) CreateAdvance(w http.ResponseWriter, r *http.Request) {
	var req obligation.CreateAdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.CreateAdvance(r.Context(), req, operatorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Advance granted", result)
}

func (h *obligationHandlerImpl) GetAdvance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.service.GetAdvance(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *obligationHandlerImpl) ListAdvances(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		response.BadRequest(w, "employee_id query parameter is required", nil)
		return
	}

	result, err := h.service.ListAdvances(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *obligationHandlerImpl) CancelAdvance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.service.CancelAdvance(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

type repayAdvanceRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// RepayAdvance is the manual repayment path outside a pay run.
func (h *obligationHandlerImpl) RepayAdvance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req repayAdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	advance, err := h.service.ApplyAdvanceInstallment(r.Context(), id, req.Amount, "", operatorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.service.GetAdvance(r.Context(), advance.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *obligationHandlerImpl) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req obligation.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.CreateLoan(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Loan created", result)
}

func (h *obligationHandlerImpl) GetLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.service.GetLoan(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *obligationHandlerImpl) ListLoans(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		response.BadRequest(w, "employee_id query parameter is required", nil)
		return
	}

	result, err := h.service.ListLoans(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *obligationHandlerImpl) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.service.ApproveLoan(r.Context(), id, operatorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *obligationHandlerImpl) CancelLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.service.CancelLoan(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *obligationHandlerImpl) MarkLoanDefaulted(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.service.MarkLoanDefaulted(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

type payLoanEMIRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// PayLoanEMI is the manual repayment path outside a pay run.
func (h *obligationHandlerImpl) PayLoanEMI(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req payLoanEMIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if req.Month == 0 && req.Year == 0 {
		now := time.Now()
		req.Month = int(now.Month())
		req.Year = now.Year()
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 {
		response.BadRequest(w, "month must be 1-12 and year 2000 or later: got "+strconv.Itoa(req.Month)+"/"+strconv.Itoa(req.Year), nil)
		return
	}

	loan, err := h.service.ApplyLoanEMI(r.Context(), id, req.Month, req.Year, decimal.Zero, "", operatorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.service.GetLoan(r.Context(), loan.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
