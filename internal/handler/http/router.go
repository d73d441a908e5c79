package http

import (
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	logger *slog.Logger,
	tokenAuth *jwtauth.JWTAuth,
	payRunHandler PayRunHandler,
	obligationHandler ObligationHandler,
	attendanceHandler AttendanceHandler,
	payslipHandler PayslipHandler,
	compensationHandler CompensationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokenAuth))
			r.Use(middleware.AuthRequired(tokenAuth))

			r.Route("/pay-runs", func(r chi.Router) {
				r.Post("/", payRunHandler.Generate)
				r.Get("/", payRunHandler.List)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", payRunHandler.Get)
					r.Post("/approve", payRunHandler.Approve)
					r.Post("/process", payRunHandler.Process)
					r.Post("/cancel", payRunHandler.Cancel)
					r.Get("/records", payRunHandler.Records)
					r.Get("/records/{employeeID}", payRunHandler.Record)
					r.Get("/payslips", payslipHandler.ListByPayRun)
				})
			})

			r.Route("/advances", func(r chi.Router) {
				r.Post("/", obligationHandler.CreateAdvance)
				r.Get("/", obligationHandler.ListAdvances)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", obligationHandler.GetAdvance)
					r.Post("/cancel", obligationHandler.CancelAdvance)
					r.Post("/repay", obligationHandler.RepayAdvance)
				})
			})

			r.Route("/loans", func(r chi.Router) {
				r.Post("/", obligationHandler.CreateLoan)
				r.Get("/", obligationHandler.ListLoans)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", obligationHandler.GetLoan)
					r.Post("/approve", obligationHandler.ApproveLoan)
					r.Post("/cancel", obligationHandler.CancelLoan)
					r.Post("/default", obligationHandler.MarkLoanDefaulted)
					r.Post("/emis", obligationHandler.PayLoanEMI)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/", attendanceHandler.Upsert)
				r.Get("/", attendanceHandler.ListByPeriod)
				r.Route("/{employeeId}/{year}/{month}", func(r chi.Router) {
					r.Get("/", attendanceHandler.Get)
					r.Post("/approve", attendanceHandler.Approve)
					r.Post("/reopen", attendanceHandler.Reopen)
				})
			})

			r.Route("/payslips", func(r chi.Router) {
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", payslipHandler.Get)
					r.Post("/sent", payslipHandler.MarkSent)
					r.Get("/download", payslipHandler.Download)
				})
				r.Get("/employee/{employeeId}/{year}/{month}", payslipHandler.GetByEmployeePeriod)
			})

			r.Route("/employees/{employeeId}/compensation", func(r chi.Router) {
				r.Get("/", compensationHandler.GetActive)
				r.Post("/", compensationHandler.Revise)
				r.Get("/revisions", compensationHandler.ListRevisions)
			})
		})
	})

	return r
}
