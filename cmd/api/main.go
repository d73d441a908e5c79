package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	appHTTP "github.com/cmlabs-hris/payroll-engine-go/internal/handler/http"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/payroll-engine-go/internal/service/attendance"
	auditService "github.com/cmlabs-hris/payroll-engine-go/internal/service/audit"
	compensationService "github.com/cmlabs-hris/payroll-engine-go/internal/service/compensation"
	notificationService "github.com/cmlabs-hris/payroll-engine-go/internal/service/notification"
	obligationService "github.com/cmlabs-hris/payroll-engine-go/internal/service/obligation"
	payrunService "github.com/cmlabs-hris/payroll-engine-go/internal/service/payrun"
	payslipService "github.com/cmlabs-hris/payroll-engine-go/internal/service/payslip"
	statutoryService "github.com/cmlabs-hris/payroll-engine-go/internal/service/statutory"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("env", cfg.App.Env),
	)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), int32(cfg.Database.MaxConns), int32(cfg.Database.MinConns))
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	statutoryProvider, err := statutoryService.NewFileProvider(cfg.Statutory.RatesFile)
	if err != nil {
		logger.Error("failed to load statutory rates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	compensationRepo := postgresql.NewCompensationRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	obligationRepo := postgresql.NewObligationRepository(db)
	payRunRepo := postgresql.NewPayRunRepository(db)
	payslipRepo := postgresql.NewPayslipRepository(db)

	txManager := postgresql.NewTxManager(db)
	auditor := auditService.NewLogSink(logger)
	notifier := notificationService.NewLogNotifier(logger)
	locks := keylock.New()

	obligationSvc := obligationService.NewService(obligationRepo, employeeRepo, txManager, locks, auditor)
	compensationSvc := compensationService.NewService(compensationRepo, employeeRepo, txManager, auditor)
	attendanceSvc := attendanceService.NewService(attendanceRepo, employeeRepo, auditor)
	payslipSvc := payslipService.NewService(payslipRepo, auditor, notifier, logger)
	payRunSvc := payrunService.NewService(
		payRunRepo,
		employeeRepo,
		compensationRepo,
		attendanceRepo,
		obligationSvc,
		statutoryProvider,
		payslipSvc,
		txManager,
		auditor,
		logger,
	)

	tokenAuth := jwtauth.New("HS256", []byte(cfg.JWT.Secret), nil, jwt.WithAcceptableSkew(30*time.Second))

	router := appHTTP.NewRouter(
		logger,
		tokenAuth,
		appHTTP.NewPayRunHandler(payRunSvc),
		appHTTP.NewObligationHandler(obligationSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewPayslipHandler(payslipSvc),
		appHTTP.NewCompensationHandler(compensationSvc),
	)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("server listening", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
