package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/punchclock-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/punchclock-backend-go/internal/service/auth"
	serviceCompany "github.com/cmlabs-hris/punchclock-backend-go/internal/service/company"
	employeeService "github.com/cmlabs-hris/punchclock-backend-go/internal/service/employee"
	kioskService "github.com/cmlabs-hris/punchclock-backend-go/internal/service/kiosk"
	punchService "github.com/cmlabs-hris/punchclock-backend-go/internal/service/punch"
	reportService "github.com/cmlabs-hris/punchclock-backend-go/internal/service/report"
	timeEntryService "github.com/cmlabs-hris/punchclock-backend-go/internal/service/timeentry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.App.LogLevel)})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		if err := postgresql.Migrate(ctx, db); err != nil {
			slog.Error("Error applying migrations", "error", err)
			os.Exit(1)
		}
	}

	txManager := postgresql.NewTxManager(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	kioskRepo := postgresql.NewKioskRepository(db)
	entryRepo := postgresql.NewTimeEntryRepository(db)
	idempotencyRepo := postgresql.NewIdempotencyRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub()

	punchSvc := punchService.NewPunchService(
		txManager,
		employeeRepo,
		companyRepo,
		kioskRepo,
		entryRepo,
		idempotencyRepo,
		hub,
		cfg.Punch,
	)
	timeEntrySvc := timeEntryService.NewTimeEntryService(entryRepo, employeeRepo, punchSvc, cfg.Punch.Location)
	reportSvc := reportService.NewReportService(employeeRepo, entryRepo, cfg.Punch.Location)
	companySvc := serviceCompany.NewCompanyService(companyRepo)
	employeeSvc := employeeService.NewEmployeeService(txManager, employeeRepo, entryRepo)
	kioskSvc := kioskService.NewKioskService(kioskRepo, cfg.Punch.KioskTokenCost)
	tokenSvc := serviceAuth.NewTokenService(employeeRepo, JWTService)

	router := appHTTP.NewRouter(
		cfg.App,
		JWTService,
		appHTTP.NewAuthHandler(tokenSvc),
		appHTTP.NewPunchHandler(punchSvc, reportSvc, punchSvc, JWTService, hub),
		appHTTP.NewCompanyHandler(companySvc),
		appHTTP.NewEmployeeHandler(employeeSvc),
		appHTTP.NewKioskHandler(kioskSvc),
		appHTTP.NewTimeEntryHandler(timeEntrySvc),
		appHTTP.NewReportHandler(reportSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "timezone", cfg.Punch.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
