package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/divvy/docs"
	"github.com/fkhayef/divvy/internal/auth"
	"github.com/fkhayef/divvy/internal/balance"
	"github.com/fkhayef/divvy/internal/config"
	"github.com/fkhayef/divvy/internal/database"
	"github.com/fkhayef/divvy/internal/expense"
	"github.com/fkhayef/divvy/internal/group"
	"github.com/fkhayef/divvy/internal/notification"
	"github.com/fkhayef/divvy/internal/settlement"
	"github.com/fkhayef/divvy/internal/user"
	"github.com/fkhayef/divvy/pkg/logging"
	mw "github.com/fkhayef/divvy/pkg/middleware"
)

// @title           Divvy API
// @version         1.0
// @description     Expense splitting service: groups, shared expenses, settlements, and derived balances.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is fine; environment variables still apply.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo, logger)
	notificationHandler := notification.NewHandler(notificationService)

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Auth feature
	authService := auth.NewService(userRepo, jwtManager)
	authHandler := auth.NewHandler(authService, userRepo)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, notificationService)

	// Expense feature
	expenseRepo := expense.NewRepository(db, cfg.CurrencyCode)
	expenseService := expense.NewService(expenseRepo, groupRepo, notificationService)
	expenseHandler := expense.NewHandler(expenseService)

	// Settlement feature
	settlementRepo := settlement.NewRepository(db, cfg.CurrencyCode)
	settlementService := settlement.NewService(settlementRepo, groupRepo, notificationService)
	settlementHandler := settlement.NewHandler(settlementService)

	// Balance projection; the group list shows the caller's net
	// position per group, so the group handler reads from it too.
	balanceService := balance.NewService(expenseRepo, settlementRepo, userRepo, groupRepo, logger)
	balanceHandler := balance.NewHandler(balanceService)
	groupHandler := group.NewHandler(groupService, balanceService)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.Recoverer(logger))
	r.Use(mw.Metrics)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", mw.MetricsHandler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.PublicRoutes())

		r.Group(func(r chi.Router) {
			r.Use(mw.Auth(jwtManager))

			r.Get("/auth/profile", authHandler.Profile)
			r.Mount("/users", userHandler.Routes())
			r.Mount("/groups", groupHandler.Routes())
			r.Mount("/expenses", expenseHandler.Routes())
			r.Mount("/settlements", settlementHandler.Routes())
			r.Mount("/balances", balanceHandler.Routes())
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}
}
