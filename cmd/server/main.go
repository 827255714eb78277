package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/danabekov/fintrack/internal/config"
	"github.com/danabekov/fintrack/internal/database"
	"github.com/danabekov/fintrack/internal/handlers"
	"github.com/danabekov/fintrack/internal/jobs"
	"github.com/danabekov/fintrack/internal/repository"
	cronjobs "github.com/danabekov/fintrack/internal/scheduler"
	"github.com/danabekov/fintrack/internal/services"
	"github.com/danabekov/fintrack/pkg/email"
	"github.com/danabekov/fintrack/pkg/logger"
	"github.com/danabekov/fintrack/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	mailer := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSender, cfg.SMTPPassword, cfg.SMTPTimeout)

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo, mailer, "http://localhost:"+cfg.Port)
	notificationService := services.NewNotificationService(notificationRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	budgetService := services.NewBudgetService(budgetRepo, categoryRepo, transactionRepo, notificationRepo, mailer)
	transactionService := services.NewTransactionService(transactionRepo, categoryRepo, notificationRepo, userRepo, budgetService, mailer)
	recurringService := services.NewRecurringService(transactionRepo)
	reminderService := services.NewReminderService(transactionRepo, notificationRepo, userRepo, mailer, cfg.ReminderLeadDays)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")
	router.HandleFunc("/users/verify", userHandler.VerifyEmailHandler).Methods("GET")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PATCH")

	// Transaction routes
	transactionRoutes := router.PathPrefix("/transactions").Subrouter()
	transactionRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	transactionRoutes.HandleFunc("", transactionHandler.CreateTransactionHandler).Methods("POST")
	transactionRoutes.HandleFunc("", transactionHandler.GetTransactionsHandler).Methods("GET")
	transactionRoutes.HandleFunc("/import", transactionHandler.ImportCSVHandler).Methods("POST")
	transactionRoutes.HandleFunc("/{id}", transactionHandler.GetTransactionHandler).Methods("GET")
	transactionRoutes.HandleFunc("/{id}", transactionHandler.UpdateTransactionHandler).Methods("PUT")
	transactionRoutes.HandleFunc("/{id}", transactionHandler.DeleteTransactionHandler).Methods("DELETE")

	// Dashboard routes
	dashboardRoutes := router.PathPrefix("/dashboard").Subrouter()
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	dashboardRoutes.HandleFunc("/summary", transactionHandler.DashboardSummaryHandler).Methods("GET")

	// Category routes
	categoryRoutes := router.PathPrefix("/categories").Subrouter()
	categoryRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	categoryRoutes.HandleFunc("", categoryHandler.CreateCategoryHandler).Methods("POST")
	categoryRoutes.HandleFunc("", categoryHandler.GetCategoriesHandler).Methods("GET")
	categoryRoutes.HandleFunc("/{id}", categoryHandler.UpdateCategoryHandler).Methods("PUT")
	categoryRoutes.HandleFunc("/{id}", categoryHandler.DeleteCategoryHandler).Methods("DELETE")

	// Budget routes
	budgetRoutes := router.PathPrefix("/budgets").Subrouter()
	budgetRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	budgetRoutes.HandleFunc("", budgetHandler.CreateBudgetHandler).Methods("POST")
	budgetRoutes.HandleFunc("", budgetHandler.GetBudgetsHandler).Methods("GET")
	budgetRoutes.HandleFunc("/{id}", budgetHandler.UpdateBudgetHandler).Methods("PUT")
	budgetRoutes.HandleFunc("/{id}", budgetHandler.DeleteBudgetHandler).Methods("DELETE")

	// Notification routes
	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	notificationRoutes.HandleFunc("", notificationHandler.GetNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/unread-count", notificationHandler.UnreadCountHandler).Methods("GET")
	notificationRoutes.HandleFunc("/read", notificationHandler.MarkSelectedAsReadHandler).Methods("POST")
	notificationRoutes.HandleFunc("/read-all", notificationHandler.MarkAllAsReadHandler).Methods("POST")
	notificationRoutes.HandleFunc("/read", notificationHandler.DeleteReadHandler).Methods("DELETE")
	notificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkAsReadHandler).Methods("POST")
	notificationRoutes.HandleFunc("/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	router.Use(middleware.LoggingMiddleware)

	// Background recurring worker: materialization + bill reminders.
	// Single instance only; replicas would double-fire reminders.
	worker := jobs.NewRecurringWorker(recurringService, reminderService, jobs.SystemClock{}, cfg.WorkerInterval)
	go worker.Run(ctx)

	// Calendar-based housekeeping
	maintenance := cronjobs.StartMaintenanceCronJobs(notificationService)
	defer maintenance.Stop()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: c.Handler(router),
	}

	go func() {
		fmt.Printf("Server running on port %s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server shutdown failed")
	}
}
