package api

import (
	"github.com/garnizeh/fairway/internal/app"
	"github.com/garnizeh/fairway/internal/config"
	"github.com/garnizeh/fairway/internal/db"
	"github.com/garnizeh/fairway/internal/metrics"
	"github.com/garnizeh/fairway/internal/repository/sqlite"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, db *db.DB, collector *metrics.Collector) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(MetricsMiddleware(collector))

	// Repository
	repo := sqlite.New(db, logger)

	// Services
	dispatcher := app.NewDispatcher(repo, repo, repo, repo, logger)
	jobService := app.NewJobService(repo, repo, logger)
	applicationService := app.NewApplicationService(repo, repo, dispatcher, logger)
	progressService := app.NewProgressService(repo, repo, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	jobsHandler := NewJobsHandler(jobService)
	applicationsHandler := NewApplicationsHandler(applicationService)
	updatesHandler := NewUpdatesHandler(progressService)
	conversationsHandler := NewConversationsHandler(repo, repo)
	notificationsHandler := NewNotificationsHandler(repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Job endpoints
	apiV1.HandleFunc("/jobs", jobsHandler.CreateJob).Methods("POST")
	apiV1.HandleFunc("/jobs", jobsHandler.ListJobs).Methods("GET")
	apiV1.HandleFunc("/jobs/mine", jobsHandler.ListMyJobs).Methods("GET")
	apiV1.HandleFunc("/jobs/{id}", jobsHandler.GetJob).Methods("GET")
	apiV1.HandleFunc("/jobs/{id}", jobsHandler.UpdateJob).Methods("PUT")
	apiV1.HandleFunc("/jobs/{id}", jobsHandler.DeleteJob).Methods("DELETE")

	// Application lifecycle endpoints
	apiV1.HandleFunc("/jobs/{id}/applications", applicationsHandler.SubmitApplication).Methods("POST")
	apiV1.HandleFunc("/jobs/{id}/applications", applicationsHandler.ListJobApplications).Methods("GET")
	apiV1.HandleFunc("/applications", applicationsHandler.ListOwnApplications).Methods("GET")
	apiV1.HandleFunc("/applications/{id}", applicationsHandler.TransitionApplication).Methods("PATCH")
	apiV1.HandleFunc("/applications/{id}", applicationsHandler.WithdrawApplication).Methods("DELETE")

	// Progress endpoints
	apiV1.HandleFunc("/jobs/{id}/updates", updatesHandler.PostUpdate).Methods("POST")
	apiV1.HandleFunc("/jobs/{id}/updates", updatesHandler.ListUpdates).Methods("GET")
	apiV1.HandleFunc("/jobs/{id}/status", updatesHandler.TransitionJobStatus).Methods("PATCH")

	// Conversation endpoints
	apiV1.HandleFunc("/conversations", conversationsHandler.ListConversations).Methods("GET")
	apiV1.HandleFunc("/conversations/{id}/messages", conversationsHandler.ListMessages).Methods("GET")
	apiV1.HandleFunc("/conversations/{id}/messages", conversationsHandler.PostMessage).Methods("POST")

	// Notification endpoints
	apiV1.HandleFunc("/notifications", notificationsHandler.ListNotifications).Methods("GET")
	apiV1.HandleFunc("/notifications/{id}/read", notificationsHandler.MarkRead).Methods("POST")

	return r
}
