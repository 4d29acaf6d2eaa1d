package main

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/pennywise-app/pennywise/internal/middleware"
)

// newRouter wires every endpoint, the middleware chain, and CORS.
func newRouter(deps *Dependencies) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.Metrics)

	r.Use(deps.RateLimiter.Middleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	if deps.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	apiV1 := r.PathPrefix("/api/v1").Subrouter()

	// Public auth endpoints.
	auth := apiV1.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", deps.AuthHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", deps.AuthHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", deps.AuthHandler.Refresh).Methods(http.MethodPost)
	auth.HandleFunc("/logout", deps.AuthHandler.Logout).Methods(http.MethodPost)
	auth.HandleFunc("/password-reset/request", deps.AuthHandler.RequestPasswordReset).Methods(http.MethodPost)
	auth.HandleFunc("/password-reset/confirm", deps.AuthHandler.ConfirmPasswordReset).Methods(http.MethodPost)
	auth.HandleFunc("/verify-email", deps.AuthHandler.VerifyEmail).Methods(http.MethodGet)
	auth.HandleFunc("/oauth/{provider}", deps.AuthHandler.BeginOAuth).Methods(http.MethodGet)
	auth.HandleFunc("/oauth/{provider}/callback", deps.AuthHandler.OAuthCallback).Methods(http.MethodGet)

	// Everything below requires a valid bearer token.
	protected := apiV1.NewRoute().Subrouter()
	protected.Use(middleware.Auth(deps.AuthService))

	protected.HandleFunc("/me", deps.AuthHandler.Me).Methods(http.MethodGet)

	protected.HandleFunc("/categories", deps.CategoryHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/categories", deps.CategoryHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/categories/suggest", deps.CategoryHandler.Suggest).Methods(http.MethodGet)
	protected.HandleFunc("/categories/{id}", deps.CategoryHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/categories/{id}", deps.CategoryHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/categories/{id}", deps.CategoryHandler.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/transactions", deps.TransactionHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/transactions", deps.TransactionHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/transactions/import", deps.ImportHandler.Import).Methods(http.MethodPost)
	protected.HandleFunc("/transactions/export", deps.TransactionHandler.Export).Methods(http.MethodGet)
	protected.HandleFunc("/transactions/{id}", deps.TransactionHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/transactions/{id}", deps.TransactionHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/transactions/{id}", deps.TransactionHandler.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/summary/overview", deps.SummaryHandler.Overview).Methods(http.MethodGet)
	protected.HandleFunc("/summary/monthly", deps.SummaryHandler.Monthly).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(deps.Config.Server.AllowedOrigins, ","),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
