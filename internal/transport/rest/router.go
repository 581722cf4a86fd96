package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"surveyservice/internal/cache"
	"surveyservice/internal/metrics"
	"surveyservice/internal/service"
	"surveyservice/internal/transport/rest/handler"
	"surveyservice/internal/transport/rest/middleware"
	"surveyservice/internal/transport/ws"
)

// Container holds all dependencies for the router. Stats, Metrics and
// Gatherer are optional; /metrics is served only when Gatherer is set.
type Container struct {
	AuthService      *service.AuthService
	SurveyService    *service.SurveyService
	CycleService     *service.CycleService
	ResponderService *service.ResponderService
	ResponseService  *service.SurveyResponseService
	Stats            cache.StatsCache
	WSHub            *ws.Hub
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
	Logger           *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService, logger)
	surveyHandler := handler.NewSurveyHandler(c.SurveyService, c.CycleService, logger)
	responderHandler := handler.NewResponderHandler(c.ResponderService, c.AuthService, logger)
	responseHandler := handler.NewResponseHandler(c.ResponseService, c.Metrics, logger)
	statsHandler := handler.NewStatsHandler(c.Stats, logger)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)
	r.Use(middleware.Logging(logger, c.Metrics))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	if c.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(c.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (admin token in query param)
	v1.HandleFunc("/ws/surveys/{surveyId}", wsHandler.SurveyWS).Methods("GET")

	// Responder routes (responder token for the survey, or admin)
	responderRoutes := v1.NewRoute().Subrouter()
	responderRoutes.Use(authMW.RequireSurveyResponder)

	responderRoutes.HandleFunc("/surveys/{surveyId}/responses", responseHandler.Submit).Methods("POST", "OPTIONS")

	// Admin routes
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/surveys", surveyHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}/cycles", surveyHandler.CreateCycle).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}/cycles", surveyHandler.ListCycles).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}/cycles/active", surveyHandler.ActiveCycle).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}/responders", responderHandler.Register).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/responses/{responseId}", responseHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/cycles/{cycleId}/stats", statsHandler.CycleStats).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
