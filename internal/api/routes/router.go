package routes

import (
	"net/http"

	"github.com/nerve-health/referral/backend/internal/api/handlers"
	"github.com/nerve-health/referral/backend/internal/api/middleware"
	"github.com/nerve-health/referral/backend/internal/infrastructure/observability"
	"github.com/nerve-health/referral/backend/pkg/auth"
)

// Router holds all route handlers

type Router struct {
	mux *http.ServeMux

	referralHandler *handlers.ReferralHandler
	triageHandler   *handlers.TriageHandler
	hospitalHandler *handlers.HospitalHandler
	authHandler     *handlers.AuthHandler

	tokens  *auth.TokenManager
	metrics *observability.Metrics
}

// NewRouter creates a new router

func NewRouter(
	referralHandler *handlers.ReferralHandler,
	triageHandler *handlers.TriageHandler,
	hospitalHandler *handlers.HospitalHandler,
	authHandler *handlers.AuthHandler,
	tokens *auth.TokenManager,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		referralHandler: referralHandler,
		triageHandler:   triageHandler,
		hospitalHandler: hospitalHandler,
		authHandler:     authHandler,

		tokens:  tokens,
		metrics: metrics,
	}
}

// SetupRoutes configures all application routes

func (r *Router) SetupRoutes() http.Handler {

	// Health check endpoint

	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	protected := middleware.AuthMiddleware(r.tokens)

	// Referral endpoints

	r.mux.HandleFunc("POST /api/referral", r.referralHandler.ProcessReferral)
	r.mux.HandleFunc("POST /api/referral/quick", r.referralHandler.QuickReferral)
	r.mux.HandleFunc("GET /api/referral/patient/{id}", r.referralHandler.GetPatient)
	r.mux.HandleFunc("GET /api/referral/history/stats", protected(r.referralHandler.SeverityStats))
	r.mux.HandleFunc("POST /api/referral/history/{id}/outcome", protected(r.referralHandler.RecordOutcome))

	// Triage endpoints

	r.mux.HandleFunc("POST /api/triage", r.triageHandler.ProcessTriage)
	r.mux.HandleFunc("POST /api/triage/quick", r.triageHandler.QuickTriage)
	r.mux.HandleFunc("GET /api/triage", r.triageHandler.ListPatients)
	r.mux.HandleFunc("GET /api/triage/{id}", r.triageHandler.GetPatient)
	r.mux.HandleFunc("DELETE /api/triage/{id}", r.triageHandler.DeletePatient)

	// Hospital directory endpoints. The "my" routes must register
	// before "{id}" so the literal segment wins.

	r.mux.HandleFunc("GET /api/hospitals", r.hospitalHandler.ListHospitals)
	r.mux.HandleFunc("POST /api/hospitals", r.hospitalHandler.CreateHospital)
	r.mux.HandleFunc("GET /api/hospitals/available", r.hospitalHandler.ListAvailable)
	r.mux.HandleFunc("GET /api/hospitals/my", protected(r.hospitalHandler.GetMyHospital))
	r.mux.HandleFunc("PUT /api/hospitals/my", protected(r.hospitalHandler.UpdateMyHospital))
	r.mux.HandleFunc("GET /api/hospitals/{id}", r.hospitalHandler.GetHospital)
	r.mux.HandleFunc("PUT /api/hospitals/{id}", protected(r.hospitalHandler.UpdateHospital))
	r.mux.HandleFunc("DELETE /api/hospitals/{id}", protected(r.hospitalHandler.DeleteHospital))
	r.mux.HandleFunc("PATCH /api/hospitals/{id}/status", protected(r.hospitalHandler.UpdateStatus))

	// Auth endpoints

	r.mux.HandleFunc("POST /api/auth/register", r.authHandler.Register)
	r.mux.HandleFunc("POST /api/auth/login", r.authHandler.Login)
	r.mux.HandleFunc("GET /api/auth/me", protected(r.authHandler.Me))

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so error responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	handler = middleware.CORSMiddleware(handler)

	return handler
}
