package routes

import (
	"net/http"

	"github.com/wahealth/sca-simulator/internal/api/handlers"
	"github.com/wahealth/sca-simulator/internal/api/middleware"
	"github.com/wahealth/sca-simulator/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	caseHandler         *handlers.CaseHandler
	consultationHandler *handlers.ConsultationHandler
	userHandler         *handlers.UserHandler
	adminHandler        *handlers.AdminHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	caseHandler *handlers.CaseHandler,
	consultationHandler *handlers.ConsultationHandler,
	userHandler *handlers.UserHandler,
	adminHandler *handlers.AdminHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		caseHandler:         caseHandler,
		consultationHandler: consultationHandler,
		userHandler:         userHandler,
		adminHandler:        adminHandler,

		allowedOrigins: allowedOrigins,
		metrics:        metrics,
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

	// Case endpoints
	r.mux.HandleFunc("POST /api/cases", r.caseHandler.CreateCase)
	r.mux.HandleFunc("GET /api/cases", r.caseHandler.ListCases)
	r.mux.HandleFunc("GET /api/cases/search", r.caseHandler.SearchCases)
	r.mux.HandleFunc("POST /api/cases/generate", r.caseHandler.GenerateCase)
	r.mux.HandleFunc("GET /api/cases/{id}", r.caseHandler.GetCase)
	r.mux.HandleFunc("DELETE /api/cases/{id}", r.caseHandler.DeleteCase)
	r.mux.HandleFunc("GET /api/cases/{id}/doctor_info", r.caseHandler.GetDoctorInfo)
	r.mux.HandleFunc("PUT /api/cases/{id}/doctor_info", r.caseHandler.UpsertDoctorInfo)

	// Consultation endpoints
	r.mux.HandleFunc("POST /api/consultations/score", r.consultationHandler.ScoreConsultation)
	r.mux.HandleFunc("GET /api/consultations/shared", r.consultationHandler.ListShared)
	r.mux.HandleFunc("GET /api/consultations/history/{user_id}", r.consultationHandler.GetHistory)
	r.mux.HandleFunc("GET /api/consultations/vapi/call/{call_id}", r.consultationHandler.GetCallDetails)
	r.mux.HandleFunc("GET /api/consultations/{id}", r.consultationHandler.GetConsultation)
	r.mux.HandleFunc("POST /api/consultations/{id}/share", r.consultationHandler.ShareConsultation)
	r.mux.HandleFunc("POST /api/consultations/{id}/unshare", r.consultationHandler.UnshareConsultation)
	r.mux.HandleFunc("POST /api/consultations/{id}/comments", r.consultationHandler.AddComment)
	r.mux.HandleFunc("GET /api/consultations/{id}/comments", r.consultationHandler.ListComments)
	r.mux.HandleFunc("PATCH /api/consultations/{id}/recording", r.consultationHandler.AttachRecording)

	// User endpoints
	r.mux.HandleFunc("POST /api/users/register", r.userHandler.Register)
	r.mux.HandleFunc("POST /api/users/oauth-register", r.userHandler.OAuthRegister)
	r.mux.HandleFunc("GET /api/users/{id}", r.userHandler.GetUser)

	// Admin endpoints
	r.mux.HandleFunc("GET /api/admin/stats", r.adminHandler.GetStats)
	r.mux.HandleFunc("GET /api/admin/test-openai", r.adminHandler.TestOpenAI)
	r.mux.HandleFunc("GET /api/admin/test-vapi", r.adminHandler.TestVapi)

	// Middleware chain, innermost first
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
