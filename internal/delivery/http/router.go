package http

import (
	"net/http"

	"clinic-booking/internal/delivery/http/handler"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/domain/policy"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Appointment *handler.AppointmentHandler
	Agent       *handler.AgentHandler
	Admin       *handler.AdminHandler
	Clinic      *handler.ClinicHandler
	Patient     *handler.PatientHandler
	AuditLog    *handler.AuditLogHandler
}

type Router struct {
	router               *mux.Router
	handlers             Handlers
	authMiddleware       *middleware.AuthMiddleware
	capabilityMiddleware *middleware.CapabilityMiddleware
	corsMiddleware       *middleware.CORSMiddleware
	rateLimiter          *middleware.RateLimiter
	log                  *logrus.Logger
}

func NewRouter(
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	capabilityMiddleware *middleware.CapabilityMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimiter *middleware.RateLimiter,
	log *logrus.Logger,
) *Router {
	return &Router{
		router:               mux.NewRouter(),
		handlers:             handlers,
		authMiddleware:       authMiddleware,
		capabilityMiddleware: capabilityMiddleware,
		corsMiddleware:       corsMiddleware,
		rateLimiter:          rateLimiter,
		log:                  log,
	}
}

func (r *Router) Setup() *mux.Router {
	h := r.handlers
	require := r.capabilityMiddleware.Require

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)
	api.HandleFunc("/services", h.Clinic.ListServices).Methods(http.MethodGet)
	api.HandleFunc("/services/{id:[0-9]+}", h.Clinic.GetService).Methods(http.MethodGet)

	// Auth routes (public, rate limited per client)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(r.rateLimiter.Limit)
	auth.HandleFunc("/signup", h.Auth.Signup).Methods(http.MethodPost)
	auth.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", h.Auth.RefreshToken).Methods(http.MethodPost)

	// Authenticated routes
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)
	protected.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/me", h.Auth.GetCurrentUser).Methods(http.MethodGet)
	protected.HandleFunc("/extranet", h.Auth.Extranet).Methods(http.MethodGet)
	protected.HandleFunc("/me/patient", h.Patient.GetMyPatient).Methods(http.MethodGet)

	// Patient side
	patient := protected.NewRoute().Subrouter()
	patient.Use(require(policy.ViewOwnAppointments))
	patient.HandleFunc("/appointments", h.Appointment.List).Methods(http.MethodGet)
	patient.HandleFunc("/appointments/slots", h.Appointment.Slots).Methods(http.MethodGet)
	patient.HandleFunc("/appointments/next", h.Appointment.Next).Methods(http.MethodGet)
	patient.HandleFunc("/queue", h.Appointment.Queue).Methods(http.MethodGet)

	booking := protected.NewRoute().Subrouter()
	booking.Use(require(policy.BookAppointment))
	booking.HandleFunc("/appointments", h.Appointment.Create).Methods(http.MethodPost)

	// Agent routes (agent and admin)
	agent := protected.PathPrefix("/agent").Subrouter()
	agent.Use(require(policy.ManageQueue))
	agent.HandleFunc("/dashboard", h.Agent.Dashboard).Methods(http.MethodGet)
	agent.HandleFunc("/queue", h.Agent.Queue).Methods(http.MethodGet)
	agent.HandleFunc("/call-next", h.Agent.CallNext).Methods(http.MethodPost)
	agent.HandleFunc("/appointments/{id:[0-9]+}/validate", h.Agent.Validate).Methods(http.MethodPost)
	agent.HandleFunc("/appointments/{id:[0-9]+}/cancel", h.Agent.Cancel).Methods(http.MethodPost)
	agent.HandleFunc("/appointments/{id:[0-9]+}/priority", h.Agent.SetPriority).Methods(http.MethodPut)

	// Admin routes
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(require(policy.ViewReports))
	admin.HandleFunc("/dashboard", h.Admin.Dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/report", h.Admin.Report).Methods(http.MethodGet)

	// Clinic configuration (admin)
	admin.HandleFunc("/clinic-hours", h.Clinic.ListHours).Methods(http.MethodGet)
	admin.HandleFunc("/clinic-hours", h.Clinic.CreateHours).Methods(http.MethodPost)
	admin.HandleFunc("/clinic-hours/{id:[0-9]+}", h.Clinic.UpdateHours).Methods(http.MethodPut)
	admin.HandleFunc("/clinic-hours/{id:[0-9]+}", h.Clinic.DeleteHours).Methods(http.MethodDelete)
	admin.HandleFunc("/closure-days", h.Clinic.ListClosures).Methods(http.MethodGet)
	admin.HandleFunc("/closure-days", h.Clinic.CreateClosure).Methods(http.MethodPost)
	admin.HandleFunc("/closure-days/{id:[0-9]+}", h.Clinic.DeleteClosure).Methods(http.MethodDelete)
	admin.HandleFunc("/services", h.Clinic.ListServices).Methods(http.MethodGet)
	admin.HandleFunc("/services", h.Clinic.CreateService).Methods(http.MethodPost)
	admin.HandleFunc("/services/{id:[0-9]+}", h.Clinic.UpdateService).Methods(http.MethodPut)
	admin.HandleFunc("/services/{id:[0-9]+}", h.Clinic.DeleteService).Methods(http.MethodDelete)

	// Staff and audit (admin)
	admin.HandleFunc("/profiles/{userId}", h.Admin.UpdateProfile).Methods(http.MethodPut)
	admin.HandleFunc("/audit-logs", h.AuditLog.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id:[0-9]+}", h.AuditLog.GetAuditLog).Methods(http.MethodGet)

	r.router.Use(middleware.AccessLog(r.log))
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
