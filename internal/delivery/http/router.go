package http

import (
	"net/http"

	"clinic-appointment-manager/internal/delivery/http/handler"
	"clinic-appointment-manager/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router               *mux.Router
	authHandler          *handler.AuthHandler
	patientHandler       *handler.PatientHandler
	waitingListHandler   *handler.WaitingListHandler
	invitationHandler    *handler.InvitationHandler
	appointmentHandler   *handler.AppointmentHandler
	clinicServiceHandler *handler.ClinicServiceHandler
	consultationHandler  *handler.ConsultationHandler
	monitorHandler       *handler.MonitorHandler
	auditLogHandler      *handler.AuditLogHandler
	authMiddleware       *middleware.AuthMiddleware
	corsMiddleware       *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	patientHandler *handler.PatientHandler,
	waitingListHandler *handler.WaitingListHandler,
	invitationHandler *handler.InvitationHandler,
	appointmentHandler *handler.AppointmentHandler,
	clinicServiceHandler *handler.ClinicServiceHandler,
	consultationHandler *handler.ConsultationHandler,
	monitorHandler *handler.MonitorHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:               mux.NewRouter(),
		authHandler:          authHandler,
		patientHandler:       patientHandler,
		waitingListHandler:   waitingListHandler,
		invitationHandler:    invitationHandler,
		appointmentHandler:   appointmentHandler,
		clinicServiceHandler: clinicServiceHandler,
		consultationHandler:  consultationHandler,
		monitorHandler:       monitorHandler,
		auditLogHandler:      auditLogHandler,
		authMiddleware:       authMiddleware,
		corsMiddleware:       corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Clinic service catalog (public read)
	api.HandleFunc("/services", r.clinicServiceHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/services/{id}", r.clinicServiceHandler.GetByID).Methods(http.MethodGet)

	// Patient routes (protected - patient only)
	patient := api.PathPrefix("/patient").Subrouter()
	patient.Use(r.authMiddleware.Authenticate)
	patient.Use(middleware.RequirePatient)
	patient.HandleFunc("/profile", r.patientHandler.GetMyProfile).Methods(http.MethodGet)
	patient.HandleFunc("/profile", r.patientHandler.UpdateMyProfile).Methods(http.MethodPut)
	patient.HandleFunc("/waiting-list", r.waitingListHandler.Enroll).Methods(http.MethodPost)
	patient.HandleFunc("/waiting-list", r.waitingListHandler.GetMyEntries).Methods(http.MethodGet)
	patient.HandleFunc("/invitations", r.invitationHandler.GetMyInvitations).Methods(http.MethodGet)
	patient.HandleFunc("/invitations/{id}/view", r.invitationHandler.View).Methods(http.MethodPost)
	patient.HandleFunc("/invitations/{id}/accept", r.invitationHandler.Accept).Methods(http.MethodPost)
	patient.HandleFunc("/appointments", r.appointmentHandler.GetMyAppointments).Methods(http.MethodGet)
	patient.HandleFunc("/consultations", r.consultationHandler.GetMyConsultations).Methods(http.MethodGet)

	// Shared routes (protected - any authenticated role, ownership checked
	// inside the handler)
	shared := api.PathPrefix("").Subrouter()
	shared.Use(r.authMiddleware.Authenticate)
	shared.HandleFunc("/invitations/{id}", r.invitationHandler.GetByID).Methods(http.MethodGet)
	shared.HandleFunc("/invitations/{id}/decline", r.invitationHandler.Decline).Methods(http.MethodPost)
	shared.HandleFunc("/waiting-list/{id}", r.waitingListHandler.Withdraw).Methods(http.MethodDelete)
	shared.HandleFunc("/appointments/{id}", r.appointmentHandler.GetByID).Methods(http.MethodGet)
	shared.HandleFunc("/appointments/{id}", r.appointmentHandler.Cancel).Methods(http.MethodDelete)
	shared.HandleFunc("/consultations/{id}", r.consultationHandler.GetByID).Methods(http.MethodGet)

	// Staff routes (protected - staff or admin)
	staff := api.PathPrefix("/staff").Subrouter()
	staff.Use(r.authMiddleware.Authenticate)
	staff.Use(middleware.RequireStaffOrAdmin)
	staff.HandleFunc("/slots/freed", r.invitationHandler.SlotFreed).Methods(http.MethodPost)
	staff.HandleFunc("/invitations", r.invitationHandler.Create).Methods(http.MethodPost)
	staff.HandleFunc("/invitations/{id}/confirm-payment", r.invitationHandler.ConfirmPayment).Methods(http.MethodPost)
	staff.HandleFunc("/waiting-list", r.waitingListHandler.GetAllEntries).Methods(http.MethodGet)
	staff.HandleFunc("/consultations", r.consultationHandler.Create).Methods(http.MethodPost)
	staff.HandleFunc("/consultations/{id}", r.consultationHandler.Update).Methods(http.MethodPut)
	staff.HandleFunc("/monitor/status", r.monitorHandler.Status).Methods(http.MethodGet)
	staff.HandleFunc("/monitor/sweep", r.monitorHandler.Sweep).Methods(http.MethodPost)
	staff.HandleFunc("/monitor/reload", r.monitorHandler.Reload).Methods(http.MethodPost)
	staff.HandleFunc("/monitor/invitations/{id}/test-reminder", r.monitorHandler.TestReminder).Methods(http.MethodPost)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/services", r.clinicServiceHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/services/{id}", r.clinicServiceHandler.Update).Methods(http.MethodPut)
	admin.HandleFunc("/services/{id}", r.clinicServiceHandler.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetRecent).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
