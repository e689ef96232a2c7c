package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-appointment-manager/internal/delivery/http/middleware"
	"clinic-appointment-manager/internal/domain/entity"
	"clinic-appointment-manager/internal/service"
	"clinic-appointment-manager/pkg/response"
	"clinic-appointment-manager/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLifecycle returns canned values per method
type stubLifecycle struct {
	invitation  *entity.Invitation
	appointment *entity.Appointment
	invitations []entity.Invitation
	err         error

	declinedWith struct {
		patientID uuid.UUID
		reason    string
	}
}

func (s *stubLifecycle) OnSlotFreed(ctx context.Context, slot entity.AvailableSlot) (*entity.Invitation, error) {
	return s.invitation, s.err
}

func (s *stubLifecycle) CreateInvitation(ctx context.Context, entryID uuid.UUID, slot entity.AvailableSlot, confirmationHours int) (*entity.Invitation, error) {
	return s.invitation, s.err
}

func (s *stubLifecycle) MarkViewed(ctx context.Context, invitationID, patientID uuid.UUID) (*entity.Invitation, error) {
	return s.invitation, s.err
}

func (s *stubLifecycle) MarkAccepted(ctx context.Context, invitationID, patientID uuid.UUID) (*entity.Invitation, error) {
	return s.invitation, s.err
}

func (s *stubLifecycle) ConfirmPayment(ctx context.Context, invitationID uuid.UUID, actorID uuid.UUID) (*entity.Appointment, error) {
	return s.appointment, s.err
}

func (s *stubLifecycle) Decline(ctx context.Context, invitationID, patientID uuid.UUID, reason string) (*entity.Invitation, error) {
	s.declinedWith.patientID = patientID
	s.declinedWith.reason = reason
	return s.invitation, s.err
}

func (s *stubLifecycle) Expire(ctx context.Context, invitationID uuid.UUID) error {
	return s.err
}

func (s *stubLifecycle) GetByID(ctx context.Context, invitationID uuid.UUID) (*entity.Invitation, error) {
	return s.invitation, s.err
}

func (s *stubLifecycle) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]entity.Invitation, error) {
	return s.invitations, s.err
}

func sampleInvitation(patientID uuid.UUID) *entity.Invitation {
	return &entity.Invitation{
		ID:                   uuid.New(),
		WaitingListEntryID:   uuid.New(),
		PatientID:            patientID,
		SlotDate:             time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		SlotStartTime:        "10:00",
		SlotDuration:         30,
		AppointmentType:      "dermatology",
		SentAt:               time.Now(),
		ConfirmationDeadline: time.Now().Add(24 * time.Hour),
		PaymentRequired:      decimal.NewFromInt(650),
		Status:               entity.InvitationStatusSent,
	}
}

func authedRequest(r *http.Request, userID uuid.UUID, roleID int) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.RoleIDKey, roleID)
	return r.WithContext(ctx)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestInvitationHandler_SlotFreed(t *testing.T) {
	patientID := uuid.New()
	stub := &stubLifecycle{invitation: sampleInvitation(patientID)}
	h := NewInvitationHandler(stub, validator.NewValidator())

	payload := `{"date":"2026-09-15","start_time":"10:00","duration_minutes":30,"appointment_type":"dermatology"}`
	req := httptest.NewRequest(http.MethodPost, "/staff/slots/freed", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()

	h.SlotFreed(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeResponse(t, rec)
	assert.True(t, body.Success)
	assert.NotNil(t, body.Data)
}

func TestInvitationHandler_SlotFreed_NoCandidate(t *testing.T) {
	stub := &stubLifecycle{}
	h := NewInvitationHandler(stub, validator.NewValidator())

	payload := `{"date":"2026-09-15","start_time":"10:00","duration_minutes":30,"appointment_type":"dermatology"}`
	req := httptest.NewRequest(http.MethodPost, "/staff/slots/freed", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()

	h.SlotFreed(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeResponse(t, rec)
	assert.True(t, body.Success)
	assert.Nil(t, body.Data)
}

func TestInvitationHandler_SlotFreed_ValidationFailure(t *testing.T) {
	h := NewInvitationHandler(&stubLifecycle{}, validator.NewValidator())

	payload := `{"date":"15-09-2026","start_time":"10:00","duration_minutes":30,"appointment_type":"dermatology"}`
	req := httptest.NewRequest(http.MethodPost, "/staff/slots/freed", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()

	h.SlotFreed(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeResponse(t, rec).Success)
}

func TestInvitationHandler_Create_SlotConflict(t *testing.T) {
	stub := &stubLifecycle{err: service.ErrSlotAlreadyOffered}
	h := NewInvitationHandler(stub, validator.NewValidator())

	payload := `{"entry_id":"` + uuid.NewString() + `","date":"2026-09-15","start_time":"10:00","duration_minutes":30,"appointment_type":"dermatology"}`
	req := httptest.NewRequest(http.MethodPost, "/staff/invitations", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInvitationHandler_View(t *testing.T) {
	patientID := uuid.New()
	inv := sampleInvitation(patientID)
	inv.Status = entity.InvitationStatusViewed
	stub := &stubLifecycle{invitation: inv}
	h := NewInvitationHandler(stub, validator.NewValidator())

	req := httptest.NewRequest(http.MethodPost, "/patient/invitations/"+inv.ID.String()+"/view", nil)
	req = mux.SetURLVars(req, map[string]string{"id": inv.ID.String()})
	req = authedRequest(req, patientID, entity.RoleIDPatient)
	rec := httptest.NewRecorder()

	h.View(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeResponse(t, rec).Success)
}

func TestInvitationHandler_View_InvalidID(t *testing.T) {
	h := NewInvitationHandler(&stubLifecycle{}, validator.NewValidator())

	req := httptest.NewRequest(http.MethodPost, "/patient/invitations/not-a-uuid/view", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "not-a-uuid"})
	req = authedRequest(req, uuid.New(), entity.RoleIDPatient)
	rec := httptest.NewRecorder()

	h.View(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvitationHandler_View_NotOwner(t *testing.T) {
	stub := &stubLifecycle{err: service.ErrNotInvitationOwner}
	h := NewInvitationHandler(stub, validator.NewValidator())

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/patient/invitations/"+id+"/view", nil)
	req = mux.SetURLVars(req, map[string]string{"id": id})
	req = authedRequest(req, uuid.New(), entity.RoleIDPatient)
	rec := httptest.NewRecorder()

	h.View(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestInvitationHandler_Decline_DefaultReasonAndActor(t *testing.T) {
	patientID := uuid.New()
	inv := sampleInvitation(patientID)
	inv.Status = entity.InvitationStatusDeclined
	stub := &stubLifecycle{invitation: inv}
	h := NewInvitationHandler(stub, validator.NewValidator())

	req := httptest.NewRequest(http.MethodPost, "/invitations/"+inv.ID.String()+"/decline", bytes.NewBufferString(`{}`))
	req = mux.SetURLVars(req, map[string]string{"id": inv.ID.String()})
	req = authedRequest(req, patientID, entity.RoleIDPatient)
	rec := httptest.NewRecorder()

	h.Decline(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "declined_by_patient", stub.declinedWith.reason)
	assert.Equal(t, patientID, stub.declinedWith.patientID)
}

func TestInvitationHandler_Decline_StaffActsWithoutOwnership(t *testing.T) {
	inv := sampleInvitation(uuid.New())
	inv.Status = entity.InvitationStatusDeclined
	stub := &stubLifecycle{invitation: inv}
	h := NewInvitationHandler(stub, validator.NewValidator())

	req := httptest.NewRequest(http.MethodPost, "/invitations/"+inv.ID.String()+"/decline", bytes.NewBufferString(`{"reason":"patient called in"}`))
	req = mux.SetURLVars(req, map[string]string{"id": inv.ID.String()})
	req = authedRequest(req, uuid.New(), entity.RoleIDStaff)
	rec := httptest.NewRecorder()

	h.Decline(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "patient called in", stub.declinedWith.reason)
	assert.Equal(t, uuid.Nil, stub.declinedWith.patientID)
}

func TestInvitationHandler_ConfirmPayment(t *testing.T) {
	patientID := uuid.New()
	invitationID := uuid.New()
	stub := &stubLifecycle{appointment: &entity.Appointment{
		ID:              uuid.New(),
		PatientID:       patientID,
		InvitationID:    &invitationID,
		Date:            time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 30,
		AppointmentType: "dermatology",
		Status:          entity.AppointmentStatusScheduled,
	}}
	h := NewInvitationHandler(stub, validator.NewValidator())

	req := httptest.NewRequest(http.MethodPost, "/staff/invitations/"+invitationID.String()+"/confirm-payment", nil)
	req = mux.SetURLVars(req, map[string]string{"id": invitationID.String()})
	req = authedRequest(req, uuid.New(), entity.RoleIDStaff)
	rec := httptest.NewRecorder()

	h.ConfirmPayment(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeResponse(t, rec).Success)
}

func TestInvitationHandler_ConfirmPayment_NotAccepted(t *testing.T) {
	stub := &stubLifecycle{err: service.ErrPaymentStateMismatch}
	h := NewInvitationHandler(stub, validator.NewValidator())

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/staff/invitations/"+id+"/confirm-payment", nil)
	req = mux.SetURLVars(req, map[string]string{"id": id})
	req = authedRequest(req, uuid.New(), entity.RoleIDStaff)
	rec := httptest.NewRecorder()

	h.ConfirmPayment(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInvitationHandler_GetByID_PatientOwnershipEnforced(t *testing.T) {
	owner := uuid.New()
	inv := sampleInvitation(owner)
	stub := &stubLifecycle{invitation: inv}
	h := NewInvitationHandler(stub, validator.NewValidator())

	req := httptest.NewRequest(http.MethodGet, "/invitations/"+inv.ID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": inv.ID.String()})
	req = authedRequest(req, uuid.New(), entity.RoleIDPatient)
	rec := httptest.NewRecorder()

	h.GetByID(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Staff sees any invitation
	req = httptest.NewRequest(http.MethodGet, "/invitations/"+inv.ID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": inv.ID.String()})
	req = authedRequest(req, uuid.New(), entity.RoleIDStaff)
	rec = httptest.NewRecorder()

	h.GetByID(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
