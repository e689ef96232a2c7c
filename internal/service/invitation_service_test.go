package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"clinic-appointment-manager/config"
	"clinic-appointment-manager/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// =============================================================================
// In-memory fakes
// =============================================================================

type memEntryRepo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entity.WaitingListEntry
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{entries: map[uuid.UUID]*entity.WaitingListEntry{}}
}

func (r *memEntryRepo) put(e entity.WaitingListEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := e
	r.entries[e.ID] = &copied
}

func (r *memEntryRepo) get(id uuid.UUID) entity.WaitingListEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.entries[id]
}

func (r *memEntryRepo) Create(db *gorm.DB, entry *entity.WaitingListEntry) error {
	r.put(*entry)
	return nil
}

func (r *memEntryRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.WaitingListEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (r *memEntryRepo) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.WaitingListEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.WaitingListEntry
	for _, e := range r.entries {
		if e.PatientID == patientID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memEntryRepo) FindWaitingByPatientID(db *gorm.DB, patientID uuid.UUID) (*entity.WaitingListEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.PatientID == patientID && e.Status == entity.WaitingListStatusWaiting {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memEntryRepo) FindWaitingByType(db *gorm.DB, appointmentType string) ([]entity.WaitingListEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.WaitingListEntry
	for _, e := range r.entries {
		if e.AppointmentType == appointmentType && e.Status == entity.WaitingListStatusWaiting {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memEntryRepo) FindByStatus(db *gorm.DB, status entity.WaitingListStatus) ([]entity.WaitingListEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.WaitingListEntry
	for _, e := range r.entries {
		if e.Status == status {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memEntryRepo) transition(id uuid.UUID, from []entity.WaitingListStatus, to entity.WaitingListStatus, mutate func(*entity.WaitingListEntry)) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return 0, nil
	}
	for _, f := range from {
		if e.Status == f {
			e.Status = to
			if mutate != nil {
				mutate(e)
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (r *memEntryRepo) MarkContacted(db *gorm.DB, id uuid.UUID) (int64, error) {
	now := time.Now()
	return r.transition(id, []entity.WaitingListStatus{entity.WaitingListStatusWaiting}, entity.WaitingListStatusContacted, func(e *entity.WaitingListEntry) {
		e.LastContactDate = &now
	})
}

func (r *memEntryRepo) MarkScheduled(db *gorm.DB, id uuid.UUID) (int64, error) {
	return r.transition(id, []entity.WaitingListStatus{entity.WaitingListStatusContacted}, entity.WaitingListStatusScheduled, nil)
}

func (r *memEntryRepo) RevertToWaiting(db *gorm.DB, id uuid.UUID, countAttempt bool) (int64, error) {
	return r.transition(id, []entity.WaitingListStatus{entity.WaitingListStatusContacted}, entity.WaitingListStatusWaiting, func(e *entity.WaitingListEntry) {
		if countAttempt {
			e.ContactAttempts++
		}
	})
}

func (r *memEntryRepo) MarkRemoved(db *gorm.DB, id uuid.UUID) (int64, error) {
	return r.transition(id, []entity.WaitingListStatus{entity.WaitingListStatusWaiting, entity.WaitingListStatusContacted}, entity.WaitingListStatusRemoved, nil)
}

type memInvitationRepo struct {
	mu          sync.Mutex
	invitations map[uuid.UUID]*entity.Invitation
}

func newMemInvitationRepo() *memInvitationRepo {
	return &memInvitationRepo{invitations: map[uuid.UUID]*entity.Invitation{}}
}

func (r *memInvitationRepo) get(id uuid.UUID) entity.Invitation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.invitations[id]
}

func (r *memInvitationRepo) Create(db *gorm.DB, invitation *entity.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *invitation
	r.invitations[invitation.ID] = &copied
	return nil
}

func (r *memInvitationRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return nil, nil
	}
	copied := *inv
	return &copied, nil
}

func (r *memInvitationRepo) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Invitation
	for _, inv := range r.invitations {
		if inv.PatientID == patientID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memInvitationRepo) FindActiveBySlot(db *gorm.DB, date time.Time, startTime, appointmentType string) (*entity.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.Status.IsTerminal() {
			continue
		}
		if inv.SlotDate.Format("2006-01-02") == date.Format("2006-01-02") &&
			inv.SlotStartTime == startTime &&
			inv.AppointmentType == appointmentType {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memInvitationRepo) FindActiveByEntryID(db *gorm.DB, entryID uuid.UUID) (*entity.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.WaitingListEntryID == entryID && !inv.Status.IsTerminal() {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memInvitationRepo) FindAllActive(db *gorm.DB) ([]entity.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Invitation
	for _, inv := range r.invitations {
		if !inv.Status.IsTerminal() {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memInvitationRepo) transition(id uuid.UUID, from []entity.InvitationStatus, to entity.InvitationStatus, mutate func(*entity.Invitation)) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return 0, nil
	}
	for _, f := range from {
		if inv.Status == f {
			inv.Status = to
			if mutate != nil {
				mutate(inv)
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (r *memInvitationRepo) MarkViewed(db *gorm.DB, id uuid.UUID) (int64, error) {
	now := time.Now()
	return r.transition(id, []entity.InvitationStatus{entity.InvitationStatusSent}, entity.InvitationStatusViewed, func(i *entity.Invitation) {
		i.ViewedAt = &now
	})
}

func (r *memInvitationRepo) MarkAccepted(db *gorm.DB, id uuid.UUID) (int64, error) {
	now := time.Now()
	return r.transition(id, []entity.InvitationStatus{entity.InvitationStatusSent, entity.InvitationStatusViewed}, entity.InvitationStatusAccepted, func(i *entity.Invitation) {
		i.AcceptedAt = &now
	})
}

func (r *memInvitationRepo) MarkPaymentPending(db *gorm.DB, id uuid.UUID) (int64, error) {
	return r.transition(id, []entity.InvitationStatus{entity.InvitationStatusAccepted}, entity.InvitationStatusPaymentPending, nil)
}

func (r *memInvitationRepo) Confirm(db *gorm.DB, id uuid.UUID) (int64, error) {
	now := time.Now()
	return r.transition(id, []entity.InvitationStatus{entity.InvitationStatusAccepted, entity.InvitationStatusPaymentPending}, entity.InvitationStatusConfirmed, func(i *entity.Invitation) {
		i.PaymentConfirmedAt = &now
	})
}

func (r *memInvitationRepo) Terminate(db *gorm.DB, id uuid.UUID, to entity.InvitationStatus, reason string) (int64, error) {
	return r.transition(id, entity.ActiveInvitationStatuses, to, func(i *entity.Invitation) {
		i.DeclineReason = reason
	})
}

type memAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*entity.Appointment
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{appointments: map[uuid.UUID]*entity.Appointment{}}
}

func (r *memAppointmentRepo) Create(db *gorm.DB, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	copied := *appointment
	r.appointments[appointment.ID] = &copied
	return nil
}

func (r *memAppointmentRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *memAppointmentRepo) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) FindByInvitationID(db *gorm.DB, invitationID uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.InvitationID != nil && *a.InvitationID == invitationID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memAppointmentRepo) Cancel(db *gorm.DB, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || a.Status != entity.AppointmentStatusScheduled {
		return 0, nil
	}
	a.Status = entity.AppointmentStatusCancelled
	return 1, nil
}

type memServiceRepo struct {
	byCode map[string]*entity.ClinicService
}

func (r *memServiceRepo) Create(db *gorm.DB, service *entity.ClinicService) error { return nil }
func (r *memServiceRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.ClinicService, error) {
	return nil, nil
}
func (r *memServiceRepo) FindByCode(db *gorm.DB, code string) (*entity.ClinicService, error) {
	return r.byCode[code], nil
}
func (r *memServiceRepo) FindAll(db *gorm.DB, activeOnly bool) ([]entity.ClinicService, error) {
	return nil, nil
}
func (r *memServiceRepo) Update(db *gorm.DB, service *entity.ClinicService) error { return nil }
func (r *memServiceRepo) Delete(db *gorm.DB, id uuid.UUID) (int64, error)         { return 0, nil }

type memAuditRepo struct {
	mu   sync.Mutex
	logs []entity.AuditLog
}

func (r *memAuditRepo) Create(db *gorm.DB, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memAuditRepo) FindRecent(db *gorm.DB, limit int) ([]entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.AuditLog(nil), r.logs...), nil
}

// memReserver is an in-process SlotReserver with the same owner semantics as
// the Redis implementation
type memReserver struct {
	mu   sync.Mutex
	held map[string]string
	deny bool
}

func newMemReserver() *memReserver {
	return &memReserver{held: map[string]string{}}
}

func (r *memReserver) Reserve(ctx context.Context, slotKey, owner string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deny {
		return false, nil
	}
	if _, ok := r.held[slotKey]; ok {
		return false, nil
	}
	r.held[slotKey] = owner
	return true, nil
}

func (r *memReserver) Release(ctx context.Context, slotKey, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.held[slotKey] == owner {
		delete(r.held, slotKey)
	}
	return nil
}

func (r *memReserver) holder(slotKey string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.held[slotKey]
}

type fakeRegistry struct {
	mu           sync.Mutex
	registered   map[uuid.UUID]time.Time
	deregistered []uuid.UUID
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{registered: map[uuid.UUID]time.Time{}}
}

func (f *fakeRegistry) Register(invitationID uuid.UUID, deadline time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered[invitationID] = deadline
}

func (f *fakeRegistry) Deregister(invitationID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.registered, invitationID)
	f.deregistered = append(f.deregistered, invitationID)
}

func (f *fakeRegistry) tracks(invitationID uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.registered[invitationID]
	return ok
}

// =============================================================================
// Harness
// =============================================================================

type lifecycleHarness struct {
	lifecycle InvitationLifecycle

	entries      *memEntryRepo
	invitations  *memInvitationRepo
	appointments *memAppointmentRepo
	services     *memServiceRepo
	reserver     *memReserver
	registry     *fakeRegistry
	profiles     *fakeProfileRepo
	audits       *memAuditRepo
}

func newLifecycleHarness(t *testing.T) *lifecycleHarness {
	t.Helper()

	h := &lifecycleHarness{
		entries:      newMemEntryRepo(),
		invitations:  newMemInvitationRepo(),
		appointments: newMemAppointmentRepo(),
		services:     &memServiceRepo{byCode: map[string]*entity.ClinicService{}},
		reserver:     newMemReserver(),
		registry:     newFakeRegistry(),
		profiles:     &fakeProfileRepo{profiles: map[uuid.UUID]*entity.PatientProfile{}},
		audits:       &memAuditRepo{},
	}

	db := testGormDB(t)
	log := quietLogger()
	waitlist := config.WaitlistConfig{
		DefaultConfirmationHours: 24,
		MaxConfirmationHours:     48,
		DefaultPaymentAmount:     decimal.NewFromInt(500),
		MonitorInterval:          time.Minute,
		TopCandidates:            5,
		ReservationGrace:         time.Hour,
	}

	h.lifecycle = NewInvitationService(
		db,
		log,
		waitlist,
		NewSlotMatcher(),
		h.reserver,
		&recordingNotifier{},
		h.registry,
		NewAuditService(db, log, h.audits),
		h.entries,
		h.invitations,
		h.appointments,
		h.profiles,
		h.services,
	)
	return h
}

func (h *lifecycleHarness) addWaitingEntry(appointmentType string, priority entity.Priority, createdAt time.Time) entity.WaitingListEntry {
	entry := entity.WaitingListEntry{
		ID:              uuid.New(),
		PatientID:       uuid.New(),
		AppointmentType: appointmentType,
		Priority:        priority,
		Status:          entity.WaitingListStatusWaiting,
		CreatedAt:       createdAt,
	}
	h.entries.put(entry)
	return entry
}

func dermSlot() entity.AvailableSlot {
	return entity.AvailableSlot{
		Date:            time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 30,
		AppointmentType: "dermatology",
		ReasonFreed:     entity.SlotFreedReasonCancellation,
	}
}

// =============================================================================
// Creation
// =============================================================================

func TestCreateInvitation_HappyPath(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()

	price := decimal.NewFromInt(650)
	h.services.byCode["dermatology"] = &entity.ClinicService{Code: "dermatology", Price: price}

	entry := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())
	slot := dermSlot()

	invitation, err := h.lifecycle.CreateInvitation(ctx, entry.ID, slot, 0)
	require.NoError(t, err)
	require.NotNil(t, invitation)

	assert.Equal(t, entity.InvitationStatusSent, invitation.Status)
	assert.Equal(t, entry.ID, invitation.WaitingListEntryID)
	assert.Equal(t, entry.PatientID, invitation.PatientID)
	assert.True(t, price.Equal(invitation.PaymentRequired))
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), invitation.ConfirmationDeadline, 5*time.Second)

	// Entry moved to contacted with a stamped contact date
	stored := h.entries.get(entry.ID)
	assert.Equal(t, entity.WaitingListStatusContacted, stored.Status)
	assert.NotNil(t, stored.LastContactDate)

	// Deadline registered and slot reserved under the invitation's ID
	assert.True(t, h.registry.tracks(invitation.ID))
	assert.Equal(t, invitation.ID.String(), h.reserver.holder(slot.Key()))
}

func TestCreateInvitation_ConfirmationWindowClamped(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()

	entry := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())

	invitation, err := h.lifecycle.CreateInvitation(ctx, entry.ID, dermSlot(), 168)
	require.NoError(t, err)

	// Capped at the configured 48h maximum
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), invitation.ConfirmationDeadline, 5*time.Second)
}

func TestCreateInvitation_DefaultPaymentWhenServiceUnknown(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()

	entry := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())

	invitation, err := h.lifecycle.CreateInvitation(ctx, entry.ID, dermSlot(), 0)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(invitation.PaymentRequired))
}

func TestCreateInvitation_EntryGuards(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()
	slot := dermSlot()

	_, err := h.lifecycle.CreateInvitation(ctx, uuid.New(), slot, 0)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	contacted := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())
	h.entries.MarkContacted(nil, contacted.ID)
	_, err = h.lifecycle.CreateInvitation(ctx, contacted.ID, slot, 0)
	assert.ErrorIs(t, err, ErrEntryNotWaiting)

	wrongType := h.addWaitingEntry("cardiology", entity.PriorityMedium, time.Now())
	_, err = h.lifecycle.CreateInvitation(ctx, wrongType.ID, slot, 0)
	assert.ErrorIs(t, err, ErrEntryNotEligible)
}

func TestCreateInvitation_SlotAlreadyOffered(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()
	slot := dermSlot()

	first := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())
	second := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())

	_, err := h.lifecycle.CreateInvitation(ctx, first.ID, slot, 0)
	require.NoError(t, err)

	_, err = h.lifecycle.CreateInvitation(ctx, second.ID, slot, 0)
	assert.ErrorIs(t, err, ErrSlotAlreadyOffered)

	// The losing candidate keeps its place in the pool
	assert.Equal(t, entity.WaitingListStatusWaiting, h.entries.get(second.ID).Status)
}

func TestCreateInvitation_ReservationDeniedLeavesEntryWaiting(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()

	h.reserver.deny = true
	entry := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())

	_, err := h.lifecycle.CreateInvitation(ctx, entry.ID, dermSlot(), 0)
	assert.ErrorIs(t, err, ErrSlotAlreadyOffered)
	assert.Equal(t, entity.WaitingListStatusWaiting, h.entries.get(entry.ID).Status)
}

// =============================================================================
// Matching
// =============================================================================

func TestOnSlotFreed_InvitesBestCandidate(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()
	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	h.addWaitingEntry("dermatology", entity.PriorityLow, base)
	high := h.addWaitingEntry("dermatology", entity.PriorityHigh, base.Add(time.Hour))
	h.addWaitingEntry("cardiology", entity.PriorityHigh, base)

	invitation, err := h.lifecycle.OnSlotFreed(ctx, dermSlot())
	require.NoError(t, err)
	require.NotNil(t, invitation)
	assert.Equal(t, high.ID, invitation.WaitingListEntryID)
}

func TestOnSlotFreed_NoCandidates(t *testing.T) {
	h := newLifecycleHarness(t)

	invitation, err := h.lifecycle.OnSlotFreed(context.Background(), dermSlot())
	require.NoError(t, err)
	assert.Nil(t, invitation)
}

func TestOnSlotFreed_InvalidSlot(t *testing.T) {
	h := newLifecycleHarness(t)

	bad := dermSlot()
	bad.StartTime = "not-a-time"
	_, err := h.lifecycle.OnSlotFreed(context.Background(), bad)
	assert.Error(t, err)
}

// =============================================================================
// Patient responses
// =============================================================================

func TestMarkViewedAndAccepted(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()

	entry := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())
	invitation, err := h.lifecycle.CreateInvitation(ctx, entry.ID, dermSlot(), 0)
	require.NoError(t, err)

	viewed, err := h.lifecycle.MarkViewed(ctx, invitation.ID, entry.PatientID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationStatusViewed, viewed.Status)
	assert.NotNil(t, viewed.ViewedAt)

	// Accept moves straight through to payment_pending
	accepted, err := h.lifecycle.MarkAccepted(ctx, invitation.ID, entry.PatientID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationStatusPaymentPending, accepted.Status)
	assert.NotNil(t, accepted.AcceptedAt)
}

func TestMarkViewed_Idempotent(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()

	entry := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())
	invitation, err := h.lifecycle.CreateInvitation(ctx, entry.ID, dermSlot(), 0)
	require.NoError(t, err)

	_, err = h.lifecycle.MarkViewed(ctx, invitation.ID, entry.PatientID)
	require.NoError(t, err)

	// Second view is not an error, current state comes back
	again, err := h.lifecycle.MarkViewed(ctx, invitation.ID, entry.PatientID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationStatusViewed, again.Status)
}

func TestMarkViewed_OwnershipEnforced(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()

	entry := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())
	invitation, err := h.lifecycle.CreateInvitation(ctx, entry.ID, dermSlot(), 0)
	require.NoError(t, err)

	_, err = h.lifecycle.MarkViewed(ctx, invitation.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotInvitationOwner)

	_, err = h.lifecycle.MarkViewed(ctx, uuid.New(), entry.PatientID)
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

// =============================================================================
// Payment confirmation
// =============================================================================

func TestConfirmPayment_CreatesAppointment(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()
	staffID := uuid.New()

	entry := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())
	invitation, err := h.lifecycle.CreateInvitation(ctx, entry.ID, dermSlot(), 0)
	require.NoError(t, err)

	_, err = h.lifecycle.MarkAccepted(ctx, invitation.ID, entry.PatientID)
	require.NoError(t, err)

	appointment, err := h.lifecycle.ConfirmPayment(ctx, invitation.ID, staffID)
	require.NoError(t, err)
	require.NotNil(t, appointment)

	assert.Equal(t, entry.PatientID, appointment.PatientID)
	assert.Equal(t, entity.AppointmentStatusScheduled, appointment.Status)
	require.NotNil(t, appointment.InvitationID)
	assert.Equal(t, invitation.ID, *appointment.InvitationID)
	assert.Equal(t, invitation.SlotStartTime, appointment.StartTime)

	assert.Equal(t, entity.InvitationStatusConfirmed, h.invitations.get(invitation.ID).Status)
	assert.Equal(t, entity.WaitingListStatusScheduled, h.entries.get(entry.ID).Status)

	// Monitor no longer tracks it and the slot marker is gone
	assert.False(t, h.registry.tracks(invitation.ID))
	assert.Empty(t, h.reserver.holder(dermSlot().Key()))
}

func TestConfirmPayment_Idempotent(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()
	staffID := uuid.New()

	entry := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())
	invitation, err := h.lifecycle.CreateInvitation(ctx, entry.ID, dermSlot(), 0)
	require.NoError(t, err)
	_, err = h.lifecycle.MarkAccepted(ctx, invitation.ID, entry.PatientID)
	require.NoError(t, err)

	first, err := h.lifecycle.ConfirmPayment(ctx, invitation.ID, staffID)
	require.NoError(t, err)

	second, err := h.lifecycle.ConfirmPayment(ctx, invitation.ID, staffID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestConfirmPayment_BeforeAcceptance(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()

	entry := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())
	invitation, err := h.lifecycle.CreateInvitation(ctx, entry.ID, dermSlot(), 0)
	require.NoError(t, err)

	_, err = h.lifecycle.ConfirmPayment(ctx, invitation.ID, uuid.New())
	assert.ErrorIs(t, err, ErrPaymentStateMismatch)
}

func TestConfirmPayment_TerminalInvitation(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()

	entry := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())
	invitation, err := h.lifecycle.CreateInvitation(ctx, entry.ID, dermSlot(), 0)
	require.NoError(t, err)

	_, err = h.lifecycle.Decline(ctx, invitation.ID, entry.PatientID, "changed my mind")
	require.NoError(t, err)

	_, err = h.lifecycle.ConfirmPayment(ctx, invitation.ID, uuid.New())
	assert.ErrorIs(t, err, ErrInvitationTerminal)
}

// =============================================================================
// Decline and expiry cascade
// =============================================================================

func TestDecline_ReoffersSlotToNextCandidate(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()
	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	first := h.addWaitingEntry("dermatology", entity.PriorityHigh, base)
	second := h.addWaitingEntry("dermatology", entity.PriorityMedium, base)

	invitation, err := h.lifecycle.OnSlotFreed(ctx, dermSlot())
	require.NoError(t, err)
	require.Equal(t, first.ID, invitation.WaitingListEntryID)

	declined, err := h.lifecycle.Decline(ctx, invitation.ID, first.PatientID, "cannot make it")
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationStatusDeclined, declined.Status)
	assert.Equal(t, "cannot make it", declined.DeclineReason)

	// The decliner is back in the pool without a counted attempt
	stored := h.entries.get(first.ID)
	assert.Equal(t, entity.WaitingListStatusWaiting, stored.Status)
	assert.Equal(t, 0, stored.ContactAttempts)

	// Cascade invited the next candidate for the same slot
	next, err := h.invitations.FindActiveByEntryID(nil, second.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, entity.InvitationStatusSent, next.Status)
	assert.Equal(t, entity.WaitingListStatusContacted, h.entries.get(second.ID).Status)
	assert.Equal(t, next.ID.String(), h.reserver.holder(dermSlot().Key()))
}

func TestExpire_CountsAttemptAndCascades(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()
	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	first := h.addWaitingEntry("dermatology", entity.PriorityHigh, base)
	second := h.addWaitingEntry("dermatology", entity.PriorityLow, base)

	invitation, err := h.lifecycle.OnSlotFreed(ctx, dermSlot())
	require.NoError(t, err)
	require.Equal(t, first.ID, invitation.WaitingListEntryID)

	require.NoError(t, h.lifecycle.Expire(ctx, invitation.ID))

	expired := h.invitations.get(invitation.ID)
	assert.Equal(t, entity.InvitationStatusExpired, expired.Status)
	assert.Equal(t, entity.DeclineReasonDeadlinePassed, expired.DeclineReason)

	// Expiry counts a failed contact against the entry
	stored := h.entries.get(first.ID)
	assert.Equal(t, entity.WaitingListStatusWaiting, stored.Status)
	assert.Equal(t, 1, stored.ContactAttempts)

	// The slot went down the list
	next, err := h.invitations.FindActiveByEntryID(nil, second.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
}

func TestExpire_TerminalIsReported(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()

	entry := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())
	invitation, err := h.lifecycle.CreateInvitation(ctx, entry.ID, dermSlot(), 0)
	require.NoError(t, err)

	require.NoError(t, h.lifecycle.Expire(ctx, invitation.ID))

	// Second expiry attempt (racing sweep) reports terminal
	assert.ErrorIs(t, h.lifecycle.Expire(ctx, invitation.ID), ErrInvitationTerminal)
	assert.ErrorIs(t, h.lifecycle.Expire(ctx, uuid.New()), ErrInvitationTerminal)
}

func TestDecline_StaffOverrideSkipsOwnership(t *testing.T) {
	h := newLifecycleHarness(t)
	ctx := context.Background()

	entry := h.addWaitingEntry("dermatology", entity.PriorityMedium, time.Now())
	invitation, err := h.lifecycle.CreateInvitation(ctx, entry.ID, dermSlot(), 0)
	require.NoError(t, err)

	declined, err := h.lifecycle.Decline(ctx, invitation.ID, uuid.Nil, "entry_withdrawn")
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationStatusDeclined, declined.Status)
}
