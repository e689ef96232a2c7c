package service

import (
	"context"
	"errors"
	"time"

	"clinic-appointment-manager/config"
	"clinic-appointment-manager/internal/domain/entity"
	domainRepo "clinic-appointment-manager/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrEntryNotFound is returned when the waiting-list entry does not exist
	ErrEntryNotFound = errors.New("waiting list entry not found")

	// ErrInvitationNotFound is returned when the invitation does not exist
	ErrInvitationNotFound = errors.New("invitation not found")

	// ErrEntryNotWaiting is returned when the entry is not in waiting status
	ErrEntryNotWaiting = errors.New("waiting list entry is not in waiting status")

	// ErrEntryNotEligible is returned when the entry's type or preferences
	// do not match the offered slot
	ErrEntryNotEligible = errors.New("waiting list entry is not eligible for this slot")

	// ErrSlotAlreadyOffered is returned when the slot already has an active
	// invitation out
	ErrSlotAlreadyOffered = errors.New("slot already has an active invitation")

	// ErrInvitationTerminal is returned when the invitation reached a
	// terminal state and cannot transition further
	ErrInvitationTerminal = errors.New("invitation is already in a terminal state")

	// ErrStaleTransition is returned when a concurrent caller changed the
	// invitation between read and update
	ErrStaleTransition = errors.New("invitation changed concurrently, re-read and retry")

	// ErrPaymentStateMismatch is returned when payment confirmation arrives
	// before the patient accepted the invitation
	ErrPaymentStateMismatch = errors.New("invitation has not been accepted yet")

	// ErrNotInvitationOwner is returned when a patient acts on another
	// patient's invitation
	ErrNotInvitationOwner = errors.New("invitation belongs to another patient")
)

// =============================================================================
// Types
// =============================================================================

// DeadlineRegistry is the monitor-facing slice of the deadline monitor.
// The lifecycle service registers every invitation it sends and deregisters
// the ones it closes itself.
type DeadlineRegistry interface {
	Register(invitationID uuid.UUID, deadline time.Time)
	Deregister(invitationID uuid.UUID)
}

// InvitationLifecycle drives the invitation state machine from slot freed
// through confirmation or expiry, including the cascade that re-offers a
// slot after a decline or expiry.
type InvitationLifecycle interface {
	// OnSlotFreed matches a freed slot against the waiting list and invites
	// the best candidate. Returns nil invitation when nobody is eligible.
	OnSlotFreed(ctx context.Context, slot entity.AvailableSlot) (*entity.Invitation, error)
	// CreateInvitation offers a slot to a specific entry. confirmationHours
	// 0 means the configured default; values above the cap are clamped.
	CreateInvitation(ctx context.Context, entryID uuid.UUID, slot entity.AvailableSlot, confirmationHours int) (*entity.Invitation, error)
	// MarkViewed records that the patient opened the invitation
	MarkViewed(ctx context.Context, invitationID, patientID uuid.UUID) (*entity.Invitation, error)
	// MarkAccepted records acceptance and sends payment instructions
	MarkAccepted(ctx context.Context, invitationID, patientID uuid.UUID) (*entity.Invitation, error)
	// ConfirmPayment finalizes the invitation into an appointment. Staff
	// calls this once the deposit is received. Idempotent for confirmed
	// invitations.
	ConfirmPayment(ctx context.Context, invitationID uuid.UUID, actorID uuid.UUID) (*entity.Appointment, error)
	// Decline closes the invitation and re-offers the slot down the list.
	// patientID uuid.Nil skips the ownership check for staff-driven declines.
	Decline(ctx context.Context, invitationID, patientID uuid.UUID, reason string) (*entity.Invitation, error)
	// Expire closes an overdue invitation, counts the failed contact and
	// re-offers the slot. Called by the deadline monitor.
	Expire(ctx context.Context, invitationID uuid.UUID) error

	GetByID(ctx context.Context, invitationID uuid.UUID) (*entity.Invitation, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]entity.Invitation, error)
}

type invitationService struct {
	db       *gorm.DB
	log      *logrus.Logger
	waitlist config.WaitlistConfig

	matcher  *SlotMatcher
	reserver SlotReserver
	notifier Notifier
	registry DeadlineRegistry
	audit    *AuditService

	entryRepo       domainRepo.WaitingListRepository
	invitationRepo  domainRepo.InvitationRepository
	appointmentRepo domainRepo.AppointmentRepository
	profileRepo     domainRepo.PatientProfileRepository
	serviceRepo     domainRepo.ClinicServiceRepository
}

// =============================================================================
// Constructor
// =============================================================================

func NewInvitationService(
	db *gorm.DB,
	log *logrus.Logger,
	waitlist config.WaitlistConfig,
	matcher *SlotMatcher,
	reserver SlotReserver,
	notifier Notifier,
	registry DeadlineRegistry,
	audit *AuditService,
	entryRepo domainRepo.WaitingListRepository,
	invitationRepo domainRepo.InvitationRepository,
	appointmentRepo domainRepo.AppointmentRepository,
	profileRepo domainRepo.PatientProfileRepository,
	serviceRepo domainRepo.ClinicServiceRepository,
) InvitationLifecycle {
	return &invitationService{
		db:              db,
		log:             log,
		waitlist:        waitlist,
		matcher:         matcher,
		reserver:        reserver,
		notifier:        notifier,
		registry:        registry,
		audit:           audit,
		entryRepo:       entryRepo,
		invitationRepo:  invitationRepo,
		appointmentRepo: appointmentRepo,
		profileRepo:     profileRepo,
		serviceRepo:     serviceRepo,
	}
}

// =============================================================================
// Matching
// =============================================================================

// OnSlotFreed walks the ranked candidates for the slot and invites the first
// one whose conditional transitions all succeed. A losing candidate (already
// contacted or removed by a concurrent caller) is skipped, not fatal.
func (s *invitationService) OnSlotFreed(ctx context.Context, slot entity.AvailableSlot) (*entity.Invitation, error) {
	if err := slot.Validate(); err != nil {
		return nil, err
	}

	candidates, err := s.entryRepo.FindWaitingByType(s.db.WithContext(ctx), slot.AppointmentType)
	if err != nil {
		s.log.Warnf("Failed to load waiting list for slot %s: %+v", slot.Key(), err)
		return nil, err
	}

	ranked := s.matcher.Rank(slot, candidates)
	if len(ranked) == 0 {
		s.log.Infof("No eligible candidate for freed slot %s", slot.Key())
		return nil, nil
	}

	for _, candidate := range ranked {
		invitation, err := s.CreateInvitation(ctx, candidate.ID, slot, 0)
		if err != nil {
			if errors.Is(err, ErrSlotAlreadyOffered) {
				// Another process took the slot, nothing left to offer
				return nil, nil
			}
			if errors.Is(err, ErrEntryNotWaiting) || errors.Is(err, ErrEntryNotFound) {
				// Candidate changed under us, move down the list
				continue
			}
			return nil, err
		}
		return invitation, nil
	}

	s.log.Infof("All %d candidates for slot %s lost their races, slot stays open", len(ranked), slot.Key())
	return nil, nil
}

// =============================================================================
// Invitation creation
// =============================================================================

func (s *invitationService) CreateInvitation(ctx context.Context, entryID uuid.UUID, slot entity.AvailableSlot, confirmationHours int) (*entity.Invitation, error) {
	if err := slot.Validate(); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	entry, err := s.entryRepo.FindByID(db, entryID)
	if err != nil {
		s.log.Warnf("Failed to find waiting list entry %s: %+v", entryID, err)
		return nil, err
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}
	if !entry.IsWaiting() {
		return nil, ErrEntryNotWaiting
	}
	if !entry.Matches(slot) {
		return nil, ErrEntryNotEligible
	}

	existing, err := s.invitationRepo.FindActiveBySlot(db, slot.Date, slot.StartTime, slot.AppointmentType)
	if err != nil {
		s.log.Warnf("Failed to check active invitation for slot %s: %+v", slot.Key(), err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlotAlreadyOffered
	}

	now := time.Now()
	deadline := now.Add(s.confirmationWindow(confirmationHours))
	invitationID := uuid.New()

	// Fast-path reservation in Redis. The marker outlives the deadline by
	// the grace period so the expiry cascade never races its own TTL.
	ttl := time.Until(deadline) + s.waitlist.ReservationGrace
	reserved, err := s.reserver.Reserve(ctx, slot.Key(), invitationID.String(), ttl)
	if err != nil {
		s.log.Warnf("Slot reservation failed for %s: %+v", slot.Key(), err)
		return nil, err
	}
	if !reserved {
		return nil, ErrSlotAlreadyOffered
	}

	rows, err := s.entryRepo.MarkContacted(db, entry.ID)
	if err != nil {
		s.releaseReservation(ctx, slot.Key(), invitationID.String())
		s.log.Warnf("Failed to mark entry %s contacted: %+v", entry.ID, err)
		return nil, err
	}
	if rows == 0 {
		// Entry left waiting status between our read and the update
		s.releaseReservation(ctx, slot.Key(), invitationID.String())
		return nil, ErrEntryNotWaiting
	}

	invitation := &entity.Invitation{
		ID:                   invitationID,
		WaitingListEntryID:   entry.ID,
		PatientID:            entry.PatientID,
		SlotDate:             slot.Date,
		SlotStartTime:        slot.StartTime,
		SlotDuration:         slot.DurationMinutes,
		AppointmentType:      slot.AppointmentType,
		ReasonFreed:          slot.ReasonFreed,
		SentAt:               now,
		ConfirmationDeadline: deadline,
		PaymentRequired:      s.paymentAmount(ctx, slot.AppointmentType),
		Status:               entity.InvitationStatusSent,
	}

	if err := s.invitationRepo.Create(db, invitation); err != nil {
		// Compensate: put the entry back and free the slot marker
		if _, revertErr := s.entryRepo.RevertToWaiting(db, entry.ID, false); revertErr != nil {
			s.log.Errorf("COMPENSATION FAILED: entry %s stuck in contacted after create error, needs reconciliation: %+v", entry.ID, revertErr)
		}
		s.releaseReservation(ctx, slot.Key(), invitationID.String())

		if isDuplicateKeyError(err) {
			return nil, ErrSlotAlreadyOffered
		}
		s.log.Warnf("Failed to create invitation for entry %s: %+v", entry.ID, err)
		return nil, err
	}

	s.registry.Register(invitation.ID, invitation.ConfirmationDeadline)

	go s.notifyInvitation(invitation)
	s.audit.Record(ctx, nil, entity.AuditActionInvitationCreate, entity.JSON{
		"invitation_id": invitation.ID.String(),
		"entry_id":      entry.ID.String(),
		"patient_id":    entry.PatientID.String(),
		"slot":          slot.Key(),
		"deadline":      deadline.Format(time.RFC3339),
	})

	s.log.Infof("Invitation %s sent for slot %s, deadline %s", invitation.ID, slot.Key(), deadline.Format(time.RFC3339))
	return invitation, nil
}

// =============================================================================
// Patient responses
// =============================================================================

func (s *invitationService) MarkViewed(ctx context.Context, invitationID, patientID uuid.UUID) (*entity.Invitation, error) {
	db := s.db.WithContext(ctx)

	invitation, err := s.findOwned(db, invitationID, patientID)
	if err != nil {
		return nil, err
	}
	if invitation.IsTerminal() {
		return nil, ErrInvitationTerminal
	}

	rows, err := s.invitationRepo.MarkViewed(db, invitationID)
	if err != nil {
		s.log.Warnf("Failed to mark invitation %s viewed: %+v", invitationID, err)
		return nil, err
	}
	if rows == 0 {
		// Already viewed or further along; re-read and report current state
		return s.reRead(db, invitationID)
	}

	return s.invitationRepo.FindByID(db, invitationID)
}

func (s *invitationService) MarkAccepted(ctx context.Context, invitationID, patientID uuid.UUID) (*entity.Invitation, error) {
	db := s.db.WithContext(ctx)

	invitation, err := s.findOwned(db, invitationID, patientID)
	if err != nil {
		return nil, err
	}
	if invitation.IsTerminal() {
		return nil, ErrInvitationTerminal
	}

	rows, err := s.invitationRepo.MarkAccepted(db, invitationID)
	if err != nil {
		s.log.Warnf("Failed to mark invitation %s accepted: %+v", invitationID, err)
		return nil, err
	}
	if rows == 0 {
		return s.reRead(db, invitationID)
	}

	// Move to payment_pending once instructions are out. Best effort: a
	// failure leaves the invitation in accepted, which ConfirmPayment also
	// accepts.
	if _, err := s.invitationRepo.MarkPaymentPending(db, invitationID); err != nil {
		s.log.Warnf("Failed to mark invitation %s payment pending: %+v", invitationID, err)
	}

	updated, err := s.invitationRepo.FindByID(db, invitationID)
	if err != nil {
		return nil, err
	}

	go s.notifyPayment(updated)
	return updated, nil
}

func (s *invitationService) ConfirmPayment(ctx context.Context, invitationID uuid.UUID, actorID uuid.UUID) (*entity.Appointment, error) {
	db := s.db.WithContext(ctx)

	invitation, err := s.invitationRepo.FindByID(db, invitationID)
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, ErrInvitationNotFound
	}

	switch invitation.Status {
	case entity.InvitationStatusConfirmed:
		// Idempotent: return the appointment already created
		return s.appointmentRepo.FindByInvitationID(db, invitationID)
	case entity.InvitationStatusDeclined, entity.InvitationStatusExpired:
		return nil, ErrInvitationTerminal
	}

	rows, err := s.invitationRepo.Confirm(db, invitationID)
	if err != nil {
		s.log.Warnf("Failed to confirm invitation %s: %+v", invitationID, err)
		return nil, err
	}
	if rows == 0 {
		current, err := s.invitationRepo.FindByID(db, invitationID)
		if err != nil {
			return nil, err
		}
		if current != nil && current.Status == entity.InvitationStatusConfirmed {
			return s.appointmentRepo.FindByInvitationID(db, invitationID)
		}
		if current == nil || current.IsTerminal() {
			return nil, ErrInvitationTerminal
		}
		// Still sent or viewed: the patient never accepted
		return nil, ErrPaymentStateMismatch
	}

	appointment := &entity.Appointment{
		PatientID:       invitation.PatientID,
		InvitationID:    &invitation.ID,
		Date:            invitation.SlotDate,
		StartTime:       invitation.SlotStartTime,
		DurationMinutes: invitation.SlotDuration,
		AppointmentType: invitation.AppointmentType,
		Status:          entity.AppointmentStatusScheduled,
	}
	if err := s.appointmentRepo.Create(db, appointment); err != nil {
		s.log.Errorf("RECONCILIATION NEEDED: invitation %s confirmed but appointment creation failed: %+v", invitationID, err)
		return nil, err
	}

	if _, err := s.entryRepo.MarkScheduled(db, invitation.WaitingListEntryID); err != nil {
		s.log.Warnf("Failed to mark entry %s scheduled: %+v", invitation.WaitingListEntryID, err)
	}

	s.registry.Deregister(invitationID)
	s.releaseReservation(ctx, invitation.SlotKey(), invitation.ID.String())

	go s.notifyConfirmation(invitation, appointment)
	actor := actorID
	s.audit.Record(ctx, &actor, entity.AuditActionInvitationConfirm, entity.JSON{
		"invitation_id":  invitation.ID.String(),
		"appointment_id": appointment.ID.String(),
		"patient_id":     invitation.PatientID.String(),
	})
	s.audit.Record(ctx, &actor, entity.AuditActionAppointmentCreate, entity.JSON{
		"appointment_id": appointment.ID.String(),
		"slot":           invitation.SlotKey(),
	})

	s.log.Infof("Invitation %s confirmed, appointment %s booked", invitation.ID, appointment.ID)
	return appointment, nil
}

// =============================================================================
// Closing paths
// =============================================================================

func (s *invitationService) Decline(ctx context.Context, invitationID, patientID uuid.UUID, reason string) (*entity.Invitation, error) {
	db := s.db.WithContext(ctx)

	invitation, err := s.findOwned(db, invitationID, patientID)
	if err != nil {
		return nil, err
	}
	if invitation.IsTerminal() {
		return nil, ErrInvitationTerminal
	}

	rows, err := s.invitationRepo.Terminate(db, invitationID, entity.InvitationStatusDeclined, reason)
	if err != nil {
		s.log.Warnf("Failed to decline invitation %s: %+v", invitationID, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrInvitationTerminal
	}

	s.registry.Deregister(invitationID)
	s.releaseReservation(ctx, invitation.SlotKey(), invitation.ID.String())

	// Re-offer the slot while the entry is still contacted so the decliner
	// is not handed the same slot right back
	s.cascade(ctx, invitation.Slot())

	// Put the entry back in the pool. A withdrawn entry is already removed
	// and the conditional update is a harmless no-op.
	if _, err := s.entryRepo.RevertToWaiting(db, invitation.WaitingListEntryID, false); err != nil {
		s.log.Warnf("Failed to revert entry %s to waiting: %+v", invitation.WaitingListEntryID, err)
	}

	var actor *uuid.UUID
	if patientID != uuid.Nil {
		actor = &patientID
	}
	s.audit.Record(ctx, actor, entity.AuditActionInvitationDecline, entity.JSON{
		"invitation_id": invitation.ID.String(),
		"reason":        reason,
	})

	return s.invitationRepo.FindByID(db, invitationID)
}

func (s *invitationService) Expire(ctx context.Context, invitationID uuid.UUID) error {
	db := s.db.WithContext(ctx)

	invitation, err := s.invitationRepo.FindByID(db, invitationID)
	if err != nil {
		return err
	}
	if invitation == nil || invitation.IsTerminal() {
		return ErrInvitationTerminal
	}

	rows, err := s.invitationRepo.Terminate(db, invitationID, entity.InvitationStatusExpired, entity.DeclineReasonDeadlinePassed)
	if err != nil {
		s.log.Warnf("Failed to expire invitation %s: %+v", invitationID, err)
		return err
	}
	if rows == 0 {
		return ErrInvitationTerminal
	}

	s.releaseReservation(ctx, invitation.SlotKey(), invitation.ID.String())

	// Re-offer while the entry is still contacted, otherwise the patient
	// who just missed the deadline wins the slot again and the cycle repeats
	s.log.Infof("Invitation %s expired, re-offering slot %s", invitation.ID, invitation.SlotKey())
	s.cascade(ctx, invitation.Slot())

	// Expiry counts as a failed contact attempt against the entry
	if _, err := s.entryRepo.RevertToWaiting(db, invitation.WaitingListEntryID, true); err != nil {
		s.log.Warnf("Failed to revert entry %s after expiry: %+v", invitation.WaitingListEntryID, err)
	}

	go s.notifyExpiry(invitation)
	s.audit.Record(ctx, nil, entity.AuditActionInvitationExpire, entity.JSON{
		"invitation_id": invitation.ID.String(),
		"entry_id":      invitation.WaitingListEntryID.String(),
		"slot":          invitation.SlotKey(),
	})

	return nil
}

// =============================================================================
// Reads
// =============================================================================

func (s *invitationService) GetByID(ctx context.Context, invitationID uuid.UUID) (*entity.Invitation, error) {
	invitation, err := s.invitationRepo.FindByID(s.db.WithContext(ctx), invitationID)
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, ErrInvitationNotFound
	}
	return invitation, nil
}

func (s *invitationService) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]entity.Invitation, error) {
	return s.invitationRepo.FindByPatientID(s.db.WithContext(ctx), patientID)
}

// =============================================================================
// Private helpers
// =============================================================================

// confirmationWindow clamps the requested window into [1h, max], 0 = default
func (s *invitationService) confirmationWindow(hours int) time.Duration {
	if hours <= 0 {
		hours = s.waitlist.DefaultConfirmationHours
	}
	if hours > s.waitlist.MaxConfirmationHours {
		hours = s.waitlist.MaxConfirmationHours
	}
	return time.Duration(hours) * time.Hour
}

// paymentAmount uses the clinic service price when one is defined for the
// appointment type, otherwise the configured default deposit
func (s *invitationService) paymentAmount(ctx context.Context, appointmentType string) decimal.Decimal {
	svc, err := s.serviceRepo.FindByCode(s.db.WithContext(ctx), appointmentType)
	if err != nil {
		s.log.Warnf("Failed to look up service %s for payment amount: %+v", appointmentType, err)
		return s.waitlist.DefaultPaymentAmount
	}
	if svc == nil || !svc.Price.IsPositive() {
		return s.waitlist.DefaultPaymentAmount
	}
	return svc.Price
}

func (s *invitationService) findOwned(db *gorm.DB, invitationID, patientID uuid.UUID) (*entity.Invitation, error) {
	invitation, err := s.invitationRepo.FindByID(db, invitationID)
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, ErrInvitationNotFound
	}
	if patientID != uuid.Nil && invitation.PatientID != patientID {
		return nil, ErrNotInvitationOwner
	}
	return invitation, nil
}

func (s *invitationService) reRead(db *gorm.DB, invitationID uuid.UUID) (*entity.Invitation, error) {
	current, err := s.invitationRepo.FindByID(db, invitationID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrInvitationNotFound
	}
	if current.IsTerminal() {
		return nil, ErrInvitationTerminal
	}
	return current, nil
}

// cascade re-offers a slot after a decline or expiry. Failures are logged,
// never propagated: the closing transition already committed.
func (s *invitationService) cascade(ctx context.Context, slot entity.AvailableSlot) {
	next, err := s.OnSlotFreed(ctx, slot)
	if err != nil {
		s.log.Warnf("Cascade for slot %s failed: %+v", slot.Key(), err)
		return
	}
	if next == nil {
		s.log.Infof("Cascade for slot %s found no further candidates", slot.Key())
	}
}

func (s *invitationService) releaseReservation(ctx context.Context, slotKey, owner string) {
	if err := s.reserver.Release(ctx, slotKey, owner); err != nil {
		s.log.Warnf("Failed to release reservation for slot %s: %+v", slotKey, err)
	}
}

// =============================================================================
// Notifications (best effort, off the request path)
// =============================================================================

func (s *invitationService) notifyInvitation(invitation *entity.Invitation) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	contact, ok := s.lookupContact(ctx, invitation.PatientID)
	if !ok {
		return
	}
	if err := s.notifier.SendInvitation(ctx, contact, invitation); err != nil {
		s.log.Warnf("Failed to send invitation notification %s: %+v", invitation.ID, err)
	}
}

func (s *invitationService) notifyPayment(invitation *entity.Invitation) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	contact, ok := s.lookupContact(ctx, invitation.PatientID)
	if !ok {
		return
	}
	if err := s.notifier.SendPaymentInstructions(ctx, contact, invitation); err != nil {
		s.log.Warnf("Failed to send payment instructions for %s: %+v", invitation.ID, err)
	}
}

func (s *invitationService) notifyConfirmation(invitation *entity.Invitation, appointment *entity.Appointment) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	contact, ok := s.lookupContact(ctx, invitation.PatientID)
	if !ok {
		return
	}
	if err := s.notifier.SendConfirmation(ctx, contact, appointment); err != nil {
		s.log.Warnf("Failed to send confirmation for appointment %s: %+v", appointment.ID, err)
	}
}

func (s *invitationService) notifyExpiry(invitation *entity.Invitation) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	contact, ok := s.lookupContact(ctx, invitation.PatientID)
	if !ok {
		return
	}
	if err := s.notifier.SendExpiryNotice(ctx, contact, invitation); err != nil {
		s.log.Warnf("Failed to send expiry notice for %s: %+v", invitation.ID, err)
	}
}

func (s *invitationService) lookupContact(ctx context.Context, patientID uuid.UUID) (string, bool) {
	profile, err := s.profileRepo.FindByUserID(s.db.WithContext(ctx), patientID)
	if err != nil {
		s.log.Warnf("Failed to load patient profile %s for notification: %+v", patientID, err)
		return "", false
	}
	if profile == nil || profile.Contact() == "" {
		s.log.Warnf("Patient %s has no contact on file, notification skipped", patientID)
		return "", false
	}
	return profile.Contact(), true
}

// isDuplicateKeyError checks PostgreSQL unique violation (23505), which the
// partial unique indexes raise when two processes win the same race
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
