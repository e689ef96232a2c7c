package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clinic-appointment-manager/internal/domain/entity"
	domainRepo "clinic-appointment-manager/internal/domain/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// fakeExpirer records expiry calls and answers from a canned error map
type fakeExpirer struct {
	mu      sync.Mutex
	expired []uuid.UUID
	errs    map[uuid.UUID]error
}

func (f *fakeExpirer) Expire(ctx context.Context, invitationID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[invitationID]; ok {
		return err
	}
	f.expired = append(f.expired, invitationID)
	return nil
}

// fakeInvitationRepo serves invitations from memory, the db handle is unused
type fakeInvitationRepo struct {
	domainRepo.InvitationRepository
	byID   map[uuid.UUID]*entity.Invitation
	active []entity.Invitation
}

func (f *fakeInvitationRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Invitation, error) {
	return f.byID[id], nil
}

func (f *fakeInvitationRepo) FindAllActive(db *gorm.DB) ([]entity.Invitation, error) {
	return f.active, nil
}

type fakeProfileRepo struct {
	domainRepo.PatientProfileRepository
	profiles map[uuid.UUID]*entity.PatientProfile
}

func (f *fakeProfileRepo) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.PatientProfile, error) {
	return f.profiles[userID], nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	reminders []uuid.UUID
}

func (n *recordingNotifier) SendInvitation(ctx context.Context, contact string, inv *entity.Invitation) error {
	return nil
}

func (n *recordingNotifier) SendReminder(ctx context.Context, contact string, inv *entity.Invitation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders = append(n.reminders, inv.ID)
	return nil
}

func (n *recordingNotifier) SendPaymentInstructions(ctx context.Context, contact string, inv *entity.Invitation) error {
	return nil
}

func (n *recordingNotifier) SendConfirmation(ctx context.Context, contact string, appt *entity.Appointment) error {
	return nil
}

func (n *recordingNotifier) SendExpiryNotice(ctx context.Context, contact string, inv *entity.Invitation) error {
	return nil
}

func testGormDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.FatalLevel)
	return log
}

func newTestMonitor(t *testing.T, invRepo *fakeInvitationRepo, profRepo *fakeProfileRepo, notifier Notifier, reminderLead time.Duration) *DeadlineMonitor {
	t.Helper()
	if invRepo == nil {
		invRepo = &fakeInvitationRepo{byID: map[uuid.UUID]*entity.Invitation{}}
	}
	if profRepo == nil {
		profRepo = &fakeProfileRepo{profiles: map[uuid.UUID]*entity.PatientProfile{}}
	}
	if notifier == nil {
		notifier = &recordingNotifier{}
	}
	return NewDeadlineMonitor(testGormDB(t), quietLogger(), invRepo, profRepo, notifier, time.Minute, reminderLead)
}

func TestDeadlineMonitor_SweepExpiresOverdue(t *testing.T) {
	monitor := newTestMonitor(t, nil, nil, nil, 0)
	expirer := &fakeExpirer{}

	overdue := uuid.New()
	pending := uuid.New()
	monitor.Register(overdue, time.Now().Add(-time.Minute))
	monitor.Register(pending, time.Now().Add(time.Hour))

	monitor.Sweep(context.Background(), expirer)

	assert.Equal(t, []uuid.UUID{overdue}, expirer.expired)

	status := monitor.Status()
	assert.Equal(t, 1, status.TrackedCount)
	assert.Equal(t, pending, status.Tracked[0].InvitationID)
	assert.Equal(t, int64(1), status.TotalExpired)
	assert.Equal(t, int64(1), status.SweepsRun)
	require.NotNil(t, status.LastSweepAt)
}

func TestDeadlineMonitor_SweepDeregistersAlreadyTerminal(t *testing.T) {
	monitor := newTestMonitor(t, nil, nil, nil, 0)

	raced := uuid.New()
	monitor.Register(raced, time.Now().Add(-time.Minute))

	expirer := &fakeExpirer{errs: map[uuid.UUID]error{raced: ErrInvitationTerminal}}
	monitor.Sweep(context.Background(), expirer)

	// Lost race with confirm or decline: drop it without counting an expiry
	status := monitor.Status()
	assert.Equal(t, 0, status.TrackedCount)
	assert.Equal(t, int64(0), status.TotalExpired)
}

func TestDeadlineMonitor_SweepKeepsFailedExpiry(t *testing.T) {
	monitor := newTestMonitor(t, nil, nil, nil, 0)

	stuck := uuid.New()
	monitor.Register(stuck, time.Now().Add(-time.Minute))

	expirer := &fakeExpirer{errs: map[uuid.UUID]error{stuck: errors.New("db down")}}
	monitor.Sweep(context.Background(), expirer)

	// Still tracked, the next sweep retries
	assert.Equal(t, 1, monitor.Status().TrackedCount)

	delete(expirer.errs, stuck)
	monitor.Sweep(context.Background(), expirer)
	assert.Equal(t, 0, monitor.Status().TrackedCount)
	assert.Equal(t, []uuid.UUID{stuck}, expirer.expired)
}

func TestDeadlineMonitor_SweepSendsReminderOnce(t *testing.T) {
	patientID := uuid.New()
	invitationID := uuid.New()

	invitation := &entity.Invitation{
		ID:                   invitationID,
		PatientID:            patientID,
		Status:               entity.InvitationStatusSent,
		ConfirmationDeadline: time.Now().Add(30 * time.Minute),
	}
	invRepo := &fakeInvitationRepo{byID: map[uuid.UUID]*entity.Invitation{invitationID: invitation}}
	profRepo := &fakeProfileRepo{profiles: map[uuid.UUID]*entity.PatientProfile{
		patientID: {UserID: patientID, PhoneNumber: "0800123456"},
	}}
	notifier := &recordingNotifier{}

	monitor := newTestMonitor(t, invRepo, profRepo, notifier, time.Hour)
	monitor.Register(invitationID, invitation.ConfirmationDeadline)

	expirer := &fakeExpirer{}
	monitor.Sweep(context.Background(), expirer)
	monitor.Sweep(context.Background(), expirer)

	// Inside the reminder lead but not overdue: one reminder, no expiry
	assert.Equal(t, []uuid.UUID{invitationID}, notifier.reminders)
	assert.Empty(t, expirer.expired)
	assert.Equal(t, int64(1), monitor.Status().TotalReminded)
}

func TestDeadlineMonitor_ReminderLeadZeroDisablesReminders(t *testing.T) {
	notifier := &recordingNotifier{}
	monitor := newTestMonitor(t, nil, nil, notifier, 0)

	monitor.Register(uuid.New(), time.Now().Add(time.Minute))
	monitor.Sweep(context.Background(), &fakeExpirer{})

	assert.Empty(t, notifier.reminders)
}

func TestDeadlineMonitor_ReloadPending(t *testing.T) {
	first := entity.Invitation{ID: uuid.New(), ConfirmationDeadline: time.Now().Add(time.Hour)}
	second := entity.Invitation{ID: uuid.New(), ConfirmationDeadline: time.Now().Add(2 * time.Hour)}
	invRepo := &fakeInvitationRepo{
		byID:   map[uuid.UUID]*entity.Invitation{},
		active: []entity.Invitation{first, second},
	}

	monitor := newTestMonitor(t, invRepo, nil, nil, 0)

	// A stale registration is replaced wholesale by the reload
	monitor.Register(uuid.New(), time.Now().Add(time.Minute))

	require.NoError(t, monitor.ReloadPending(context.Background()))

	status := monitor.Status()
	assert.Equal(t, 2, status.TrackedCount)
	assert.Equal(t, first.ID, status.Tracked[0].InvitationID)
	require.NotNil(t, status.NextDeadline)
	assert.WithinDuration(t, first.ConfirmationDeadline, *status.NextDeadline, time.Second)
}

func TestDeadlineMonitor_TestReminderRequiresTracking(t *testing.T) {
	monitor := newTestMonitor(t, nil, nil, nil, 0)

	err := monitor.TestReminder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrMonitorNotTracking)
}

func TestDeadlineMonitor_StartStop(t *testing.T) {
	monitor := newTestMonitor(t, nil, nil, nil, 0)
	expirer := &fakeExpirer{}

	monitor.Start(context.Background(), expirer)
	assert.True(t, monitor.Status().Running)

	// Second start is a no-op
	monitor.Start(context.Background(), expirer)

	monitor.Stop()
	assert.False(t, monitor.Status().Running)

	// Second stop must not panic
	monitor.Stop()
}
