package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	domainRepo "clinic-appointment-manager/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// =============================================================================
// Errors
// =============================================================================

// ErrMonitorNotTracking is returned when a reminder is requested for an
// invitation the monitor does not have in its registry
var ErrMonitorNotTracking = errors.New("invitation is not tracked by the deadline monitor")

// =============================================================================
// Types
// =============================================================================

// InvitationExpirer closes an overdue invitation and cascades its slot.
// Implemented by the invitation lifecycle service; the monitor takes it as a
// parameter at start time to keep the dependency one-directional.
type InvitationExpirer interface {
	Expire(ctx context.Context, invitationID uuid.UUID) error
}

// TrackedInvitation is one registry row, exposed for the monitor endpoints
type TrackedInvitation struct {
	InvitationID uuid.UUID `json:"invitation_id"`
	Deadline     time.Time `json:"deadline"`
	Overdue      bool      `json:"overdue"`
}

// MonitorStatus is a snapshot of the monitor for health reporting
type MonitorStatus struct {
	Running       bool                `json:"running"`
	Interval      time.Duration       `json:"interval"`
	TrackedCount  int                 `json:"tracked_count"`
	NextDeadline  *time.Time          `json:"next_deadline,omitempty"`
	Tracked       []TrackedInvitation `json:"tracked"`
	LastSweepAt   *time.Time          `json:"last_sweep_at,omitempty"`
	SweepsRun     int64               `json:"sweeps_run"`
	TotalExpired  int64               `json:"total_expired"`
	TotalReminded int64               `json:"total_reminded"`
}

// DeadlineMonitor tracks the confirmation deadline of every active
// invitation and expires the overdue ones on a fixed sweep interval.
//
// The registry is an in-memory map guarded by a RWMutex: Register and
// Deregister are called on the lifecycle service's hot path and must not
// block on the sweep. The database stays authoritative; ReloadPending
// rebuilds the registry from it on startup, so a crash between Register and
// the next sweep loses nothing.
type DeadlineMonitor struct {
	db             *gorm.DB
	log            *logrus.Logger
	invitationRepo domainRepo.InvitationRepository
	profileRepo    domainRepo.PatientProfileRepository
	notifier       Notifier
	interval       time.Duration
	reminderLead   time.Duration

	mu        sync.RWMutex
	deadlines map[uuid.UUID]time.Time
	reminded  map[uuid.UUID]bool

	lastSweep     atomic.Int64 // Unix timestamp, 0 = never
	sweepsRun     atomic.Int64
	totalExpired  atomic.Int64
	totalReminded atomic.Int64

	// Graceful shutdown
	running  atomic.Bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// =============================================================================
// Constructor
// =============================================================================

// NewDeadlineMonitor creates a monitor. It does not start sweeping until
// Start is called with the expirer. reminderLead is how long before the
// deadline a reminder goes out; 0 disables reminders.
func NewDeadlineMonitor(
	db *gorm.DB,
	log *logrus.Logger,
	invitationRepo domainRepo.InvitationRepository,
	profileRepo domainRepo.PatientProfileRepository,
	notifier Notifier,
	interval time.Duration,
	reminderLead time.Duration,
) *DeadlineMonitor {
	return &DeadlineMonitor{
		db:             db,
		log:            log,
		invitationRepo: invitationRepo,
		profileRepo:    profileRepo,
		notifier:       notifier,
		interval:       interval,
		reminderLead:   reminderLead,
		deadlines:      make(map[uuid.UUID]time.Time),
		reminded:       make(map[uuid.UUID]bool),
		stopChan:       make(chan struct{}),
	}
}

// =============================================================================
// Registry
// =============================================================================

// Register starts tracking an invitation's deadline
func (m *DeadlineMonitor) Register(invitationID uuid.UUID, deadline time.Time) {
	m.mu.Lock()
	m.deadlines[invitationID] = deadline
	delete(m.reminded, invitationID)
	m.mu.Unlock()
	m.log.Debugf("Monitor tracking invitation %s until %s", invitationID, deadline.Format(time.RFC3339))
}

// Deregister stops tracking an invitation, called when it reaches a
// terminal state by any path
func (m *DeadlineMonitor) Deregister(invitationID uuid.UUID) {
	m.mu.Lock()
	delete(m.deadlines, invitationID)
	delete(m.reminded, invitationID)
	m.mu.Unlock()
}

// ReloadPending rebuilds the registry from the database. Called once on
// startup before traffic so invitations created by a previous process keep
// their deadlines enforced.
func (m *DeadlineMonitor) ReloadPending(ctx context.Context) error {
	invitations, err := m.invitationRepo.FindAllActive(m.db.WithContext(ctx))
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.deadlines = make(map[uuid.UUID]time.Time, len(invitations))
	m.reminded = make(map[uuid.UUID]bool)
	for _, inv := range invitations {
		m.deadlines[inv.ID] = inv.ConfirmationDeadline
	}
	m.mu.Unlock()

	m.log.Infof("Deadline monitor reloaded %d pending invitations", len(invitations))
	return nil
}

// Status returns a snapshot for the monitor endpoints
func (m *DeadlineMonitor) Status() MonitorStatus {
	now := time.Now()

	m.mu.RLock()
	tracked := make([]TrackedInvitation, 0, len(m.deadlines))
	var next *time.Time
	for id, deadline := range m.deadlines {
		d := deadline
		tracked = append(tracked, TrackedInvitation{
			InvitationID: id,
			Deadline:     d,
			Overdue:      now.After(d),
		})
		if next == nil || d.Before(*next) {
			next = &d
		}
	}
	m.mu.RUnlock()

	sort.Slice(tracked, func(i, j int) bool {
		return tracked[i].Deadline.Before(tracked[j].Deadline)
	})

	status := MonitorStatus{
		Running:       m.running.Load(),
		Interval:      m.interval,
		TrackedCount:  len(tracked),
		NextDeadline:  next,
		Tracked:       tracked,
		SweepsRun:     m.sweepsRun.Load(),
		TotalExpired:  m.totalExpired.Load(),
		TotalReminded: m.totalReminded.Load(),
	}
	if ts := m.lastSweep.Load(); ts > 0 {
		t := time.Unix(ts, 0)
		status.LastSweepAt = &t
	}
	return status
}

// =============================================================================
// Lifecycle
// =============================================================================

// Start launches the sweep loop. Safe to call once; subsequent calls are
// no-ops. The expirer is injected here rather than at construction because
// the lifecycle service itself depends on the monitor's registry.
func (m *DeadlineMonitor) Start(ctx context.Context, expirer InvitationExpirer) {
	if !m.running.CompareAndSwap(false, true) {
		return
	}

	m.wg.Add(1)
	go m.sweepLoop(ctx, expirer)
	m.log.Infof("Deadline monitor started, sweep interval %v", m.interval)
}

// Stop gracefully shuts down the sweep loop. Safe to call multiple times.
func (m *DeadlineMonitor) Stop() {
	if m.running.CompareAndSwap(true, false) {
		close(m.stopChan)
		m.wg.Wait()
		m.log.Info("Deadline monitor stopped")
	}
}

func (m *DeadlineMonitor) sweepLoop(ctx context.Context, expirer InvitationExpirer) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Debug("Deadline monitor sweep loop stopping: context done")
			return
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.Sweep(ctx, expirer)
		}
	}
}

// =============================================================================
// Sweeping
// =============================================================================

// Sweep runs one pass: expire every overdue invitation and remind the ones
// approaching their deadline. Exported so the monitor endpoints can trigger
// a pass on demand.
func (m *DeadlineMonitor) Sweep(ctx context.Context, expirer InvitationExpirer) {
	now := time.Now()

	m.mu.RLock()
	var overdue []uuid.UUID
	var approaching []uuid.UUID
	for id, deadline := range m.deadlines {
		if now.After(deadline) {
			overdue = append(overdue, id)
		} else if m.reminderLead > 0 && now.After(deadline.Add(-m.reminderLead)) && !m.reminded[id] {
			approaching = append(approaching, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range overdue {
		if err := expirer.Expire(ctx, id); err != nil {
			if errors.Is(err, ErrInvitationTerminal) {
				// Already closed by another path (confirm or decline
				// raced the sweep); just stop tracking it.
				m.Deregister(id)
				continue
			}
			m.log.Warnf("Failed to expire invitation %s: %+v", id, err)
			continue
		}
		m.totalExpired.Add(1)
		m.Deregister(id)
	}

	for _, id := range approaching {
		if err := m.sendReminder(ctx, id); err != nil {
			m.log.Warnf("Failed to send reminder for invitation %s: %+v", id, err)
			continue
		}
		m.mu.Lock()
		m.reminded[id] = true
		m.mu.Unlock()
		m.totalReminded.Add(1)
	}

	m.lastSweep.Store(now.Unix())
	m.sweepsRun.Add(1)

	if len(overdue) > 0 || len(approaching) > 0 {
		m.log.Infof("Sweep done: %d expired, %d reminded, %d tracked", len(overdue), len(approaching), m.trackedCount())
	}
}

// TestReminder sends an immediate reminder for a tracked invitation,
// used by staff to verify the notification path end to end
func (m *DeadlineMonitor) TestReminder(ctx context.Context, invitationID uuid.UUID) error {
	m.mu.RLock()
	_, tracked := m.deadlines[invitationID]
	m.mu.RUnlock()
	if !tracked {
		return ErrMonitorNotTracking
	}
	return m.sendReminder(ctx, invitationID)
}

func (m *DeadlineMonitor) sendReminder(ctx context.Context, invitationID uuid.UUID) error {
	db := m.db.WithContext(ctx)

	invitation, err := m.invitationRepo.FindByID(db, invitationID)
	if err != nil {
		return err
	}
	if invitation == nil || invitation.IsTerminal() {
		m.Deregister(invitationID)
		return nil
	}

	profile, err := m.profileRepo.FindByUserID(db, invitation.PatientID)
	if err != nil {
		return err
	}
	if profile == nil {
		m.log.Warnf("No patient profile for invitation %s, reminder skipped", invitationID)
		return nil
	}

	return m.notifier.SendReminder(ctx, profile.Contact(), invitation)
}

func (m *DeadlineMonitor) trackedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.deadlines)
}
