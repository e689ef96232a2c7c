package service

import (
	"context"

	"clinic-appointment-manager/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// Notification template names
const (
	TemplateInvitationSent      = "invitation_sent"
	TemplateInvitationReminder  = "invitation_reminder"
	TemplatePaymentInstructions = "payment_instructions"
	TemplateAppointmentBooked   = "appointment_confirmed"
	TemplateInvitationExpired   = "invitation_expired"
)

// Notifier delivers patient-facing messages. Delivery is best effort and
// never blocks a state transition; failures are logged and the invitation
// deadline still stands.
type Notifier interface {
	SendInvitation(ctx context.Context, contact string, invitation *entity.Invitation) error
	SendReminder(ctx context.Context, contact string, invitation *entity.Invitation) error
	SendPaymentInstructions(ctx context.Context, contact string, invitation *entity.Invitation) error
	SendConfirmation(ctx context.Context, contact string, appointment *entity.Appointment) error
	SendExpiryNotice(ctx context.Context, contact string, invitation *entity.Invitation) error
}

// logNotifier writes each message to the structured log instead of an SMS
// or email gateway. Wire a real provider behind the same interface.
type logNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) send(template, contact string, fields logrus.Fields) error {
	fields["template"] = template
	fields["contact"] = contact
	n.log.WithFields(fields).Info("notification dispatched")
	return nil
}

func (n *logNotifier) SendInvitation(ctx context.Context, contact string, invitation *entity.Invitation) error {
	return n.send(TemplateInvitationSent, contact, logrus.Fields{
		"invitation_id": invitation.ID,
		"slot":          invitation.SlotKey(),
		"deadline":      invitation.ConfirmationDeadline,
	})
}

func (n *logNotifier) SendReminder(ctx context.Context, contact string, invitation *entity.Invitation) error {
	return n.send(TemplateInvitationReminder, contact, logrus.Fields{
		"invitation_id": invitation.ID,
		"deadline":      invitation.ConfirmationDeadline,
	})
}

func (n *logNotifier) SendPaymentInstructions(ctx context.Context, contact string, invitation *entity.Invitation) error {
	return n.send(TemplatePaymentInstructions, contact, logrus.Fields{
		"invitation_id": invitation.ID,
		"amount":        invitation.PaymentRequired,
		"deadline":      invitation.ConfirmationDeadline,
	})
}

func (n *logNotifier) SendConfirmation(ctx context.Context, contact string, appointment *entity.Appointment) error {
	return n.send(TemplateAppointmentBooked, contact, logrus.Fields{
		"appointment_id": appointment.ID,
		"date":           appointment.Date.Format("2006-01-02"),
		"start_time":     appointment.StartTime,
	})
}

func (n *logNotifier) SendExpiryNotice(ctx context.Context, contact string, invitation *entity.Invitation) error {
	return n.send(TemplateInvitationExpired, contact, logrus.Fields{
		"invitation_id": invitation.ID,
		"slot":          invitation.SlotKey(),
	})
}
