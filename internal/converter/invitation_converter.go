package converter

import (
	"clinic-appointment-manager/internal/delivery/dto"
	"clinic-appointment-manager/internal/domain/entity"
)

func InvitationToResponse(invitation *entity.Invitation) *dto.InvitationResponse {
	if invitation == nil {
		return nil
	}
	return &dto.InvitationResponse{
		ID:                   invitation.ID,
		WaitingListEntryID:   invitation.WaitingListEntryID,
		PatientID:            invitation.PatientID,
		SlotDate:             invitation.SlotDate.Format("2006-01-02"),
		SlotStartTime:        invitation.SlotStartTime,
		SlotDurationMinutes:  invitation.SlotDuration,
		AppointmentType:      invitation.AppointmentType,
		ReasonFreed:          invitation.ReasonFreed,
		SentAt:               invitation.SentAt,
		ConfirmationDeadline: invitation.ConfirmationDeadline,
		PaymentRequired:      invitation.PaymentRequired,
		Status:               string(invitation.Status),
		ViewedAt:             invitation.ViewedAt,
		AcceptedAt:           invitation.AcceptedAt,
		PaymentConfirmedAt:   invitation.PaymentConfirmedAt,
		DeclineReason:        invitation.DeclineReason,
	}
}

func InvitationsToResponse(invitations []entity.Invitation) []dto.InvitationResponse {
	responses := make([]dto.InvitationResponse, 0, len(invitations))
	for i := range invitations {
		responses = append(responses, *InvitationToResponse(&invitations[i]))
	}
	return responses
}
