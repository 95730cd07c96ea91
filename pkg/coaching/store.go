// Package coaching gives typed access to the Angel Coaching records kept in
// MindFlow. It adds no business rules: slot availability, conflicts and
// approvals are enforced by the backend.
package coaching

import (
	"context"
	"fmt"

	"github.com/angelcoaching/mindflow/pkg/mindflow"
)

// Store holds one typed collection per Angel Coaching entity.
type Store struct {
	client *mindflow.Client

	CoachProfiles           *mindflow.Collection[CoachProfile]
	CoacheeProfiles         *mindflow.Collection[CoacheeProfile]
	TimeSlots               *mindflow.Collection[TimeSlot]
	Appointments            *mindflow.Collection[Appointment]
	Messages                *mindflow.Collection[Message]
	Documents               *mindflow.Collection[Document]
	CoachingAgreements      *mindflow.Collection[CoachingAgreement]
	CoacheeAgreements       *mindflow.Collection[CoacheeAgreement]
	CoacheeMatchingProfiles *mindflow.Collection[CoacheeMatchingProfile]
}

// NewStore wraps client.
func NewStore(client *mindflow.Client) *Store {
	e := client.Entities
	return &Store{
		client:                  client,
		CoachProfiles:           mindflow.For[CoachProfile](e.CoachProfile),
		CoacheeProfiles:         mindflow.For[CoacheeProfile](e.CoacheeProfile),
		TimeSlots:               mindflow.For[TimeSlot](e.TimeSlot),
		Appointments:            mindflow.For[Appointment](e.Appointment),
		Messages:                mindflow.For[Message](e.Message),
		Documents:               mindflow.For[Document](e.Document),
		CoachingAgreements:      mindflow.For[CoachingAgreement](e.CoachingAgreement),
		CoacheeAgreements:       mindflow.For[CoacheeAgreement](e.CoacheeAgreement),
		CoacheeMatchingProfiles: mindflow.For[CoacheeMatchingProfile](e.CoacheeMatchingProfile),
	}
}

// CurrentUser returns the logged-in account.
func (s *Store) CurrentUser(ctx context.Context) (*User, error) {
	rec, err := s.client.Auth.Me(ctx)
	if err != nil {
		return nil, err
	}

	var user User
	if err := rec.Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode current user: %w", err)
	}
	return &user, nil
}

// CoachProfileForUser returns the coach profile owned by userID, or nil.
func (s *Store) CoachProfileForUser(ctx context.Context, userID string) (*CoachProfile, error) {
	return s.CoachProfiles.First(ctx, map[string]interface{}{"user_id": userID})
}

// CoacheeProfileForUser returns the coachee profile owned by userID, or nil.
func (s *Store) CoacheeProfileForUser(ctx context.Context, userID string) (*CoacheeProfile, error) {
	return s.CoacheeProfiles.First(ctx, map[string]interface{}{"user_id": userID})
}

// PendingCoaches returns coach registration requests awaiting review.
func (s *Store) PendingCoaches(ctx context.Context) ([]CoachProfile, error) {
	return s.CoachProfiles.Filter(ctx, map[string]interface{}{"status": StatusPending}, "")
}

// PendingCoachees returns coachee registration requests awaiting review.
func (s *Store) PendingCoachees(ctx context.Context) ([]CoacheeProfile, error) {
	return s.CoacheeProfiles.Filter(ctx, map[string]interface{}{"status": StatusPending}, "")
}

// PublishedCoaches returns the approved coaches shown in the public list.
func (s *Store) PublishedCoaches(ctx context.Context) ([]CoachProfile, error) {
	return s.CoachProfiles.Filter(ctx, map[string]interface{}{
		"status":       StatusApproved,
		"is_published": true,
	}, "")
}

// SetCoachStatus approves or rejects a coach registration.
func (s *Store) SetCoachStatus(ctx context.Context, profileID, status string) (*CoachProfile, error) {
	return s.CoachProfiles.Update(ctx, profileID, map[string]interface{}{"status": status})
}

// SetCoacheeStatus approves or rejects a coachee registration.
func (s *Store) SetCoacheeStatus(ctx context.Context, profileID, status string) (*CoacheeProfile, error) {
	return s.CoacheeProfiles.Update(ctx, profileID, map[string]interface{}{"status": status})
}

// AppointmentsForCoach returns every appointment booked with coachID.
func (s *Store) AppointmentsForCoach(ctx context.Context, coachID string) ([]Appointment, error) {
	return s.Appointments.Filter(ctx, map[string]interface{}{"coach_id": coachID}, "")
}

// AppointmentsForCoachee returns every appointment booked by coacheeID.
func (s *Store) AppointmentsForCoachee(ctx context.Context, coacheeID string) ([]Appointment, error) {
	return s.Appointments.Filter(ctx, map[string]interface{}{"coachee_id": coacheeID}, "")
}

// AppointmentsOn returns every appointment on date (YYYY-MM-DD).
func (s *Store) AppointmentsOn(ctx context.Context, date string) ([]Appointment, error) {
	return s.Appointments.Filter(ctx, map[string]interface{}{"date": date}, "")
}

// SetAppointmentStatus changes an appointment's status.
func (s *Store) SetAppointmentStatus(ctx context.Context, appointmentID, status string) (*Appointment, error) {
	return s.Appointments.Update(ctx, appointmentID, map[string]interface{}{"status": status})
}

// AvailableSlots returns a coach's open time slots.
func (s *Store) AvailableSlots(ctx context.Context, coachID string) ([]TimeSlot, error) {
	return s.TimeSlots.Filter(ctx, map[string]interface{}{
		"coach_id":     coachID,
		"is_available": true,
	}, "date")
}

// UnreadMessages returns messages addressed to receiverID not yet read.
func (s *Store) UnreadMessages(ctx context.Context, receiverID string) ([]Message, error) {
	return s.Messages.Filter(ctx, map[string]interface{}{
		"receiver_id": receiverID,
		"is_read":     false,
	}, "")
}

// MarkMessageRead flags a message as read.
func (s *Store) MarkMessageRead(ctx context.Context, messageID string) (*Message, error) {
	return s.Messages.Update(ctx, messageID, map[string]interface{}{"is_read": true})
}

// AgreementsForCoach returns the agreement templates owned by coachID.
func (s *Store) AgreementsForCoach(ctx context.Context, coachID string) ([]CoachingAgreement, error) {
	return s.CoachingAgreements.Filter(ctx, map[string]interface{}{"coach_id": coachID}, "")
}

// CoacheeAgreementsForCoach returns the agreements coachID has assigned to
// coachees.
func (s *Store) CoacheeAgreementsForCoach(ctx context.Context, coachID string) ([]CoacheeAgreement, error) {
	return s.CoacheeAgreements.Filter(ctx, map[string]interface{}{"coach_id": coachID}, "")
}

// SetCoachingStatus moves a coachee agreement to status.
func (s *Store) SetCoachingStatus(ctx context.Context, agreementID, status string) (*CoacheeAgreement, error) {
	return s.CoacheeAgreements.Update(ctx, agreementID, map[string]interface{}{"coaching_status": status})
}
