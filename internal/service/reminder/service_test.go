package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
	"github.com/clinicmgr/clinic-api/pkg/logger"
)

type fakeAppointments struct {
	upcoming []*model.Appointment
}

func (f *fakeAppointments) Create(context.Context, *model.AppointmentCreate) (*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointments) List(context.Context, policy.Scope) ([]*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointments) Get(context.Context, int64, policy.Scope) (*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointments) Update(context.Context, int64, *model.AppointmentUpdate, policy.Scope) (*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointments) Delete(context.Context, int64, policy.Scope) error {
	return nil
}

func (f *fakeAppointments) ListUpcoming(context.Context, int) ([]*model.Appointment, error) {
	return f.upcoming, nil
}

type capturedMail struct {
	to, subject, body string
}

type fakeSender struct {
	sent []capturedMail
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	f.sent = append(f.sent, capturedMail{to, subject, body})
	return nil
}

func TestSendDigestSkipsEmptyWindow(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(&fakeAppointments{}, sender, "front-desk@clinic.test", 24, logger.NewLogger(nil))

	count, err := svc.SendDigest(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, sender.sent)
}

func TestSendDigestListsAppointments(t *testing.T) {
	reason := "follow-up"
	doctor := "drew"
	repo := &fakeAppointments{upcoming: []*model.Appointment{
		{
			ID:              1,
			AppointmentDate: time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC),
			Status:          model.AppointmentScheduled,
			Reason:          &reason,
			PatientID:       "alice",
			DoctorID:        &doctor,
		},
		{
			ID:              2,
			AppointmentDate: time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC),
			Status:          model.AppointmentScheduled,
			PatientID:       "bob",
		},
	}}
	sender := &fakeSender{}
	svc := NewService(repo, sender, "front-desk@clinic.test", 24, logger.NewLogger(nil))

	count, err := svc.SendDigest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	assert.Equal(t, "front-desk@clinic.test", mail.to)
	assert.Contains(t, mail.body, "patient=alice doctor=drew reason=follow-up")
	assert.Contains(t, mail.body, "patient=bob doctor=unassigned")
}
