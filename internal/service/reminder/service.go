package reminder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clinicmgr/clinic-api/internal/email"
	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/repository"
	"github.com/clinicmgr/clinic-api/pkg/logger"
)

// Service mails the clinic mailbox a digest of appointments starting soon.
// It runs in the worker process, not in the API.
type Service struct {
	appointments repository.AppointmentRepository
	sender       email.Sender
	notify       string
	windowHours  int
	log          *logger.Logger
}

func NewService(appointments repository.AppointmentRepository, sender email.Sender,
	notify string, windowHours int, log *logger.Logger) *Service {
	if windowHours <= 0 {
		windowHours = 24
	}
	return &Service{
		appointments: appointments,
		sender:       sender,
		notify:       notify,
		windowHours:  windowHours,
		log:          log,
	}
}

// SendDigest mails one digest covering the upcoming window. An empty window
// sends nothing and returns zero.
func (s *Service) SendDigest(ctx context.Context) (int, error) {
	upcoming, err := s.appointments.ListUpcoming(ctx, s.windowHours)
	if err != nil {
		return 0, err
	}
	if len(upcoming) == 0 {
		return 0, nil
	}

	subject := fmt.Sprintf("Upcoming appointments: next %d hours", s.windowHours)
	if err := s.sender.Send(ctx, s.notify, subject, digestBody(upcoming)); err != nil {
		return 0, err
	}

	return len(upcoming), nil
}

func digestBody(appointments []*model.Appointment) string {
	var b strings.Builder
	for _, ap := range appointments {
		doctor := "unassigned"
		if ap.DoctorID != nil {
			doctor = *ap.DoctorID
		}
		fmt.Fprintf(&b, "%s  patient=%s doctor=%s",
			ap.AppointmentDate.Format(time.RFC3339), ap.PatientID, doctor)
		if ap.Reason != nil {
			fmt.Fprintf(&b, " reason=%s", *ap.Reason)
		}
		b.WriteString("\n")
	}
	return b.String()
}
