package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/labease/labease-platform/pkg/logging"
)

// BookingInfo carries everything the booking emails mention. The
// booking package fills it in so this package stays dependency-free.
type BookingInfo struct {
	Code        string
	PatientName string
	Email       string
	TestName    string
	LabName     string
	LabAddress  string
	Price       string
	Appointment time.Time
}

// FailureRecorder counts failed email sends. Satisfied by the
// observability metrics handle; nil disables counting.
type FailureRecorder interface {
	ObserveEmailFailure(action string)
}

// Service sends booking lifecycle emails. All sends are best-effort:
// a failed email is logged and never fails the booking.
type Service struct {
	email   EmailSender
	logger  *logging.Logger
	metrics FailureRecorder
}

// NewService creates a notification service.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger}
}

// WithMetrics records failed sends on the given recorder.
func (s *Service) WithMetrics(rec FailureRecorder) *Service {
	s.metrics = rec
	return s
}

// NotifyCreated emails the booking confirmation.
func (s *Service) NotifyCreated(ctx context.Context, info BookingInfo) {
	subject := fmt.Sprintf("Booking Confirmation - %s at %s", info.TestName, info.LabName)
	s.send(ctx, info, subject, "confirmed")
}

// NotifyUpdated emails the booking update notice.
func (s *Service) NotifyUpdated(ctx context.Context, info BookingInfo) {
	subject := fmt.Sprintf("Booking Updated - %s at %s", info.TestName, info.LabName)
	s.send(ctx, info, subject, "updated")
}

// NotifyCancelled emails the cancellation notice.
func (s *Service) NotifyCancelled(ctx context.Context, info BookingInfo) {
	subject := fmt.Sprintf("Booking Cancelled - %s at %s", info.TestName, info.LabName)
	s.send(ctx, info, subject, "cancelled")
}

func (s *Service) send(ctx context.Context, info BookingInfo, subject, action string) {
	if s.email == nil || info.Email == "" {
		return
	}
	msg := EmailMessage{
		To:      info.Email,
		ToName:  info.PatientName,
		Subject: subject,
		Body:    plainBody(info, action),
		HTML:    htmlBody(info, action),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("booking email failed", "error", err, "booking_code", info.Code, "action", action)
		if s.metrics != nil {
			s.metrics.ObserveEmailFailure(action)
		}
	}
}

func plainBody(info BookingInfo, action string) string {
	return fmt.Sprintf(`Hello %s,

Your booking has been %s.

Booking ID: %s
Test: %s
Lab: %s
Address: %s
Price: %s
Appointment: %s

Thank you for using LabEase.
`,
		info.PatientName,
		action,
		info.Code,
		info.TestName,
		info.LabName,
		info.LabAddress,
		info.Price,
		info.Appointment.Format("Monday, 2 January 2006 at 3:04 PM"),
	)
}

func htmlBody(info BookingInfo, action string) string {
	return fmt.Sprintf(`<h2>Booking %s</h2>
<p>Hello %s,</p>
<p>Your booking has been %s.</p>
<ul>
<li><strong>Booking ID:</strong> %s</li>
<li><strong>Test:</strong> %s</li>
<li><strong>Lab:</strong> %s, %s</li>
<li><strong>Price:</strong> %s</li>
<li><strong>Appointment:</strong> %s</li>
</ul>
<p>Thank you for using LabEase.</p>`,
		action,
		info.PatientName,
		action,
		info.Code,
		info.TestName,
		info.LabName,
		info.LabAddress,
		info.Price,
		info.Appointment.Format("Monday, 2 January 2006 at 3:04 PM"),
	)
}
