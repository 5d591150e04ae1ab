package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labease/labease-platform/internal/catalog"
	"github.com/labease/labease-platform/internal/notify"
	"github.com/labease/labease-platform/pkg/logging"
)

// maxCodeTries bounds how many collision retries code generation gets.
const maxCodeTries = 5

// Notifier sends booking lifecycle emails.
type Notifier interface {
	NotifyCreated(ctx context.Context, info notify.BookingInfo)
	NotifyUpdated(ctx context.Context, info notify.BookingInfo)
	NotifyCancelled(ctx context.Context, info notify.BookingInfo)
}

// Service coordinates booking creation and lifecycle changes.
type Service struct {
	repo     Repository
	catalog  catalog.Repository
	notifier Notifier
	logger   *logging.Logger
}

// NewService creates a booking service. The notifier may be nil, in
// which case no emails are attempted.
func NewService(repo Repository, cat catalog.Repository, notifier Notifier, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		catalog:  cat,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateRequest holds everything needed to book a test.
type CreateRequest struct {
	PatientName string
	Email       string
	Phone       string
	TestID      int64
	LabID       int64
	Appointment time.Time
	Notes       string
}

// Create books a test at a lab. The lab must actually offer the test.
// Booking codes are retried on collision with a fresh random suffix.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	test, err := s.catalog.GetTest(ctx, req.TestID)
	if err != nil {
		return nil, err
	}
	lab, err := s.catalog.GetLab(ctx, req.LabID)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetOffering(ctx, req.LabID, req.TestID); err != nil {
		if errors.Is(err, catalog.ErrTestNotFound) {
			return nil, ErrNotOffered
		}
		return nil, err
	}

	b := &Booking{
		PatientName: req.PatientName,
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       req.Phone,
		TestID:      req.TestID,
		LabID:       req.LabID,
		Appointment: req.Appointment,
		Notes:       req.Notes,
		Status:      StatusBooked,
	}

	var lastErr error
	for try := 0; try < maxCodeTries; try++ {
		code, err := GenerateCode(req.LabID, req.TestID)
		if err != nil {
			return nil, err
		}
		b.Code = code
		if err := s.repo.Create(ctx, b); err != nil {
			if errors.Is(err, ErrCodeExists) {
				lastErr = err
				continue
			}
			return nil, err
		}
		if s.notifier != nil {
			s.notifier.NotifyCreated(ctx, s.buildInfo(ctx, b, test, lab))
		}
		return b, nil
	}
	return nil, fmt.Errorf("booking: could not allocate a unique code: %w", lastErr)
}

// Status fetches a booking for the patient, authenticated by email.
func (s *Service) Status(ctx context.Context, code, email string) (*Booking, error) {
	return s.authorized(ctx, code, email)
}

// Reschedule moves an active booking to a new appointment time.
func (s *Service) Reschedule(ctx context.Context, code, email string, at time.Time, notes string) (*Booking, error) {
	b, err := s.authorized(ctx, code, email)
	if err != nil {
		return nil, err
	}
	if b.Status.Terminal() {
		return nil, ErrBookingClosed
	}
	if err := s.repo.UpdateSchedule(ctx, b.Code, at, notes); err != nil {
		return nil, err
	}
	b.Appointment = at
	b.Notes = notes
	if s.notifier != nil {
		s.notifyWithCatalog(ctx, s.notifier.NotifyUpdated, b)
	}
	return b, nil
}

// Cancel cancels an active booking on the patient's behalf.
func (s *Service) Cancel(ctx context.Context, code, email string) (*Booking, error) {
	b, err := s.authorized(ctx, code, email)
	if err != nil {
		return nil, err
	}
	if b.Status.Terminal() {
		return nil, ErrBookingClosed
	}
	if err := s.repo.SetStatus(ctx, b.Code, StatusCancelled); err != nil {
		return nil, err
	}
	b.Status = StatusCancelled
	if s.notifier != nil {
		s.notifyWithCatalog(ctx, s.notifier.NotifyCancelled, b)
	}
	return b, nil
}

// SetStatus applies a lab-portal status transition. The booking must
// belong to the acting lab and the lifecycle is forward-only.
func (s *Service) SetStatus(ctx context.Context, code string, labID int64, next Status) (*Booking, error) {
	b, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if b.LabID != labID {
		return nil, ErrBookingNotFound
	}
	if !b.Status.CanTransition(next) {
		return nil, ErrInvalidTransition
	}
	if err := s.repo.SetStatus(ctx, b.Code, next); err != nil {
		return nil, err
	}
	b.Status = next
	if next == StatusCancelled && s.notifier != nil {
		s.notifyWithCatalog(ctx, s.notifier.NotifyCancelled, b)
	}
	return b, nil
}

// ListForLab returns a lab's bookings for the portal.
func (s *Service) ListForLab(ctx context.Context, labID int64) ([]Booking, error) {
	return s.repo.ListByLab(ctx, labID)
}

func (s *Service) authorized(ctx context.Context, code, email string) (*Booking, error) {
	b, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(email), b.Email) {
		return nil, ErrEmailMismatch
	}
	return b, nil
}

func (s *Service) notifyWithCatalog(ctx context.Context, fn func(context.Context, notify.BookingInfo), b *Booking) {
	test, err := s.catalog.GetTest(ctx, b.TestID)
	if err != nil {
		s.logger.Error("booking notification skipped", "error", err, "booking_code", b.Code)
		return
	}
	lab, err := s.catalog.GetLab(ctx, b.LabID)
	if err != nil {
		s.logger.Error("booking notification skipped", "error", err, "booking_code", b.Code)
		return
	}
	fn(ctx, s.buildInfo(ctx, b, test, lab))
}

func (s *Service) buildInfo(ctx context.Context, b *Booking, test *catalog.Test, lab *catalog.Lab) notify.BookingInfo {
	price := "Price not available"
	effective := test.Price
	if o, err := s.catalog.GetOffering(ctx, b.LabID, b.TestID); err == nil {
		effective = o.PriceFor(test)
	}
	if effective != nil {
		price = effective.StringFixed(2)
	}
	return notify.BookingInfo{
		Code:        b.Code,
		PatientName: b.PatientName,
		Email:       b.Email,
		TestName:    test.Name,
		LabName:     lab.Name,
		LabAddress:  fmt.Sprintf("%s, %s, %s %s", lab.Address, lab.City, lab.State, lab.ZipCode),
		Price:       price,
		Appointment: b.Appointment,
	}
}
