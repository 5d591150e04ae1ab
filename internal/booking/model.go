// Package booking creates and manages test appointments: human-readable
// booking codes, lifecycle status changes and the lab portal views.
package booking

import "time"

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusBooked     Status = "booked"
	StatusTestDone   Status = "test_done"
	StatusNotArrived Status = "not_arrived"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusBooked, StatusTestDone, StatusNotArrived, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s != StatusBooked
}

// CanTransition reports whether a booking may move from s to next.
// The lifecycle is forward-only: an active booking can complete, be
// marked a no-show, or be cancelled; terminal states never change.
func (s Status) CanTransition(next Status) bool {
	return s == StatusBooked && next.Valid() && next != StatusBooked
}

// Booking is a confirmed test appointment at a lab.
type Booking struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	PatientName string    `json:"patient_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	TestID      int64     `json:"test_id"`
	LabID       int64     `json:"lab_id"`
	Appointment time.Time `json:"appointment"`
	Notes       string    `json:"notes,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
