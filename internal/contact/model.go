// Package contact handles messages users send to a lab or to the
// platform admins through the contact form.
package contact

import (
	"errors"
	"time"
)

// ErrMessageNotFound is returned when a contact message doesn't exist.
var ErrMessageNotFound = errors.New("contact message not found")

// Message is one contact form submission. Either LabID points at the
// receiving lab or RecipientAdmin is set; never both.
type Message struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Body           string    `json:"message"`
	LabID          *int64    `json:"lab_id,omitempty"`
	RecipientAdmin bool      `json:"recipient_admin"`
	SentAt         time.Time `json:"sent_at"`
}
