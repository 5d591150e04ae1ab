package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func sampleInfo() BookingInfo {
	return BookingInfo{
		Code:        "LAB1-TST2-X7K",
		PatientName: "Jane Doe",
		Email:       "jane@example.com",
		TestName:    "Complete Blood Count (CBC)",
		LabName:     "City Diagnostics",
		LabAddress:  "1 Main St, Springfield",
		Price:       "25.00",
		Appointment: time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestNotifyCreatedSubjectAndBody(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, nil)

	svc.NotifyCreated(context.Background(), sampleInfo())

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	require.Equal(t, "Booking Confirmation - Complete Blood Count (CBC) at City Diagnostics", msg.Subject)
	require.Equal(t, "jane@example.com", msg.To)
	require.Contains(t, msg.Body, "LAB1-TST2-X7K")
	require.Contains(t, msg.Body, "confirmed")
	require.Contains(t, msg.HTML, "<strong>Booking ID:</strong> LAB1-TST2-X7K")
	require.True(t, strings.Contains(msg.Body, "Sunday, 15 June 2025"))
}

func TestNotifyCancelledSubject(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, nil)

	svc.NotifyCancelled(context.Background(), sampleInfo())

	require.Len(t, sender.sent, 1)
	require.Equal(t, "Booking Cancelled - Complete Blood Count (CBC) at City Diagnostics", sender.sent[0].Subject)
}

func TestSendErrorsAreSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	svc := NewService(sender, nil)

	// Must not panic or surface the error.
	svc.NotifyUpdated(context.Background(), sampleInfo())
	require.Len(t, sender.sent, 1)
}

func TestMissingEmailSkipsSend(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, nil)

	info := sampleInfo()
	info.Email = ""
	svc.NotifyCreated(context.Background(), info)
	require.Empty(t, sender.sent)
}

func TestStubSenderIsNoop(t *testing.T) {
	stub := NewStubEmailSender(nil)
	require.NoError(t, stub.Send(context.Background(), EmailMessage{To: "a@b.co", Subject: "x"}))
}

type countingRecorder struct {
	actions []string
}

func (c *countingRecorder) ObserveEmailFailure(action string) {
	c.actions = append(c.actions, action)
}

func TestFailedSendsAreCounted(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	rec := &countingRecorder{}
	svc := NewService(sender, nil).WithMetrics(rec)

	svc.NotifyCreated(context.Background(), sampleInfo())
	svc.NotifyCancelled(context.Background(), sampleInfo())

	require.Equal(t, []string{"confirmed", "cancelled"}, rec.actions)
}
