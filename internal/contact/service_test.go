package contact

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/labease/labease-platform/internal/catalog"
	"github.com/labease/labease-platform/internal/notify"
	"github.com/labease/labease-platform/pkg/logging"
)

type recordingSender struct {
	sent []notify.EmailMessage
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg notify.EmailMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func newFixture(t *testing.T) (*Service, *InMemoryRepository, *recordingSender) {
	t.Helper()
	cat := catalog.NewInMemoryRepository()
	lab := catalog.Lab{Name: "City Diagnostics", City: "Kathmandu", ContactEmail: "city@example.com"}
	require.NoError(t, cat.CreateLab(context.Background(), &lab))

	repo := NewInMemoryRepository()
	sender := &recordingSender{}
	svc := NewService(repo, cat, sender, "admin@labease.example", logging.NewWithWriter("error", io.Discard))
	return svc, repo, sender
}

func TestSubmitToLabRelaysToLabEmail(t *testing.T) {
	svc, repo, sender := newFixture(t)
	labID := int64(1)

	m := &Message{Name: "John Smith", Email: "john@gmail.com", Body: "Do you do home visits?", LabID: &labID}
	require.NoError(t, svc.Submit(context.Background(), m))
	require.False(t, m.RecipientAdmin)

	messages, err := repo.ListForLab(context.Background(), labID)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	require.Len(t, sender.sent, 1)
	require.Equal(t, "city@example.com", sender.sent[0].To)
	require.Contains(t, sender.sent[0].Subject, "John Smith")
	require.Contains(t, sender.sent[0].Body, "Do you do home visits?")
}

func TestSubmitWithoutLabGoesToAdmin(t *testing.T) {
	svc, repo, sender := newFixture(t)

	m := &Message{Name: "Jane Doe", Email: "jane@example.com", Body: "Partnership inquiry"}
	require.NoError(t, svc.Submit(context.Background(), m))
	require.True(t, m.RecipientAdmin)

	messages, err := repo.ListForAdmin(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 1)

	require.Len(t, sender.sent, 1)
	require.Equal(t, "admin@labease.example", sender.sent[0].To)
}

func TestSubmitUnknownLabFails(t *testing.T) {
	svc, repo, _ := newFixture(t)
	labID := int64(99)

	m := &Message{Name: "John Smith", Email: "john@gmail.com", Body: "hi", LabID: &labID}
	err := svc.Submit(context.Background(), m)
	require.ErrorIs(t, err, catalog.ErrLabNotFound)

	messages, err := repo.ListForLab(context.Background(), labID)
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestRelayFailureDoesNotFailSubmit(t *testing.T) {
	svc, repo, sender := newFixture(t)
	sender.err = errors.New("smtp down")

	m := &Message{Name: "Jane Doe", Email: "jane@example.com", Body: "hello"}
	require.NoError(t, svc.Submit(context.Background(), m))

	messages, err := repo.ListForAdmin(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 1)
}

func TestNilSenderSkipsRelay(t *testing.T) {
	cat := catalog.NewInMemoryRepository()
	repo := NewInMemoryRepository()
	svc := NewService(repo, cat, nil, "", logging.NewWithWriter("error", io.Discard))

	m := &Message{Name: "Jane Doe", Email: "jane@example.com", Body: "hello"}
	require.NoError(t, svc.Submit(context.Background(), m))
}
