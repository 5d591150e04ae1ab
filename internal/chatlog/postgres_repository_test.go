package chatlog

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestPostgresSaveMessage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PostgresRepository{pool: mock}
	now := time.Now()
	mock.ExpectQuery("INSERT INTO chat_messages").
		WithArgs("s1", "Hello", "Welcome!", "IDLE").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

	m := &ChatMessage{SessionID: "s1", UserMessage: "Hello", BotResponse: "Welcome!", Stage: "IDLE"}
	require.NoError(t, repo.SaveMessage(context.Background(), m))
	require.Equal(t, int64(7), m.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecentMessagesOldestFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PostgresRepository{pool: mock}
	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM chat_messages").
		WithArgs("s1", 2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "session_id", "user_message", "bot_response", "stage", "created_at"}).
			AddRow(int64(4), "s1", "Book CBC", "Test Selected", "TEST_SELECTED", now).
			AddRow(int64(5), "s1", "details", "Confirmed", "DETAILS_COLLECTED", now))

	out, err := repo.RecentMessages(context.Background(), "s1", 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, int64(4), out[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecommendationRoundTrip(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PostgresRepository{pool: mock}
	now := time.Now()
	blob := []byte(`[{"id":3,"name":"Thyroid Function Test","price":"35.00"}]`)

	mock.ExpectQuery("INSERT INTO ai_recommendations").
		WithArgs("s1", "tired", blob).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(2), now))

	rec := &Recommendation{
		SessionID: "s1",
		Symptoms:  "tired",
		Tests:     []RecommendedTest{{ID: 3, Name: "Thyroid Function Test", Price: "35.00"}},
	}
	require.NoError(t, repo.SaveRecommendation(context.Background(), rec))
	require.Equal(t, int64(2), rec.ID)

	mock.ExpectQuery("SELECT (.+) FROM ai_recommendations").
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "session_id", "symptoms", "tests", "created_at"}).
			AddRow(int64(2), "s1", "tired", blob, now))

	out, err := repo.RecentRecommendations(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Thyroid Function Test", out[0].Tests[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
