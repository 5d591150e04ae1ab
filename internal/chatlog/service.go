package chatlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/labease/labease-platform/internal/dialogue"
	"github.com/labease/labease-platform/internal/retrieval"
	"github.com/labease/labease-platform/pkg/logging"
)

const (
	historyTTL      = 24 * time.Hour
	historyCacheMax = 50
)

// Service fronts the repository with a redis cache of each session's
// recent turns, so the history endpoint rarely touches the database
// for live conversations. It plugs into the dialogue engine as its
// ChatLogger, HistoryStore and RecommendationLogger.
type Service struct {
	repo   Repository
	redis  *redis.Client
	tracer trace.Tracer
	logger *logging.Logger
}

// NewService creates the chat log service. redis may be nil to skip
// caching.
func NewService(repo Repository, client *redis.Client, tracer trace.Tracer, logger *logging.Logger) *Service {
	if repo == nil {
		panic("chatlog: repository required")
	}
	if tracer == nil {
		tracer = otel.Tracer("labease.internal.chatlog")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, redis: client, tracer: tracer, logger: logger}
}

// LogTurn persists one exchange and appends it to the session's cached
// history. Cache failures are logged, not returned.
func (s *Service) LogTurn(ctx context.Context, sessionID, userMessage, botResponse string, stage dialogue.Stage) error {
	ctx, span := s.tracer.Start(ctx, "chatlog.log_turn")
	defer span.End()

	m := ChatMessage{
		SessionID:   sessionID,
		UserMessage: userMessage,
		BotResponse: botResponse,
		Stage:       string(stage),
	}
	if err := s.repo.SaveMessage(ctx, &m); err != nil {
		span.RecordError(err)
		return err
	}
	s.cacheTurn(ctx, sessionID, dialogue.Turn{
		UserMessage: m.UserMessage,
		BotResponse: m.BotResponse,
		Stage:       stage,
		CreatedAt:   m.CreatedAt,
	})
	return nil
}

// RecentTurns serves a session's history, oldest first. The cache is
// tried first; a miss falls through to the database.
func (s *Service) RecentTurns(ctx context.Context, sessionID string, limit int) ([]dialogue.Turn, error) {
	ctx, span := s.tracer.Start(ctx, "chatlog.recent_turns")
	defer span.End()

	if turns := s.cachedTurns(ctx, sessionID, limit); len(turns) > 0 {
		return turns, nil
	}

	messages, err := s.repo.RecentMessages(ctx, sessionID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	turns := make([]dialogue.Turn, len(messages))
	for i, m := range messages {
		turns[i] = dialogue.Turn{
			UserMessage: m.UserMessage,
			BotResponse: m.BotResponse,
			Stage:       dialogue.Stage(m.Stage),
			CreatedAt:   m.CreatedAt,
		}
	}
	return turns, nil
}

// LogRecommendation snapshots what was suggested for which symptoms.
func (s *Service) LogRecommendation(ctx context.Context, sessionID, symptoms string, tests []retrieval.TestInfo) error {
	ctx, span := s.tracer.Start(ctx, "chatlog.log_recommendation")
	defer span.End()

	rec := Recommendation{SessionID: sessionID, Symptoms: symptoms}
	for _, t := range tests {
		rec.Tests = append(rec.Tests, RecommendedTest{ID: t.ID, Name: t.Name, Price: t.Price})
	}
	if err := s.repo.SaveRecommendation(ctx, &rec); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// Recommendations returns the latest snapshots, newest first.
func (s *Service) Recommendations(ctx context.Context, limit int) ([]Recommendation, error) {
	return s.repo.RecentRecommendations(ctx, limit)
}

func (s *Service) cacheTurn(ctx context.Context, sessionID string, turn dialogue.Turn) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(turn)
	if err != nil {
		s.logger.Warn("chat history cache encode failed", "session_id", sessionID, "error", err)
		return
	}
	key := historyKey(sessionID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -historyCacheMax, -1)
	pipe.Expire(ctx, key, historyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("chat history cache append failed", "session_id", sessionID, "error", err)
	}
}

func (s *Service) cachedTurns(ctx context.Context, sessionID string, limit int) []dialogue.Turn {
	if s.redis == nil {
		return nil
	}
	if limit <= 0 || limit > historyCacheMax {
		limit = historyCacheMax
	}
	raw, err := s.redis.LRange(ctx, historyKey(sessionID), int64(-limit), -1).Result()
	if err != nil {
		s.logger.Warn("chat history cache read failed", "session_id", sessionID, "error", err)
		return nil
	}
	var turns []dialogue.Turn
	for _, item := range raw {
		var turn dialogue.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			s.logger.Warn("chat history cache decode failed", "session_id", sessionID, "error", err)
			return nil
		}
		turns = append(turns, turn)
	}
	return turns
}

func historyKey(sessionID string) string {
	return fmt.Sprintf("chat_history:%s", sessionID)
}
