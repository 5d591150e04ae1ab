// Package chatlog persists the chat audit trail: every turn the bot
// exchanges with a session, and snapshots of what it recommended for
// which symptoms.
package chatlog

import "time"

// ChatMessage is one logged turn.
type ChatMessage struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Stage       string    `json:"stage"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecommendedTest is one suggested test inside a recommendation
// snapshot, kept as it was shown to the user.
type RecommendedTest struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

// Recommendation records which tests were suggested for which
// symptom text.
type Recommendation struct {
	ID        int64             `json:"id"`
	SessionID string            `json:"session_id,omitempty"`
	Symptoms  string            `json:"symptoms"`
	Tests     []RecommendedTest `json:"tests"`
	CreatedAt time.Time         `json:"created_at"`
}
