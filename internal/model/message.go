package model

import "time"

// Role identifies who produced a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Source is one retrieval citation attached to an assistant answer.
type Source struct {
	Title      string  `json:"textbook_title"`
	Subject    string  `json:"subject"`
	Grade      string  `json:"grade"`
	Similarity float64 `json:"similarity_score"`
}

// Message is one entry of the chat transcript, in arrival order.
type Message struct {
	ID             string    `json:"id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Sources        []Source  `json:"sources,omitempty"`
	ResponseTimeMs int       `json:"response_time_ms,omitempty"`
	QueryLogID     string    `json:"query_log_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Answer is the server response to one question.
type Answer struct {
	Answer         string   `json:"answer"`
	Sources        []Source `json:"sources"`
	ResponseTimeMs int      `json:"response_time_ms"`
	QueryLogID     string   `json:"query_log_id"`
}

// SessionStats aggregates metrics for the current session.
type SessionStats struct {
	QuestionsAsked  int     `json:"questions_asked"`
	AvgResponseTime float64 `json:"avg_response_time"`
	AvgRating       float64 `json:"avg_rating"`
	SourcesUsed     int     `json:"sources_used"`
}

// HistoryEntry is one past question/answer exchange as reported by the
// server, including any rating the user left on it.
type HistoryEntry struct {
	QueryText      string    `json:"query_text"`
	ResponseText   string    `json:"response_text"`
	Rating         int       `json:"rating,omitempty"`
	ResponseTimeMs int       `json:"response_time,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
