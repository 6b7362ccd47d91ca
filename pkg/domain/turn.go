package domain

import "time"

// Role identifies who authored a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one message in a chat transcript. Transcripts belong
// to the presentation layer and are never stored by the engine.
type ConversationTurn struct {
	Role           Role            `json:"role"`
	Text           string          `json:"text"`
	Options        []string        `json:"options,omitempty"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	At             time.Time       `json:"at"`
}
