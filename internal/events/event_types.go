package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventPollCreated    EventType = "poll_created"
	EventVoteCast       EventType = "vote_cast"
	EventOptionAdded    EventType = "option_added"
	EventPollDeleted    EventType = "poll_deleted"
)

// Actor identifies who triggered an event. UserID is empty for anonymous
// actors (voting does not require an account).
type Actor struct {
	UserID string `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	PollID    string      `json:"poll_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Username string `json:"username"`
}

// PollCreatedPayload payload.
type PollCreatedPayload struct {
	Title       string `json:"title"`
	OptionCount int    `json:"option_count"`
}

// VoteCastPayload payload.
type VoteCastPayload struct {
	OptionIndex int    `json:"option_index"`
	OptionName  string `json:"option_name"`
}

// OptionAddedPayload payload.
type OptionAddedPayload struct {
	OptionIndex int    `json:"option_index"`
	OptionName  string `json:"option_name"`
}

// PollDeletedPayload payload.
type PollDeletedPayload struct {
	Title string `json:"title"`
}
