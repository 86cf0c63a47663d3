package dto

import (
	"time"

	"github.com/spec-kit/poll-service/internal/domain"
)

// CreatePollRequest carries the poll create form: a title plus one option
// name per line in Options.
type CreatePollRequest struct {
	Title   string `json:"title" form:"title"`
	Options string `json:"options" form:"options"`
}

// VoteRequest carries the vote form. Option is the 0-based option index,
// kept as a string so a non-numeric submission maps to a validation error
// rather than a parse failure.
type VoteRequest struct {
	Option string `json:"option" form:"option"`
}

// AddOptionRequest carries the add-option form.
type AddOptionRequest struct {
	Name string `json:"name" form:"name"`
}

// OptionResponse is one rendered option.
type OptionResponse struct {
	Name  string `json:"name"`
	Votes int64  `json:"votes"`
}

// PollResponse is the rendered poll aggregate.
type PollResponse struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Options   []OptionResponse `json:"options"`
	CreatedBy string           `json:"created_by"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewPollResponse maps a domain poll.
func NewPollResponse(poll *domain.Poll) PollResponse {
	options := make([]OptionResponse, len(poll.Options))
	for i, opt := range poll.Options {
		options[i] = OptionResponse{Name: opt.Name, Votes: opt.Votes}
	}
	return PollResponse{
		ID:        poll.ID,
		Title:     poll.Title,
		Options:   options,
		CreatedBy: poll.CreatedBy,
		CreatedAt: poll.CreatedAt,
	}
}

// NewPollListResponse maps a slice of domain polls, keeping order.
func NewPollListResponse(polls []domain.Poll) []PollResponse {
	result := make([]PollResponse, len(polls))
	for i := range polls {
		result[i] = NewPollResponse(&polls[i])
	}
	return result
}
