package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/poll-service/internal/domain"
	"github.com/spec-kit/poll-service/internal/events"
	"github.com/spec-kit/poll-service/internal/repository"
	apperrors "github.com/spec-kit/poll-service/pkg/util"
)

// MinOptions is the smallest option set a poll can be created with.
const MinOptions = 2

// PollService coordinates the poll lifecycle. Every operation takes the
// caller's resolved identity explicitly; nil means anonymous.
type PollService struct {
	polls      repository.PollRepository
	dispatcher events.Dispatcher
}

// PollDependencies bundles collaborators for the poll service.
type PollDependencies struct {
	PollRepo   repository.PollRepository
	Dispatcher events.Dispatcher
}

// NewPollService constructs the service.
func NewPollService(deps PollDependencies) *PollService {
	return &PollService{
		polls:      deps.PollRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ParseOptions splits the raw create-form text into option names: one per
// line, trimmed, empty lines dropped, order kept, duplicates allowed.
func ParseOptions(raw string) []string {
	lines := strings.Split(raw, "\n")
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ListAll returns every poll, newest first.
func (s *PollService) ListAll(ctx context.Context) ([]domain.Poll, error) {
	polls, err := s.polls.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailable(err)
	}
	return polls, nil
}

// ListOwnedBy returns the caller's polls, newest first.
func (s *PollService) ListOwnedBy(ctx context.Context, identity *domain.User) ([]domain.Poll, error) {
	if identity == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	polls, err := s.polls.ListByOwner(ctx, identity.ID)
	if err != nil {
		return nil, apperrors.NewUnavailable(err)
	}
	return polls, nil
}

// Create persists a new poll owned by the caller. Nothing is persisted when
// validation fails.
func (s *PollService) Create(ctx context.Context, identity *domain.User, title, rawOptions string) (*domain.Poll, error) {
	if identity == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	title = strings.TrimSpace(title)
	names := ParseOptions(rawOptions)
	if title == "" || len(names) < MinOptions {
		return nil, apperrors.NewValidationError("need a title and at least 2 options", map[string]any{
			"options": len(names),
		})
	}

	poll := &domain.Poll{
		Title:     title,
		CreatedBy: identity.ID,
		Options:   make([]domain.Option, len(names)),
	}
	for i, name := range names {
		poll.Options[i] = domain.Option{Name: name}
	}

	if err := s.polls.Create(ctx, poll); err != nil {
		return nil, apperrors.NewUnavailable(err)
	}

	s.publishPollEvent(ctx, events.EventPollCreated, poll.ID, identity, events.PollCreatedPayload{
		Title:       poll.Title,
		OptionCount: len(poll.Options),
	})
	return poll, nil
}

// GetByID fetches a single poll. No authentication required.
func (s *PollService) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	poll, err := s.polls.GetByID(ctx, id)
	if err == pgx.ErrNoRows {
		return nil, apperrors.NewNotFound("poll")
	}
	if err != nil {
		return nil, apperrors.NewUnavailable(err)
	}
	return poll, nil
}

// Vote increments exactly one option counter. Anonymous voting is permitted
// and a caller may vote any number of times; there is deliberately no
// dedupe here.
func (s *PollService) Vote(ctx context.Context, identity *domain.User, pollID string, optionIndex int) (*domain.Poll, error) {
	poll, err := s.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if optionIndex < 0 || optionIndex >= len(poll.Options) {
		return nil, apperrors.NewValidationError("invalid option", map[string]any{
			"option":  optionIndex,
			"options": len(poll.Options),
		})
	}

	if err := s.polls.IncrementVote(ctx, pollID, optionIndex); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("poll")
		}
		return nil, apperrors.NewUnavailable(err)
	}

	s.publishPollEvent(ctx, events.EventVoteCast, pollID, identity, events.VoteCastPayload{
		OptionIndex: optionIndex,
		OptionName:  poll.Options[optionIndex].Name,
	})
	return s.GetByID(ctx, pollID)
}

// AddOption appends a fresh zero-vote option at the end of the sequence.
func (s *PollService) AddOption(ctx context.Context, identity *domain.User, pollID, name string) (*domain.Poll, error) {
	if identity == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	poll, err := s.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("option name required", nil)
	}

	if err := s.polls.AddOption(ctx, pollID, name); err != nil {
		return nil, apperrors.NewUnavailable(err)
	}

	s.publishPollEvent(ctx, events.EventOptionAdded, pollID, identity, events.OptionAddedPayload{
		OptionIndex: len(poll.Options),
		OptionName:  name,
	})
	return s.GetByID(ctx, pollID)
}

// Delete removes a poll permanently. Only the owner may delete.
func (s *PollService) Delete(ctx context.Context, identity *domain.User, pollID string) error {
	if identity == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	poll, err := s.GetByID(ctx, pollID)
	if err != nil {
		return err
	}
	if !poll.OwnedBy(identity.ID) {
		return apperrors.NewForbidden("only the owner can delete a poll")
	}

	if err := s.polls.Delete(ctx, pollID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("poll")
		}
		return apperrors.NewUnavailable(err)
	}

	s.publishPollEvent(ctx, events.EventPollDeleted, pollID, identity, events.PollDeletedPayload{
		Title: poll.Title,
	})
	return nil
}

func (s *PollService) publishPollEvent(ctx context.Context, eventType events.EventType, pollID string, identity *domain.User, payload interface{}) {
	actor := events.Actor{}
	if identity != nil {
		actor.UserID = identity.ID
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:    eventType,
		PollID:  pollID,
		Actor:   actor,
		Payload: payload,
	})
}

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}
