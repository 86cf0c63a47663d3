package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/poll-service/internal/domain"
)

// In-memory doubles for the persistence boundary. They honor the same error
// contracts as the Postgres implementations (pgx.ErrNoRows on misses, a
// unique-violation PgError on duplicate usernames) so services behave
// identically against them.

// UserRepo is an in-memory repository.UserRepository.
type UserRepo struct {
	mu    sync.Mutex
	byID  map[string]*domain.User
	clock func() time.Time
}

// NewUserRepo builds an empty user repo.
func NewUserRepo() *UserRepo {
	return &UserRepo{byID: make(map[string]*domain.User), clock: time.Now}
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Username == user.Username {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.clock()
	clone := *user
	r.byID[user.ID] = &clone
	return nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

// PollRepo is an in-memory repository.PollRepository. Vote increments are
// guarded by the repo mutex, mirroring the store-level atomicity of the
// SQL implementation.
type PollRepo struct {
	mu    sync.Mutex
	byID  map[string]*domain.Poll
	seq   map[string]int
	next  int
	clock func() time.Time
}

// NewPollRepo builds an empty poll repo.
func NewPollRepo() *PollRepo {
	return &PollRepo{byID: make(map[string]*domain.Poll), seq: make(map[string]int), clock: time.Now}
}

func (r *PollRepo) Create(_ context.Context, poll *domain.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	poll.ID = uuid.NewString()
	poll.CreatedAt = r.clock()
	r.seq[poll.ID] = r.next
	r.byID[poll.ID] = clonePoll(poll)
	return nil
}

func (r *PollRepo) GetByID(_ context.Context, id string) (*domain.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	poll, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return clonePoll(poll), nil
}

func (r *PollRepo) ListAll(_ context.Context) ([]domain.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(*domain.Poll) bool { return true }), nil
}

func (r *PollRepo) ListByOwner(_ context.Context, userID string) ([]domain.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(p *domain.Poll) bool { return p.CreatedBy == userID }), nil
}

func (r *PollRepo) IncrementVote(_ context.Context, pollID string, position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	poll, ok := r.byID[pollID]
	if !ok || position < 0 || position >= len(poll.Options) {
		return pgx.ErrNoRows
	}
	poll.Options[position].Votes++
	return nil
}

func (r *PollRepo) AddOption(_ context.Context, pollID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	poll, ok := r.byID[pollID]
	if !ok {
		return pgx.ErrNoRows
	}
	poll.Options = append(poll.Options, domain.Option{Name: name})
	return nil
}

func (r *PollRepo) Delete(_ context.Context, pollID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[pollID]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.byID, pollID)
	delete(r.seq, pollID)
	return nil
}

// SetCreatedAt backdates a poll, for tests asserting list order.
func (r *PollRepo) SetCreatedAt(pollID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if poll, ok := r.byID[pollID]; ok {
		poll.CreatedAt = at
	}
}

func (r *PollRepo) sorted(keep func(*domain.Poll) bool) []domain.Poll {
	var result []domain.Poll
	for _, poll := range r.byID {
		if keep(poll) {
			result = append(result, *clonePoll(poll))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return r.seq[a.ID] > r.seq[b.ID]
	})
	return result
}

func clonePoll(poll *domain.Poll) *domain.Poll {
	clone := *poll
	clone.Options = append([]domain.Option(nil), poll.Options...)
	return &clone
}

// SessionStore is an in-memory session.Store.
type SessionStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

// NewSessionStore builds an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{tokens: make(map[string]string)}
}

func (s *SessionStore) Create(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.tokens[token] = userID
	return token, nil
}

func (s *SessionStore) Get(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[token], nil
}

func (s *SessionStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}
