package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/poll-service/internal/domain"
)

// PollRepository encapsulates poll persistence. Options live embedded in the
// poll aggregate, keyed by 0-based position; the store never removes options.
type PollRepository interface {
	Create(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id string) (*domain.Poll, error)
	ListAll(ctx context.Context) ([]domain.Poll, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Poll, error)
	// IncrementVote atomically adds 1 to the counter at the given position.
	// Returns pgx.ErrNoRows when the poll or position does not exist.
	IncrementVote(ctx context.Context, pollID string, position int) error
	AddOption(ctx context.Context, pollID, name string) error
	Delete(ctx context.Context, pollID string) error
}

type pollRepository struct {
	pool *pgxpool.Pool
}

// NewPollRepository instantiates repository.
func NewPollRepository(pool *pgxpool.Pool) PollRepository {
	return &pollRepository{pool: pool}
}

func (r *pollRepository) Create(ctx context.Context, poll *domain.Poll) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertPoll = `
        INSERT INTO polls (title, created_by)
        VALUES ($1, $2)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insertPoll, poll.Title, poll.CreatedBy).
		Scan(&poll.ID, &poll.CreatedAt); err != nil {
		return err
	}

	const insertOption = `
        INSERT INTO poll_options (poll_id, position, name, votes)
        VALUES ($1, $2, $3, $4)`
	for i, opt := range poll.Options {
		if _, err := tx.Exec(ctx, insertOption, poll.ID, i, opt.Name, opt.Votes); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *pollRepository) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	const query = `
        SELECT id, title, created_by, created_at
        FROM polls WHERE id=$1`

	var poll domain.Poll
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&poll.ID,
		&poll.Title,
		&poll.CreatedBy,
		&poll.CreatedAt,
	); err != nil {
		return nil, notFoundIfMalformed(err)
	}

	options, err := r.loadOptions(ctx, poll.ID)
	if err != nil {
		return nil, err
	}
	poll.Options = options
	return &poll, nil
}

func (r *pollRepository) ListAll(ctx context.Context) ([]domain.Poll, error) {
	const query = `
        SELECT p.id, p.title, p.created_by, p.created_at, o.name, o.votes
        FROM polls p
        JOIN poll_options o ON o.poll_id = p.id
        ORDER BY p.created_at DESC, p.id, o.position`
	return r.listJoined(ctx, query)
}

func (r *pollRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Poll, error) {
	const query = `
        SELECT p.id, p.title, p.created_by, p.created_at, o.name, o.votes
        FROM polls p
        JOIN poll_options o ON o.poll_id = p.id
        WHERE p.created_by = $1
        ORDER BY p.created_at DESC, p.id, o.position`
	return r.listJoined(ctx, query, userID)
}

func (r *pollRepository) listJoined(ctx context.Context, query string, args ...any) ([]domain.Poll, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Poll
	for rows.Next() {
		var (
			poll domain.Poll
			opt  domain.Option
		)
		if err := rows.Scan(
			&poll.ID,
			&poll.Title,
			&poll.CreatedBy,
			&poll.CreatedAt,
			&opt.Name,
			&opt.Votes,
		); err != nil {
			return nil, err
		}
		if len(result) == 0 || result[len(result)-1].ID != poll.ID {
			result = append(result, poll)
		}
		last := &result[len(result)-1]
		last.Options = append(last.Options, opt)
	}
	return result, rows.Err()
}

func (r *pollRepository) IncrementVote(ctx context.Context, pollID string, position int) error {
	// Single-statement increment; read-modify-write here would lose updates
	// under concurrent voters.
	const query = `
        UPDATE poll_options SET votes = votes + 1
        WHERE poll_id=$1 AND position=$2`
	cmd, err := r.pool.Exec(ctx, query, pollID, position)
	if err != nil {
		return notFoundIfMalformed(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pollRepository) AddOption(ctx context.Context, pollID, name string) error {
	// Position is assigned inside the statement so concurrent appends never
	// observe a stale length. Two appends can still race to the same
	// position; the primary key rejects the loser, which retries with a
	// fresh MAX.
	const query = `
        INSERT INTO poll_options (poll_id, position, name, votes)
        SELECT $1, COALESCE(MAX(position)+1, 0), $2, 0
        FROM poll_options WHERE poll_id=$1`
	return retryOnUniqueViolation(3, func() error {
		_, err := r.pool.Exec(ctx, query, pollID, name)
		return err
	})
}

func (r *pollRepository) Delete(ctx context.Context, pollID string) error {
	const query = `DELETE FROM polls WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, pollID)
	if err != nil {
		return notFoundIfMalformed(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func retryOnUniqueViolation(attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !IsUniqueViolation(err) {
			return err
		}
	}
	return err
}

func (r *pollRepository) loadOptions(ctx context.Context, pollID string) ([]domain.Option, error) {
	const query = `
        SELECT name, votes FROM poll_options
        WHERE poll_id=$1 ORDER BY position`
	rows, err := r.pool.Query(ctx, query, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []domain.Option
	for rows.Next() {
		var opt domain.Option
		if err := rows.Scan(&opt.Name, &opt.Votes); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}
