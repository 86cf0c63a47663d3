package domain

import "time"

// Option is a named, vote-counted choice embedded in a Poll. Options are
// addressed by 0-based position; options are never removed, so positions
// stay stable for the life of the poll.
type Option struct {
	Name  string
	Votes int64
}

// Poll is the aggregate for a question and its ordered options.
type Poll struct {
	ID        string
	Title     string
	Options   []Option
	CreatedBy string
	CreatedAt time.Time
}

// OwnedBy reports whether the given user created the poll.
func (p *Poll) OwnedBy(userID string) bool {
	return p.CreatedBy == userID
}
