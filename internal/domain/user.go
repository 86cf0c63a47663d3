package domain

import "time"

// User is the domain model for registered accounts. Accounts are immutable
// after registration; there are no update or delete operations.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
