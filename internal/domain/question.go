package domain

import "time"

// AnonymousAuthor is substituted when a submitter or answerer leaves the
// author field blank.
const AnonymousAuthor = "Anonymous"

// Status is the triage state of a question.
type Status string

const (
	StatusPending   Status = "pending"
	StatusEscalated Status = "escalated"
	StatusAnswered  Status = "answered"
)

// ParseStatus validates a raw status string from the request surface.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusPending, StatusEscalated, StatusAnswered:
		return Status(raw), true
	}
	return "", false
}

// Answer is a single response appended to a question. Immutable once stored.
type Answer struct {
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Question is the aggregate the service persists and broadcasts. The ID is an
// opaque store-assigned handle, rendered as a string on the wire. Answers is
// append-only: never reordered, never truncated.
type Question struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Answers   []Answer  `json:"answers"`
}

// User is an answerer/admin account. Passwords are stored as bcrypt hashes.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// RoleAdmin marks accounts that may change question status. Registration
// creates admins: every account is an answerer with triage rights.
const RoleAdmin = "admin"
