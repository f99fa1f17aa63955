package domain

import "context"

// QuestionRepository is the persistence contract for questions. The store
// assigns identity on insert and serializes writes to a single question, so
// AppendAnswer and SetStatus are safe under concurrent callers.
type QuestionRepository interface {
	Insert(ctx context.Context, q *Question) (string, error)
	GetByID(ctx context.Context, id string) (*Question, error)
	List(ctx context.Context) ([]Question, error)
	AppendAnswer(ctx context.Context, id string, a Answer) error
	SetStatus(ctx context.Context, id string, status Status) error
}

// UserRepository stores answerer/admin accounts.
type UserRepository interface {
	Insert(ctx context.Context, u *User) (string, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// Authorizer resolves an opaque bearer credential and checks it carries a
// capability. Returns the subject id on success.
type Authorizer interface {
	RequireCapability(ctx context.Context, credential, capability string) (string, error)
}

// EventSink receives serialized broadcast envelopes for fan-out to viewers.
type EventSink interface {
	Broadcast(data []byte)
}
