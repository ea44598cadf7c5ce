package domain

import "context"

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserRepository is the persistence port for users. Lookups return nil, nil
// on a miss.
type UserRepository interface {
	Create(ctx context.Context, email, name string) (int64, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}
