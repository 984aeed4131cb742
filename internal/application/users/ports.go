package users

import (
	"context"

	"github.com/baechuer/signup-service/internal/domain"
)

/*
UserRepo
--------
Persistence port for users.
Create must return domain.ErrEmailAlreadyExists when the store's
unique constraint on email rejects the row.
*/
type UserRepo interface {
	FindByEmail(ctx context.Context, email string) (domain.User, bool, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

/*
PasswordHasher
--------------
Turns a plaintext password into the stored hash. Inputs the scheme
cannot represent are rejected with a *domain.Error.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
}

/*
EventPublisher
--------------
Announces new accounts to downstream consumers (welcome mail, analytics).
Delivery is best-effort: registration never fails because of it.
*/
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, evt domain.UserRegistered) error
}
