package users

import (
	"context"
	"errors"

	"github.com/baechuer/signup-service/internal/domain"
)

type RegisterCmd struct {
	Name     string
	Email    string
	Password string
}

// Register validates the command, hashes the password (the hasher owns
// the length limit), rejects a known
// email and inserts the user. A unique violation on insert is reported
// the same way as a pre-check hit, so concurrent duplicates still end in
// exactly one row.
func (s *Service) Register(ctx context.Context, cmd RegisterCmd) (domain.User, error) {
	if err := validateRegister(cmd); err != nil {
		return domain.User{}, err
	}

	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return domain.User{}, err
		}
		return domain.User{}, domain.ErrHashFailed(err)
	}

	_, found, err := s.users.FindByEmail(ctx, cmd.Email)
	if err != nil {
		return domain.User{}, err
	}
	if found {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}

	created, err := s.users.Create(ctx, domain.User{
		Name:         cmd.Name,
		Email:        cmd.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return domain.User{}, err
	}

	if s.pub != nil {
		evt := domain.UserRegistered{
			UserID: created.ID,
			Name:   created.Name,
			Email:  created.Email,
			At:     s.now().UTC(),
		}
		if err := s.pub.PublishUserRegistered(ctx, evt); err != nil {
			s.warn("publish user.registered failed", err)
		}
	}

	s.audit("user_registered", map[string]string{"user_id": created.ID})

	return created, nil
}

func validateRegister(cmd RegisterCmd) error {
	var missing []string
	if cmd.Name == "" {
		missing = append(missing, "name")
	}
	if cmd.Email == "" {
		missing = append(missing, "email")
	}
	if cmd.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return domain.ErrMissingFields(missing...)
	}
	return nil
}
