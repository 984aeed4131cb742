package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/signup-service/internal/domain"
)

// SQLSTATE unique_violation, and the class prefix of data_exception
// (bad encoding, value too long, NUL in text).
const (
	uniqueViolation    = "23505"
	dataExceptionClass = "22"
)

const emailUniqueConstraint = "users_email_key"

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- users.UserRepo ----------

// FindByEmail matches the address exactly as given; case folding is left to
// the column collation.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	const q = `
SELECT id
FROM users
WHERE email = $1
LIMIT 1;
`
	var id string
	if err := r.db.QueryRowContext(ctx, q, email).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, storeError(err, "email")
	}
	return domain.User{ID: id, Email: email}, true, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	const q = `
INSERT INTO users (name, email, password_hash)
VALUES ($1, $2, $3)
RETURNING id, created_at;
`
	err := r.db.QueryRowContext(ctx, q, u.Name, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isEmailTaken(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, storeError(err, "input")
	}
	return u, nil
}

// storeError keeps a value the server refused to store a client error;
// anything else means the store could not answer.
func storeError(err error, field string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, dataExceptionClass) {
		if pgErr.ColumnName != "" {
			field = pgErr.ColumnName
		}
		de := domain.ErrInvalidField(field, "contains invalid data")
		de.Cause = err
		return de
	}
	return domain.ErrDBUnavailable(err)
}

func isEmailTaken(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	// email is the only unique column besides the generated id
	return pgErr.ConstraintName == "" || pgErr.ConstraintName == emailUniqueConstraint
}
