package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/repository"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Get(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT username, hashed_password, role, created_at
		FROM users
		WHERE username = $1
	`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, mapNoRows(err, "user")
	}

	return &user, nil
}

// CreateWithGrants inserts the credential row, creates a NOLOGIN database
// role named after the identity, and grants the declared role's privileges
// to it, all inside one transaction. The database role is what lets the
// storage engine enforce the same row predicates the application applies:
// an account without its grants must never be observable.
func (r *userRepository) CreateWithGrants(ctx context.Context, user *model.User) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		insert := `
			INSERT INTO users (username, hashed_password, role)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, insert,
			user.Username, user.PasswordHash, user.Role); err != nil {
			return err
		}

		// Identifiers cannot be bound as parameters; quote them.
		createRole := fmt.Sprintf("CREATE ROLE %s NOLOGIN", pq.QuoteIdentifier(user.Username))
		if _, err := tx.ExecContext(ctx, createRole); err != nil {
			return err
		}

		grant := fmt.Sprintf("GRANT %s TO %s",
			pq.QuoteIdentifier(string(user.Role)), pq.QuoteIdentifier(user.Username))
		if _, err := tx.ExecContext(ctx, grant); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return apperrors.Conflict("username already exists", err)
		}
		return apperrors.Internal(err)
	}

	return nil
}
