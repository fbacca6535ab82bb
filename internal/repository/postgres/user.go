package postgres

import (
	"context"
	"database/sql"
	"errors"

	"shiporbit/internal/domain"
	"shiporbit/internal/repository"
)

// UserRepository is a PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, first_name, last_name, COALESCE(processor_customer_id, ''), created_at
		FROM users WHERE id = $1
	`

	var user domain.User
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.ProcessorCustomerID,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

// UpdateProcessorCustomerID caches the processor customer id on the user.
func (r *UserRepository) UpdateProcessorCustomerID(ctx context.Context, id, customerID string) error {
	query := `UPDATE users SET processor_customer_id = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, customerID, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
