package users

import (
	"context"
	"errors"

	"github.com/accounthub/account-service/internal/models"
)

var (
	// ErrDuplicateEmail is returned by Create when the email is already taken.
	ErrDuplicateEmail = errors.New("users: email already exists")
	// ErrNotFound is returned by Update when no row matches the user id.
	ErrNotFound = errors.New("users: not found")
)

// Repository defines persistence operations for user profiles.
// Lookups return (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	List(ctx context.Context, offset, limit int) ([]models.User, int, error)
	Ping(ctx context.Context) error
}
