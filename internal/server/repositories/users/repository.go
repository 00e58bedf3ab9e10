// Package users declares the user store contract and its PostgreSQL
// implementation over the auth_user table.
package users

import (
	"context"

	"github.com/dmitrijs2005/marketplace/internal/server/models"
)

type Repository interface {
	// Create inserts a new active, non-staff user and fills in its ID.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByLogin looks a user up by exact username and returns at least
	// ID, UserName and Password. Missing users yield common.ErrorNotFound.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)

	// GetUserByID returns the public fields of a user. Missing users yield
	// common.ErrorNotFound.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// ExistsByUsernameOrEmail reports whether either value is already taken.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}
