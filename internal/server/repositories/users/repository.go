package users

import (
	"context"

	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/timex"
)

// Repository is the authoritative set of user records keyed by id.
// Implementations hand out copies: mutating a returned *models.User never
// changes what is stored.
type Repository interface {
	// Insert assigns the next id to user, stores it and returns the stored copy.
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	// Put stores user under id, overwriting any existing record.
	Put(ctx context.Context, id uint64, user *models.User) error
	// Get returns common.ErrorNotFound when id is absent.
	Get(ctx context.Context, id uint64) (*models.User, error)
	Contains(ctx context.Context, id uint64) (bool, error)
	// Remove is a no-op when id is absent.
	Remove(ctx context.Context, id uint64) error
	// All returns every record in insertion (id) order.
	All(ctx context.Context) ([]*models.User, error)
	Size(ctx context.Context) (int, error)
	// BirthDateBetween returns records born strictly after from and strictly
	// before to, in id order.
	BirthDateBetween(ctx context.Context, from, to timex.Date) ([]*models.User, error)
}
