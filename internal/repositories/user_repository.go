package repositories

import "chirp/internal/models"

// UserRepository defines the interface for user data access.
// Implementations translate store-level constraint violations into the
// domain errors declared in the models package.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
}
