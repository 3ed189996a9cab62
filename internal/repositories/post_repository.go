package repositories

import "chirp/internal/models"

// PostRepository defines the interface for post and like data access.
//
// UpdateText and Delete take the requester's user ID and enforce the
// ownership rule atomically: the author check and the mutation are a single
// conditional statement (or transaction), never a separate read then write.
type PostRepository interface {
	Create(post *models.Post) error
	GetAll() ([]models.Post, error)
	GetByID(id uint) (*models.Post, error)
	UpdateText(postID, requesterID uint, text string) (*models.Post, error)
	Delete(postID, requesterID uint) error
	AddLike(postID, requesterID uint) error
	GetLikers(postID uint) ([]models.User, error)
}
