package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"chirp/internal/models"
)

// GORMPostRepository is a GORM implementation of PostRepository.
type GORMPostRepository struct {
	db *gorm.DB
}

// NewGORMPostRepository creates a new instance of GORMPostRepository.
func NewGORMPostRepository(db *gorm.DB) *GORMPostRepository {
	return &GORMPostRepository{db: db}
}

// Create inserts a new post.
func (r *GORMPostRepository) Create(post *models.Post) error {
	if err := r.db.Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetAll returns every post in insertion order. No pagination.
func (r *GORMPostRepository) GetAll() ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.Order("id").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// GetByID retrieves a single post by its ID.
func (r *GORMPostRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post by ID %d: %w", id, err)
	}
	return &post, nil
}

// UpdateText replaces the post's text, but only when requesterID is the
// author. The ownership check rides on the UPDATE's WHERE clause, so there is
// no window between check and mutation.
func (r *GORMPostRepository) UpdateText(postID, requesterID uint, text string) (*models.Post, error) {
	res := r.db.Model(&models.Post{}).
		Where("id = ? AND author_id = ?", postID, requesterID).
		Update("text", text)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update post %d: %w", postID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, r.missReason(r.db, postID)
	}
	return r.GetByID(postID)
}

// Delete removes the post and its likes, but only when requesterID is the
// author. Runs in a transaction so a half-deleted post is never observable.
func (r *GORMPostRepository) Delete(postID, requesterID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND author_id = ?", postID, requesterID).Delete(&models.Post{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete post %d: %w", postID, res.Error)
		}
		if res.RowsAffected == 0 {
			return r.missReason(tx, postID)
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes for post %d: %w", postID, err)
		}
		return nil
	})
}

// AddLike records that requesterID liked the post. Authors cannot like their
// own posts, and the composite primary key rejects duplicate likes.
func (r *GORMPostRepository) AddLike(postID, requesterID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("post %d: %w", postID, models.ErrNotFound)
			}
			return fmt.Errorf("failed to get post %d: %w", postID, err)
		}
		if post.AuthorID == requesterID {
			return models.ErrSelfLike
		}
		like := models.Like{UserID: requesterID, PostID: postID}
		if err := tx.Create(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("like on post %d by user %d: %w", postID, requesterID, models.ErrConflict)
			}
			return fmt.Errorf("failed to create like: %w", err)
		}
		return nil
	})
}

// GetLikers returns the users who liked the post. Zero likes is ErrNotFound,
// which also covers a post ID that does not exist.
func (r *GORMPostRepository) GetLikers(postID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Model(&models.User{}).
		Joins("JOIN likes ON likes.user_id = users.id").
		Where("likes.post_id = ?", postID).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list likers for post %d: %w", postID, err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("likes for post %d: %w", postID, models.ErrNotFound)
	}
	return users, nil
}

// missReason tells a caller whose conditional mutation matched zero rows
// whether the post is gone (ErrNotFound) or owned by someone else (ErrForbidden).
func (r *GORMPostRepository) missReason(tx *gorm.DB, postID uint) error {
	var post models.Post
	if err := tx.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("post %d: %w", postID, models.ErrNotFound)
		}
		return fmt.Errorf("failed to get post %d: %w", postID, err)
	}
	return fmt.Errorf("post %d: %w", postID, models.ErrForbidden)
}
