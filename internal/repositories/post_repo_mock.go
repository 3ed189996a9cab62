package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"chirp/internal/models"
)

type likeKey struct {
	userID uint
	postID uint
}

// MockPostRepository is an in-memory implementation of PostRepository with
// the same domain-error semantics as the GORM implementation. The single
// mutex makes every operation atomic, mirroring the transactional guarantees
// of the real store.
type MockPostRepository struct {
	mu     sync.RWMutex
	posts  map[uint]models.Post
	likes  map[likeKey]models.Like
	users  UserRepository
	nextID uint
}

// NewMockPostRepository creates a new MockPostRepository. The user repository
// is consulted when resolving likers.
func NewMockPostRepository(users UserRepository) *MockPostRepository {
	return &MockPostRepository{
		posts:  make(map[uint]models.Post),
		likes:  make(map[likeKey]models.Like),
		users:  users,
		nextID: 1,
	}
}

// Create adds a new post.
func (r *MockPostRepository) Create(post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.ID == 0 {
		post.ID = r.nextID
		r.nextID++
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	r.posts[post.ID] = *post
	return nil
}

// GetAll returns every post in insertion order.
func (r *MockPostRepository) GetAll() ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

// GetByID returns the post with the given ID.
func (r *MockPostRepository) GetByID(id uint) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %d: %w", id, models.ErrNotFound)
	}
	return &p, nil
}

// UpdateText replaces the post's text when requesterID is the author.
func (r *MockPostRepository) UpdateText(postID, requesterID uint, text string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return nil, fmt.Errorf("post %d: %w", postID, models.ErrNotFound)
	}
	if p.AuthorID != requesterID {
		return nil, fmt.Errorf("post %d: %w", postID, models.ErrForbidden)
	}
	p.Text = text
	p.UpdatedAt = time.Now()
	r.posts[postID] = p
	return &p, nil
}

// Delete removes the post and its likes when requesterID is the author.
func (r *MockPostRepository) Delete(postID, requesterID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return fmt.Errorf("post %d: %w", postID, models.ErrNotFound)
	}
	if p.AuthorID != requesterID {
		return fmt.Errorf("post %d: %w", postID, models.ErrForbidden)
	}
	delete(r.posts, postID)
	for k := range r.likes {
		if k.postID == postID {
			delete(r.likes, k)
		}
	}
	return nil
}

// AddLike records a like, rejecting self-likes and duplicates.
func (r *MockPostRepository) AddLike(postID, requesterID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return fmt.Errorf("post %d: %w", postID, models.ErrNotFound)
	}
	if p.AuthorID == requesterID {
		return models.ErrSelfLike
	}
	key := likeKey{userID: requesterID, postID: postID}
	if _, exists := r.likes[key]; exists {
		return fmt.Errorf("like on post %d by user %d: %w", postID, requesterID, models.ErrConflict)
	}
	r.likes[key] = models.Like{UserID: requesterID, PostID: postID, CreatedAt: time.Now()}
	return nil
}

// GetLikers returns the users who liked the post, ErrNotFound when none.
func (r *MockPostRepository) GetLikers(postID uint) ([]models.User, error) {
	r.mu.RLock()
	ids := make([]uint, 0)
	for k := range r.likes {
		if k.postID == postID {
			ids = append(ids, k.userID)
		}
	}
	r.mu.RUnlock()

	if len(ids) == 0 {
		return nil, fmt.Errorf("likes for post %d: %w", postID, models.ErrNotFound)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		u, err := r.users.GetByID(id)
		if err != nil {
			continue // liker deleted after liking
		}
		users = append(users, *u)
	}
	return users, nil
}
