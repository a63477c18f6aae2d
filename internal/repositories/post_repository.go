package repositories

import (
	"context"
	"math"

	"github.com/anonto42/twittor/backend/internal/models"
	"gorm.io/gorm"
)

// Page selects one page of a listing. Number starts at 1.
type Page struct {
	Number int
	Size   int
}

// offset saturates at math.MaxInt instead of overflowing, which keeps huge page
// numbers past the end.
func (p Page) offset() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// PostPage is one page of posts plus the total number of matching posts.
type PostPage struct {
	Posts []models.Post
	Total int64
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	ListByAuthor(ctx context.Context, userID uint, page Page) (*PostPage, error)
	ListByAuthorAndFollowed(ctx context.Context, userID uint, page Page) (*PostPage, error)
	ListAll(ctx context.Context, page Page) (*PostPage, error)
	CountByAuthor(ctx context.Context, userID uint) (int64, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListByAuthor returns the posts written by userID, newest first.
func (r *PostgresPostRepository) ListByAuthor(ctx context.Context, userID uint, page Page) (*PostPage, error) {
	return r.list(ctx, page, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	})
}

// ListByAuthorAndFollowed returns the posts written by userID or by anyone userID follows.
func (r *PostgresPostRepository) ListByAuthorAndFollowed(ctx context.Context, userID uint, page Page) (*PostPage, error) {
	return r.list(ctx, page, func(db *gorm.DB) *gorm.DB {
		followed := r.db.WithContext(ctx).Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", userID)
		return db.Where("user_id = ? OR user_id IN (?)", userID, followed)
	})
}

func (r *PostgresPostRepository) ListAll(ctx context.Context, page Page) (*PostPage, error) {
	return r.list(ctx, page, func(db *gorm.DB) *gorm.DB { return db })
}

func (r *PostgresPostRepository) CountByAuthor(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *PostgresPostRepository) list(ctx context.Context, page Page, scope func(*gorm.DB) *gorm.DB) (*PostPage, error) {
	result := &PostPage{Posts: []models.Post{}}

	if err := scope(r.db.WithContext(ctx).Model(&models.Post{})).Count(&result.Total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if result.Total == 0 || int64(page.offset()) >= result.Total {
		return result, nil
	}

	err := scope(r.db.WithContext(ctx)).
		Preload("Author").
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.offset()).
		Limit(page.Size).
		Find(&result.Posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return result, nil
}
