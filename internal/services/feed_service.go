package services

import (
	"context"
	"strings"

	"github.com/anonto42/twittor/backend/internal/metrics"
	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/internal/repositories"
)

// Feed is one page of a timeline together with its pagination cursors.
// PrevPage and NextPage are zero when there is no such page.
type Feed struct {
	Posts    []models.Post
	Page     int
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
	Total    int64
}

type FeedService struct {
	postRepo repositories.PostRepository
	userRepo repositories.UserRepository
	perPage  int
}

func NewFeedService(postRepo repositories.PostRepository, userRepo repositories.UserRepository, perPage int) *FeedService {
	if perPage < 1 {
		perPage = 10
	}
	return &FeedService{postRepo: postRepo, userRepo: userRepo, perPage: perPage}
}

// HomeFeed lists the user's own posts and those of everyone they follow.
func (s *FeedService) HomeFeed(ctx context.Context, userID uint, page int) (*Feed, error) {
	p := s.page(page)
	result, err := s.postRepo.ListByAuthorAndFollowed(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return newFeed(result, p), nil
}

// ExploreFeed lists every post.
func (s *FeedService) ExploreFeed(ctx context.Context, page int) (*Feed, error) {
	p := s.page(page)
	result, err := s.postRepo.ListAll(ctx, p)
	if err != nil {
		return nil, err
	}
	return newFeed(result, p), nil
}

// ProfileFeed lists the posts of the named user. Unknown usernames are NOT_FOUND.
func (s *FeedService) ProfileFeed(ctx context.Context, username string, page int) (*models.User, *Feed, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, models.NewNotFoundError("User", username)
	}
	p := s.page(page)
	result, err := s.postRepo.ListByAuthor(ctx, user.ID, p)
	if err != nil {
		return nil, nil, err
	}
	return user, newFeed(result, p), nil
}

// CreatePost publishes body as a new post by userID.
func (s *FeedService) CreatePost(ctx context.Context, userID uint, body string) (*models.Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, models.NewFieldError("tweet", "This field is required.")
	}
	if len([]rune(body)) > 140 {
		return nil, models.NewFieldError("tweet", "Field cannot be longer than 140 characters.")
	}
	post := &models.Post{Body: body, UserID: userID}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	metrics.PostsCreatedTotal.Inc()
	return post, nil
}

func (s *FeedService) page(number int) repositories.Page {
	return repositories.Page{Number: NormalizePage(number), Size: s.perPage}
}

// NormalizePage maps anything below 1 to the first page.
func NormalizePage(number int) int {
	if number < 1 {
		return 1
	}
	return number
}

func newFeed(result *repositories.PostPage, p repositories.Page) *Feed {
	feed := &Feed{
		Posts: result.Posts,
		Page:  p.Number,
		Total: result.Total,
	}
	if p.Number > 1 {
		feed.HasPrev = true
		feed.PrevPage = p.Number - 1
	}
	// compare against the page count so huge page numbers cannot overflow
	lastPage := (result.Total + int64(p.Size) - 1) / int64(p.Size)
	if int64(p.Number) < lastPage {
		feed.HasNext = true
		feed.NextPage = p.Number + 1
	}
	return feed
}
