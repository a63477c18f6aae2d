package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/internal/repositories"
	"github.com/anonto42/twittor/backend/pkg/logger"
	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

var nonUsernameChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// Seeder fills a development database with fake users, posts and follows
type Seeder struct {
	userRepo   repositories.UserRepository
	postRepo   repositories.PostRepository
	followRepo repositories.FollowRepository
}

// Result counts what a run created.
type Result struct {
	Users   int
	Posts   int
	Follows int
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	// Seed returns an error only for invalid sources, time.Now().UnixNano() is always valid
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		userRepo:   repositories.NewPostgresUserRepository(db),
		postRepo:   repositories.NewPostgresPostRepository(db),
		followRepo: repositories.NewPostgresFollowRepository(db),
	}
}

// Seed creates userCount users, postCount posts spread over the last 30 days,
// and a few follow edges per user.
func (s *Seeder) Seed(ctx context.Context, userCount, postCount int) (*Result, error) {
	result := &Result{}

	users, err := s.seedUsers(ctx, userCount)
	if err != nil {
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}
	result.Users = len(users)
	if len(users) == 0 {
		return result, nil
	}

	if result.Posts, err = s.seedPosts(ctx, users, postCount); err != nil {
		return nil, fmt.Errorf("failed to seed posts: %w", err)
	}
	if result.Follows, err = s.seedFollows(ctx, users); err != nil {
		return nil, fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("Seed completed",
		zap.Int("users", result.Users),
		zap.Int("posts", result.Posts),
		zap.Int("follows", result.Follows),
	)
	return result, nil
}

func (s *Seeder) seedUsers(ctx context.Context, count int) ([]models.User, error) {
	users := make([]models.User, 0, count)

	// one hash for every account, bcrypt is slow on purpose
	hashed := &models.User{}
	if err := hashed.SetPassword(DefaultPassword); err != nil {
		return nil, err
	}

	for len(users) < count {
		username := fakeUsername()
		taken, err := s.userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		user := models.User{
			Username:     username,
			Email:        strings.ToLower(username) + "@" + gofakeit.DomainName(),
			PasswordHash: hashed.PasswordHash,
			AboutMe:      truncate(gofakeit.HipsterSentence(), 140),
			IsActivated:  rand.Float32() < 0.7,
			LastSeen:     gofakeit.DateRange(time.Now().AddDate(0, 0, -30), time.Now()),
		}
		if err := s.userRepo.Create(ctx, &user); err != nil {
			if errors.Is(err, repositories.ErrDuplicateUser) {
				continue
			}
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []models.User, count int) (int, error) {
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		post := &models.Post{
			Body:      truncate(gofakeit.HipsterSentence(), 140),
			UserID:    author.ID,
			CreatedAt: gofakeit.DateRange(time.Now().AddDate(0, 0, -30), time.Now()),
		}
		if err := s.postRepo.Create(ctx, post); err != nil {
			return i, err
		}
	}
	return count, nil
}

func (s *Seeder) seedFollows(ctx context.Context, users []models.User) (int, error) {
	created := 0
	for _, follower := range users {
		for n := rand.Intn(4); n > 0; n-- {
			followed := users[rand.Intn(len(users))]
			if followed.ID == follower.ID {
				continue
			}
			added, err := s.followRepo.Follow(ctx, follower.ID, followed.ID)
			if err != nil {
				return created, err
			}
			if added {
				created++
			}
		}
	}
	return created, nil
}

func fakeUsername() string {
	name := nonUsernameChars.ReplaceAllString(gofakeit.Username(), "")
	if len(name) < 3 {
		name = "user_" + name
	}
	if len(name) > 48 {
		name = name[:48]
	}
	return fmt.Sprintf("%s%d", name, rand.Intn(1000))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
