package services

import (
	"context"

	"github.com/anonto42/twittor/backend/internal/metrics"
	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/internal/repositories"
)

// ProfileStats are the counters shown on a profile page.
type ProfileStats struct {
	Posts       int64
	Followers   int64
	Following   int64
	IsFollowing bool // whether the viewer follows the profile owner
}

type SocialService struct {
	followRepo repositories.FollowRepository
	userRepo   repositories.UserRepository
	postRepo   repositories.PostRepository
}

func NewSocialService(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, postRepo repositories.PostRepository) *SocialService {
	return &SocialService{followRepo: followRepo, userRepo: userRepo, postRepo: postRepo}
}

// Follow makes actorID follow the named user. Following twice is a no-op.
func (s *SocialService) Follow(ctx context.Context, actorID uint, username string) (*models.User, error) {
	target, err := s.target(ctx, actorID, username)
	if err != nil {
		return nil, err
	}
	added, err := s.followRepo.Follow(ctx, actorID, target.ID)
	if err != nil {
		return nil, err
	}
	if added {
		metrics.FollowChangesTotal.WithLabelValues("follow").Inc()
	}
	return target, nil
}

// Unfollow removes the edge from actorID to the named user if there is one.
func (s *SocialService) Unfollow(ctx context.Context, actorID uint, username string) (*models.User, error) {
	target, err := s.target(ctx, actorID, username)
	if err != nil {
		return nil, err
	}
	removed, err := s.followRepo.Unfollow(ctx, actorID, target.ID)
	if err != nil {
		return nil, err
	}
	if removed {
		metrics.FollowChangesTotal.WithLabelValues("unfollow").Inc()
	}
	return target, nil
}

func (s *SocialService) target(ctx context.Context, actorID uint, username string) (*models.User, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	if target.ID == actorID {
		return nil, ErrSelfFollow
	}
	return target, nil
}

// Stats collects the profile counters of user as seen by viewerID (zero for anonymous).
func (s *SocialService) Stats(ctx context.Context, viewerID uint, user *models.User) (*ProfileStats, error) {
	stats := &ProfileStats{}
	var err error
	if stats.Posts, err = s.postRepo.CountByAuthor(ctx, user.ID); err != nil {
		return nil, err
	}
	if stats.Followers, err = s.followRepo.FollowersCount(ctx, user.ID); err != nil {
		return nil, err
	}
	if stats.Following, err = s.followRepo.FollowingCount(ctx, user.ID); err != nil {
		return nil, err
	}
	if viewerID != 0 && viewerID != user.ID {
		if stats.IsFollowing, err = s.followRepo.IsFollowing(ctx, viewerID, user.ID); err != nil {
			return nil, err
		}
	}
	return stats, nil
}
