package database

import (
	"context"
	"fmt"

	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/internal/repositories"
	"github.com/anonto42/twittor/backend/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema and fills in activation flags left NULL
// by rows that predate the column.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Follow{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	indexes := []string{
		// timeline and profile listings sort by created_at within an author
		"CREATE INDEX IF NOT EXISTS idx_posts_user_created ON posts (user_id, created_at DESC)",
		// email lookups ignore case, so uniqueness must too
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))",
	}
	for _, stmt := range indexes {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	backfilled, err := repositories.NewPostgresUserRepository(db).BackfillActivation(ctx)
	if err != nil {
		return fmt.Errorf("failed to backfill activation flags: %w", err)
	}

	logger.Log.Info("Database migrations completed", zap.Int64("activation_backfilled", backfilled))
	return nil
}
