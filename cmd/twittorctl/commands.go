package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/anonto42/twittor/backend/internal/database"
	"github.com/anonto42/twittor/backend/internal/repositories"
	"github.com/anonto42/twittor/backend/internal/seed"
	"github.com/anonto42/twittor/backend/internal/services"
	"github.com/anonto42/twittor/backend/internal/token"
	"github.com/anonto42/twittor/backend/pkg/config"
	"github.com/anonto42/twittor/backend/pkg/mailer"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.InitDB(cfg)
		if err != nil {
			return err
		}
		defer db.CloseDB()

		if err := database.Migrate(cmd.Context(), db.Postgres); err != nil {
			return err
		}
		fmt.Println("Migrations applied.")
		return nil
	},
}

var activateCmd = &cobra.Command{
	Use:   "activate <username>",
	Short: "Activate an account without an email token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.InitDB(cfg)
		if err != nil {
			return err
		}
		defer db.CloseDB()

		users := repositories.NewPostgresUserRepository(db.Postgres)
		accounts := services.NewAccountService(users, token.NewSigner(cfg.SecretKey, cfg.TokenTTL), mailer.NewLogMailer(), nil, services.AccountOptions{})
		user, err := accounts.ActivateByUsername(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return emit(user, fmt.Sprintf("Activated %s (id %d).", user.Username, user.ID))
	},
}

var (
	seedUsers int
	seedPosts int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with fake users, tweets and follows",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.IsProduction() {
			return errors.New("refusing to seed a production database")
		}
		db, err := config.InitDB(cfg)
		if err != nil {
			return err
		}
		defer db.CloseDB()

		if err := database.Migrate(cmd.Context(), db.Postgres); err != nil {
			return err
		}
		result, err := seed.NewSeeder(db.Postgres).Seed(cmd.Context(), seedUsers, seedPosts)
		if err != nil {
			return err
		}
		return emit(result, fmt.Sprintf("Created %d users, %d tweets and %d follows. Password for all users: %s",
			result.Users, result.Posts, result.Follows, seed.DefaultPassword))
	},
}

var deliveriesLimit int64

var deliveriesCmd = &cobra.Command{
	Use:   "deliveries <email>",
	Short: "Show the latest emails sent to an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.InitDB(cfg)
		if err != nil {
			return err
		}
		defer db.CloseDB()
		if db.Mongo == nil {
			return errors.New("MONGO_URI is not set, no delivery log available")
		}

		repo := repositories.NewMongoEmailDeliveryRepository(db.Mongo.Database(cfg.MongoDatabase))
		deliveries, err := repo.Recent(cmd.Context(), args[0], deliveriesLimit)
		if err != nil {
			return err
		}
		if output == "json" {
			return emit(deliveries, "")
		}
		if len(deliveries) == 0 {
			fmt.Println("No deliveries found.")
			return nil
		}
		for _, d := range deliveries {
			status := "sent"
			if d.Error != "" {
				status = "failed: " + d.Error
			}
			fmt.Printf("%s  %-15s %s (%s)\n", d.SentAt.Format("2006-01-02 15:04:05"), d.Kind, d.Subject, status)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedUsers, "users", 20, "Number of users to create")
	seedCmd.Flags().IntVar(&seedPosts, "posts", 200, "Number of tweets to create")
	deliveriesCmd.Flags().Int64Var(&deliveriesLimit, "limit", 20, "Maximum number of deliveries to show")
}

// emit writes v as JSON or text depending on --output.
func emit(v interface{}, text string) error {
	if output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Println(text)
	return nil
}
