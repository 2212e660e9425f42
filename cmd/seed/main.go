package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/ideaforge/backend/config"
	"github.com/pageza/ideaforge/backend/internal/database"
	"github.com/pageza/ideaforge/backend/internal/ideas"
	"github.com/pageza/ideaforge/backend/internal/keywords"
	"github.com/pageza/ideaforge/backend/internal/logging"
	"github.com/pageza/ideaforge/backend/internal/models"
	"github.com/pageza/ideaforge/backend/internal/service"
)

const demoPassword = "testpassword123"

var demoUsers = []struct {
	name  string
	email string
}{
	{"John Doe", "john.doe@example.com"},
	{"Jane Smith", "jane.smith@example.com"},
	{"Alice Cooper", "alice.cooper@example.com"},
}

var demoPrompts = []string{
	"tools for freelancers who struggle with invoicing and late payments",
	"apps that help remote teams run better meetings",
	"ways to help small clinics manage patient appointments",
	"products for students preparing for technical interviews",
	"services that reduce food waste for restaurants",
	"helping indie game developers market their games",
}

func main() {
	perUser := flag.Int("prompts", 2, "Prompts to generate per demo user")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := logging.New(cfg.Environment, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	if err := database.RunMigrations(db, cfg.Database.MigrationsDir, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	if err := seed(context.Background(), db, *perUser, logger); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("demo data created", zap.String("password", demoPassword))
}

// seed creates the demo users and fills their history with template ideas.
// Users that already exist are left alone.
func seed(ctx context.Context, db *gorm.DB, perUser int, logger *zap.Logger) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// Without a completion client both stages use their local fallbacks
	extractor := keywords.NewExtractor(nil, keywords.Config{}, logger)
	generator := ideas.NewGenerator(nil, nil, ideas.Config{}, logger)
	ideaService := service.NewIdeaService(db, service.NewHashEmbedder(), logger)

	next := 0
	for _, demo := range demoUsers {
		var existing models.User
		err := db.WithContext(ctx).Where("email = ?", demo.email).First(&existing).Error
		if err == nil {
			logger.Info("user already exists, skipping", zap.String("email", demo.email))
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		user := models.User{Name: demo.name, Email: demo.email, PasswordHash: string(hash)}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			return err
		}

		for i := 0; i < perUser; i++ {
			prompt := demoPrompts[next%len(demoPrompts)]
			next++
			result := generator.Generate(ctx, prompt, extractor.Extract(ctx, prompt), ideas.DefaultTargetCount)
			saved, err := ideaService.SaveGeneration(ctx, user.ID, prompt, result)
			if err != nil {
				return err
			}
			logger.Info("seeded ideas", zap.String("email", demo.email), zap.Int("count", len(saved)))
		}
	}
	return nil
}
