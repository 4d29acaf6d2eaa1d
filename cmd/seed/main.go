// Seeds the local database with a demo user, categories, and a few months of
// fake transactions.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/pennywise-app/pennywise/internal/domain/auth/repository"
	"github.com/pennywise-app/pennywise/internal/domain/auth/service"
	"github.com/pennywise-app/pennywise/internal/domain/category"
	"github.com/pennywise-app/pennywise/internal/domain/transaction"
	"github.com/pennywise-app/pennywise/pkg/config"
	"github.com/pennywise-app/pennywise/pkg/db"
)

const (
	demoEmail    = "demo@pennywise.app"
	demoPassword = "pennywise123"
	monthsBack   = 6
)

var seedCategories = []struct {
	name  string
	emoji string
}{
	{"Food", "🍔"},
	{"Rent", "🏠"},
	{"Transport", "🚇"},
	{"Entertainment", "🎬"},
	{"Utilities", "💡"},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	database, err := db.New(db.Config{DSN: cfg.Database.DSN()}, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close()

	if err := database.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
	authRepo := repository.NewPostgresAuthRepository(database.Pool)
	categoryRepo := category.NewPostgresRepository(database.Pool)
	transactionRepo := transaction.NewPostgresRepository(database.Pool)

	user, err := seedUser(ctx, authRepo, logger)
	if err != nil {
		logger.Error("failed to seed user", slog.Any("error", err))
		os.Exit(1)
	}

	categoryIDs, err := seedCategoriesFor(ctx, categoryRepo, user.ID)
	if err != nil {
		logger.Error("failed to seed categories", slog.Any("error", err))
		os.Exit(1)
	}

	count, err := seedTransactions(ctx, transactionRepo, user.ID, categoryIDs)
	if err != nil {
		logger.Error("failed to seed transactions", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("seed completed",
		slog.String("email", demoEmail),
		slog.Int("categories", len(categoryIDs)),
		slog.Int("transactions", count))
}

func seedUser(ctx context.Context, repo repository.AuthRepository, logger *slog.Logger) (*repository.User, error) {
	if existing, err := repo.GetUserByEmail(ctx, demoEmail); err == nil {
		logger.Info("demo user already exists, reusing")
		return existing, nil
	}

	hashed, err := service.HashPassword(demoPassword)
	if err != nil {
		return nil, err
	}
	return repo.CreateUser(ctx, demoEmail, "demo", hashed, "Demo User")
}

func seedCategoriesFor(ctx context.Context, repo category.Repository, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(seedCategories))
	for _, sc := range seedCategories {
		created, err := repo.CreateIfAbsent(ctx, userID, sc.name, sc.emoji)
		if err != nil {
			return nil, err
		}
		if created == nil {
			existing, err := repo.GetByName(ctx, userID, sc.name)
			if err != nil {
				return nil, err
			}
			ids = append(ids, existing.ID)
			continue
		}
		ids = append(ids, created.ID)
	}
	return ids, nil
}

func seedTransactions(ctx context.Context, repo transaction.Repository, userID uuid.UUID, categoryIDs []uuid.UUID) (int, error) {
	now := time.Now().UTC()
	var txns []*transaction.Transaction

	for month := 0; month < monthsBack; month++ {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -month, 0)

		// One salary per month, a batch of random expenses.
		txns = append(txns, &transaction.Transaction{
			UserID:      userID,
			Type:        transaction.TypeIncome,
			Title:       "Salary",
			AmountMinor: int64(gofakeit.Number(300000, 500000)),
			Currency:    "USD",
			OccurredAt:  monthStart,
		})

		for i := 0; i < gofakeit.Number(15, 30); i++ {
			categoryID := categoryIDs[gofakeit.Number(0, len(categoryIDs)-1)]
			txns = append(txns, &transaction.Transaction{
				UserID:      userID,
				Type:        transaction.TypeExpense,
				Title:       gofakeit.ProductName(),
				AmountMinor: int64(gofakeit.Number(200, 15000)),
				Currency:    "USD",
				CategoryID:  &categoryID,
				OccurredAt:  monthStart.AddDate(0, 0, gofakeit.Number(0, 27)),
				Note:        gofakeit.Sentence(6),
			})
		}
	}

	if err := repo.CreateBatch(ctx, txns); err != nil {
		return 0, err
	}
	return len(txns), nil
}
