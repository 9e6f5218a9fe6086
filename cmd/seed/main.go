package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/V4T54L/yapli/internal/adapter/repository/postgres"
	"github.com/V4T54L/yapli/internal/pkg/logger"
	"github.com/V4T54L/yapli/internal/usecase"
)

// Options are the seed command's flags.
type Options struct {
	PostgresURL string `short:"d" long:"postgres-url" env:"POSTGRES_URL" description:"postgres connection url" required:"true"`
	LogLevel    string `short:"l" long:"log-level" env:"LOG_LEVEL" default:"info" description:"log level"`
	SkipMigrate bool   `long:"skip-migrate" description:"do not apply the schema before seeding"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}

	logger := logger.New(options.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, options.PostgresURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if !options.SkipMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
	}

	seeder := usecase.NewSeedUseCase(
		postgres.NewUserRepository(db),
		postgres.NewChatroomRepository(db),
		postgres.NewMessageRepository(db),
		logger,
	)
	report, err := seeder.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("database seeded",
		"user_created", report.UserCreated,
		"rooms_created", report.RoomsCreated,
		"rooms_skipped", report.RoomsSkipped,
		"messages", report.Messages,
		"login_email", usecase.SeedUser.Email,
	)
	return nil
}
