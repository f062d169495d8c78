package main

import (
	"errors"
	"flag"
	"fmt"

	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/pkg/database"
	"go-inventory-ledger/pkg/logger"

	"github.com/rs/zerolog/log"
)

var errPasswordTooShort = fmt.Errorf("password must be at least %d characters", service.MinPasswordLength)

// reset-password sets an account's password directly in the store.
// Defaults to the bootstrap administrator and ADMIN_PASSWORD.
func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, "console")

	username := flag.String("username", cfg.AdminUsername, "account to reset")
	newPassword := flag.String("password", cfg.AdminPassword, "new password")
	flag.Parse()

	db, err := database.Connect(database.Options{
		Driver:     cfg.DBDriver,
		DSN:        cfg.DatabaseURL,
		Host:       cfg.DBHost,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		Name:       cfg.DBName,
		Port:       cfg.DBPort,
		TimeZone:   cfg.DBTimeZone,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := resetPassword(repository.NewUserRepo(db), *username, *newPassword); err != nil {
		log.Fatal().Err(err).Str("username", *username).Msg("password reset failed")
	}

	log.Info().Str("username", *username).Msg("password has been reset")
}

func resetPassword(userRepo repository.UserRepository, username, newPassword string) error {
	if len(newPassword) < service.MinPasswordLength {
		return errPasswordTooShort
	}

	user, err := userRepo.FindByUsername(username)
	if err != nil {
		return fmt.Errorf("find user %q: %w", username, err)
	}

	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash password")
	}
	return userRepo.UpdatePassword(user.ID, user.Password)
}
