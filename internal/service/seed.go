package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goalhub/goalhub/internal/model"
	"github.com/goalhub/goalhub/internal/repository"
)

// SeedAdmin ensures an admin account exists. Called once at startup; a
// missing email or password skips seeding entirely.
func SeedAdmin(userService *UserService, authService *AuthService, email, password string) error {
	if email == "" || password == "" {
		slog.Info("admin seeding skipped, no credentials configured")
		return nil
	}

	_, err := userService.ByEmail(email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("failed to check admin account: %w", err)
	}

	hash, err := authService.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &model.User{
		Name:         "admin",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now(),
	}

	err = userService.Create(admin)
	if err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	slog.Info("admin account seeded", "email", email)
	return nil
}
