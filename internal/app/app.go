package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/goalhub/goalhub/internal/cache"
	"github.com/goalhub/goalhub/internal/config"
	"github.com/goalhub/goalhub/internal/db"
	"github.com/goalhub/goalhub/internal/model"
	"github.com/goalhub/goalhub/internal/repository"
	"github.com/goalhub/goalhub/internal/service"
)

type App struct {
	Cfg          *config.Config
	DB           *sqlx.DB
	AuthService  *service.AuthService
	UserService  *service.UserService
	GoalService  *service.GoalService
	LegalService *service.LegalService
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	goalRepository := repository.NewGoalRepository(database)

	// Services
	userCache := cache.NewTTL[int64, *model.User](cfg.UserCacheTTL)
	userService := service.NewUserService(userRepository, userCache)
	authService := service.NewAuthService(
		userService,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
		cfg.RememberExpiry,
	)
	goalService := service.NewGoalService(goalRepository, userService)
	legalService := service.NewLegalService(cfg.ContentPath)

	err = service.SeedAdmin(userService, authService, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to seed admin: %v", err)
	}

	return &App{
		Cfg:          cfg,
		DB:           database,
		AuthService:  authService,
		UserService:  userService,
		GoalService:  goalService,
		LegalService: legalService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
