package routes

import (
	"io/fs"
	"net/http"

	"github.com/goalhub/goalhub/assets"
	"github.com/goalhub/goalhub/internal/app"
	"github.com/goalhub/goalhub/internal/handler"
	"github.com/goalhub/goalhub/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler()
	legal := handler.NewLegalHandler(app.LegalService)
	auth := handler.NewAuthHandler(app.AuthService)
	goal := handler.NewGoalHandler(app.GoalService)

	mux := http.NewServeMux()

	// Static files
	sub, _ := fs.Sub(assets.AssetsFS, ".")
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(sub))))

	// Public
	mux.HandleFunc("GET /{$}", home.HomePage)
	mux.HandleFunc("GET /legal/{page}", legal.ShowPage)

	// Account (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("GET /account/register", middleware.RequireGuest(auth.RegisterPage))
	mux.HandleFunc("POST /account/register", rateLimiter(middleware.RequireGuest(auth.Register)))
	mux.HandleFunc("GET /account/login", middleware.RequireGuest(auth.LoginPage))
	mux.HandleFunc("POST /account/login", rateLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /account/logoff", auth.Logoff)

	// Goals
	mux.HandleFunc("GET /goals", middleware.RequireAuth(goal.GoalsPage))
	mux.HandleFunc("GET /goals/new", middleware.RequireAuth(goal.NewGoalPage))
	mux.HandleFunc("GET /goals/{id}", middleware.RequireAuth(goal.GoalDetailPage))
	mux.HandleFunc("GET /goals/{id}/edit", middleware.RequireAuth(goal.EditPage))
	mux.HandleFunc("POST /goals", middleware.RequireAuth(goal.Create))
	mux.HandleFunc("POST /goals/{id}", middleware.RequireAuth(goal.Edit))
	mux.HandleFunc("POST /goals/{id}/delete", middleware.RequireAuth(goal.Delete))
	mux.HandleFunc("POST /goals/{id}/claim", middleware.RequireAuth(goal.Claim))
	mux.HandleFunc("POST /goals/{id}/start", middleware.RequireAuth(goal.Start))
	mux.HandleFunc("POST /goals/{id}/complete", middleware.RequireAuth(goal.Complete))

	// 404
	mux.HandleFunc("/{path...}", home.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config first, CSRF needs APP_ENV
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection,
		middleware.AuthMiddleware(app.AuthService, app.UserService),
		middleware.WithURLPath,
	)

	return handler
}
