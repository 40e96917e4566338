package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goalhub/goalhub/internal/service"
	"github.com/goalhub/goalhub/internal/ui"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type loginFormData struct {
	Email     string
	ReturnURL string
}

type registerFormData struct {
	Name  string
	Email string
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, "login", ui.Page{
		Title: "Log in",
		Data:  loginFormData{ReturnURL: r.URL.Query().Get("return_url")},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")
	remember := r.FormValue("remember") == "1"
	returnURL := r.FormValue("return_url")

	user, err := h.authService.Login(email, password)
	if err != nil {
		// Same message for unknown email and wrong password
		ui.Render(w, r, "login", ui.Page{
			Title:  "Log in",
			Errors: []string{service.ErrInvalidCredentials.Error()},
			Data:   loginFormData{Email: email, ReturnURL: returnURL},
		})
		return
	}

	token, err := h.authService.GenerateJWT(user, remember)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.authService.SetJWTCookie(w, token, time.Now().Add(h.authService.Expiry(remember)))

	slog.Info("user logged in", "user_id", user.ID)

	// Only local redirect targets are honored
	if strings.HasPrefix(returnURL, "/") && !strings.HasPrefix(returnURL, "//") {
		http.Redirect(w, r, returnURL, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, "register", ui.Page{
		Title: "Register",
		Data:  registerFormData{},
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := h.authService.Register(name, email, password)
	if err != nil {
		ui.Render(w, r, "register", ui.Page{
			Title:  "Register",
			Errors: []string{displayError(err)},
			Data:   registerFormData{Name: name, Email: email},
		})
		return
	}

	token, err := h.authService.GenerateJWT(user, false)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.authService.SetJWTCookie(w, token, time.Now().Add(h.authService.Expiry(false)))

	slog.Info("user registered", "user_id", user.ID)

	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

func (h *AuthHandler) Logoff(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
