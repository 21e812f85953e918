package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mvalderrama/ecoquiz/internal/auth"
	"github.com/mvalderrama/ecoquiz/internal/logging"
	"github.com/mvalderrama/ecoquiz/internal/quiz"
	"github.com/mvalderrama/ecoquiz/internal/result"
	"github.com/mvalderrama/ecoquiz/internal/session"
	"github.com/mvalderrama/ecoquiz/internal/user"
)

// AuthService defines the account operations the handlers need
type AuthService interface {
	Register(ctx context.Context, nombre, apellido, email, password string) (*user.User, error)
	Login(ctx context.Context, email, password string) (*user.User, error)
}

// ResultStore defines the result persistence the handlers need
type ResultStore interface {
	Create(ctx context.Context, userID int64, juego string, score int) (*result.Result, error)
	ListByUser(ctx context.Context, userID int64) ([]*result.Result, error)
}

// RateLimiter guards the auth POST endpoints
type RateLimiter interface {
	CheckIPRateLimit(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequest(ctx context.Context, ip, purpose string) error
}

// Handler contains the page handlers
type Handler struct {
	authService AuthService
	results     ResultStore
	sessions    *session.Manager
	rateLimiter RateLimiter
	renderer    *Renderer
	logger      *logging.Logger
}

func NewHandler(
	authService AuthService,
	results ResultStore,
	sessions *session.Manager,
	rateLimiter RateLimiter,
	renderer *Renderer,
	logger *logging.Logger,
) *Handler {
	return &Handler{
		authService: authService,
		results:     results,
		sessions:    sessions,
		rateLimiter: rateLimiter,
		renderer:    renderer,
		logger:      logger,
	}
}

// pageData seeds the layout fields every page shares: login state for the
// navbar and the pending flash, consumed here so it renders once.
func (h *Handler) pageData(w http.ResponseWriter, r *http.Request, title string) PageData {
	data := PageData{
		Title: title,
		Flash: session.PopFlash(w, r),
	}
	if sess, err := h.sessions.FromRequest(r); err == nil {
		data.LoggedIn = true
		data.UserName = sess.UserName
	}
	return data
}

// Index renders the landing page
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index.html", h.pageData(w, r, "Inicio"))
}

// RegisterForm renders the registration form
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "registro.html", h.pageData(w, r, "Registro"))
}

// Register handles the registration form submission
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limited(w, r, "register") {
		return
	}

	if err := r.ParseForm(); err != nil {
		logger.Warn("invalid registration form", "error", err.Error())
		session.SetFlash(w, "Rellena todos los campos.", "warning")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	nombre := r.PostFormValue("nombre")
	apellido := r.PostFormValue("apellido")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	newUser, err := h.authService.Register(r.Context(), nombre, apellido, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrFieldsRequired) {
			logger.Warn("registration failed: missing fields")
			session.SetFlash(w, "Rellena todos los campos.", "warning")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("registration failed: email already registered", "email", email)
			session.SetFlash(w, "Ese correo ya está registrado.", "danger")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		h.serverError(w, r)
		return
	}

	logger.Info("user registered", "user_id", newUser.ID)

	session.SetFlash(w, "Registro exitoso. Por favor inicia sesión.", "success")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// LoginForm renders the login form
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "iniciar_sesion.html", h.pageData(w, r, "Iniciar sesión"))
}

// Login handles the login form submission
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limited(w, r, "login") {
		return
	}

	if err := r.ParseForm(); err != nil {
		logger.Warn("invalid login form", "error", err.Error())
		session.SetFlash(w, "Usuario o contraseña incorrectos.", "danger")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	loggedIn, err := h.authService.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// Same notice for unknown email and wrong password
			logger.Warn("login failed: invalid credentials")
			session.SetFlash(w, "Usuario o contraseña incorrectos.", "danger")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		h.serverError(w, r)
		return
	}

	token, err := h.sessions.Issue(loggedIn.ID, loggedIn.Nombre)
	if err != nil {
		logger.Error("failed to issue session", "error", err.Error())
		h.serverError(w, r)
		return
	}
	h.sessions.SetCookie(w, token)

	logger.Info("user logged in", "user_id", loggedIn.ID)

	session.SetFlash(w, "Bienvenido, "+loggedIn.Nombre, "success")
	http.Redirect(w, r, "/juego", http.StatusSeeOther)
}

// Logout clears the session and returns to the landing page
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	session.SetFlash(w, "Sesión cerrada.", "info")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Menu renders the game menu. Checked by hand rather than via middleware so
// the redirect can carry a notice.
func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.FromRequest(r); err != nil {
		session.SetFlash(w, "Inicia sesión para jugar.", "warning")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "juego.html", h.pageData(w, r, "Juego"))
}

// Questions renders the quiz form
func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(w, r, "Preguntas")
	data.Questions = quiz.Questions()
	h.render(w, r, http.StatusOK, "preguntas.html", data)
}

// SubmitAnswers scores a submission and records the result
func (h *Handler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		logger.Warn("invalid quiz form", "error", err.Error())
		http.Redirect(w, r, "/preguntas", http.StatusSeeOther)
		return
	}

	submission := make(map[string]string)
	for _, q := range quiz.Questions() {
		if v := r.PostFormValue(q.ID); v != "" {
			submission[q.ID] = v
		}
	}

	score := quiz.Score(submission)

	if _, err := h.results.Create(r.Context(), sess.UserID, quiz.GameName, score); err != nil {
		logger.Error("failed to record result", "error", err.Error(), "user_id", sess.UserID)
		h.serverError(w, r)
		return
	}

	logger.Info("score recorded", "user_id", sess.UserID, "score", score)

	session.SetFlash(w, fmt.Sprintf("Puntaje guardado: %d", score), "success")
	http.Redirect(w, r, "/juego", http.StatusSeeOther)
}

// History renders the user's past results, most recent first
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	results, err := h.results.ListByUser(r.Context(), sess.UserID)
	if err != nil {
		logger.Error("failed to list results", "error", err.Error(), "user_id", sess.UserID)
		h.serverError(w, r)
		return
	}

	data := h.pageData(w, r, "Historial")
	data.Results = results
	h.render(w, r, http.StatusOK, "historial.html", data)
}

// limited applies the per-IP budget for an auth endpoint. Limiter errors
// are logged and ignored so a Redis outage does not lock users out.
func (h *Handler) limited(w http.ResponseWriter, r *http.Request, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())
	ip := getClientIP(r)

	exceeded, err := h.rateLimiter.CheckIPRateLimit(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("rate limit exceeded", "ip", ip, "purpose", purpose)
		session.SetFlash(w, "Demasiados intentos. Espera unos minutos.", "warning")
		http.Redirect(w, r, "/"+purpose, http.StatusSeeOther)
		return true
	}

	if err := h.rateLimiter.RecordIPRequest(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record request", "error", err.Error())
	}

	return false
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, statusCode int, page string, data PageData) {
	if err := h.renderer.Render(w, statusCode, page, data); err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("failed to render page", "page", page, "error", err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// serverError renders the generic 500 page for unrecovered failures,
// store connectivity included.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusInternalServerError, "error.html", PageData{Title: "Error"})
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Behind a proxy the first X-Forwarded-For entry is the client
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
