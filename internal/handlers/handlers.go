package handlers

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"simple-budget/internal/auth"
	"simple-budget/internal/models"
	"simple-budget/internal/storage"

	"github.com/gorilla/csrf"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey contextKey = "user"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	// SessionDuration is how long sessions last (30 days).
	SessionDuration = 30 * 24 * time.Hour
	// TurboStreamContentType is the content type for turbo-stream fragments.
	TurboStreamContentType = "text/vnd.turbo-stream.html"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db           *storage.DB
	templates    *TemplateRegistry
	secureCookie bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *storage.DB, templates *TemplateRegistry, secureCookie bool) *Handlers {
	return &Handlers{db: db, templates: templates, secureCookie: secureCookie}
}

// GetUserFromContext retrieves the authenticated user from request context.
func GetUserFromContext(r *http.Request) *models.User {
	if user, ok := r.Context().Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// AuthMiddleware wraps handlers to require authentication.
// It also implements rolling sessions: if a session is past the halfway point
// of its lifetime, it automatically renews the session.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		sessionInfo, err := h.db.ValidateSessionWithInfo(cookie.Value)
		if err != nil {
			// Invalid or expired session, clear the cookie
			h.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		// Rolling session: renew if past halfway point
		// This keeps active users logged in while still expiring inactive sessions
		now := time.Now()
		timeUntilExpiry := sessionInfo.ExpiresAt.Sub(now)
		halfSessionDuration := SessionDuration / 2

		if timeUntilExpiry < halfSessionDuration {
			// Session is in the second half of its lifetime, renew it
			newExpiresAt := now.Add(SessionDuration)
			if err := h.db.RenewSession(cookie.Value, newExpiresAt); err == nil {
				// Update the cookie expiration too
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    cookie.Value,
					Path:     "/",
					MaxAge:   int(SessionDuration.Seconds()),
					HttpOnly: true,
					Secure:   h.secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}
			// If renewal fails, just continue with the current session
		}

		// Add user to context
		ctx := context.WithValue(r.Context(), UserContextKey, sessionInfo.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoginViewModel holds data for the login page.
type LoginViewModel struct {
	Error     string
	CSRFToken string
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	// If already logged in, redirect to accounts
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := h.db.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/accounts", http.StatusFound)
			return
		}
	}
	h.render(w, r, "login.html", LoginViewModel{CSRFToken: csrf.Token(r)})
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	loginError := func(message string) {
		h.renderStatus(w, r, http.StatusOK, "login.html", "", LoginViewModel{
			Error:     message,
			CSRFToken: csrf.Token(r),
		})
	}

	if err := r.ParseForm(); err != nil {
		loginError("Invalid form submission")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		loginError("Username and password are required")
		return
	}

	user, err := h.db.GetUserByUsername(username)
	if err != nil || !auth.CheckPassword(password, user.PasswordHash) {
		loginError("Invalid username or password")
		return
	}

	// Generate session token
	token, err := auth.GenerateSessionToken()
	if err != nil {
		log.Printf("Failed to generate session token: %v", err)
		loginError("An error occurred. Please try again.")
		return
	}

	// Create session in database
	expiresAt := time.Now().Add(SessionDuration)
	if err := h.db.CreateSession(token, user.ID, expiresAt); err != nil {
		log.Printf("Failed to create session: %v", err)
		loginError("An error occurred. Please try again.")
		return
	}

	// Set session cookie
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/accounts", http.StatusFound)
}

// Logout handles user logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.db.DeleteSession(cookie.Value); err != nil {
			log.Printf("Failed to delete session: %v", err)
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// isTurbo reports whether the client negotiated a turbo-stream response.
func isTurbo(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "turbo")
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, view string, data any) {
	h.renderStatus(w, r, http.StatusOK, view, "", data)
}

// renderStatus renders a view with an explicit status. When the request
// negotiated turbo and a fragment variant exists, the fragment is rendered
// with the turbo-stream content type instead. Output is buffered so a
// template failure yields a clean 500 instead of a torn page.
func (h *Handlers) renderStatus(w http.ResponseWriter, r *http.Request, status int, view, fragment string, data any) {
	name := view
	contentType := "text/html; charset=utf-8"
	if fragment != "" && isTurbo(r) {
		name = fragment
		contentType = TurboStreamContentType
	}

	var buf bytes.Buffer
	if err := h.templates.Render(&buf, name, data); err != nil {
		log.Printf("Template error rendering %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}
