package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"simple-budget/internal/auth"
	"simple-budget/internal/models"
	"simple-budget/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHandlers builds a Handlers instance backed by an in-memory database
// and the real templates.
func newTestHandlers(t *testing.T) (*Handlers, *storage.DB) {
	t.Helper()

	db, err := storage.NewDB(":memory:")
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { db.Close() })

	templates, err := LoadTemplates("../../web/templates")
	require.NoError(t, err, "failed to load templates")

	return NewHandlers(db, templates, false), db
}

// resourceRouter wires every authenticated route and injects the given user
// into the request context, standing in for the auth middleware.
func resourceRouter(h *Handlers, user *models.User) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /accounts", h.ListAccounts)
	mux.HandleFunc("GET /accounts/new", h.CreateAccountForm)
	mux.HandleFunc("POST /accounts", h.CreateAccount)
	mux.HandleFunc("GET /accounts/{id}", h.EditAccountForm)
	mux.HandleFunc("PUT /accounts/{id}", h.UpdateAccount)
	mux.HandleFunc("DELETE /accounts/{id}", h.DeleteAccount)
	mux.HandleFunc("GET /goals", h.ListGoals)
	mux.HandleFunc("GET /goals/new", h.CreateGoalForm)
	mux.HandleFunc("POST /goals", h.CreateGoal)
	mux.HandleFunc("GET /goals/{id}", h.EditGoalForm)
	mux.HandleFunc("PUT /goals/{id}", h.UpdateGoal)
	mux.HandleFunc("DELETE /goals/{id}", h.DeleteGoal)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), UserContextKey, user)
		mux.ServeHTTP(w, r.WithContext(ctx))
	})
}

// submit performs a form submission against the given router.
func submit(router http.Handler, method, path string, form url.Values, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, http.NoBody)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginFlow(t *testing.T) {
	h, db := newTestHandlers(t)

	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	_, err = db.CreateUser("alice", hash)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)

	t.Run("login form renders", func(t *testing.T) {
		w := submit(mux, "GET", "/login", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "login-form")
	})

	t.Run("successful login sets session cookie", func(t *testing.T) {
		form := url.Values{"username": {"alice"}, "password": {"correct horse"}}
		w := submit(mux, "POST", "/login", form, nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/accounts", w.Header().Get("Location"))

		cookies := w.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, SessionCookieName, cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)

		// The session should validate against the database
		user, err := db.ValidateSession(cookies[0].Value)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("wrong password re-renders with error", func(t *testing.T) {
		form := url.Values{"username": {"alice"}, "password": {"wrong"}}
		w := submit(mux, "POST", "/login", form, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid username or password")
	})
}

func TestAuthMiddlewareRedirectsAnonymous(t *testing.T) {
	h, _ := newTestHandlers(t)

	protected := h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached without a session")
	}))

	w := submit(protected, "GET", "/accounts", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}
