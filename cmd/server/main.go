package main

import (
	"crypto/rand"
	"log"
	"net/http"
	"os"

	"simple-budget/internal/auth"
	"simple-budget/internal/handlers"
	"simple-budget/internal/storage"

	"github.com/gorilla/csrf"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	port := envOr("PORT", "8080")
	dbPath := envOr("DB_PATH", "simple_budget.db")
	secure := os.Getenv("SECURE_COOKIE") == "true"

	db, err := storage.NewDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := seedAdminUser(db); err != nil {
		return err
	}

	templates, err := handlers.LoadTemplates("web/templates")
	if err != nil {
		return err
	}

	h := handlers.NewHandlers(db, templates, secure)
	mux := setupRouter(h, "web/static")

	protect := csrf.Protect(csrfKey(),
		csrf.Secure(secure),
		csrf.Path("/"),
	)

	log.Printf("Listening on :%s", port)
	return http.ListenAndServe(":"+port, protect(mux))
}

// setupRouter wires all routes. CSRF protection is applied by the caller so
// tests can exercise the routes without token round-trips.
func setupRouter(h *handlers.Handlers, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/accounts", http.StatusFound)
	})

	authed := func(fn http.HandlerFunc) http.Handler {
		return h.AuthMiddleware(fn)
	}

	mux.Handle("GET /accounts", authed(h.ListAccounts))
	mux.Handle("GET /accounts/new", authed(h.CreateAccountForm))
	mux.Handle("POST /accounts", authed(h.CreateAccount))
	mux.Handle("GET /accounts/{id}", authed(h.EditAccountForm))
	mux.Handle("PUT /accounts/{id}", authed(h.UpdateAccount))
	mux.Handle("DELETE /accounts/{id}", authed(h.DeleteAccount))

	mux.Handle("GET /goals", authed(h.ListGoals))
	mux.Handle("GET /goals/new", authed(h.CreateGoalForm))
	mux.Handle("POST /goals", authed(h.CreateGoal))
	mux.Handle("GET /goals/{id}", authed(h.EditGoalForm))
	mux.Handle("PUT /goals/{id}", authed(h.UpdateGoal))
	mux.Handle("DELETE /goals/{id}", authed(h.DeleteGoal))

	return mux
}

// seedAdminUser creates an initial user from ADMIN_USER/ADMIN_PASSWORD if
// one does not already exist. Deployment hook for fresh databases.
func seedAdminUser(db *storage.DB) error {
	username := os.Getenv("ADMIN_USER")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil
	}

	if _, err := db.GetUserByUsername(username); err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := db.CreateUser(username, hash); err != nil {
		return err
	}
	log.Printf("Seeded admin user %s", username)
	return nil
}

// csrfKey returns the CSRF signing key from the environment, or a random
// one. A random key invalidates open forms on restart, which is fine for
// single-node deployments.
func csrfKey() []byte {
	if key := os.Getenv("CSRF_KEY"); len(key) >= 32 {
		return []byte(key)[:32]
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatal(err)
	}
	return key
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
