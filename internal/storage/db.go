package storage

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"simple-budget/internal/models"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist for the given user.
// A record owned by another user is indistinguishable from a missing one.
var ErrNotFound = errors.New("record not found")

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			amount REAL NOT NULL,
			debt INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			target REAL NOT NULL,
			target_date DATETIME NOT NULL,
			recurrence TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			expires_at DATETIME NOT NULL,
			last_activity DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateAccount inserts a new account and returns its id. The id is
// generated here unless the caller supplied one.
func (db *DB) CreateAccount(a *models.Account) (string, error) {
	if a.ID == "" {
		a.ID = NewID()
	}
	_, err := db.conn.Exec(
		"INSERT INTO accounts (id, user_id, name, amount, debt) VALUES (?, ?, ?, ?, ?)",
		a.ID, a.UserID, a.Name, a.Amount, a.Debt,
	)
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

// GetAccount retrieves a single account owned by the given user.
func (db *DB) GetAccount(userID int64, id string) (*models.Account, error) {
	row := db.conn.QueryRow(
		"SELECT id, user_id, name, amount, debt FROM accounts WHERE id = ? AND user_id = ?",
		id, userID,
	)

	var a models.Account
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Amount, &a.Debt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// UpdateAccount updates an account owned by the given user. Updating an
// account that does not exist for that user returns ErrNotFound.
func (db *DB) UpdateAccount(userID int64, a *models.Account) error {
	result, err := db.conn.Exec(
		"UPDATE accounts SET name = ?, amount = ?, debt = ? WHERE id = ? AND user_id = ?",
		a.Name, a.Amount, a.Debt, a.ID, userID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// DeleteAccount deletes an account owned by the given user. Deleting an
// account that does not exist for that user returns ErrNotFound.
func (db *DB) DeleteAccount(userID int64, id string) error {
	result, err := db.conn.Exec(
		"DELETE FROM accounts WHERE id = ? AND user_id = ?",
		id, userID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// ListAccounts retrieves all accounts owned by the given user. A row that
// fails to scan is logged and skipped rather than failing the whole listing.
func (db *DB) ListAccounts(userID int64) ([]models.Account, error) {
	rows, err := db.conn.Query(
		"SELECT id, user_id, name, amount, debt FROM accounts WHERE user_id = ? ORDER BY name",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Amount, &a.Debt); err != nil {
			log.Printf("ListAccounts: skipping unreadable row: %v", err)
			continue
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

// AccountsTotal computes the user's net total: the sum of non-debt amounts
// minus the sum of debt amounts.
func (db *DB) AccountsTotal(userID int64) (float64, error) {
	accounts, err := db.ListAccounts(userID)
	if err != nil {
		return 0, err
	}

	var debt, nonDebt float64
	for _, a := range accounts {
		if a.Debt {
			debt += a.Amount
		} else {
			nonDebt += a.Amount
		}
	}
	return nonDebt - debt, nil
}

// CreateGoal inserts a new goal and returns its id.
func (db *DB) CreateGoal(g *models.Goal) (string, error) {
	if g.ID == "" {
		g.ID = NewID()
	}
	_, err := db.conn.Exec(
		"INSERT INTO goals (id, user_id, name, target, target_date, recurrence) VALUES (?, ?, ?, ?, ?, ?)",
		g.ID, g.UserID, g.Name, g.Target, g.TargetDate.UTC(), g.Recurrence,
	)
	if err != nil {
		return "", err
	}
	return g.ID, nil
}

// GetGoal retrieves a single goal owned by the given user.
func (db *DB) GetGoal(userID int64, id string) (*models.Goal, error) {
	row := db.conn.QueryRow(
		"SELECT id, user_id, name, target, target_date, recurrence FROM goals WHERE id = ? AND user_id = ?",
		id, userID,
	)

	var g models.Goal
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Target, &g.TargetDate, &g.Recurrence); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	g.TargetDate = g.TargetDate.UTC()
	return &g, nil
}

// UpdateGoal updates a goal owned by the given user.
func (db *DB) UpdateGoal(userID int64, g *models.Goal) error {
	result, err := db.conn.Exec(
		"UPDATE goals SET name = ?, target = ?, target_date = ?, recurrence = ? WHERE id = ? AND user_id = ?",
		g.Name, g.Target, g.TargetDate.UTC(), g.Recurrence, g.ID, userID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// DeleteGoal deletes a goal owned by the given user.
func (db *DB) DeleteGoal(userID int64, id string) error {
	result, err := db.conn.Exec(
		"DELETE FROM goals WHERE id = ? AND user_id = ?",
		id, userID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// ListGoals retrieves all goals owned by the given user, soonest first.
func (db *DB) ListGoals(userID int64) ([]models.Goal, error) {
	rows, err := db.conn.Query(
		"SELECT id, user_id, name, target, target_date, recurrence FROM goals WHERE user_id = ? ORDER BY target_date",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Target, &g.TargetDate, &g.Recurrence); err != nil {
			log.Printf("ListGoals: skipping unreadable row: %v", err)
			continue
		}
		g.TargetDate = g.TargetDate.UTC()
		goals = append(goals, g)
	}

	return goals, rows.Err()
}

// checkAffected turns a zero-row write into ErrNotFound so handlers can
// distinguish a missing record from a successful mutation.
func checkAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateUser creates a new user with the given username and password hash.
func (db *DB) CreateUser(username, passwordHash string) (*models.User, error) {
	result, err := db.conn.Exec(
		"INSERT INTO users (username, password_hash) VALUES (?, ?)",
		username, passwordHash,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetUserByID(id)
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(id int64) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, password_hash, created_at FROM users WHERE id = ?",
		id,
	)

	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername retrieves a user by username.
func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?",
		username,
	)

	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateSession creates a new session for a user.
func (db *DB) CreateSession(token string, userID int64, expiresAt time.Time) error {
	now := time.Now()
	_, err := db.conn.Exec(
		"INSERT INTO sessions (token, user_id, expires_at, last_activity) VALUES (?, ?, ?, ?)",
		token, userID, expiresAt, now,
	)
	return err
}

// SessionInfo holds session validation data.
type SessionInfo struct {
	User         *models.User
	LastActivity time.Time
	ExpiresAt    time.Time
}

// ValidateSession checks if a session token is valid and returns the associated user.
func (db *DB) ValidateSession(token string) (*models.User, error) {
	info, err := db.ValidateSessionWithInfo(token)
	if err != nil {
		return nil, err
	}
	return info.User, nil
}

// ValidateSessionWithInfo checks if a session token is valid and returns session details.
func (db *DB) ValidateSessionWithInfo(token string) (*SessionInfo, error) {
	row := db.conn.QueryRow(`
		SELECT u.id, u.username, u.password_hash, u.created_at, s.last_activity, s.expires_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = ? AND s.expires_at > CURRENT_TIMESTAMP
	`, token)

	var u models.User
	var lastActivity, expiresAt time.Time
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &lastActivity, &expiresAt); err != nil {
		return nil, err
	}
	return &SessionInfo{
		User:         &u,
		LastActivity: lastActivity,
		ExpiresAt:    expiresAt,
	}, nil
}

// RenewSession updates the last_activity and expires_at for a session.
func (db *DB) RenewSession(token string, newExpiresAt time.Time) error {
	now := time.Now()
	_, err := db.conn.Exec(
		"UPDATE sessions SET last_activity = ?, expires_at = ? WHERE token = ?",
		now, newExpiresAt, token,
	)
	return err
}

// DeleteSession removes a session by token.
func (db *DB) DeleteSession(token string) error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

// CleanExpiredSessions removes all expired sessions.
func (db *DB) CleanExpiredSessions() error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE expires_at <= CURRENT_TIMESTAMP")
	return err
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
