package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and if needed creates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, wrapAs(ErrDatabaseOpenFailed, err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, wrapAs(ErrInitializeSchemaFailed, err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		source TEXT NOT NULL,
		score REAL NOT NULL,
		corrected_score REAL NOT NULL,
		diagnostics TEXT NOT NULL,
		encoding TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_user ON analyses(user_id);
	CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateUser inserts a user. A duplicate email yields ErrEmailTaken.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		u.ID, u.Email, u.PasswordHash, u.CreatedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return ErrEmailTaken.WithContext("email", u.Email)
		}
		return storageErr(err, "insert user")
	}
	return nil
}

// GetUserByEmail looks a user up by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, "email", email)
}

// GetUserByID looks a user up by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// column is one of two constants chosen by this package.
	row := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE "+column+" = ?", value)

	var (
		u       User
		created int64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound.WithContext(column, value)
		}
		return nil, storageErr(err, "query user")
	}
	u.CreatedAt = time.Unix(created, 0)
	return &u, nil
}

// SaveAnalysis inserts an analysis.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, a *Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	diags := a.Diagnostics
	if diags == nil {
		diags = []string{}
	}
	diagJSON, err := json.Marshal(diags)
	if err != nil {
		return storageErr(err, "marshal diagnostics")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, user_id, source, score, corrected_score, diagnostics, encoding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Source, a.Score, a.CorrectedScore, string(diagJSON), a.Encoding, a.CreatedAt.Unix(),
	)
	if err != nil {
		return storageErr(err, "insert analysis")
	}
	return nil
}

const analysisColumns = "id, user_id, source, score, corrected_score, diagnostics, encoding, created_at"

// GetAnalysis returns the analysis with the given ID.
func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+analysisColumns+" FROM analyses WHERE id = ?", id)
	if err != nil {
		return nil, storageErr(err, "query analysis")
	}
	defer func() { _ = rows.Close() }()

	list, err := scanAnalyses(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound.WithContext("id", id)
	}
	return list[0], nil
}

// ListAnalyses returns up to limit of the user's analyses, newest first.
func (s *SQLiteStore) ListAnalyses(ctx context.Context, userID string, limit int) ([]*Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+analysisColumns+" FROM analyses WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, storageErr(err, "query analyses")
	}
	defer func() { _ = rows.Close() }()

	return scanAnalyses(rows)
}

// DeleteAnalysesBefore removes analyses created before cutoff and returns how
// many were deleted.
func (s *SQLiteStore) DeleteAnalysesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM analyses WHERE created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, storageErr(err, "delete analyses")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr(err, "delete analyses")
	}
	return n, nil
}

func scanAnalyses(rows *sql.Rows) ([]*Analysis, error) {
	var list []*Analysis
	for rows.Next() {
		var (
			a        Analysis
			diagJSON string
			created  int64
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Source, &a.Score, &a.CorrectedScore, &diagJSON, &a.Encoding, &created); err != nil {
			return nil, storageErr(err, "scan analysis")
		}
		if err := json.Unmarshal([]byte(diagJSON), &a.Diagnostics); err != nil {
			return nil, storageErr(err, "unmarshal diagnostics")
		}
		a.CreatedAt = time.Unix(created, 0)
		list = append(list, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "iterate rows")
	}
	return list, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
