// Package store persists users and analysis results in SQLite.
package store

import (
	"context"
	"time"
)

// User is a registered account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Analysis is a stored pipeline result.
type Analysis struct {
	ID             string
	UserID         string
	Source         string // file name or "raw"
	Score          float64
	CorrectedScore float64
	Diagnostics    []string
	Encoding       string
	CreatedAt      time.Time
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}

// AnalysisStore persists analyses.
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, a *Analysis) error
	GetAnalysis(ctx context.Context, id string) (*Analysis, error)
	ListAnalyses(ctx context.Context, userID string, limit int) ([]*Analysis, error)
	DeleteAnalysesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store combines both stores.
type Store interface {
	UserStore
	AnalysisStore

	// Close closes the store and releases resources.
	Close() error
}
