// Package backend abstracts where the ledger document is persisted.
// Every backend reads and writes the whole document; absence of data
// yields the default empty ledger, never an error the caller must
// distinguish from corruption.
package backend

import (
	"context"

	"github.com/RiccardoZanardi/Calvenzano/internal/core"
)

// Backend is the persistence collaborator consumed by the ledger store.
type Backend interface {
	// ReadLedger returns the last written ledger, or the default empty
	// ledger when nothing has been written yet.
	ReadLedger(ctx context.Context) (*core.Ledger, error)
	// WriteLedger persists the full document.
	WriteLedger(ctx context.Context, l *core.Ledger) error
}

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the backend instance and optional cleanup function.
type Result struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Type selects a backend implementation.
type Type string

const (
	// GitHubType stores the ledger as a JSON file in a GitHub
	// repository via the contents API.
	GitHubType Type = "github"
	// SQLiteType stores ledger revisions in a local SQLite database.
	SQLiteType Type = "sqlite"
	// FileType stores the ledger as a plain local JSON file.
	FileType Type = "file"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case GitHubType, SQLiteType, FileType:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// GitHub specific
	GitHubOwner  string
	GitHubRepo   string
	GitHubToken  string
	GitHubBranch string
	GitHubFile   string

	// SQLite specific
	SQLiteDBPath string

	// File specific
	FilePath string
}
