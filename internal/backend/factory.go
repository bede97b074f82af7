package backend

import (
	"context"
	"fmt"

	applog "github.com/RiccardoZanardi/Calvenzano/internal/log"
	"github.com/RiccardoZanardi/Calvenzano/internal/storage"
)

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case GitHubType:
		gh, err := NewGitHubBackend(config.GitHubOwner, config.GitHubRepo, config.GitHubToken,
			config.GitHubBranch, config.GitHubFile, f.logger)
		if err != nil {
			return nil, fmt.Errorf("initialize github backend: %w", err)
		}
		f.logger.Info("Initialized GitHub backend",
			"owner", config.GitHubOwner, "repo", config.GitHubRepo, "branch", config.GitHubBranch)
		return &Result{Backend: gh}, nil

	case SQLiteType:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return &Result{Backend: repo, Cleanup: repo.Close}, nil

	case FileType:
		fb, err := NewFileBackend(config.FilePath)
		if err != nil {
			return nil, fmt.Errorf("initialize file backend: %w", err)
		}
		f.logger.Info("Initialized file backend", "path", config.FilePath)
		return &Result{Backend: fb}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
