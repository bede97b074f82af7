package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RiccardoZanardi/Calvenzano/internal/core"
)

// FileBackend persists the ledger as an indented JSON file. It doubles
// as the local fallback target when the durable backend is unreachable.
type FileBackend struct {
	path string
}

// NewFileBackend creates the parent directory if needed.
func NewFileBackend(path string) (*FileBackend, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return &FileBackend{path: path}, nil
}

// ReadLedger implements Backend.
func (b *FileBackend) ReadLedger(_ context.Context) (*core.Ledger, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return core.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger file: %w", err)
	}
	if len(data) == 0 {
		return core.NewLedger(), nil
	}
	var l core.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode ledger file: %w", err)
	}
	l.Normalize()
	return &l, nil
}

// WriteLedger implements Backend.
func (b *FileBackend) WriteLedger(_ context.Context, l *core.Ledger) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		return fmt.Errorf("write ledger file: %w", err)
	}
	return nil
}
