// Package ledger owns the in-memory treasury document and every
// mutation applied to it. The store keeps the authoritative copy loaded
// at startup; persistence backends only see whole-document snapshots.
//
// The store is not safe for concurrent use. Callers that serve multiple
// goroutines must serialize access themselves.
package ledger

import (
	"context"
	"time"

	"github.com/RiccardoZanardi/Calvenzano/internal/backend"
	"github.com/RiccardoZanardi/Calvenzano/internal/core"
	applog "github.com/RiccardoZanardi/Calvenzano/internal/log"
)

// DefaultBackupTTL is how long a cleared treasury can be restored.
const DefaultBackupTTL = 30 * time.Minute

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Store holds the live ledger and flushes it through a primary backend
// with a local fallback. The fallback always receives the document
// first so a remote outage never loses a write.
type Store struct {
	primary   backend.Backend
	fallback  backend.Backend
	clock     Clock
	logger    *applog.Logger
	backupTTL time.Duration

	ledger *core.Ledger
	backup *Snapshot
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the store clock.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithBackupTTL overrides the recovery window duration.
func WithBackupTTL(ttl time.Duration) Option {
	return func(s *Store) { s.backupTTL = ttl }
}

// NewStore creates a store over a primary backend and an optional local
// fallback. Either backend may be nil.
func NewStore(primary, fallback backend.Backend, logger *applog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	s := &Store{
		primary:   primary,
		fallback:  fallback,
		clock:     systemClock{},
		logger:    logger.WithComponent(applog.ComponentLedger),
		backupTTL: DefaultBackupTTL,
		ledger:    core.NewLedger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ledger returns the live document. Callers must not retain it across
// mutations.
func (s *Store) Ledger() *core.Ledger {
	return s.ledger
}

// SetLedger replaces the whole document, normalizing legacy shapes.
func (s *Store) SetLedger(l *core.Ledger) {
	l.Normalize()
	s.ledger = l
}

// Load fills the store from the primary backend, falling back to the
// local copy and finally to the default empty ledger. Load never fails:
// an unreachable backend degrades to whatever can be read.
func (s *Store) Load(ctx context.Context) {
	if s.primary != nil {
		l, err := s.primary.ReadLedger(ctx)
		if err == nil {
			s.ledger = l
			s.logger.InfoContext(ctx, "Ledger loaded",
				applog.FieldOperation, applog.OpLoad,
				applog.FieldBackend, "primary",
				"members", len(l.Members))
			return
		}
		s.logger.WarnContext(ctx, "Primary backend read failed",
			applog.FieldOperation, applog.OpLoad,
			applog.FieldError, err)
	}
	if s.fallback != nil {
		l, err := s.fallback.ReadLedger(ctx)
		if err == nil {
			s.ledger = l
			s.logger.InfoContext(ctx, "Ledger loaded from fallback",
				applog.FieldOperation, applog.OpLoad,
				applog.FieldBackend, "fallback",
				"members", len(l.Members))
			return
		}
		s.logger.WarnContext(ctx, "Fallback backend read failed",
			applog.FieldOperation, applog.OpLoad,
			applog.FieldError, err)
	}
	s.ledger = core.NewLedger()
	s.logger.InfoContext(ctx, "Starting with empty ledger",
		applog.FieldOperation, applog.OpLoad)
}

// Save flushes the document. The fallback is written first so the local
// copy is always current; the primary write is best effort. The return
// value reports whether the primary backend accepted the write (or the
// fallback, when no primary is configured).
func (s *Store) Save(ctx context.Context) bool {
	fallbackOK := false
	if s.fallback != nil {
		if err := s.fallback.WriteLedger(ctx, s.ledger); err != nil {
			s.logger.ErrorContext(ctx, "Fallback backend write failed",
				applog.FieldOperation, applog.OpSave,
				applog.FieldError, err)
		} else {
			fallbackOK = true
		}
	}
	if s.primary == nil {
		return fallbackOK
	}
	if err := s.primary.WriteLedger(ctx, s.ledger); err != nil {
		s.logger.WarnContext(ctx, "Primary backend write failed, local copy kept",
			applog.FieldOperation, applog.OpSave,
			applog.FieldError, err)
		return false
	}
	return true
}

// record prepends an activity entry and evicts the oldest beyond the
// feed bound.
func (s *Store) record(description string, typ core.ActivityType, amount float64) {
	entry := core.Activity{
		ID:          newID(),
		Description: description,
		Type:        typ,
		Date:        s.clock.Now(),
		Amount:      amount,
	}
	s.ledger.Activities = append([]core.Activity{entry}, s.ledger.Activities...)
	if len(s.ledger.Activities) > core.MaxActivities {
		s.ledger.Activities = s.ledger.Activities[:core.MaxActivities]
	}
}

func (s *Store) today() string {
	return core.FormatDate(s.clock.Now())
}
