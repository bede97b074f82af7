package ledger

import (
	"time"

	"github.com/RiccardoZanardi/Calvenzano/internal/core"
	applog "github.com/RiccardoZanardi/Calvenzano/internal/log"
)

// Snapshot is a deep copy of the financial state taken right before a
// treasury reset, kept so the reset can be undone within the recovery
// window.
type Snapshot struct {
	Members         []core.Member
	Categories      map[string]core.Category
	Activities      []core.Activity
	GlobalDonations []core.Donation
	TakenAt         time.Time
}

func (s *Store) snapshot() *Snapshot {
	return &Snapshot{
		Members:         core.CloneMembers(s.ledger.Members),
		Categories:      core.CloneCategories(s.ledger.Categories),
		Activities:      core.CloneActivities(s.ledger.Activities),
		GlobalDonations: core.CloneDonations(s.ledger.GlobalDonations),
		TakenAt:         s.clock.Now(),
	}
}

// ClearTreasury wipes every fine and every global donation. The roster,
// the category taxonomy and the ICS event history are untouched. A
// recovery snapshot of the previous state is kept for the backup TTL;
// clearing again replaces any earlier snapshot.
func (s *Store) ClearTreasury() {
	s.backup = s.snapshot()
	for i := range s.ledger.Members {
		s.ledger.Members[i].Fines = []core.Fine{}
	}
	s.ledger.GlobalDonations = []core.Donation{}
	s.logger.Warn("Treasury cleared",
		applog.FieldOperation, applog.OpClear,
		"recoverable_until", s.backup.TakenAt.Add(s.backupTTL))
}

// RestoreTreasury puts back the snapshot taken by the last clear. The
// snapshot is single use and only valid within the recovery window;
// after that the cleared state stands.
func (s *Store) RestoreTreasury() error {
	if s.backup == nil {
		return core.ErrNoBackup
	}
	if s.clock.Now().Sub(s.backup.TakenAt) > s.backupTTL {
		s.backup = nil
		return core.ErrBackupExpired
	}
	b := s.backup
	s.backup = nil
	s.ledger.Members = b.Members
	s.ledger.Categories = b.Categories
	s.ledger.Activities = b.Activities
	s.ledger.GlobalDonations = b.GlobalDonations
	s.logger.Info("Treasury restored",
		applog.FieldOperation, applog.OpRestore)
	return nil
}

// RestoreAvailable reports whether an unexpired recovery snapshot
// exists, and its expiry time when it does. A stale snapshot is evicted
// on the spot.
func (s *Store) RestoreAvailable() (bool, time.Time) {
	if s.backup == nil {
		return false, time.Time{}
	}
	expiry := s.backup.TakenAt.Add(s.backupTTL)
	if s.clock.Now().After(expiry) {
		s.backup = nil
		return false, time.Time{}
	}
	return true, expiry
}
