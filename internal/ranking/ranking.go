// Package ranking turns aggregation output into sorted top-N
// contributor and category standings. Rankings are pure functions of
// the ledger and its filters; sorting is stable so ties keep the
// original roster order.
package ranking

import (
	"sort"
	"time"

	"github.com/RiccardoZanardi/Calvenzano/internal/core"
	"github.com/RiccardoZanardi/Calvenzano/internal/period"
	"github.com/RiccardoZanardi/Calvenzano/internal/stats"
)

// DefaultLimit is the number of entries a ranking is truncated to.
const DefaultLimit = 10

// ExternalDonorName labels the pseudo-entry aggregating donations from
// donors outside the team.
const ExternalDonorName = "External"

// Entry is one row of a contributor ranking.
type Entry struct {
	MemberID  string  `json:"memberId,omitempty"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	FinesPaid float64 `json:"finesPaid"`
	PaidICS   float64 `json:"paidICS"`
	Donations float64 `json:"donations"`
}

// TopContributors ranks active members by their headline contribution
// for the period and status filter, keeping only positive amounts.
func TopContributors(l *core.Ledger, p period.Period, status stats.Status, now time.Time, limit int) []Entry {
	return rank(l, p, now, limit, func(s stats.MemberStats) float64 {
		if status == stats.StatusAssigned {
			return s.AssignedAmount
		}
		return s.TotalPaid
	}, nil)
}

// Assigned ranks active members by total levied amount (fines + ICS).
func Assigned(l *core.Ledger, p period.Period, now time.Time, limit int) []Entry {
	return rank(l, p, now, limit, func(s stats.MemberStats) float64 { return s.AssignedAmount }, nil)
}

// Paid ranks active members by collected amount, with a single
// synthetic entry aggregating all external donations.
func Paid(l *core.Ledger, p period.Period, now time.Time, limit int) []Entry {
	return rank(l, p, now, limit,
		func(s stats.MemberStats) float64 { return s.TotalPaid },
		externalEntry(l, p, now, func(amount float64) Entry {
			return Entry{Name: ExternalDonorName, Amount: amount, Donations: amount}
		}))
}

// ICS ranks active members by levied ICS amount.
func ICS(l *core.Ledger, p period.Period, now time.Time, limit int) []Entry {
	return rank(l, p, now, limit, func(s stats.MemberStats) float64 { return s.TotalICS }, nil)
}

// Donations ranks active members by donated amount, with the external
// pseudo-entry sorted in like any other row.
func Donations(l *core.Ledger, p period.Period, now time.Time, limit int) []Entry {
	return rank(l, p, now, limit,
		func(s stats.MemberStats) float64 { return s.DonationsAmount },
		externalEntry(l, p, now, func(amount float64) Entry {
			return Entry{Name: ExternalDonorName, Amount: amount, Donations: amount}
		}))
}

func rank(l *core.Ledger, p period.Period, now time.Time, limit int, amount func(stats.MemberStats) float64, extra *Entry) []Entry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	entries := make([]Entry, 0, len(l.Members))
	for i := range l.Members {
		m := &l.Members[i]
		if !m.Active {
			continue
		}
		s := stats.Member(l, m.ID, p, stats.StatusPaid, now)
		v := amount(s)
		if v <= 0 {
			continue
		}
		entries = append(entries, Entry{
			MemberID:  m.ID,
			Name:      m.DisplayName(),
			Amount:    v,
			FinesPaid: s.PaidAmount,
			PaidICS:   s.PaidICS,
			Donations: s.DonationsAmount,
		})
	}
	if extra != nil && extra.Amount > 0 {
		entries = append(entries, *extra)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Amount > entries[j].Amount })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func externalEntry(l *core.Ledger, p period.Period, now time.Time, build func(float64) Entry) *Entry {
	var total float64
	for _, d := range l.GlobalDonations {
		if d.MemberID == "" && period.InPeriod(d.Date, p, now) {
			total += d.Amount
		}
	}
	total = core.Round2(total)
	if total <= 0 {
		return nil
	}
	e := build(total)
	return &e
}

// CategoryEntry is one row of the category standing.
type CategoryEntry struct {
	Key        string  `json:"key"`
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Amount     float64 `json:"amount"`
	PaidAmount float64 `json:"paidAmount"`
}

// Categories ranks leaf categories (and the reserved ICS entry) by
// levied amount within the period.
func Categories(l *core.Ledger, p period.Period, now time.Time) []CategoryEntry {
	entries := make([]CategoryEntry, 0, len(l.Categories))
	for key, c := range l.Categories {
		if !c.Assignable(key) {
			continue
		}
		s := stats.Category(l, key, p, now)
		if s.Count == 0 {
			continue
		}
		entries = append(entries, CategoryEntry{
			Key:        key,
			Name:       c.Name,
			Count:      s.Count,
			Amount:     s.TotalAmount,
			PaidAmount: s.PaidAmount,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Amount != entries[j].Amount {
			return entries[i].Amount > entries[j].Amount
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// DonorEntry is one row of the per-donor donation breakdown.
type DonorEntry struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// DonationsBreakdown lists every donor active in the period with their
// donated total and donation count, sorted by amount. Global donations
// attributed to a member merge into that member's row; external donors
// appear under their own name.
func DonationsBreakdown(l *core.Ledger, p period.Period, now time.Time) ([]DonorEntry, float64, int) {
	byName := map[string]*DonorEntry{}
	order := []string{}
	var total float64
	var count int

	add := func(name string, amount float64) {
		e, ok := byName[name]
		if !ok {
			e = &DonorEntry{Name: name}
			byName[name] = e
			order = append(order, name)
		}
		e.Amount = core.Round2(e.Amount + amount)
		e.Count++
		total += amount
		count++
	}

	for i := range l.Members {
		m := &l.Members[i]
		for _, d := range m.Donations {
			if period.InPeriod(d.Date, p, now) {
				add(m.DisplayName(), d.Amount)
			}
		}
	}
	for _, d := range l.GlobalDonations {
		if !period.InPeriod(d.Date, p, now) {
			continue
		}
		if d.MemberID != "" {
			if m := l.FindMember(d.MemberID); m != nil {
				add(m.DisplayName(), d.Amount)
				continue
			}
		}
		add(d.DonorName, d.Amount)
	}

	entries := make([]DonorEntry, 0, len(order))
	for _, name := range order {
		entries = append(entries, *byName[name])
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Amount > entries[j].Amount })
	return entries, core.Round2(total), count
}
