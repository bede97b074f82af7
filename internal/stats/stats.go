// Package stats derives monetary rollups from a ledger, either live
// (filtered by reporting period) or as of a cutoff date for historical
// reports. Every function is a pure, total computation: malformed
// references never fail, and every monetary field is independently
// rounded to the cent so recomputation yields identical values.
package stats

import (
	"time"

	"github.com/RiccardoZanardi/Calvenzano/internal/core"
	"github.com/RiccardoZanardi/Calvenzano/internal/period"
)

// Status selects which view of a member's contribution is reported:
// what has been collected, or what has been levied.
type Status string

const (
	StatusPaid     Status = "paid"
	StatusAssigned Status = "assigned"
)

// MemberStats is the per-member rollup for a reporting period.
type MemberStats struct {
	TotalFines        float64 `json:"totalFines"`
	PaidAmount        float64 `json:"paidAmount"`
	UnpaidAmount      float64 `json:"unpaidAmount"`
	TotalICS          float64 `json:"totalICS"`
	PaidICS           float64 `json:"paidICS"`
	DonationsAmount   float64 `json:"donationsAmount"`
	AssignedAmount    float64 `json:"assignedAmount"`
	TotalPaid         float64 `json:"totalPaid"`
	TotalContribution float64 `json:"totalContribution"`
}

// Member computes the rollup of a single member's fines and donations
// within the given period. Unknown member ids yield zero stats.
//
// Donations are voluntary, so they count toward what was collected
// (TotalPaid) but never toward what was levied (AssignedAmount). The
// headline TotalContribution follows the status filter: collected
// money under StatusPaid, levied money under StatusAssigned.
func Member(l *core.Ledger, memberID string, p period.Period, status Status, now time.Time) MemberStats {
	m := l.FindMember(memberID)
	if m == nil {
		return MemberStats{}
	}

	var totalFines, paidFines, totalICS, paidICS, donations float64
	for _, f := range m.Fines {
		if !period.InPeriod(f.Date, p, now) {
			continue
		}
		if f.Category == core.ICSCategoryKey {
			totalICS += f.Amount
			if f.Paid {
				paidICS += f.Amount
			}
		} else {
			totalFines += f.Amount
			if f.Paid {
				paidFines += f.Amount
			}
		}
	}
	for _, d := range m.Donations {
		if period.InPeriod(d.Date, p, now) {
			donations += d.Amount
		}
	}
	for _, d := range l.GlobalDonations {
		if d.MemberID == memberID && period.InPeriod(d.Date, p, now) {
			donations += d.Amount
		}
	}

	s := MemberStats{
		TotalFines:      core.Round2(totalFines),
		PaidAmount:      core.Round2(paidFines),
		TotalICS:        core.Round2(totalICS),
		PaidICS:         core.Round2(paidICS),
		DonationsAmount: core.Round2(donations),
	}
	s.UnpaidAmount = core.Round2(s.TotalFines - s.PaidAmount)
	s.TotalPaid = core.Round2(s.PaidAmount + s.PaidICS + s.DonationsAmount)
	s.AssignedAmount = core.Round2(s.TotalFines + s.TotalICS)
	if status == StatusAssigned {
		s.TotalContribution = s.AssignedAmount
	} else {
		s.TotalContribution = s.TotalPaid
	}
	return s
}

// MemberSnapshot is the per-member rollup as of a cutoff date. A fine
// assigned before the cutoff but paid after it counts as unpaid.
type MemberSnapshot struct {
	AssignedAmount    float64 `json:"assignedAmount"`
	PaidAmount        float64 `json:"paidAmount"`
	UnpaidAmount      float64 `json:"unpaidAmount"`
	DonationsAmount   float64 `json:"donationsAmount"`
	TotalContribution float64 `json:"totalContribution"`

	// Assigned split used by report rankings.
	FineAmount float64 `json:"fineAmount"`
	ICSAmount  float64 `json:"icsAmount"`
}

// MemberAsOf computes a member's historical rollup bounded by cutoff.
// Unknown member ids yield a zero snapshot.
func MemberAsOf(l *core.Ledger, memberID string, cutoff time.Time) MemberSnapshot {
	m := l.FindMember(memberID)
	if m == nil {
		return MemberSnapshot{}
	}

	var assigned, paid, fines, ics, donations float64
	for _, f := range m.Fines {
		if !period.OnOrBefore(f.Date, cutoff) {
			continue
		}
		assigned += f.Amount
		if f.Category == core.ICSCategoryKey {
			ics += f.Amount
		} else {
			fines += f.Amount
		}
		if f.Paid && !period.EffectivePaymentDate(f).After(cutoff) {
			paid += f.Amount
		}
	}
	for _, d := range m.Donations {
		if period.OnOrBefore(d.Date, cutoff) {
			donations += d.Amount
		}
	}
	for _, d := range l.GlobalDonations {
		if d.MemberID == memberID && period.OnOrBefore(d.Date, cutoff) {
			donations += d.Amount
		}
	}

	s := MemberSnapshot{
		AssignedAmount:  core.Round2(assigned),
		PaidAmount:      core.Round2(paid),
		DonationsAmount: core.Round2(donations),
		FineAmount:      core.Round2(fines),
		ICSAmount:       core.Round2(ics),
	}
	s.UnpaidAmount = core.Round2(s.AssignedAmount - s.PaidAmount)
	s.TotalContribution = core.Round2(s.PaidAmount + s.DonationsAmount)
	return s
}

// CategoryStats is the rollup of all fines referencing one category.
type CategoryStats struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
	PaidAmount  float64 `json:"paidAmount"`
}

// Category scans every member's fines for the given category key,
// optionally bounded to a period (period.All scans everything).
func Category(l *core.Ledger, key string, p period.Period, now time.Time) CategoryStats {
	var s CategoryStats
	var total, paid float64
	for i := range l.Members {
		for _, f := range l.Members[i].Fines {
			if f.Category != key || !period.InPeriod(f.Date, p, now) {
				continue
			}
			s.Count++
			total += f.Amount
			if f.Paid {
				paid += f.Amount
			}
		}
	}
	s.TotalAmount = core.Round2(total)
	s.PaidAmount = core.Round2(paid)
	return s
}

// CategoryAsOf is Category bounded by a cutoff date instead of a
// period; payments after the cutoff count as unpaid.
func CategoryAsOf(l *core.Ledger, key string, cutoff time.Time) CategoryStats {
	var s CategoryStats
	var total, paid float64
	for i := range l.Members {
		for _, f := range l.Members[i].Fines {
			if f.Category != key || !period.OnOrBefore(f.Date, cutoff) {
				continue
			}
			s.Count++
			total += f.Amount
			if f.Paid && !period.EffectivePaymentDate(f).After(cutoff) {
				paid += f.Amount
			}
		}
	}
	s.TotalAmount = core.Round2(total)
	s.PaidAmount = core.Round2(paid)
	return s
}

// Totals is the ledger-wide monetary rollup. Donations are given, not
// levied, so they are always counted as collected and never unpaid.
type Totals struct {
	TotalFines     float64 `json:"totalFines"`
	PaidFines      float64 `json:"paidFines"`
	UnpaidFines    float64 `json:"unpaidFines"`
	TotalICS       float64 `json:"totalICS"`
	PaidICS        float64 `json:"paidICS"`
	UnpaidICS      float64 `json:"unpaidICS"`
	TotalDonations float64 `json:"totalDonations"`
	TotalCash      float64 `json:"totalCash"`
	TotalPaidAll   float64 `json:"totalPaidAll"`
	TotalUnpaidAll float64 `json:"totalUnpaidAll"`
}

// Global computes the live ledger-wide totals.
func Global(l *core.Ledger) Totals {
	return globalTotals(l, func(core.Fine) bool { return true }, func(core.Fine) bool { return true }, func(core.Donation) bool { return true })
}

// GlobalAsOf computes the ledger-wide totals as of a cutoff date.
func GlobalAsOf(l *core.Ledger, cutoff time.Time) Totals {
	return globalTotals(l,
		func(f core.Fine) bool { return period.OnOrBefore(f.Date, cutoff) },
		func(f core.Fine) bool { return !period.EffectivePaymentDate(f).After(cutoff) },
		func(d core.Donation) bool { return period.OnOrBefore(d.Date, cutoff) },
	)
}

func globalTotals(l *core.Ledger, includeFine, includePayment func(core.Fine) bool, includeDonation func(core.Donation) bool) Totals {
	var totalFines, paidFines, totalICS, paidICS, totalDonations float64

	for i := range l.Members {
		m := &l.Members[i]
		for _, f := range m.Fines {
			if !includeFine(f) {
				continue
			}
			counted := f.Paid && includePayment(f)
			if f.Category == core.ICSCategoryKey {
				totalICS += f.Amount
				if counted {
					paidICS += f.Amount
				}
			} else {
				totalFines += f.Amount
				if counted {
					paidFines += f.Amount
				}
			}
		}
		for _, d := range m.Donations {
			if includeDonation(d) {
				totalDonations += d.Amount
			}
		}
	}
	for _, d := range l.GlobalDonations {
		if includeDonation(d) {
			totalDonations += d.Amount
		}
	}

	t := Totals{
		TotalFines:     core.Round2(totalFines),
		PaidFines:      core.Round2(paidFines),
		TotalICS:       core.Round2(totalICS),
		PaidICS:        core.Round2(paidICS),
		TotalDonations: core.Round2(totalDonations),
	}
	t.UnpaidFines = core.Round2(t.TotalFines - t.PaidFines)
	t.UnpaidICS = core.Round2(t.TotalICS - t.PaidICS)
	t.TotalCash = core.Round2(t.TotalFines + t.TotalICS + t.TotalDonations)
	t.TotalPaidAll = core.Round2(t.PaidFines + t.PaidICS + t.TotalDonations)
	t.TotalUnpaidAll = core.Round2(t.UnpaidFines + t.UnpaidICS)
	return t
}
