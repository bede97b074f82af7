// Package report renders treasury reports: a historical snapshot of
// the ledger as of a cutoff date, with totals, outstanding fines, a
// category breakdown and member rankings. Reports are built by the
// worker from queued requests and written through a Sink.
package report

import (
	"sort"
	"time"

	"github.com/RiccardoZanardi/Calvenzano/internal/core"
	"github.com/RiccardoZanardi/Calvenzano/internal/period"
	"github.com/RiccardoZanardi/Calvenzano/internal/stats"
)

// Kinds of report.
const (
	KindMonthly     = "monthly"
	KindProvisional = "provisional"
)

// rankingLimit caps every ranking list.
const rankingLimit = 10

// Report is the rendered document.
type Report struct {
	Kind        string          `json:"kind"`
	AsOf        string          `json:"asOf"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Totals      stats.Totals    `json:"totals"`
	UnpaidFines []UnpaidFine    `json:"unpaidFines"`
	Categories  []CategoryBlock `json:"categories"`
	Donations   DonationsBlock  `json:"donations"`
	Rankings    Rankings        `json:"rankings"`
}

// UnpaidFine is one outstanding fine row.
type UnpaidFine struct {
	MemberName string  `json:"memberName"`
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
}

// CategoryBlock groups the rollup of a macro category with its micro
// children. The built-in ICS category renders as a block of its own.
type CategoryBlock struct {
	Key      string              `json:"key"`
	Name     string              `json:"name"`
	Stats    stats.CategoryStats `json:"stats"`
	Children []CategoryLine      `json:"children,omitempty"`
}

// CategoryLine is the rollup of one micro category.
type CategoryLine struct {
	Key   string              `json:"key"`
	Name  string              `json:"name"`
	Stats stats.CategoryStats `json:"stats"`
}

// DonationsBlock summarizes donations as of the cutoff.
type DonationsBlock struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// RankingEntry is one row of a report ranking.
type RankingEntry struct {
	MemberID string  `json:"memberId,omitempty"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
}

// Rankings are the member leaderboards as of the cutoff. Unlike live
// rankings they span the whole roster, deactivated members included,
// since a historical report must account for everyone who contributed.
type Rankings struct {
	TopContributors []RankingEntry `json:"topContributors"`
	Fines           []RankingEntry `json:"fines"`
	ICS             []RankingEntry `json:"ics"`
	Donations       []RankingEntry `json:"donations"`
}

// Monthly builds the report for the last completed month: the cutoff
// is the final day of the month before now.
func Monthly(l *core.Ledger, now time.Time) *Report {
	cutoff := period.EndOfPreviousMonth(now)
	return build(l, KindMonthly, cutoff, now)
}

// Provisional builds a report as of now, covering the running month.
func Provisional(l *core.Ledger, now time.Time) *Report {
	return build(l, KindProvisional, now, now)
}

// AsOf builds a report bounded by an arbitrary cutoff date.
func AsOf(l *core.Ledger, kind string, cutoff, now time.Time) *Report {
	return build(l, kind, cutoff, now)
}

func build(l *core.Ledger, kind string, cutoff, now time.Time) *Report {
	r := &Report{
		Kind:        kind,
		AsOf:        core.FormatDate(cutoff),
		GeneratedAt: now,
		Totals:      stats.GlobalAsOf(l, cutoff),
		UnpaidFines: unpaidFines(l, cutoff),
		Categories:  categoryBlocks(l, cutoff),
		Donations:   donationsBlock(l, cutoff),
		Rankings:    rankings(l, cutoff),
	}
	return r
}

func unpaidFines(l *core.Ledger, cutoff time.Time) []UnpaidFine {
	out := []UnpaidFine{}
	for i := range l.Members {
		m := &l.Members[i]
		for _, f := range m.Fines {
			if !period.OnOrBefore(f.Date, cutoff) {
				continue
			}
			if f.Paid && !period.EffectivePaymentDate(f).After(cutoff) {
				continue
			}
			out = append(out, UnpaidFine{
				MemberName: m.DisplayName(),
				Category:   l.CategoryName(f.Category),
				Amount:     f.Amount,
				Date:       f.Date,
			})
		}
	}
	return out
}

func categoryBlocks(l *core.Ledger, cutoff time.Time) []CategoryBlock {
	// ICS first, then every macro with its micro children, skipping
	// groups nothing was assigned under.
	blocks := []CategoryBlock{}

	if ics, ok := l.Categories[core.ICSCategoryKey]; ok {
		s := stats.CategoryAsOf(l, core.ICSCategoryKey, cutoff)
		if s.Count > 0 {
			blocks = append(blocks, CategoryBlock{Key: core.ICSCategoryKey, Name: ics.Name, Stats: s})
		}
	}

	macroKeys := []string{}
	for key, c := range l.Categories {
		if c.Type == core.CategoryMacro && key != core.ICSCategoryKey {
			macroKeys = append(macroKeys, key)
		}
	}
	sort.Strings(macroKeys)

	for _, macroKey := range macroKeys {
		block := CategoryBlock{Key: macroKey, Name: l.Categories[macroKey].Name}

		microKeys := []string{}
		for key, c := range l.Categories {
			if c.Type == core.CategoryMicro && c.ParentCategory == macroKey {
				microKeys = append(microKeys, key)
			}
		}
		sort.Strings(microKeys)

		for _, microKey := range microKeys {
			s := stats.CategoryAsOf(l, microKey, cutoff)
			if s.Count == 0 {
				continue
			}
			block.Children = append(block.Children, CategoryLine{
				Key:   microKey,
				Name:  l.Categories[microKey].Name,
				Stats: s,
			})
			block.Stats.Count += s.Count
			block.Stats.TotalAmount = core.Round2(block.Stats.TotalAmount + s.TotalAmount)
			block.Stats.PaidAmount = core.Round2(block.Stats.PaidAmount + s.PaidAmount)
		}
		if block.Stats.Count > 0 {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

func donationsBlock(l *core.Ledger, cutoff time.Time) DonationsBlock {
	var b DonationsBlock
	var total float64
	for i := range l.Members {
		for _, d := range l.Members[i].Donations {
			if period.OnOrBefore(d.Date, cutoff) {
				b.Count++
				total += d.Amount
			}
		}
	}
	for _, d := range l.GlobalDonations {
		if period.OnOrBefore(d.Date, cutoff) {
			b.Count++
			total += d.Amount
		}
	}
	b.Total = core.Round2(total)
	return b
}

func rankings(l *core.Ledger, cutoff time.Time) Rankings {
	var contributors, fines, ics, donations []RankingEntry

	for i := range l.Members {
		m := &l.Members[i]
		s := stats.MemberAsOf(l, m.ID, cutoff)
		if s.TotalContribution > 0 {
			contributors = append(contributors, RankingEntry{MemberID: m.ID, Name: m.DisplayName(), Amount: s.TotalContribution})
		}
		if s.FineAmount > 0 {
			fines = append(fines, RankingEntry{MemberID: m.ID, Name: m.DisplayName(), Amount: s.FineAmount})
		}
		if s.ICSAmount > 0 {
			ics = append(ics, RankingEntry{MemberID: m.ID, Name: m.DisplayName(), Amount: s.ICSAmount})
		}
		if s.DonationsAmount > 0 {
			donations = append(donations, RankingEntry{MemberID: m.ID, Name: m.DisplayName(), Amount: s.DonationsAmount})
		}
	}

	var external float64
	for _, d := range l.GlobalDonations {
		if d.MemberID == "" && period.OnOrBefore(d.Date, cutoff) {
			external += d.Amount
		}
	}
	if external > 0 {
		donations = append(donations, RankingEntry{Name: "External", Amount: core.Round2(external)})
	}

	return Rankings{
		TopContributors: top(contributors),
		Fines:           top(fines),
		ICS:             top(ics),
		Donations:       top(donations),
	}
}

func top(entries []RankingEntry) []RankingEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Amount > entries[j].Amount
	})
	if len(entries) > rankingLimit {
		entries = entries[:rankingLimit]
	}
	if entries == nil {
		entries = []RankingEntry{}
	}
	return entries
}
