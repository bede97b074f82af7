package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RiccardoZanardi/Calvenzano/internal/core"
	"github.com/RiccardoZanardi/Calvenzano/internal/period"
)

func testLedger() *core.Ledger {
	l := core.NewLedger()
	l.Categories["multa"] = core.Category{
		Name: "Multa", Amount: 10, Type: core.CategoryMicro,
		ParentCategory: "disciplina", Active: true, Deletable: true,
	}
	l.Members = []core.Member{
		{
			ID: "m1", Name: "Mario", Surname: "Rossi", Role: core.RolePlayer, Active: true,
			Fines: []core.Fine{
				{Category: "multa", Amount: 10, Date: "2025-07-10", Paid: false},
				{Category: "ics", Amount: 1, Date: "2025-07-12", Paid: true},
			},
			Donations: []core.Donation{},
		},
	}
	l.GlobalDonations = []core.Donation{
		{ID: "d1", DonorName: "Mario Rossi", MemberID: "m1", Amount: 5, Date: "2025-07-20"},
	}
	return l
}

func TestMemberScenario(t *testing.T) {
	l := testLedger()
	now := time.Date(2025, 7, 25, 12, 0, 0, 0, time.UTC)

	s := Member(l, "m1", period.Monthly, StatusPaid, now)

	assert.Equal(t, 10.0, s.TotalFines)
	assert.Equal(t, 0.0, s.PaidAmount)
	assert.Equal(t, 10.0, s.UnpaidAmount)
	assert.Equal(t, 1.0, s.TotalICS)
	assert.Equal(t, 1.0, s.PaidICS)
	assert.Equal(t, 5.0, s.DonationsAmount)
	assert.Equal(t, 11.0, s.AssignedAmount)
	assert.Equal(t, 6.0, s.TotalPaid)
	assert.Equal(t, 6.0, s.TotalContribution)
}

func TestMemberStatusAssigned(t *testing.T) {
	l := testLedger()
	now := time.Date(2025, 7, 25, 12, 0, 0, 0, time.UTC)

	s := Member(l, "m1", period.Monthly, StatusAssigned, now)
	assert.Equal(t, 11.0, s.TotalContribution, "assigned view reports levied money, donations excluded")
}

func TestMemberUnknownIDYieldsZero(t *testing.T) {
	l := testLedger()
	s := Member(l, "missing", period.Monthly, StatusPaid, time.Now())
	assert.Equal(t, MemberStats{}, s)
}

func TestMemberPeriodFiltering(t *testing.T) {
	l := testLedger()
	// August: none of the July entries qualify for the monthly window.
	now := time.Date(2025, 8, 5, 12, 0, 0, 0, time.UTC)

	monthly := Member(l, "m1", period.Monthly, StatusPaid, now)
	assert.Equal(t, 0.0, monthly.AssignedAmount)
	assert.Equal(t, 0.0, monthly.DonationsAmount)

	// The July entries predate the season epoch, so the seasonal
	// window excludes them too.
	seasonal := Member(l, "m1", period.Seasonal, StatusPaid, now)
	assert.Equal(t, 0.0, seasonal.AssignedAmount)
}

func TestMemberRoundingNoDrift(t *testing.T) {
	l := core.NewLedger()
	l.Members = []core.Member{{
		ID: "m1", Name: "A", Surname: "B", Active: true,
		Fines: []core.Fine{
			{Category: "multa", Amount: 0.1, Date: "2025-07-01"},
			{Category: "multa", Amount: 0.2, Date: "2025-07-02"},
		},
	}}
	now := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)

	s := Member(l, "m1", period.Monthly, StatusPaid, now)
	assert.Equal(t, 0.3, s.TotalFines, "0.1+0.2 must round to exactly 0.30")
}

func TestMemberAsOfPaymentCutoff(t *testing.T) {
	l := core.NewLedger()
	l.Members = []core.Member{{
		ID: "m1", Name: "A", Surname: "B", Active: true,
		Fines: []core.Fine{
			{Category: "multa", Amount: 10, Date: "2024-01-01", Paid: true, PaymentDate: "2024-06-01"},
		},
	}}

	early := MemberAsOf(l, "m1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 10.0, early.AssignedAmount)
	assert.Equal(t, 0.0, early.PaidAmount, "paid after cutoff counts as unpaid")
	assert.Equal(t, 10.0, early.UnpaidAmount)

	late := MemberAsOf(l, "m1", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 10.0, late.PaidAmount)
	assert.Equal(t, 0.0, late.UnpaidAmount)
}

func TestMemberAsOfDefaultsPaymentToAssignmentDate(t *testing.T) {
	l := core.NewLedger()
	l.Members = []core.Member{{
		ID: "m1", Name: "A", Surname: "B", Active: true,
		Fines: []core.Fine{
			{Category: "multa", Amount: 7.5, Date: "2024-02-01", Paid: true},
		},
	}}

	s := MemberAsOf(l, "m1", time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 7.5, s.PaidAmount, "missing payment date falls back to assignment date")
}

func TestMemberAsOfIncludesAttributedGlobalDonations(t *testing.T) {
	l := testLedger()
	s := MemberAsOf(l, "m1", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 5.0, s.DonationsAmount)
	assert.Equal(t, 6.0, s.TotalContribution)
	assert.Equal(t, 10.0, s.FineAmount)
	assert.Equal(t, 1.0, s.ICSAmount)
}

func TestCategoryStats(t *testing.T) {
	l := testLedger()
	now := time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC)

	s := Category(l, "multa", period.Monthly, now)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 10.0, s.TotalAmount)
	assert.Equal(t, 0.0, s.PaidAmount)

	all := Category(l, "ics", period.All, now)
	assert.Equal(t, 1, all.Count)
	assert.Equal(t, 1.0, all.PaidAmount)

	missing := Category(l, "nope", period.All, now)
	assert.Equal(t, CategoryStats{}, missing)
}

func TestGlobalScenario(t *testing.T) {
	l := core.NewLedger()
	l.Members = []core.Member{{
		ID: "m1", Name: "A", Surname: "B", Active: true,
		Fines: []core.Fine{
			{Category: "multa", Amount: 15, Date: "2025-07-01"},
			{Category: "multa", Amount: 5, Date: "2025-07-02", Paid: true},
			{Category: "ics", Amount: 1, Date: "2025-07-03", Paid: true},
		},
		Donations: []core.Donation{
			{ID: "d1", DonorName: "A B", MemberID: "m1", Amount: 3, Date: "2025-07-04"},
		},
	}}

	g := Global(l)
	require.Equal(t, 20.0, g.TotalFines)
	require.Equal(t, 5.0, g.PaidFines)
	require.Equal(t, 15.0, g.UnpaidFines)
	require.Equal(t, 1.0, g.TotalICS)
	require.Equal(t, 1.0, g.PaidICS)
	require.Equal(t, 3.0, g.TotalDonations)
	assert.Equal(t, 24.0, g.TotalCash)
	assert.Equal(t, 9.0, g.TotalPaidAll, "donations always count as collected")
	assert.Equal(t, 15.0, g.TotalUnpaidAll)
}

func TestGlobalIdempotent(t *testing.T) {
	l := core.NewLedger()
	l.Members = []core.Member{{
		ID: "m1", Name: "A", Surname: "B", Active: true,
		Fines: []core.Fine{
			{Category: "multa", Amount: 0.1, Date: "2025-07-01"},
			{Category: "multa", Amount: 0.2, Date: "2025-07-02"},
			{Category: "multa", Amount: 0.3, Date: "2025-07-03"},
		},
	}}

	first := Global(l)
	second := Global(l)
	assert.Equal(t, first, second)
	assert.Equal(t, 0.6, first.TotalFines)
}

func TestGlobalAsOfFiltersByEffectivePaymentDate(t *testing.T) {
	l := core.NewLedger()
	l.Members = []core.Member{{
		ID: "m1", Name: "A", Surname: "B", Active: true,
		Fines: []core.Fine{
			{Category: "multa", Amount: 10, Date: "2024-01-01", Paid: true, PaymentDate: "2024-06-01"},
			{Category: "ics", Amount: 1, Date: "2024-01-05", Paid: true},
		},
	}}
	l.GlobalDonations = []core.Donation{
		{ID: "d1", DonorName: "Esterno", Amount: 2, Date: "2024-05-01"},
	}

	g := GlobalAsOf(l, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 10.0, g.TotalFines)
	assert.Equal(t, 0.0, g.PaidFines, "payment after cutoff is invisible")
	assert.Equal(t, 1.0, g.PaidICS)
	assert.Equal(t, 0.0, g.TotalDonations, "donation after cutoff is invisible")

	later := GlobalAsOf(l, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 10.0, later.PaidFines)
	assert.Equal(t, 2.0, later.TotalDonations)
	assert.Equal(t, 13.0, later.TotalCash)
}
