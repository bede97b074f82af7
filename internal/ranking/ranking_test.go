package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RiccardoZanardi/Calvenzano/internal/core"
	"github.com/RiccardoZanardi/Calvenzano/internal/period"
	"github.com/RiccardoZanardi/Calvenzano/internal/stats"
)

var rankNow = time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)

func rosterLedger() *core.Ledger {
	l := core.NewLedger()
	l.Categories["multa"] = core.Category{
		Name: "Multa", Amount: 10, Type: core.CategoryMicro,
		ParentCategory: "disciplina", Active: true, Deletable: true,
	}
	l.Members = []core.Member{
		{
			ID: "m1", Name: "Mario", Surname: "Rossi", Nickname: "Il Capitano", Role: core.RolePlayer, Active: true,
			Fines: []core.Fine{
				{Category: "multa", Amount: 10, Date: "2025-09-01", Paid: true, PaymentDate: "2025-09-02"},
			},
		},
		{
			ID: "m2", Name: "Luca", Surname: "Bianchi", Role: core.RolePlayer, Active: true,
			Fines: []core.Fine{
				{Category: "multa", Amount: 20, Date: "2025-09-03", Paid: true, PaymentDate: "2025-09-04"},
				{Category: "ics", Amount: 1, Date: "2025-09-05"},
			},
		},
		{
			ID: "m3", Name: "Gigi", Surname: "Verdi", Role: core.RoleStaff, Active: false,
			Fines: []core.Fine{
				{Category: "multa", Amount: 50, Date: "2025-09-01", Paid: true},
			},
		},
	}
	l.GlobalDonations = []core.Donation{
		{ID: "d1", DonorName: "Sponsor Bar", Amount: 15, Date: "2025-09-10"},
		{ID: "d2", DonorName: "Il Capitano", MemberID: "m1", Amount: 2, Date: "2025-09-11"},
	}
	return l
}

func TestTopContributorsExcludesInactive(t *testing.T) {
	l := rosterLedger()

	entries := TopContributors(l, period.Monthly, stats.StatusPaid, rankNow, 10)

	require.Len(t, entries, 2)
	assert.Equal(t, "Luca Bianchi", entries[0].Name)
	assert.Equal(t, 20.0, entries[0].Amount)
	assert.Equal(t, "Il Capitano", entries[1].Name)
	assert.Equal(t, 12.0, entries[1].Amount, "paid fine plus attributed global donation")

	// The deactivated member is still resolvable directly.
	s := stats.Member(l, "m3", period.Monthly, stats.StatusPaid, rankNow)
	assert.Equal(t, 50.0, s.TotalPaid)
}

func TestTopContributorsAssignedView(t *testing.T) {
	l := rosterLedger()

	entries := TopContributors(l, period.Monthly, stats.StatusAssigned, rankNow, 10)

	require.Len(t, entries, 2)
	assert.Equal(t, "Luca Bianchi", entries[0].Name)
	assert.Equal(t, 21.0, entries[0].Amount, "donations excluded from the assigned view")
}

func TestTopContributorsLimit(t *testing.T) {
	l := rosterLedger()
	entries := TopContributors(l, period.Monthly, stats.StatusPaid, rankNow, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, "Luca Bianchi", entries[0].Name)
}

func TestTopContributorsTieKeepsRosterOrder(t *testing.T) {
	l := core.NewLedger()
	l.Members = []core.Member{
		{ID: "a", Name: "First", Surname: "Same", Active: true,
			Fines: []core.Fine{{Category: "x", Amount: 5, Date: "2025-09-01", Paid: true}}},
		{ID: "b", Name: "Second", Surname: "Same", Active: true,
			Fines: []core.Fine{{Category: "x", Amount: 5, Date: "2025-09-01", Paid: true}}},
	}

	entries := TopContributors(l, period.Monthly, stats.StatusPaid, rankNow, 10)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].MemberID)
	assert.Equal(t, "b", entries[1].MemberID)
}

func TestPaidIncludesExternalPseudoEntry(t *testing.T) {
	l := rosterLedger()

	entries := Paid(l, period.Monthly, rankNow, 10)

	require.Len(t, entries, 3)
	assert.Equal(t, "Luca Bianchi", entries[0].Name)
	assert.Equal(t, ExternalDonorName, entries[1].Name)
	assert.Equal(t, 15.0, entries[1].Amount)
	assert.Equal(t, "Il Capitano", entries[2].Name)
}

func TestDonationsRanking(t *testing.T) {
	l := rosterLedger()

	entries := Donations(l, period.Monthly, rankNow, 10)

	require.Len(t, entries, 2)
	assert.Equal(t, ExternalDonorName, entries[0].Name)
	assert.Equal(t, 15.0, entries[0].Amount)
	assert.Equal(t, "Il Capitano", entries[1].Name)
	assert.Equal(t, 2.0, entries[1].Amount)
}

func TestICSRanking(t *testing.T) {
	l := rosterLedger()

	entries := ICS(l, period.Monthly, rankNow, 10)

	require.Len(t, entries, 1)
	assert.Equal(t, "Luca Bianchi", entries[0].Name)
	assert.Equal(t, 1.0, entries[0].Amount)
}

func TestCategoriesRanking(t *testing.T) {
	l := rosterLedger()

	entries := Categories(l, period.Monthly, rankNow)

	require.Len(t, entries, 2)
	assert.Equal(t, "multa", entries[0].Key)
	assert.Equal(t, 80.0, entries[0].Amount, "category scan includes inactive members' rows")
	assert.Equal(t, "ics", entries[1].Key)
}

func TestDonationsBreakdownMergesAttributed(t *testing.T) {
	l := rosterLedger()

	entries, total, count := DonationsBreakdown(l, period.Monthly, rankNow)

	assert.Equal(t, 17.0, total)
	assert.Equal(t, 2, count)
	require.Len(t, entries, 2)
	assert.Equal(t, "Sponsor Bar", entries[0].Name)
	assert.Equal(t, "Il Capitano", entries[1].Name)
	assert.Equal(t, 2.0, entries[1].Amount)
}
