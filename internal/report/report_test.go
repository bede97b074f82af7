package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RiccardoZanardi/Calvenzano/internal/core"
)

func fixtureLedger() *core.Ledger {
	l := core.NewLedger()
	l.Categories["ritardi"] = core.Category{Name: "Ritardi", Type: core.CategoryMacro, Active: true, Deletable: true}
	l.Categories["ritardo_allenamento"] = core.Category{
		Name: "Ritardo allenamento", Amount: 5, Type: core.CategoryMicro,
		ParentCategory: "ritardi", Active: true, Deletable: true,
	}
	l.Categories["telefono"] = core.Category{
		Name: "Telefono in riunione", Amount: 10, Type: core.CategoryMicro,
		ParentCategory: "ritardi", Active: true, Deletable: true,
	}
	l.Members = []core.Member{
		{
			ID: "m1", Name: "Mario", Surname: "Rossi", Active: true,
			Fines: []core.Fine{
				{Category: "ritardo_allenamento", Amount: 5, Date: "2026-02-10", Paid: true, PaymentDate: "2026-02-20"},
				{Category: "telefono", Amount: 10, Date: "2026-02-15"},
				{Category: "ics", Amount: 1, Date: "2026-02-01", Paid: true, PaymentDate: "2026-03-05"},
				{Category: "ritardo_allenamento", Amount: 5, Date: "2026-03-02"},
			},
			Donations: []core.Donation{},
		},
		{
			// Deactivated but with history: must still appear in rankings.
			ID: "m2", Name: "Luigi", Surname: "Verdi", Active: false,
			Fines: []core.Fine{
				{Category: "telefono", Amount: 10, Date: "2026-01-10", Paid: true, PaymentDate: "2026-01-15"},
			},
			Donations: []core.Donation{},
		},
	}
	l.GlobalDonations = []core.Donation{
		{ID: "d1", DonorName: "Sponsor Bar", Amount: 15, Date: "2026-02-05"},
		{ID: "d2", DonorName: "Mario Rossi", MemberID: "m1", Amount: 2, Date: "2026-02-28"},
		{ID: "d3", DonorName: "Sponsor Bar", Amount: 50, Date: "2026-03-10"},
	}
	return l
}

func TestMonthlyCutoff(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	r := Monthly(fixtureLedger(), now)

	assert.Equal(t, KindMonthly, r.Kind)
	assert.Equal(t, "2026-02-28", r.AsOf, "cutoff is the last day of the previous month")

	// March rows are out: the March fine, the March donation, and the
	// ICS payment dated March counts as unpaid.
	assert.Equal(t, 25.0, r.Totals.TotalFines)
	assert.Equal(t, 15.0, r.Totals.PaidFines)
	assert.Equal(t, 1.0, r.Totals.TotalICS)
	assert.Equal(t, 0.0, r.Totals.PaidICS)
	assert.Equal(t, 17.0, r.Totals.TotalDonations)
}

func TestUnpaidFinesDetail(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	r := Monthly(fixtureLedger(), now)

	require.Len(t, r.UnpaidFines, 2)
	assert.Equal(t, "Telefono in riunione", r.UnpaidFines[0].Category)
	assert.Equal(t, "ICS", r.UnpaidFines[1].Category, "paid after the cutoff still counts as outstanding")
}

func TestCategoryBlocks(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	r := Monthly(fixtureLedger(), now)

	require.Len(t, r.Categories, 2)

	assert.Equal(t, core.ICSCategoryKey, r.Categories[0].Key)
	assert.Equal(t, 1, r.Categories[0].Stats.Count)

	ritardi := r.Categories[1]
	assert.Equal(t, "ritardi", ritardi.Key)
	assert.Equal(t, 3, ritardi.Stats.Count, "macro aggregates its micro children")
	assert.Equal(t, 25.0, ritardi.Stats.TotalAmount)
	require.Len(t, ritardi.Children, 2)
	assert.Equal(t, "ritardo_allenamento", ritardi.Children[0].Key)
	assert.Equal(t, "telefono", ritardi.Children[1].Key)
	assert.Equal(t, 20.0, ritardi.Children[1].Stats.TotalAmount)
}

func TestRankings(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	r := Monthly(fixtureLedger(), now)

	require.NotEmpty(t, r.Rankings.TopContributors)
	assert.Equal(t, "Luigi Verdi", r.Rankings.TopContributors[0].Name,
		"deactivated members still rank in historical reports")
	assert.Equal(t, 10.0, r.Rankings.TopContributors[0].Amount)
	assert.Equal(t, "Mario Rossi", r.Rankings.TopContributors[1].Name)
	assert.Equal(t, 7.0, r.Rankings.TopContributors[1].Amount)

	require.Len(t, r.Rankings.Donations, 2)
	assert.Equal(t, "External", r.Rankings.Donations[0].Name)
	assert.Equal(t, 15.0, r.Rankings.Donations[0].Amount, "March donation is out")

	require.Len(t, r.Rankings.ICS, 1)
	assert.Equal(t, 1.0, r.Rankings.ICS[0].Amount)
}

func TestProvisional(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	r := Provisional(fixtureLedger(), now)

	assert.Equal(t, KindProvisional, r.Kind)
	assert.Equal(t, "2026-03-15", r.AsOf)
	assert.Equal(t, 30.0, r.Totals.TotalFines)
	assert.Equal(t, 1.0, r.Totals.PaidICS, "March payment counts now")
	assert.Equal(t, 67.0, r.Totals.TotalDonations)
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(filepath.Join(dir, "reports"), nil)
	require.NoError(t, err)

	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	r := Monthly(fixtureLedger(), now)
	require.NoError(t, sink.Write(r))

	data, err := os.ReadFile(filepath.Join(dir, "reports", "report-monthly-2026-02-28.json"))
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r.AsOf, decoded.AsOf)
	assert.Equal(t, r.Totals, decoded.Totals)
}
