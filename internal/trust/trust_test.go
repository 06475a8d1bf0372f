package trust

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaignops/internal/ledger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newLedger(amounts map[string][]string, order []string) *ledger.Ledger {
	var entries []ledger.Entry
	ts := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	for _, name := range order {
		for _, a := range amounts[name] {
			entries = append(entries, ledger.Entry{Timestamp: ts, Amount: dec(a), Currency: "EUR", Beneficiary: name})
			ts = ts.Add(time.Hour)
		}
	}
	return ledger.FromEntries(entries, ledger.Options{})
}

func TestShareholderStats(t *testing.T) {
	l := newLedger(map[string][]string{
		"B": {"200", "300"},
		"A": {"1000"},
	}, []string{"B", "A"})

	stats := New(l).ShareholderStats()
	require.Len(t, stats, 2)
	assert.Equal(t, "A", stats[0].Beneficiary)
	assert.True(t, stats[0].DebtAmount.Equal(dec("1000")))
	assert.True(t, stats[0].SharePercent.Equal(dec("66.67")), "share = %s", stats[0].SharePercent)
	assert.Equal(t, CandidateLabel, stats[0].Label)
	assert.Equal(t, "B", stats[1].Beneficiary)
	assert.True(t, stats[1].SharePercent.Equal(dec("33.33")))
}

func TestShareholderStatsTiesKeepLedgerOrder(t *testing.T) {
	l := newLedger(map[string][]string{
		"first":  {"50"},
		"second": {"50"},
		"third":  {"80"},
	}, []string{"first", "second", "third"})

	stats := New(l).ShareholderStats()
	require.Len(t, stats, 3)
	assert.Equal(t, []string{"third", "first", "second"}, []string{stats[0].Beneficiary, stats[1].Beneficiary, stats[2].Beneficiary})
}

func TestShareholderStatsSkipsResolved(t *testing.T) {
	l := newLedger(map[string][]string{"A": {"10"}, "B": {"5"}}, []string{"A", "B"})
	l.Resolve(dec("10"))

	stats := New(l).ShareholderStats()
	require.Len(t, stats, 1)
	assert.Equal(t, "B", stats[0].Beneficiary)
	assert.True(t, stats[0].SharePercent.Equal(dec("100")))
}

func TestShareholderStatsZeroTotal(t *testing.T) {
	src := stubSource{debts: []ledger.BeneficiaryDebt{{Beneficiary: "A", Debt: decimal.Zero}}}
	stats := New(src).ShareholderStats()
	require.Len(t, stats, 1)
	assert.True(t, stats[0].SharePercent.IsZero())
}

func TestProjectResolution(t *testing.T) {
	l := newLedger(map[string][]string{"A": {"1000"}, "B": {"500"}}, []string{"A", "B"})
	view := New(l)

	p := view.ProjectResolution(dec("500"))
	assert.True(t, p.ProjectedMonths.Equal(dec("3")))
	assert.False(t, p.Infinite)
	assert.Equal(t, StatusActive, p.Status)
	assert.True(t, p.TotalUnsatisfiedDebt.Equal(dec("1500")))

	p = view.ProjectResolution(dec("700"))
	assert.True(t, p.ProjectedMonths.Equal(dec("2.14")))

	for _, v := range []string{"0", "-3"} {
		p = view.ProjectResolution(dec(v))
		assert.True(t, p.Infinite)
		assert.Equal(t, StatusStagnant, p.Status)
	}
}

func TestProjectionJSON(t *testing.T) {
	raw, err := json.Marshal(Projection{TotalUnsatisfiedDebt: dec("10"), Infinite: true, Status: StatusStagnant})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_unsatisfied_debt":10,"monthly_velocity":0,"projected_months":"infinite","status":"stagnant"}`, string(raw))
}

type stubSource struct {
	debts []ledger.BeneficiaryDebt
}

func (s stubSource) Beneficiaries() []ledger.BeneficiaryDebt { return s.debts }

func (s stubSource) TotalUnsatisfiedDebt() decimal.Decimal {
	total := decimal.Zero
	for _, d := range s.debts {
		total = total.Add(d.Debt)
	}
	return total
}

func TestShareholderStatJSON(t *testing.T) {
	raw, err := json.Marshal(ShareholderStat{Beneficiary: "A", DebtAmount: dec("1000"), SharePercent: dec("66.67"), Label: CandidateLabel})
	require.NoError(t, err)
	assert.JSONEq(t, `{"beneficiary":"A","debt_amount":1000,"share_percent":66.67,"label":"Trustee Candidate"}`, string(raw))
}
