package accounting

import (
	"context"
	"sync"
)

type memoryRepo struct {
	mu         sync.Mutex
	charts     map[string]Chart
	chartCalls int
	txCalls    int
	insertErr  error
}

func newMemoryRepo(charts ...Chart) *memoryRepo {
	r := &memoryRepo{charts: make(map[string]Chart)}
	for _, c := range charts {
		r.charts[c.Company.Name] = c
	}
	return r
}

func (r *memoryRepo) Chart(_ context.Context, company string) (Chart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chartCalls++
	chart, ok := r.charts[company]
	if !ok {
		return Chart{Company: Company{Name: company}}, nil
	}
	return chart, nil
}

func (r *memoryRepo) Companies(context.Context) ([]Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Company
	for _, c := range r.charts {
		out = append(out, c.Company)
	}
	return out, nil
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	r.txCalls++
	r.mu.Unlock()
	return fn(ctx, memoryTx{repo: r})
}

type memoryTx struct {
	repo *memoryRepo
}

func (t memoryTx) InsertAccount(_ context.Context, a Account) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	if t.repo.insertErr != nil {
		return t.repo.insertErr
	}
	chart := t.repo.charts[a.Company]
	chart.Accounts = append(chart.Accounts, a)
	t.repo.charts[a.Company] = chart
	return nil
}

func (t memoryTx) InsertLocation(_ context.Context, l Location) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	if t.repo.insertErr != nil {
		return t.repo.insertErr
	}
	chart := t.repo.charts[l.Company]
	chart.Locations = append(chart.Locations, l)
	t.repo.charts[l.Company] = chart
	return nil
}

// acmeChart has no company abbreviation, so account values are real names.
func acmeChart() Chart {
	return Chart{
		Company: Company{Name: "ACME"},
		Locations: []Location{
			{Name: "HQ", LocationName: "HQ", AccountNumber: "1000", Company: "ACME"},
			{Name: "Branch", LocationName: "Branch", AccountNumber: "2000", Company: "ACME"},
			{Name: "Warehouse", LocationName: "Warehouse", Company: "ACME"},
		},
		CostCenters: []CostCenter{
			{Name: "Main", Company: "ACME", IsGroup: true, Location: "HQ"},
			{Name: "Main Ops", Company: "ACME", Parent: "Main", Location: "HQ"},
			{Name: "Store", Company: "ACME", IsGroup: true, Location: "Branch"},
			{Name: "Kiosk", Company: "ACME", Parent: "Store", Location: "Branch"},
			{Name: "Remote", Company: "ACME", Parent: "Main", Location: "Branch"},
		},
		Accounts: []Account{
			{Name: "1100 - Cash", AccountName: "Cash", AccountNumber: "1100", Company: "ACME", IsGroup: true, Currency: "USD", Location: "HQ", CostCenter: "Main"},
			{Name: "1110 - Petty Cash", AccountName: "Petty Cash", AccountNumber: "1110", Company: "ACME", Parent: "1100 - Cash", Currency: "USD", Location: "HQ", CostCenter: "Main"},
			{Name: "1105 - Bank", AccountName: "Bank", AccountNumber: "1105", Company: "ACME", Parent: "1100 - Cash", Currency: "USD", Location: "HQ", CostCenter: "Main"},
			{Name: "Misc", AccountName: "Misc", Company: "ACME", Parent: "1100 - Cash", Location: "HQ", CostCenter: "Main"},
			{Name: "4000 - Sales", AccountName: "Sales", AccountNumber: "4000", Company: "ACME", Location: "Branch", CostCenter: "Store"},
		},
	}
}

// globexChart carries the abbreviation "GX", so accounts first appear under
// synthetic titles.
func globexChart() Chart {
	return Chart{
		Company: Company{Name: "Globex", Abbr: "GX"},
		Locations: []Location{
			{Name: "101 - HQ - GX", LocationName: "HQ", LocationNumber: "101", AccountNumber: "1000", Company: "Globex"},
		},
		CostCenters: []CostCenter{
			{Name: "Main - GX", Company: "Globex", IsGroup: true, Location: "101 - HQ - GX"},
		},
		Accounts: []Account{
			{Name: "1100 - Cash - GX", AccountName: "Cash", AccountNumber: "1100", Company: "Globex", IsGroup: true, Currency: "EUR", Location: "101 - HQ - GX", CostCenter: "Main - GX"},
			{Name: "1110 - Petty Cash - GX", AccountName: "Petty Cash", AccountNumber: "1110", Company: "Globex", Parent: "1100 - Cash - GX", Currency: "EUR", Location: "101 - HQ - GX", CostCenter: "Main - GX"},
		},
	}
}

func values(nodes []TreeNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Value)
	}
	return out
}
