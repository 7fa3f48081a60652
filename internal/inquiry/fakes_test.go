package inquiry

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type ledgerLine struct {
	company     string
	date        time.Time
	account     string
	costCenter  string
	location    string
	currency    string
	voucherType string
	debit       decimal.Decimal
	credit      decimal.Decimal
}

func line(company, date, account, costCenter, location string, debit, credit int64) ledgerLine {
	d, err := ParseDate(date)
	if err != nil {
		panic(err)
	}
	return ledgerLine{
		company:    company,
		date:       d,
		account:    account,
		costCenter: costCenter,
		location:   location,
		currency:   "USD",
		debit:      decimal.NewFromInt(debit),
		credit:     decimal.NewFromInt(credit),
	}
}

type memoryLedger struct {
	mu      sync.Mutex
	lines   []ledgerLine
	err     error
	calls   int
	grouped []Span
}

func (m *memoryLedger) matches(scope Scope, span Span, l ledgerLine) bool {
	if l.company != scope.Company || !span.Contains(l.date) {
		return false
	}
	if scope.Account != "" && l.account != scope.Account {
		return false
	}
	if scope.CostCenter != "" && l.costCenter != scope.CostCenter {
		return false
	}
	if scope.ByLocation() {
		if !slices.Contains(scope.LeafCenters, l.costCenter) || l.location != scope.Location {
			return false
		}
	}
	if scope.Currency != "" && l.currency != scope.Currency {
		return false
	}
	if scope.VoucherType != "" && l.voucherType != scope.VoucherType {
		return false
	}
	return true
}

func (m *memoryLedger) SumActivity(_ context.Context, scope Scope, span Span) (Totals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return Totals{}, m.err
	}
	var t Totals
	for _, l := range m.lines {
		if m.matches(scope, span, l) {
			t = t.Add(Totals{Debit: l.debit, Credit: l.credit})
		}
	}
	return t, nil
}

func (m *memoryLedger) SumByDimension(_ context.Context, scope Scope, span Span) ([]Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.grouped = append(m.grouped, span)
	if m.err != nil {
		return nil, m.err
	}
	type key struct{ account, costCenter, location, currency string }
	sums := make(map[key]Totals)
	var order []key
	for _, l := range m.lines {
		if !m.matches(scope, span, l) {
			continue
		}
		k := key{l.account, l.costCenter, l.location, l.currency}
		if _, ok := sums[k]; !ok {
			order = append(order, k)
		}
		sums[k] = sums[k].Add(Totals{Debit: l.debit, Credit: l.credit})
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].account != order[j].account {
			return order[i].account < order[j].account
		}
		if order[i].costCenter != order[j].costCenter {
			return order[i].costCenter < order[j].costCenter
		}
		return order[i].location < order[j].location
	})
	out := make([]Balance, 0, len(order))
	for _, k := range order {
		out = append(out, Balance{Account: k.account, CostCenter: k.costCenter, Location: k.location, Currency: k.currency, Totals: sums[k]})
	}
	return out, nil
}

type budgetRef struct {
	account    string
	costCenter string
	year       int
}

type memoryBudgets struct {
	mu      sync.Mutex
	amounts map[budgetRef]decimal.Decimal
	lookups []budgetRef
	err     error
}

func (m *memoryBudgets) AnnualBudget(_ context.Context, account, costCenter string, fiscalYear int) (decimal.Decimal, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := budgetRef{account, costCenter, fiscalYear}
	m.lookups = append(m.lookups, ref)
	if m.err != nil {
		return decimal.Decimal{}, false, m.err
	}
	amount, ok := m.amounts[ref]
	return amount, ok, nil
}

type memoryDirectory struct {
	leaves    map[string][]string
	locations map[string]string
	err       error
}

func (m *memoryDirectory) LeafCostCenters(_ context.Context, _ string, location string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.leaves[location], nil
}

func (m *memoryDirectory) CostCenterLocation(_ context.Context, costCenter string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.locations[costCenter], nil
}

// acmeLedger is a small Q1 2024 ledger for the ACME company.
func acmeLedger() *memoryLedger {
	return &memoryLedger{lines: []ledgerLine{
		line("ACME", "2024-01-05", "1100 - Cash", "Main - AC", "HQ", 1000, 0),
		line("ACME", "2024-01-20", "4000 - Sales", "Main - AC", "HQ", 0, 1000),
		line("ACME", "2024-02-10", "1100 - Cash", "Main - AC", "HQ", 500, 0),
		line("ACME", "2024-02-11", "5000 - Rent", "Store - AC", "Branch", 300, 0),
		line("ACME", "2024-02-11", "1100 - Cash", "Store - AC", "Branch", 0, 300),
		line("ACME", "2024-03-31", "5000 - Rent", "Main - AC", "HQ", 200, 50),
		line("OTHER", "2024-01-15", "1100 - Cash", "Main - OT", "HQ", 9999, 0),
	}}
}

func acmeDirectory() *memoryDirectory {
	return &memoryDirectory{
		leaves: map[string][]string{
			"HQ":     {"Main - AC"},
			"Branch": {"Store - AC", "Kiosk - AC"},
		},
		locations: map[string]string{
			"Main - AC":  "HQ",
			"Store - AC": "Branch",
			"Kiosk - AC": "Branch",
		},
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
