package inquiry

import (
	"fmt"
	"strings"
)

// Predicates accumulates WHERE clauses with positional parameters.
type Predicates struct {
	clauses []string
	args    []any
}

func (p *Predicates) bind(value any) string {
	p.args = append(p.args, value)
	return fmt.Sprintf("$%d", len(p.args))
}

// Eq adds column = value.
func (p *Predicates) Eq(column string, value any) *Predicates {
	p.clauses = append(p.clauses, fmt.Sprintf("%s = %s", column, p.bind(value)))
	return p
}

// Between adds column BETWEEN lo AND hi.
func (p *Predicates) Between(column string, lo, hi any) *Predicates {
	p.clauses = append(p.clauses, fmt.Sprintf("%s BETWEEN %s AND %s", column, p.bind(lo), p.bind(hi)))
	return p
}

// In adds column = ANY(values).
func (p *Predicates) In(column string, values []string) *Predicates {
	if values == nil {
		values = []string{}
	}
	p.clauses = append(p.clauses, fmt.Sprintf("%s = ANY(%s)", column, p.bind(values)))
	return p
}

// SQL joins the clauses with AND.
func (p *Predicates) SQL() string {
	if len(p.clauses) == 0 {
		return "TRUE"
	}
	return strings.Join(p.clauses, " AND ")
}

// Args returns the bound parameters in placeholder order.
func (p *Predicates) Args() []any { return p.args }

// Scope is the dimensional restriction of a report run after resolving the
// cost center and location precedence.
type Scope struct {
	Company     string
	Account     string
	CostCenter  string
	Location    string
	LeafCenters []string
	Currency    string
	VoucherType string
}

// ByLocation reports whether the scope restricts through a location's leaf
// cost centers rather than a single cost center.
func (s Scope) ByLocation() bool {
	return s.CostCenter == "" && s.Location != ""
}

// ResolveScope applies the precedence rule: a cost center restricts directly
// and suppresses the location restriction; a location alone restricts to its
// leaf cost centers and to entries posted against that location.
func ResolveScope(f Filters, leafCenters []string) Scope {
	scope := Scope{
		Company:     f.Company,
		Account:     f.Account,
		Currency:    f.Currency,
		VoucherType: f.VoucherType,
	}
	switch {
	case f.CostCenter != "":
		scope.CostCenter = f.CostCenter
	case f.Location != "":
		scope.Location = f.Location
		scope.LeafCenters = append([]string(nil), leafCenters...)
	}
	return scope
}

// ComposePredicates builds the WHERE clause for one span of the scope.
func ComposePredicates(scope Scope, span Span) *Predicates {
	p := &Predicates{}
	p.Eq("company", scope.Company)
	p.Between("posting_date", span.From, span.To)
	if scope.Account != "" {
		p.Eq("account", scope.Account)
	}
	switch {
	case scope.CostCenter != "":
		p.Eq("cost_center", scope.CostCenter)
	case scope.ByLocation():
		p.In("cost_center", scope.LeafCenters)
		p.Eq("location", scope.Location)
	}
	if scope.Currency != "" {
		p.Eq("account_currency", scope.Currency)
	}
	if scope.VoucherType != "" {
		p.Eq("voucher_type", scope.VoucherType)
	}
	return p
}
