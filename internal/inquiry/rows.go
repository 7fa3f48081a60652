package inquiry

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// RowKind tags the report row variants.
type RowKind string

const (
	KindHeader RowKind = "header"
	KindDetail RowKind = "detail"
	KindBlank  RowKind = "blank"
	KindTotal  RowKind = "total"
)

// Row is one line of the report. The set of implementations is closed.
type Row interface {
	Kind() RowKind
	// Scale divides every monetary field of the row by 10^exp.
	Scale(exp int32) Row
	Record() Record
	isRow()
}

// Record is the flat wire form shared by all row variants.
type Record struct {
	Kind       RowKind          `json:"kind"`
	Name       string           `json:"name"`
	Parent     string           `json:"parent,omitempty"`
	Indent     int              `json:"indent"`
	IsGroup    int              `json:"is_group"`
	Account    string           `json:"account,omitempty"`
	CostCenter string           `json:"cost_center,omitempty"`
	Location   string           `json:"location,omitempty"`
	Currency   string           `json:"currency,omitempty"`
	Debit      *decimal.Decimal `json:"debit,omitempty"`
	Credit     *decimal.Decimal `json:"credit,omitempty"`
	Balance    *decimal.Decimal `json:"balance,omitempty"`
	Variance   *decimal.Decimal `json:"variance,omitempty"`
	ReportFrom string           `json:"report_from,omitempty"`
	ReportTo   string           `json:"report_to,omitempty"`
}

// Amounts are the monetary fields of a header, detail or total row. Variance
// is only valid when the report computes it.
type Amounts struct {
	Debit    decimal.Decimal
	Credit   decimal.Decimal
	Balance  decimal.Decimal
	Variance decimal.NullDecimal
}

func amountsOf(t Totals) Amounts {
	return Amounts{Debit: t.Debit, Credit: t.Credit, Balance: t.Balance()}
}

func (a Amounts) scale(exp int32) Amounts {
	if exp == 0 {
		return a
	}
	out := Amounts{
		Debit:   a.Debit.Shift(-exp),
		Credit:  a.Credit.Shift(-exp),
		Balance: a.Balance.Shift(-exp),
	}
	if a.Variance.Valid {
		out.Variance = decimal.NewNullDecimal(a.Variance.Decimal.Shift(-exp))
	}
	return out
}

func (a Amounts) fill(rec *Record) {
	debit, credit, balance := a.Debit, a.Credit, a.Balance
	rec.Debit, rec.Credit, rec.Balance = &debit, &credit, &balance
	if a.Variance.Valid {
		variance := a.Variance.Decimal
		rec.Variance = &variance
	}
}

// HeaderRow summarises one period.
type HeaderRow struct {
	Period Period
	Span   Span
	Amounts
}

func (HeaderRow) isRow()        {}
func (HeaderRow) Kind() RowKind { return KindHeader }
func (h HeaderRow) Scale(exp int32) Row {
	h.Amounts = h.Amounts.scale(exp)
	return h
}

func (h HeaderRow) Record() Record {
	rec := Record{
		Kind:       KindHeader,
		Name:       h.Period.Label(),
		IsGroup:    1,
		ReportFrom: h.Span.From.Format(DateLayout),
		ReportTo:   h.Span.To.Format(DateLayout),
	}
	h.Amounts.fill(&rec)
	return rec
}

// DetailRow is one (account, cost center, location, currency) aggregate
// inside a period.
type DetailRow struct {
	Period     Period
	Span       Span
	Account    string
	CostCenter string
	Location   string
	Currency   string
	Amounts
}

func (DetailRow) isRow()        {}
func (DetailRow) Kind() RowKind { return KindDetail }
func (d DetailRow) Scale(exp int32) Row {
	d.Amounts = d.Amounts.scale(exp)
	return d
}

func (d DetailRow) Record() Record {
	rec := Record{
		Kind:       KindDetail,
		Name:       d.Account,
		Parent:     d.Period.Label(),
		Indent:     1,
		Account:    d.Account,
		CostCenter: d.CostCenter,
		Location:   d.Location,
		Currency:   d.Currency,
		ReportFrom: d.Span.From.Format(DateLayout),
		ReportTo:   d.Span.To.Format(DateLayout),
	}
	d.Amounts.fill(&rec)
	return rec
}

// BlankRow separates the grand total from the periods.
type BlankRow struct{}

func (BlankRow) isRow()                       {}
func (BlankRow) Kind() RowKind                { return KindBlank }
func (b BlankRow) Scale(int32) Row            { return b }
func (BlankRow) Record() Record               { return Record{Kind: KindBlank} }
func (BlankRow) MarshalJSON() ([]byte, error) { return []byte("{}"), nil }

// TotalRow is the grand total across all periods.
type TotalRow struct {
	Amounts
}

func (TotalRow) isRow()        {}
func (TotalRow) Kind() RowKind { return KindTotal }
func (t TotalRow) Scale(exp int32) Row {
	t.Amounts = t.Amounts.scale(exp)
	return t
}

func (t TotalRow) Record() Record {
	rec := Record{Kind: KindTotal, Name: "Grand Total", IsGroup: 1}
	t.Amounts.fill(&rec)
	return rec
}

// MarshalRow encodes a row in its wire form; blank rows encode as {}.
func MarshalRow(row Row) ([]byte, error) {
	if blank, ok := row.(BlankRow); ok {
		return blank.MarshalJSON()
	}
	return json.Marshal(row.Record())
}

func nullIf(valid bool) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.Zero, Valid: valid}
}

func nullValue(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}
