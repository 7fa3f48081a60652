package inquiry

import (
	"encoding/json"
)

// Column describes one report column.
type Column struct {
	Label        string `json:"label"`
	FieldID      string `json:"field_id"`
	Type         string `json:"type"`
	Options      string `json:"options,omitempty"`
	Width        int    `json:"width"`
	CurrencyHint string `json:"currency_hint,omitempty"`
}

// Columns returns the ordered column schema for the filters.
func Columns(f Filters) []Column {
	columns := []Column{
		{Label: "Period / Account", FieldID: "name", Type: "Data", Width: 300},
		{Label: "Cost Center", FieldID: "cost_center", Type: "Link", Options: "Cost Center", Width: 160},
		{Label: "Location", FieldID: "location", Type: "Link", Options: "Location", Width: 160},
		{Label: "Debit", FieldID: "debit", Type: "Currency", Width: 130, CurrencyHint: f.Currency},
		{Label: "Credit", FieldID: "credit", Type: "Currency", Width: 130, CurrencyHint: f.Currency},
		{Label: "Balance", FieldID: "balance", Type: "Currency", Width: 130, CurrencyHint: f.Currency},
	}
	if f.ShowVariance {
		columns = append(columns, Column{
			Label: "Variance vs Budget", FieldID: "variance", Type: "Currency", Width: 150, CurrencyHint: f.Currency,
		})
	}
	return columns
}

// Report is the result of one run.
type Report struct {
	RunID   string
	Columns []Column
	Rows    []Row
}

// Headers returns the period header rows in order.
func (r Report) Headers() []HeaderRow {
	var out []HeaderRow
	for _, row := range r.Rows {
		if h, ok := row.(HeaderRow); ok {
			out = append(out, h)
		}
	}
	return out
}

// Details returns the detail rows of the period at index i of Headers.
func (r Report) Details(i int) []DetailRow {
	var (
		out    []DetailRow
		header = -1
	)
	for _, row := range r.Rows {
		switch v := row.(type) {
		case HeaderRow:
			header++
		case DetailRow:
			if header == i {
				out = append(out, v)
			}
		}
	}
	return out
}

// Total returns the grand total row when the report carries one.
func (r Report) Total() (TotalRow, bool) {
	for i := len(r.Rows) - 1; i >= 0; i-- {
		if t, ok := r.Rows[i].(TotalRow); ok {
			return t, true
		}
	}
	return TotalRow{}, false
}

// MarshalJSON encodes the report as {"run_id", "columns", "rows"}.
func (r Report) MarshalJSON() ([]byte, error) {
	rows := make([]json.RawMessage, 0, len(r.Rows))
	for _, row := range r.Rows {
		raw, err := MarshalRow(row)
		if err != nil {
			return nil, err
		}
		rows = append(rows, raw)
	}
	return json.Marshal(struct {
		RunID   string            `json:"run_id,omitempty"`
		Columns []Column          `json:"columns"`
		Rows    []json.RawMessage `json:"rows"`
	}{RunID: r.RunID, Columns: r.Columns, Rows: rows})
}
