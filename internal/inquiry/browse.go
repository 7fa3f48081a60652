package inquiry

import (
	"context"
	"fmt"
	"strings"
)

// EntrySource lists ledger lines and filter options.
type EntrySource interface {
	ListEntries(ctx context.Context, q EntryQuery, span Span) ([]Entry, error)
	LocationOptions(ctx context.Context, company, costCenter string) ([]LocationOption, error)
}

// Browser serves the lookups that accompany the report: the general ledger
// drill-down for a row and the location picker.
type Browser struct {
	source EntrySource
}

// NewBrowser constructs a Browser.
func NewBrowser(source EntrySource) *Browser {
	return &Browser{source: source}
}

// GeneralLedger lists the entries behind a report row.
func (b *Browser) GeneralLedger(ctx context.Context, q EntryQuery) ([]Entry, error) {
	if err := checkStruct(q); err != nil {
		return nil, err
	}
	from, err := ParseDate(q.FromDate)
	if err != nil {
		return nil, fmt.Errorf("%w: from_date must be a YYYY-MM-DD date", ErrValidation)
	}
	to, err := ParseDate(q.ToDate)
	if err != nil {
		return nil, fmt.Errorf("%w: to_date must be a YYYY-MM-DD date", ErrValidation)
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: from_date cannot be after to_date", ErrValidation)
	}
	entries, err := b.source.ListEntries(ctx, q, Span{From: from, To: to})
	if err != nil {
		return nil, dataSourceError("general ledger", err)
	}
	return entries, nil
}

// Locations lists locations selectable for the company. With a cost center
// only that cost center's location is offered.
func (b *Browser) Locations(ctx context.Context, company, costCenter string) ([]LocationOption, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, fmt.Errorf("%w: company is required", ErrValidation)
	}
	options, err := b.source.LocationOptions(ctx, company, strings.TrimSpace(costCenter))
	if err != nil {
		return nil, dataSourceError("location options", err)
	}
	return options, nil
}
