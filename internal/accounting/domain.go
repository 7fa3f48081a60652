// Package accounting serves the custom Company → Location → Cost Center →
// Account hierarchy: tree browsing, account creation under synthetic parents,
// location naming and fuzzy search.
package accounting

import (
	"fmt"
	"strings"

	"github.com/odyssey-erp/custom-accounting/internal/platform/httpx"
)

var (
	// ErrValidation marks invalid input.
	ErrValidation = fmt.Errorf("accounting: %w", httpx.ErrValidation)
	// ErrNotFound marks an unresolvable parent or record.
	ErrNotFound = fmt.Errorf("accounting: %w", httpx.ErrNotFound)
	// ErrDuplicate marks a name collision on insert.
	ErrDuplicate = fmt.Errorf("accounting: %w", httpx.ErrDuplicate)
)

// Company is a legal entity; Abbr suffixes generated names.
type Company struct {
	Name string `json:"name"`
	Abbr string `json:"abbr,omitempty"`
}

// Location groups cost centers and accounts geographically.
type Location struct {
	Name           string `json:"name"`
	LocationName   string `json:"location_name"`
	LocationNumber string `json:"location_number,omitempty"`
	AccountNumber  string `json:"account_number,omitempty"`
	Company        string `json:"company,omitempty"`
}

// CostCenter is a node of the cost center tree.
type CostCenter struct {
	Name     string `json:"name"`
	Company  string `json:"company"`
	Parent   string `json:"parent_cost_center,omitempty"`
	IsGroup  bool   `json:"is_group"`
	Location string `json:"location,omitempty"`
}

// Account is a chart of accounts entry tagged with a location and cost center.
type Account struct {
	Name          string `json:"name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number,omitempty"`
	Company       string `json:"company"`
	Parent        string `json:"parent_account,omitempty"`
	IsGroup       bool   `json:"is_group"`
	Currency      string `json:"account_currency,omitempty"`
	Location      string `json:"location,omitempty"`
	CostCenter    string `json:"cost_center,omitempty"`
}

// Title is "<number> - <name>", or the name alone without a number.
func (a Account) Title() string {
	return formatTitle(a.AccountNumber, a.AccountName)
}

func formatTitle(number, name string) string {
	if number != "" {
		return number + " - " + name
	}
	return name
}

// Chart is a company's hierarchy snapshot.
type Chart struct {
	Company     Company
	Locations   []Location
	CostCenters []CostCenter
	Accounts    []Account
}

// Suffix is " - ABBR", or "" when the company has no abbreviation.
func (c Chart) Suffix() string {
	if c.Company.Abbr == "" {
		return ""
	}
	return " - " + c.Company.Abbr
}

func (c Chart) location(name string) (Location, bool) {
	for _, l := range c.Locations {
		if l.Name == name {
			return l, true
		}
	}
	return Location{}, false
}

func (c Chart) costCenter(name string) (CostCenter, bool) {
	for _, cc := range c.CostCenters {
		if cc.Name == name {
			return cc, true
		}
	}
	return CostCenter{}, false
}

func (c Chart) account(name string) (Account, bool) {
	for _, a := range c.Accounts {
		if a.Name == name {
			return a, true
		}
	}
	return Account{}, false
}

// accountByTitle resolves a synthetic "<number> - <name>" title, or a bare
// account name, to a real account.
func (c Chart) accountByTitle(title string) (Account, bool) {
	number, name, split := strings.Cut(title, " - ")
	if !split {
		number, name = "", title
	}
	for _, a := range c.Accounts {
		if a.AccountName != name {
			continue
		}
		if number != "" && a.AccountNumber != number {
			continue
		}
		return a, true
	}
	return Account{}, false
}

// stripNumberPrefix turns "101 - Head Office" into "Head Office". Labels
// without a numeric prefix are returned unchanged.
func stripNumberPrefix(label string) string {
	prefix, rest, ok := strings.Cut(label, " - ")
	if !ok {
		return label
	}
	prefix = strings.TrimSpace(prefix)
	digits := strings.ReplaceAll(prefix, "-", "")
	if digits == "" {
		return label
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return label
		}
	}
	return strings.TrimSpace(rest)
}

// TreeNode is one node of a lazily expanded tree.
type TreeNode struct {
	Value           string `json:"value"`
	Title           string `json:"title,omitempty"`
	Expandable      bool   `json:"expandable"`
	IsLedger        bool   `json:"is_ledger,omitempty"`
	HideAdd         bool   `json:"hide_add,omitempty"`
	AccountCurrency string `json:"account_currency,omitempty"`
}

// AddAccountInput creates an account below a tree node.
type AddAccountInput struct {
	Company         string `json:"company" validate:"required"`
	ParentAccount   string `json:"parent_account"`
	AccountName     string `json:"account_name" validate:"required,max=140"`
	AccountNumber   string `json:"account_number" validate:"omitempty,max=40"`
	IsGroup         bool   `json:"is_group"`
	AccountCurrency string `json:"account_currency" validate:"omitempty,len=3"`
}

// LocationInput creates a location.
type LocationInput struct {
	Company        string `json:"company" validate:"required"`
	LocationName   string `json:"location_name" validate:"required,max=140"`
	LocationNumber string `json:"location_number" validate:"omitempty,max=40"`
	AccountNumber  string `json:"account_number" validate:"omitempty,max=40"`
}

// JoinName builds a record name from its non-empty parts joined by " - ".
func JoinName(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " - ")
}
