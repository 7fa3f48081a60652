package inquiry

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposePredicatesEveryCombination(t *testing.T) {
	span := Span{From: day(t, "2024-01-01"), To: day(t, "2024-01-31")}
	leaves := []string{"Store - AC", "Kiosk - AC"}
	dimensions := []string{"none", "cost_center", "location", "both"}

	for _, account := range []bool{false, true} {
		for _, dim := range dimensions {
			for _, currency := range []bool{false, true} {
				for _, voucher := range []bool{false, true} {
					name := fmt.Sprintf("account=%t/%s/currency=%t/voucher=%t", account, dim, currency, voucher)
					t.Run(name, func(t *testing.T) {
						f := Filters{Company: "ACME"}
						if account {
							f.Account = "1100 - Cash"
						}
						if dim == "cost_center" || dim == "both" {
							f.CostCenter = "Store - AC"
						}
						if dim == "location" || dim == "both" {
							f.Location = "Branch"
						}
						if currency {
							f.Currency = "USD"
						}
						if voucher {
							f.VoucherType = "Journal Entry"
						}

						p := ComposePredicates(ResolveScope(f, leaves), span)

						wantClauses := []string{"company = $1", "posting_date BETWEEN $2 AND $3"}
						wantArgs := []any{"ACME", span.From, span.To}
						add := func(clause string, arg any) {
							wantArgs = append(wantArgs, arg)
							wantClauses = append(wantClauses, fmt.Sprintf(clause, len(wantArgs)))
						}
						if account {
							add("account = $%d", "1100 - Cash")
						}
						switch dim {
						case "cost_center", "both":
							add("cost_center = $%d", "Store - AC")
						case "location":
							add("cost_center = ANY($%d)", leaves)
							add("location = $%d", "Branch")
						}
						if currency {
							add("account_currency = $%d", "USD")
						}
						if voucher {
							add("voucher_type = $%d", "Journal Entry")
						}

						assert.Equal(t, strings.Join(wantClauses, " AND "), p.SQL())
						require.Equal(t, wantArgs, p.Args())
					})
				}
			}
		}
	}
}

func TestResolveScopeCopiesLeaves(t *testing.T) {
	leaves := []string{"Store - AC"}
	scope := ResolveScope(Filters{Company: "ACME", Location: "Branch"}, leaves)
	leaves[0] = "mutated"
	assert.Equal(t, []string{"Store - AC"}, scope.LeafCenters)
	assert.True(t, scope.ByLocation())

	scope = ResolveScope(Filters{Company: "ACME", Location: "Branch", CostCenter: "Store - AC"}, leaves)
	assert.False(t, scope.ByLocation())
	assert.Empty(t, scope.Location)
	assert.Nil(t, scope.LeafCenters)
}

func TestInBindsEmptySlice(t *testing.T) {
	p := (&Predicates{}).In("cost_center", nil)
	assert.Equal(t, "cost_center = ANY($1)", p.SQL())
	assert.Equal(t, []any{[]string{}}, p.Args())
	assert.Equal(t, "TRUE", (&Predicates{}).SQL())
}
