package accounting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCostCenterTree(t *testing.T) {
	chart := acmeChart()

	roots := CostCenterTree(chart, "", true)
	require.Equal(t, []TreeNode{{Value: "Branch", Expandable: true}, {Value: "HQ", Expandable: true}}, roots)

	// Remote's parent lives at HQ, so it surfaces directly under Branch.
	branch := CostCenterTree(chart, "Branch", false)
	require.Equal(t, []TreeNode{{Value: "Remote"}, {Value: "Store", Expandable: true}}, branch)

	require.Equal(t, []string{"Main"}, values(CostCenterTree(chart, "HQ", false)))
	require.Equal(t, []string{"Main Ops", "Remote"}, values(CostCenterTree(chart, "Main", false)))
	require.Empty(t, CostCenterTree(chart, "Kiosk", false))
	require.Empty(t, CostCenterTree(chart, "Nowhere", false))
}

func TestAccountTreeWithoutAbbreviation(t *testing.T) {
	chart := acmeChart()

	require.Equal(t, []TreeNode{{Value: "ACME", Title: "ACME", Expandable: true}}, AccountTree(chart, ""))

	locations := AccountTree(chart, "ACME")
	require.Equal(t, []TreeNode{
		{Value: "2000 - Branch", Title: "2000 - Branch", Expandable: true, HideAdd: true},
		{Value: "1000 - HQ", Title: "1000 - HQ", Expandable: true, HideAdd: true},
	}, locations)

	require.Equal(t, []TreeNode{{Value: "Main", Title: "Main", Expandable: true}}, AccountTree(chart, "1000 - HQ"))

	main := AccountTree(chart, "Main")
	require.Equal(t, []TreeNode{{
		Value: "1100 - Cash", Title: "1100 - Cash", Expandable: true, IsLedger: true, AccountCurrency: "USD",
	}}, main)

	children := AccountTree(chart, "1100 - Cash")
	require.Equal(t, []string{"1105 - Bank", "1110 - Petty Cash", "Misc"}, values(children))
	require.False(t, children[0].Expandable)
	require.True(t, children[0].IsLedger)

	require.Equal(t, []string{"4000 - Sales"}, values(AccountTree(chart, "Store")))
}

func TestAccountTreeLocationWithoutAccounts(t *testing.T) {
	chart := acmeChart()
	require.Empty(t, AccountTree(chart, "Warehouse"))
	require.Empty(t, AccountTree(chart, "Unknown"))
}

func TestAccountTreeWithAbbreviation(t *testing.T) {
	chart := globexChart()

	require.Equal(t, []string{"1000 - 101 - HQ - GX"}, values(AccountTree(chart, "Globex")))
	require.Equal(t, []string{"Main - GX"}, values(AccountTree(chart, "1000 - 101 - HQ - GX")))

	synthetic := AccountTree(chart, "Main - GX")
	require.Equal(t, []TreeNode{{Value: "1100 - Cash", Title: "1100 - Cash", Expandable: true, IsLedger: true}}, synthetic)

	resolved := AccountTree(chart, "1100 - Cash")
	require.Equal(t, []TreeNode{{
		Value: "1100 - Cash - GX", Title: "1100 - Cash - GX", Expandable: true, IsLedger: true, AccountCurrency: "EUR",
	}}, resolved)

	require.Equal(t, []TreeNode{{
		Value: "1110 - Petty Cash", Title: "1110 - Petty Cash", Expandable: true, IsLedger: true,
	}}, AccountTree(chart, "1100 - Cash - GX"))

	require.Empty(t, AccountTree(chart, "9999 - Ghost"))
}

func TestStripNumberPrefix(t *testing.T) {
	cases := map[string]string{
		"101 - Head Office":    "Head Office",
		"1000 - 101 - HQ - GX": "101 - HQ - GX",
		"12-34 - Dock":         "Dock",
		"Main - GX":            "Main - GX",
		"Head Office":          "Head Office",
		" - Blank":             " - Blank",
	}
	for in, want := range cases {
		require.Equal(t, want, stripNumberPrefix(in), in)
	}
}

func TestJoinName(t *testing.T) {
	require.Equal(t, "101 - Head Office - AC", JoinName("101", "Head Office", "AC"))
	require.Equal(t, "Head Office", JoinName("", " Head Office ", ""))
}
