package accounting

import (
	"sort"
	"strings"
)

// CostCenterTree returns the children of parent in the cost center tree.
// The root level lists locations; a location lists cost centers whose parent
// lives elsewhere; a cost center lists its children.
func CostCenterTree(chart Chart, parent string, isRoot bool) []TreeNode {
	if isRoot {
		seen := make(map[string]struct{})
		var locations []string
		for _, cc := range chart.CostCenters {
			if cc.Location == "" {
				continue
			}
			if _, ok := seen[cc.Location]; ok {
				continue
			}
			seen[cc.Location] = struct{}{}
			locations = append(locations, cc.Location)
		}
		sort.Strings(locations)
		nodes := make([]TreeNode, 0, len(locations))
		for _, loc := range locations {
			nodes = append(nodes, TreeNode{Value: loc, Expandable: true})
		}
		return nodes
	}

	byName := make(map[string]CostCenter, len(chart.CostCenters))
	isLocation := false
	for _, cc := range chart.CostCenters {
		byName[cc.Name] = cc
		if cc.Location != "" && cc.Location == parent {
			isLocation = true
		}
	}

	var picked []CostCenter
	switch {
	case isLocation:
		for _, cc := range chart.CostCenters {
			if cc.Location != parent {
				continue
			}
			up, ok := byName[cc.Parent]
			if cc.Parent == "" || !ok || up.Location != parent {
				picked = append(picked, cc)
			}
		}
	case hasKey(byName, parent):
		for _, cc := range chart.CostCenters {
			if cc.Parent == parent {
				picked = append(picked, cc)
			}
		}
	default:
		return []TreeNode{}
	}

	sort.SliceStable(picked, func(i, j int) bool { return picked[i].Name < picked[j].Name })
	nodes := make([]TreeNode, 0, len(picked))
	for _, cc := range picked {
		nodes = append(nodes, TreeNode{Value: cc.Name, Expandable: cc.IsGroup})
	}
	return nodes
}

// AccountTree returns the children of parent in the Company → Location →
// Cost Center → Account tree. Titles carry account numbers; when the
// company has an abbreviation, account nodes are first shown under their
// synthetic title and expand to the real account.
func AccountTree(chart Chart, parent string) []TreeNode {
	company := chart.Company.Name
	suffix := chart.Suffix()

	if parent == "" {
		return []TreeNode{{Value: company, Title: company, Expandable: true}}
	}

	if parent == company {
		return locationNodes(chart)
	}

	if loc := stripNumberPrefix(parent); hasLocation(chart, loc) {
		if nodes := locationCostCenterNodes(chart, loc); len(nodes) > 0 {
			return nodes
		}
	}

	if suffix != "" && !strings.HasSuffix(parent, suffix) {
		acc, ok := chart.accountByTitle(parent)
		if !ok {
			return []TreeNode{}
		}
		return []TreeNode{{
			Value:           acc.Name,
			Title:           acc.Title() + suffix,
			Expandable:      acc.IsGroup,
			IsLedger:        true,
			AccountCurrency: acc.Currency,
		}}
	}

	var children []Account
	for _, a := range chart.Accounts {
		if a.Parent == parent {
			children = append(children, a)
		}
	}
	if len(children) > 0 {
		return accountNodes(sortByNumber(children), suffix)
	}

	cc := stripNumberPrefix(parent)
	if _, ok := chart.costCenter(cc); !ok {
		return []TreeNode{}
	}
	var inCenter []Account
	names := make(map[string]struct{})
	for _, a := range chart.Accounts {
		if a.CostCenter == cc {
			inCenter = append(inCenter, a)
			names[a.Name] = struct{}{}
		}
	}
	var top []Account
	for _, a := range inCenter {
		if _, nested := names[a.Parent]; a.Parent == "" || !nested {
			top = append(top, a)
		}
	}
	return accountNodes(sortByNumber(top), suffix)
}

func locationNodes(chart Chart) []TreeNode {
	used := make(map[string]struct{})
	for _, a := range chart.Accounts {
		if a.Location != "" {
			used[a.Location] = struct{}{}
		}
	}
	var locs []Location
	for _, l := range chart.Locations {
		if _, ok := used[l.Name]; ok {
			locs = append(locs, l)
		}
	}
	sort.SliceStable(locs, func(i, j int) bool { return locs[i].Name < locs[j].Name })
	nodes := make([]TreeNode, 0, len(locs))
	for _, l := range locs {
		label := formatTitle(l.AccountNumber, l.Name)
		nodes = append(nodes, TreeNode{Value: label, Title: label, Expandable: true, HideAdd: true})
	}
	return nodes
}

func locationCostCenterNodes(chart Chart, location string) []TreeNode {
	used := make(map[string]struct{})
	for _, a := range chart.Accounts {
		if a.Location == location && a.CostCenter != "" {
			used[a.CostCenter] = struct{}{}
		}
	}
	var names []string
	for _, cc := range chart.CostCenters {
		if _, ok := used[cc.Name]; ok {
			names = append(names, cc.Name)
		}
	}
	sort.Strings(names)
	nodes := make([]TreeNode, 0, len(names))
	for _, name := range names {
		nodes = append(nodes, TreeNode{Value: name, Title: name, Expandable: true})
	}
	return nodes
}

func accountNodes(accounts []Account, suffix string) []TreeNode {
	nodes := make([]TreeNode, 0, len(accounts))
	for _, a := range accounts {
		node := TreeNode{Title: a.Title(), IsLedger: true}
		if suffix != "" {
			node.Value = a.Title()
			node.Expandable = true
		} else {
			node.Value = a.Name
			node.Expandable = a.IsGroup
			node.AccountCurrency = a.Currency
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// sortByNumber orders accounts by account number, unnumbered last.
func sortByNumber(accounts []Account) []Account {
	sort.SliceStable(accounts, func(i, j int) bool {
		a, b := accounts[i].AccountNumber, accounts[j].AccountNumber
		switch {
		case a == b:
			return accounts[i].Name < accounts[j].Name
		case a == "":
			return false
		case b == "":
			return true
		default:
			return a < b
		}
	})
	return accounts
}

func hasLocation(chart Chart, name string) bool {
	_, ok := chart.location(name)
	return ok
}

func hasKey[V any](m map[string]V, key string) bool {
	_, ok := m[key]
	return ok
}
