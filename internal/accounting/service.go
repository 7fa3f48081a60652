package accounting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Repository loads hierarchy snapshots and opens write transactions.
type Repository interface {
	Chart(ctx context.Context, company string) (Chart, error)
	Companies(ctx context.Context) ([]Company, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes transactional writes.
type TxRepository interface {
	InsertAccount(ctx context.Context, a Account) error
	InsertLocation(ctx context.Context, l Location) error
}

// Service coordinates hierarchy reads and writes.
type Service struct {
	repo     Repository
	cache    *TreeCache
	logger   *slog.Logger
	validate *validator.Validate
}

// NewService constructs the hierarchy service. cache may be nil.
func NewService(repo Repository, cache *TreeCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" {
			return field.Name
		}
		return name
	})
	return &Service{repo: repo, cache: cache, logger: logger, validate: v}
}

func (s *Service) check(input any) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Tag() == "required" {
			return fmt.Errorf("%w: %s is required", ErrValidation, fe.Field())
		}
		return fmt.Errorf("%w: %s failed %s=%s", ErrValidation, fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func (s *Service) chart(ctx context.Context, company string) (Chart, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return Chart{}, fmt.Errorf("%w: company is required", ErrValidation)
	}
	chart, err := s.repo.Chart(ctx, company)
	if err != nil {
		return Chart{}, fmt.Errorf("accounting: load chart %s: %w", company, err)
	}
	return chart, nil
}

// CostCenterTree returns the children of parent in the cost center tree.
func (s *Service) CostCenterTree(ctx context.Context, company, parent string, isRoot bool) ([]TreeNode, error) {
	if strings.TrimSpace(company) == "" {
		return nil, fmt.Errorf("%w: company is required", ErrValidation)
	}
	return s.cache.Nodes(ctx, func(ctx context.Context) ([]TreeNode, error) {
		chart, err := s.chart(ctx, company)
		if err != nil {
			return nil, err
		}
		return CostCenterTree(chart, parent, isRoot), nil
	}, "cost_centers", company, parent, strconv.FormatBool(isRoot))
}

// AccountTree returns the children of parent in the account tree.
func (s *Service) AccountTree(ctx context.Context, company, parent string) ([]TreeNode, error) {
	if strings.TrimSpace(company) == "" {
		return nil, fmt.Errorf("%w: company is required", ErrValidation)
	}
	return s.cache.Nodes(ctx, func(ctx context.Context) ([]TreeNode, error) {
		chart, err := s.chart(ctx, company)
		if err != nil {
			return nil, err
		}
		return AccountTree(chart, parent), nil
	}, "accounts", company, parent)
}

type parentKind int

const (
	parentNone parentKind = iota
	parentAccount
	parentCostCenter
	parentLocation
)

type parentRef struct {
	kind    parentKind
	name    string
	account Account
}

// resolveParent interprets the node an account is added under: a real
// account, a cost center or location label (optionally number-prefixed), or
// a synthetic account title.
func resolveParent(chart Chart, parent string) (parentRef, error) {
	if parent == "" {
		return parentRef{kind: parentNone}, nil
	}
	if acc, ok := chart.account(parent); ok {
		return parentRef{kind: parentAccount, name: acc.Name, account: acc}, nil
	}
	for _, candidate := range []string{stripNumberPrefix(parent), parent} {
		if taggedWith(chart, func(a Account) string { return a.CostCenter }, candidate) {
			return parentRef{kind: parentCostCenter, name: candidate}, nil
		}
		if taggedWith(chart, func(a Account) string { return a.Location }, candidate) {
			return parentRef{kind: parentLocation, name: candidate}, nil
		}
	}
	if acc, ok := chart.accountByTitle(parent); ok {
		return parentRef{kind: parentAccount, name: acc.Name, account: acc}, nil
	}
	return parentRef{}, fmt.Errorf("%w: no account found for %q in company %q", ErrNotFound, parent, chart.Company.Name)
}

func taggedWith(chart Chart, field func(Account) string, value string) bool {
	for _, a := range chart.Accounts {
		if field(a) == value {
			return true
		}
	}
	return false
}

// AddAccount creates an account below the given tree node. Accounts added
// under a cost center or location have no parent account and carry that
// node as their tag.
func (s *Service) AddAccount(ctx context.Context, in AddAccountInput) (Account, error) {
	in.Company = strings.TrimSpace(in.Company)
	in.AccountName = strings.TrimSpace(in.AccountName)
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	in.ParentAccount = strings.TrimSpace(in.ParentAccount)
	if err := s.check(in); err != nil {
		return Account{}, err
	}
	chart, err := s.chart(ctx, in.Company)
	if err != nil {
		return Account{}, err
	}
	ref, err := resolveParent(chart, in.ParentAccount)
	if err != nil {
		return Account{}, err
	}

	acc := Account{
		Name:          JoinName(in.AccountNumber, in.AccountName, chart.Company.Abbr),
		AccountName:   in.AccountName,
		AccountNumber: in.AccountNumber,
		Company:       in.Company,
		IsGroup:       in.IsGroup,
		Currency:      strings.ToUpper(in.AccountCurrency),
	}
	switch ref.kind {
	case parentAccount:
		if !ref.account.IsGroup {
			return Account{}, fmt.Errorf("%w: parent account %q is not a group", ErrValidation, ref.name)
		}
		acc.Parent = ref.name
		acc.Location = ref.account.Location
		acc.CostCenter = ref.account.CostCenter
		if acc.Currency == "" {
			acc.Currency = ref.account.Currency
		}
	case parentCostCenter:
		acc.CostCenter = ref.name
	case parentLocation:
		acc.Location = ref.name
	}
	if _, exists := chart.account(acc.Name); exists {
		return Account{}, fmt.Errorf("%w: account %q", ErrDuplicate, acc.Name)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.InsertAccount(ctx, acc)
	})
	if err != nil {
		return Account{}, fmt.Errorf("accounting: insert account %q: %w", acc.Name, err)
	}
	s.invalidate(ctx)
	s.logger.Info("account created",
		slog.String("company", acc.Company),
		slog.String("account", acc.Name),
		slog.String("parent", acc.Parent),
		slog.String("cost_center", acc.CostCenter),
		slog.String("location", acc.Location),
	)
	return acc, nil
}

// LocationName is the generated record name of a location:
// "<number> - <name> - <company abbr>" with empty parts dropped.
func LocationName(in LocationInput, companyAbbr string) string {
	return JoinName(in.LocationNumber, in.LocationName, companyAbbr)
}

// CreateLocation names and stores a location.
func (s *Service) CreateLocation(ctx context.Context, in LocationInput) (Location, error) {
	in.Company = strings.TrimSpace(in.Company)
	in.LocationName = strings.TrimSpace(in.LocationName)
	if err := s.check(in); err != nil {
		return Location{}, err
	}
	chart, err := s.chart(ctx, in.Company)
	if err != nil {
		return Location{}, err
	}
	loc := Location{
		Name:           LocationName(in, chart.Company.Abbr),
		LocationName:   in.LocationName,
		LocationNumber: strings.TrimSpace(in.LocationNumber),
		AccountNumber:  strings.TrimSpace(in.AccountNumber),
		Company:        in.Company,
	}
	if _, exists := chart.location(loc.Name); exists {
		return Location{}, fmt.Errorf("%w: location %q", ErrDuplicate, loc.Name)
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.InsertLocation(ctx, loc)
	})
	if err != nil {
		return Location{}, fmt.Errorf("accounting: insert location %q: %w", loc.Name, err)
	}
	s.invalidate(ctx)
	return loc, nil
}

// Locations lists the company's locations, or only the cost center's own
// location when one is given.
func (s *Service) Locations(ctx context.Context, company, costCenter string) ([]Location, error) {
	chart, err := s.chart(ctx, company)
	if err != nil {
		return nil, err
	}
	costCenter = strings.TrimSpace(costCenter)
	if costCenter == "" {
		return chart.Locations, nil
	}
	cc, ok := chart.costCenter(costCenter)
	if !ok {
		return []Location{}, nil
	}
	loc, ok := chart.location(cc.Location)
	if !ok {
		return []Location{}, nil
	}
	return []Location{loc}, nil
}

// Companies lists every company.
func (s *Service) Companies(ctx context.Context) ([]Company, error) {
	return s.repo.Companies(ctx)
}

// WarmTrees fills the cache with the top levels of both trees for company and
// reports how many nodes each tree produced.
func (s *Service) WarmTrees(ctx context.Context, company string) (costCenters, accounts int, err error) {
	roots, err := s.CostCenterTree(ctx, company, "", true)
	if err != nil {
		return 0, 0, err
	}
	costCenters = len(roots)
	for _, root := range roots {
		nodes, err := s.CostCenterTree(ctx, company, root.Value, false)
		if err != nil {
			return 0, 0, err
		}
		costCenters += len(nodes)
	}
	for _, parent := range []string{"", company} {
		nodes, err := s.AccountTree(ctx, company, parent)
		if err != nil {
			return 0, 0, err
		}
		accounts += len(nodes)
	}
	return costCenters, accounts, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("tree cache bump failed", slog.Any("error", err))
	}
}
