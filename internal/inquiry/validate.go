package inquiry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// checkStruct runs tag validation and renders the first violation.
func checkStruct(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrValidation, fe.Field())
	case "datetime":
		return fmt.Errorf("%w: %s must be a YYYY-MM-DD date", ErrValidation, fe.Field())
	case "oneof":
		return fmt.Errorf("%w: %s must be one of %s", ErrValidation, fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Errorf("%w: %s failed %s", ErrValidation, fe.Field(), fe.Tag())
	}
}

// run is a validated report request.
type run struct {
	filters Filters
	from    time.Time
	to      time.Time
}

// validateFilters checks the filters before any ledger query runs. The
// directory is consulted only when both cost center and location are set.
func validateFilters(ctx context.Context, f Filters, dir Directory) (run, error) {
	f.Company = strings.TrimSpace(f.Company)
	if err := checkStruct(f); err != nil {
		return run{}, err
	}
	from, err := ParseDate(f.FromDate)
	if err != nil {
		return run{}, fmt.Errorf("%w: from_date must be a YYYY-MM-DD date", ErrValidation)
	}
	to, err := ParseDate(f.ToDate)
	if err != nil {
		return run{}, fmt.Errorf("%w: to_date must be a YYYY-MM-DD date", ErrValidation)
	}
	if from.After(to) {
		return run{}, fmt.Errorf("%w: from_date cannot be after to_date", ErrValidation)
	}
	if f.GroupBy == "" {
		f.GroupBy = GroupByMonth
	}
	if f.CostCenter != "" && f.Location != "" {
		location, err := dir.CostCenterLocation(ctx, f.CostCenter)
		if err != nil {
			return run{}, dataSourceError("cost center location", err)
		}
		if location != f.Location {
			return run{}, fmt.Errorf("%w: cost center %q does not belong to location %q", ErrValidation, f.CostCenter, f.Location)
		}
	}
	return run{filters: f, from: from, to: to}, nil
}
