package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/odyssey-erp/custom-accounting/internal/inquiry"
)

// WriteReportCSV serialises the account inquiry report using the column
// schema as header. Amounts are formatted for the given locale; blank rows
// become empty lines.
func WriteReportCSV(w io.Writer, report inquiry.Report, tag language.Tag) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	printer := message.NewPrinter(tag)

	header := make([]string, 0, len(report.Columns))
	for _, col := range report.Columns {
		header = append(header, col.Label)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range report.Rows {
		if row.Kind() == inquiry.KindBlank {
			if err := writer.Write(make([]string, len(report.Columns))); err != nil {
				return err
			}
			continue
		}
		rec := row.Record()
		line := make([]string, 0, len(report.Columns))
		for _, col := range report.Columns {
			line = append(line, field(printer, rec, col.FieldID))
		}
		if err := writer.Write(line); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func field(p *message.Printer, rec inquiry.Record, id string) string {
	switch id {
	case "name":
		if rec.Indent > 0 {
			return "  " + rec.Name
		}
		return rec.Name
	case "cost_center":
		return rec.CostCenter
	case "location":
		return rec.Location
	case "debit":
		return formatAmount(p, rec.Debit)
	case "credit":
		return formatAmount(p, rec.Credit)
	case "balance":
		return formatAmount(p, rec.Balance)
	case "variance":
		return formatAmount(p, rec.Variance)
	default:
		return ""
	}
}

// formatAmount renders value exactly, with at least two fraction digits and
// the printer's grouping and decimal separators.
func formatAmount(p *message.Printer, value *decimal.Decimal) string {
	if value == nil {
		return ""
	}
	places := int32(2)
	if _, frac, ok := strings.Cut(value.String(), "."); ok && int32(len(frac)) > places {
		places = int32(len(frac))
	}
	whole, frac, _ := strings.Cut(value.Abs().StringFixed(places), ".")

	var b strings.Builder
	if value.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(groupDigits(p, whole))
	b.WriteString(decimalSeparator(p))
	b.WriteString(frac)
	return b.String()
}

func groupDigits(p *message.Printer, digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return p.Sprint(number.Decimal(n))
	}
	sep := groupSeparator(p)
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func decimalSeparator(p *message.Printer) string {
	sep := stripDigits(p.Sprint(number.Decimal(1.5, number.MinFractionDigits(1), number.MaxFractionDigits(1))))
	if sep == "" {
		return "."
	}
	return sep
}

func groupSeparator(p *message.Printer) string {
	sep := stripDigits(p.Sprint(number.Decimal(1000000)))
	if r, size := utf8.DecodeRuneInString(sep); size > 0 {
		return string(r)
	}
	return ""
}

func stripDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, s)
}
