package inquiryhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/odyssey-erp/custom-accounting/internal/inquiry"
	"github.com/odyssey-erp/custom-accounting/internal/inquiry/export"
	"github.com/odyssey-erp/custom-accounting/internal/platform/httpx"
)

const requestTimeout = 20 * time.Second

var (
	supportedLocales = []language.Tag{language.English, language.German, language.French, language.Indonesian}
	csvLocales       = language.NewMatcher(supportedLocales)
)

// Reporter runs account inquiry reports.
type Reporter interface {
	Execute(ctx context.Context, filters inquiry.Filters) (inquiry.Report, error)
}

// LedgerBrowser serves drill-down and picker lookups.
type LedgerBrowser interface {
	GeneralLedger(ctx context.Context, q inquiry.EntryQuery) ([]inquiry.Entry, error)
	Locations(ctx context.Context, company, costCenter string) ([]inquiry.LocationOption, error)
}

// Handler exposes the account inquiry report over HTTP.
type Handler struct {
	logger   *slog.Logger
	reporter Reporter
	browser  LedgerBrowser
	csvPool  sync.Pool
}

// NewHandler constructs the inquiry HTTP handler.
func NewHandler(logger *slog.Logger, reporter Reporter, browser LedgerBrowser) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{logger: logger, reporter: reporter, browser: browser}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.reporter.Execute(ctx, filters)
	if err != nil {
		h.respondError(w, "account inquiry", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.reporter.Execute(ctx, filters)
	if err != nil {
		h.respondError(w, "account inquiry csv", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteReportCSV(buf, report, csvLocale(r)); err != nil {
		h.respondError(w, "write inquiry csv", err)
		return
	}

	filename := fmt.Sprintf("account-inquiry-%s-%s.csv", filters.FromDate, filters.ToDate)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("stream csv", slog.Any("error", err))
	}
}

func (h *Handler) handleGeneralLedger(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := inquiry.EntryQuery{
		Company:    strings.TrimSpace(values.Get("company")),
		Account:    strings.TrimSpace(values.Get("account")),
		FromDate:   strings.TrimSpace(values.Get("from_date")),
		ToDate:     strings.TrimSpace(values.Get("to_date")),
		CostCenter: strings.TrimSpace(values.Get("cost_center")),
		Location:   strings.TrimSpace(values.Get("location")),
		Currency:   strings.TrimSpace(values.Get("currency")),
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: limit must be an integer", inquiry.ErrValidation))
			return
		}
		q.Limit = limit
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	entries, err := h.browser.GeneralLedger(ctx, q)
	if err != nil {
		h.respondError(w, "general ledger", err)
		return
	}
	if entries == nil {
		entries = []inquiry.Entry{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) handleLocations(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	options, err := h.browser.Locations(r.Context(), values.Get("company"), values.Get("cost_center"))
	if err != nil {
		h.respondError(w, "location options", err)
		return
	}
	if options == nil {
		options = []inquiry.LocationOption{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"locations": options})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, inquiry.ErrValidation):
	case errors.Is(err, inquiry.ErrDataSource):
		h.logger.Error(op, slog.String("kind", "data_source"), slog.Any("error", err))
	default:
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func parseFilters(values url.Values) (inquiry.Filters, error) {
	f := inquiry.Filters{
		Company:      strings.TrimSpace(values.Get("company")),
		FromDate:     strings.TrimSpace(values.Get("from_date")),
		ToDate:       strings.TrimSpace(values.Get("to_date")),
		GroupBy:      inquiry.GroupBy(strings.TrimSpace(values.Get("group_by"))),
		Account:      strings.TrimSpace(values.Get("account")),
		CostCenter:   strings.TrimSpace(values.Get("cost_center")),
		Location:     strings.TrimSpace(values.Get("location")),
		Currency:     strings.TrimSpace(values.Get("currency")),
		VoucherType:  strings.TrimSpace(values.Get("voucher_type")),
		CurrencyType: inquiry.CurrencyType(strings.TrimSpace(values.Get("currency_type"))),
		Factor:       inquiry.Factor(strings.TrimSpace(values.Get("factor"))),
	}
	var err error
	if f.ShowVariance, err = parseFlag(values, "show_variance"); err != nil {
		return inquiry.Filters{}, err
	}
	if f.ShowSummary, err = parseFlag(values, "show_summary"); err != nil {
		return inquiry.Filters{}, err
	}
	return f, nil
}

func parseFlag(values url.Values, key string) (bool, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", inquiry.ErrValidation, key)
	}
	return v, nil
}

func csvLocale(r *http.Request) language.Tag {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			_, idx, _ := csvLocales.Match(tag)
			return supportedLocales[idx]
		}
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := csvLocales.Match(tags...)
	return supportedLocales[idx]
}
