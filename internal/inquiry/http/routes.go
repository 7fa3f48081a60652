package inquiryhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the report endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/reports/account-inquiry", h.handleReport)
	r.Get("/reports/account-inquiry/locations", h.handleLocations)
	r.Get("/reports/general-ledger", h.handleGeneralLedger)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/reports/account-inquiry/export.csv", h.handleCSV)
	})
}
