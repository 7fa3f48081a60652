package accounting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/custom-accounting/internal/platform/httpx"
)

// HierarchyService is the service surface used by the HTTP handler.
type HierarchyService interface {
	CostCenterTree(ctx context.Context, company, parent string, isRoot bool) ([]TreeNode, error)
	AccountTree(ctx context.Context, company, parent string) ([]TreeNode, error)
	AddAccount(ctx context.Context, in AddAccountInput) (Account, error)
	CreateLocation(ctx context.Context, in LocationInput) (Location, error)
	Locations(ctx context.Context, company, costCenter string) ([]Location, error)
	Search(ctx context.Context, company, query string, kind SearchKind) ([]SearchHit, error)
}

// Handler wires the account and cost center hierarchy endpoints.
type Handler struct {
	logger  *slog.Logger
	service HierarchyService
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service HierarchyService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers HTTP routes for the hierarchy module.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Route("/accounting", func(r chi.Router) {
		r.Get("/tree/cost-centers", h.handleCostCenterTree)
		r.Get("/tree/accounts", h.handleAccountTree)
		r.Post("/accounts", h.handleAddAccount)
		r.Get("/locations", h.handleLocations)
		r.Post("/locations", h.handleCreateLocation)
		r.Get("/search", h.handleSearch)
	})
}

func (h *Handler) handleCostCenterTree(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	isRoot := false
	if raw := strings.TrimSpace(values.Get("is_root")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: is_root must be a boolean", ErrValidation))
			return
		}
		isRoot = v
	}
	nodes, err := h.service.CostCenterTree(r.Context(), values.Get("company"), values.Get("parent"), isRoot)
	if err != nil {
		h.respondError(w, "cost center tree", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"nodes": nonNil(nodes)})
}

func (h *Handler) handleAccountTree(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	nodes, err := h.service.AccountTree(r.Context(), values.Get("company"), values.Get("parent"))
	if err != nil {
		h.respondError(w, "account tree", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"nodes": nonNil(nodes)})
}

func (h *Handler) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	var in AddAccountInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", ErrValidation))
		return
	}
	acc, err := h.service.AddAccount(r.Context(), in)
	if err != nil {
		h.respondError(w, "add account", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, acc)
}

func (h *Handler) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var in LocationInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid request body", ErrValidation))
		return
	}
	loc, err := h.service.CreateLocation(r.Context(), in)
	if err != nil {
		h.respondError(w, "create location", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, loc)
}

func (h *Handler) handleLocations(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	locations, err := h.service.Locations(r.Context(), values.Get("company"), values.Get("cost_center"))
	if err != nil {
		h.respondError(w, "locations", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"locations": nonNil(locations)})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	hits, err := h.service.Search(r.Context(), values.Get("company"), values.Get("q"), SearchKind(values.Get("kind")))
	if err != nil {
		h.respondError(w, "search", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"results": nonNil(hits)})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, ErrValidation) && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrDuplicate) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
