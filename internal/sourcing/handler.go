package sourcing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockflow-erp/stockflow/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers supplier directory routes; mounted under
// /inventory/products/{id}.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/suppliers", h.handleList)
	r.Post("/suppliers", h.handleLink)
	r.Patch("/suppliers/{supplierID}/default", h.handleSetDefault)
}

type linkRequest struct {
	SupplierID   int64 `json:"supplier_id" validate:"required,gt=0"`
	LeadTimeDays int   `json:"lead_time_days" validate:"required,gt=0"`
	IsDefault    bool  `json:"is_default"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	links, err := h.service.ListByProduct(r.Context(), productID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if links == nil {
		links = []ProductSupplier{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": links})
}

func (h *Handler) handleLink(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	var req linkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	link, err := h.service.Link(r.Context(), ProductSupplier{
		ProductID:    productID,
		SupplierID:   req.SupplierID,
		LeadTimeDays: req.LeadTimeDays,
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": link})
}

func (h *Handler) handleSetDefault(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	supplierID, err := strconv.ParseInt(chi.URLParam(r, "supplierID"), 10, 64)
	if err != nil || supplierID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid supplier id")
		return
	}
	if err := h.service.SetDefault(r.Context(), productID, supplierID); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Default supplier updated successfully")
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "product supplier link not found")
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("sourcing request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parseProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return 0, false
	}
	return id, true
}
