package purchaseorder

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockflow-erp/stockflow/internal/platform/httpx"
	"github.com/stockflow-erp/stockflow/internal/shared"
)

// Handler wires HTTP endpoints for the purchase order workflow.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleSearch)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Patch("/{id}/receive", h.handleReceive)
	r.Patch("/{id}/cancel", h.handleCancel)
	r.Get("/{id}/history", h.handleHistory)
}

type createRequest struct {
	ProductID         int64 `json:"product_id" validate:"required,gt=0"`
	RequestedQuantity int64 `json:"requested_quantity" validate:"gte=0"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	order, err := h.service.CreateFromProduct(r.Context(), req.ProductID, req.RequestedQuantity, shared.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": order})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": order})
}

func (h *Handler) handleReceive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	order, err := h.service.MarkReceived(r.Context(), id, shared.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": order})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	order, err := h.service.MarkCancelled(r.Context(), id, shared.UserIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": order})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	history, err := h.service.FindHistory(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": history})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	filters := SearchFilters{Page: 1, Limit: 20}

	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		status := Status(raw)
		if status != StatusPending && status != StatusCompleted && status != StatusCancelled {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid status filter")
			return
		}
		filters.Status = status
	}
	if raw := q.Get("product_id"); raw != "" {
		productID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || productID <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
			return
		}
		filters.ProductID = productID
	}
	if raw := q.Get("supplier_id"); raw != "" {
		supplierID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || supplierID <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid supplier id")
			return
		}
		filters.SupplierID = supplierID
	}
	if raw := q.Get("warehouse_id"); raw != "" {
		warehouseID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || warehouseID <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid warehouse id")
			return
		}
		filters.WarehouseID = warehouseID
	}
	// Time bounds arrive as unix seconds.
	if raw := q.Get("from_time"); raw != "" {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid from_time")
			return
		}
		filters.From = time.Unix(ts, 0).UTC()
	}
	if raw := q.Get("to_time"); raw != "" {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid to_time")
			return
		}
		filters.To = time.Unix(ts, 0).UTC()
	}
	if raw := q.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			filters.Page = page
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 && limit <= 100 {
			filters.Limit = limit
		}
	}

	orders, total, err := h.service.Search(r.Context(), filters)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if orders == nil {
		orders = []PurchaseOrder{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": orders, "total": total})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "Product not found")
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "Purchase order not found")
	case errors.Is(err, ErrNoDefaultSupplier):
		httpx.Problem(w, http.StatusBadRequest, "Replenishment Failed", "No default supplier found")
	case errors.Is(err, ErrNoWarehouse):
		httpx.Problem(w, http.StatusBadRequest, "Replenishment Failed", "No warehouse available to allocate the order")
	case errors.Is(err, ErrNoCapacity):
		httpx.Problem(w, http.StatusBadRequest, "Replenishment Failed", "No more capacity available across warehouses")
	case errors.Is(err, ErrInvalidState):
		httpx.Problem(w, http.StatusConflict, "Invalid State", "Purchase order is not pending")
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("purchase order request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid purchase order id")
		return 0, false
	}
	return id, true
}
