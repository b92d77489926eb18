package stock

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockflow-erp/stockflow/internal/platform/httpx"
	"github.com/stockflow-erp/stockflow/internal/shared"
)

// Handler wires HTTP endpoints for the stock ledger.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a stock handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers ledger routes; mounted under
// /inventory/products/{id}.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stocks", h.handleStockLevel)
	r.Patch("/stocks", h.handleAdjust)
}

type adjustRequest struct {
	WarehouseID int64  `json:"warehouse_id" validate:"required,gt=0"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
	Operation   string `json:"operation" validate:"required,oneof=add subtract"`
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}

	var req adjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	_, err = h.service.Adjust(r.Context(), AdjustInput{
		ProductID:   productID,
		WarehouseID: req.WarehouseID,
		Quantity:    req.Quantity,
		Operation:   Operation(req.Operation),
		ActorID:     shared.UserIDFromContext(r.Context()),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	httpx.Message(w, http.StatusOK, "Product stock level updated successfully")
}

func (h *Handler) handleStockLevel(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}

	var warehouseID int64
	if raw := r.URL.Query().Get("warehouse_id"); raw != "" {
		warehouseID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || warehouseID <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid warehouse id")
			return
		}
	}

	total, err := h.service.ProductStockLevel(r.Context(), productID, warehouseID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]int64{"total_quantity": total})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidOperation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("stock request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
