package warehouses

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockflow-erp/stockflow/internal/masterdata/shared"
	"github.com/stockflow-erp/stockflow/internal/platform/httpx"
)

// Handler wires warehouse CRUD endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

type warehouseRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int64  `json:"capacity"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, total, err := h.service.List(r.Context(), shared.ParseListFilters(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if items == nil {
		items = []Warehouse{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items, "total": total})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	warehouse, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": warehouse})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req warehouseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	warehouse, err := h.service.Create(r.Context(), Warehouse{Name: req.Name, Location: req.Location, Capacity: req.Capacity})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": warehouse})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req warehouseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.service.Update(r.Context(), id, Warehouse{Name: req.Name, Location: req.Location, Capacity: req.Capacity}); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Warehouse updated successfully")
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Warehouse deleted successfully")
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "warehouse not found")
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("warehouse request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid warehouse id")
		return 0, false
	}
	return id, true
}
