package suppliers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockflow-erp/stockflow/internal/masterdata/shared"
	"github.com/stockflow-erp/stockflow/internal/platform/httpx"
)

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

type supplierRequest struct {
	Name               string `json:"name"`
	ContactInformation string `json:"contact_information"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, total, err := h.service.List(r.Context(), shared.ParseListFilters(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if items == nil {
		items = []Supplier{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items, "total": total})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	supplier, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": supplier})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	supplier, err := h.service.Create(r.Context(), Supplier{
		Name:               req.Name,
		ContactInformation: req.ContactInformation,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": supplier})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req supplierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	err := h.service.Update(r.Context(), id, Supplier{
		Name:               req.Name,
		ContactInformation: req.ContactInformation,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Supplier updated successfully")
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
	httpx.Message(w, http.StatusOK, "Supplier deleted successfully")
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "supplier not found")
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("supplier request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid supplier id")
		return 0, false
	}
	return id, true
}
