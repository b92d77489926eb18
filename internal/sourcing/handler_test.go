package sourcing

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (chi.Router, *memoryRepo) {
	repo := &memoryRepo{}
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(repo))
	r := chi.NewRouter()
	r.Route("/inventory/products/{id}", handler.MountRoutes)
	return r, repo
}

func postLink(t *testing.T, router chi.Router, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/inventory/products/1/suppliers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandleLinkCreatesSupplierLink(t *testing.T) {
	router, repo := newTestRouter()

	rr := postLink(t, router, `{"supplier_id": 5, "lead_time_days": 7, "is_default": true}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	links, err := repo.ListByProduct(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, 7, links[0].LeadTimeDays)
}

func TestHandleLinkRejectsZeroLeadTime(t *testing.T) {
	router, _ := newTestRouter()

	rr := postLink(t, router, `{"supplier_id": 5, "lead_time_days": 0}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleLinkRejectsMissingSupplier(t *testing.T) {
	router, _ := newTestRouter()

	rr := postLink(t, router, `{"lead_time_days": 7}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
