package purchaseorder

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type searchResponse struct {
	Data  []PurchaseOrder `json:"data"`
	Total int             `json:"total"`
}

func newSearchFixture(t *testing.T) (*Handler, PurchaseOrder, PurchaseOrder) {
	t.Helper()
	repo := newMemoryRepo()
	svc := newTestService(repo, nil, nil, nil, nil)
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)

	ctx := context.Background()
	recent, err := repo.ReplacePending(ctx, PurchaseOrder{
		ProductID: 1, SupplierID: 5, WarehouseID: 3, QuantityOrdered: 20,
		OrderedAt: fixedNow(),
	})
	require.NoError(t, err)
	older, err := repo.ReplacePending(ctx, PurchaseOrder{
		ProductID: 2, SupplierID: 6, WarehouseID: 4, QuantityOrdered: 10,
		OrderedAt: fixedNow().Add(-48 * time.Hour),
	})
	require.NoError(t, err)
	return handler, recent, older
}

func searchOrders(t *testing.T, handler *Handler, query string) searchResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/purchase-orders?"+query, nil)
	rr := httptest.NewRecorder()
	handler.handleSearch(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp searchResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestSearchFiltersBySupplier(t *testing.T) {
	handler, _, older := newSearchFixture(t)

	resp := searchOrders(t, handler, "supplier_id=6")
	require.Equal(t, 1, resp.Total)
	require.Equal(t, older.ID, resp.Data[0].ID)
}

func TestSearchFiltersByWarehouse(t *testing.T) {
	handler, recent, _ := newSearchFixture(t)

	resp := searchOrders(t, handler, "warehouse_id=3")
	require.Equal(t, 1, resp.Total)
	require.Equal(t, recent.ID, resp.Data[0].ID)
}

func TestSearchFiltersByTimeRange(t *testing.T) {
	handler, recent, older := newSearchFixture(t)

	from := strconv.FormatInt(fixedNow().Add(-time.Hour).Unix(), 10)
	resp := searchOrders(t, handler, "from_time="+from)
	require.Equal(t, 1, resp.Total)
	require.Equal(t, recent.ID, resp.Data[0].ID)

	to := strconv.FormatInt(fixedNow().Add(-24*time.Hour).Unix(), 10)
	resp = searchOrders(t, handler, "to_time="+to)
	require.Equal(t, 1, resp.Total)
	require.Equal(t, older.ID, resp.Data[0].ID)
}

func TestSearchRejectsMalformedTimeBound(t *testing.T) {
	handler, _, _ := newSearchFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/purchase-orders?from_time=yesterday", nil)
	rr := httptest.NewRecorder()
	handler.handleSearch(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
