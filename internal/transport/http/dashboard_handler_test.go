package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendtracker/internal/analytics"
	"trendtracker/internal/services"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testRouter(svc *services.DashboardService) chi.Router {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewDashboardHandler(svc, nil).RegisterRoutes(r)
		NewExportHandler(svc, nil).RegisterRoutes(r)
	})
	return r
}

func loadedService(t *testing.T) *services.DashboardService {
	t.Helper()
	svc := services.NewDashboardService(nil)
	svc.SetBatch([]analytics.Transaction{
		{OrderID: "O1", CustomerID: "A", OrderDate: day(2023, 1, 5), ProductName: "Jacket", Quantity: 1, TotalPrice: 200, Gender: "Female", AgeGroup: "Youth", State: "NSW"},
		{OrderID: "O2", CustomerID: "B", OrderDate: day(2023, 1, 20), ProductName: "Shirt", Quantity: 2, TotalPrice: 80, Gender: "Male", AgeGroup: "Adults", State: "VIC"},
		{OrderID: "O3", CustomerID: "A", OrderDate: day(2023, 2, 14), ProductName: "Scarf", Quantity: 1, TotalPrice: 40, Gender: "Female", AgeGroup: "Youth", State: "NSW"},
	})
	return svc
}

func doGet(t *testing.T, router chi.Router, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// TestGetSummary tests the KPI endpoint happy path.
func TestGetSummary(t *testing.T) {
	router := testRouter(loadedService(t))

	rec := doGet(t, router, "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		TotalOrders     int     `json:"total_orders"`
		UniqueCustomers int     `json:"unique_customers"`
		TotalRevenue    float64 `json:"total_revenue"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.TotalOrders)
	assert.Equal(t, 2, body.UniqueCustomers)
	assert.InDelta(t, 320, body.TotalRevenue, 1e-9)
}

// TestGetSummaryNotLoaded tests the 503 guard before data is loaded.
func TestGetSummaryNotLoaded(t *testing.T) {
	router := testRouter(services.NewDashboardService(nil))

	rec := doGet(t, router, "/api/summary")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "DATA_NOT_LOADED", body["error_code"])
}

// TestFilterValidation tests rejection of malformed filter parameters.
func TestFilterValidation(t *testing.T) {
	router := testRouter(loadedService(t))

	tests := []struct {
		name   string
		target string
	}{
		{"bad from date", "/api/summary?from=05-01-2023"},
		{"bad to date", "/api/summary?to=notadate"},
		{"to before from", "/api/summary?from=2023-02-01&to=2023-01-01"},
		{"bad min order value", "/api/summary?min_order_value=abc"},
		{"bad limit", "/api/products/top?limit=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(t, router, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
		})
	}
}

// TestFilterNarrowsResults tests that query filters reach the service.
func TestFilterNarrowsResults(t *testing.T) {
	router := testRouter(loadedService(t))

	rec := doGet(t, router, "/api/rfm/metrics?states=NSW")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Customers int `json:"customers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Customers)
}

// TestEmptyPopulation tests the 422 response when filters exclude everyone.
func TestEmptyPopulation(t *testing.T) {
	router := testRouter(loadedService(t))

	rec := doGet(t, router, "/api/rfm/scores?states=TAS")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "EMPTY_POPULATION", body["error_code"])
}

// TestGetRFMScores tests score payload shape and segment labels.
func TestGetRFMScores(t *testing.T) {
	router := testRouter(loadedService(t))

	rec := doGet(t, router, "/api/rfm/scores")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Customers int                  `json:"customers"`
		Scores    []analytics.RFMScore `json:"scores"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Customers)
	for _, s := range body.Scores {
		assert.GreaterOrEqual(t, s.RScore, 1)
		assert.LessOrEqual(t, s.RScore, 5)
		assert.NotEmpty(t, s.Segment)
	}
}

// TestGetCohorts tests the cohort matrix endpoint.
func TestGetCohorts(t *testing.T) {
	router := testRouter(loadedService(t))

	rec := doGet(t, router, "/api/cohorts")
	require.Equal(t, http.StatusOK, rec.Code)

	var matrix analytics.CohortMatrix
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matrix))
	require.Len(t, matrix.Cohorts, 2)
	assert.Equal(t, "2023-01", matrix.Cohorts[0].Month)
	assert.Equal(t, 2, matrix.Cohorts[0].Size)
}

// TestGetSegments tests the combined count/revenue segment breakdown.
func TestGetSegments(t *testing.T) {
	router := testRouter(loadedService(t))

	rec := doGet(t, router, "/api/rfm/segments")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Segments []segmentSummary `json:"segments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Segments)

	totalCustomers, totalRevenue := 0, 0.0
	for _, s := range body.Segments {
		totalCustomers += s.Customers
		totalRevenue += s.Revenue
	}
	assert.Equal(t, 2, totalCustomers)
	assert.InDelta(t, 320, totalRevenue, 1e-9)
}

// TestGetTopProducts tests the limit parameter handling.
func TestGetTopProducts(t *testing.T) {
	router := testRouter(loadedService(t))

	rec := doGet(t, router, "/api/products/top?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Products []analytics.ProductCount `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Products, 1)
}

// TestExportCSV tests the transaction CSV download.
func TestExportCSV(t *testing.T) {
	router := testRouter(loadedService(t))

	rec := doGet(t, router, "/api/export/csv?states=NSW")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	payload := rec.Body.Bytes()
	require.True(t, len(payload) > 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, payload[:3], "UTF-8 BOM for Excel")
	assert.Contains(t, string(payload), "order_id,customer_id")
	assert.Contains(t, string(payload), "Jacket")
	assert.NotContains(t, string(payload), "Shirt", "VIC row filtered out")
}

// TestExportCSVNotLoaded tests the guard on export routes.
func TestExportCSVNotLoaded(t *testing.T) {
	router := testRouter(services.NewDashboardService(nil))

	rec := doGet(t, router, "/api/export/csv")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// TestExportExcel tests the workbook download headers and body presence.
func TestExportExcel(t *testing.T) {
	router := testRouter(loadedService(t))

	rec := doGet(t, router, "/api/export/xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
	// xlsx files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, rec.Body.Bytes()[:2])
}

// TestHealthHandler tests the health endpoint payload.
func TestHealthHandler(t *testing.T) {
	svc := services.NewDashboardService(nil)
	health := services.NewHealthService("test", svc)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewHealthHandler(health).RegisterRoutes(r)
	})

	rec := doGet(t, r, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])

	svc.SetBatch([]analytics.Transaction{
		{OrderID: "O1", CustomerID: "A", OrderDate: day(2023, 1, 1), TotalPrice: 1},
	})
	rec = doGet(t, r, "/api/health")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}
