package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"label-service/internal/models"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(id uint, tenantID string) (*models.Order, error) {
	args := m.Called(id, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) List(tenantID string, limit, offset int) ([]*models.Order, int64, error) {
	args := m.Called(tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) UpdateLabelState(id uint, tenantID string, isPrinted bool, labelURL string) (*models.Order, error) {
	args := m.Called(id, tenantID, isPrinted, labelURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func setupOrderRouter(repo *mockOrderRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewOrderHandler(repo, nil)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("tenant_id", c.GetHeader("X-Tenant-ID"))
		c.Next()
	})
	router.GET("/api/orders", handler.ListOrders)
	router.GET("/api/orders/:id", handler.GetOrder)
	router.PUT("/api/orders/:id/label", handler.UpdateLabelStatus)
	return router
}

func TestListOrders(t *testing.T) {
	repo := new(mockOrderRepo)
	orders := []*models.Order{
		{ID: 1001, TenantID: "demo", OrderNumber: "DNO-A1B2"},
		{ID: 1002, TenantID: "demo", OrderNumber: "DNO-C3D4", IsLabelPrinted: true},
	}
	repo.On("List", "demo", 50, 0).Return(orders, int64(2), nil)

	router := setupOrderRouter(repo)
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("X-Tenant-ID", "demo")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ListOrdersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int64(2), resp.Total)
}

func TestListOrdersClampsPagination(t *testing.T) {
	repo := new(mockOrderRepo)
	repo.On("List", "demo", 50, 0).Return([]*models.Order{}, int64(0), nil)

	router := setupOrderRouter(repo)
	req := httptest.NewRequest(http.MethodGet, "/api/orders?limit=9999&offset=-5", nil)
	req.Header.Set("X-Tenant-ID", "demo")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestGetOrder(t *testing.T) {
	repo := new(mockOrderRepo)
	printedAt := time.Now().UTC().Add(-time.Hour)
	order := &models.Order{
		ID:               1002,
		TenantID:         "demo",
		OrderNumber:      "DNO-C3D4",
		IsLabelPrinted:   true,
		LabelPrintedDate: &printedAt,
	}
	repo.On("GetByID", uint(1002), "demo").Return(order, nil)

	router := setupOrderRouter(repo)
	req := httptest.NewRequest(http.MethodGet, "/api/orders/1002", nil)
	req.Header.Set("X-Tenant-ID", "demo")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "DNO-C3D4")
}

func TestGetOrderNotFound(t *testing.T) {
	repo := new(mockOrderRepo)
	repo.On("GetByID", uint(9999), "demo").Return(nil, gorm.ErrRecordNotFound)

	router := setupOrderRouter(repo)
	req := httptest.NewRequest(http.MethodGet, "/api/orders/9999", nil)
	req.Header.Set("X-Tenant-ID", "demo")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateLabelStatus(t *testing.T) {
	repo := new(mockOrderRepo)
	order := &models.Order{ID: 1001, TenantID: "demo", IsLabelPrinted: true, LabelURL: "https://labels.example.com/a.pdf"}
	repo.On("UpdateLabelState", uint(1001), "demo", true, "https://labels.example.com/a.pdf").Return(order, nil)

	body, _ := json.Marshal(models.UpdateLabelRequest{
		IsPrinted: true,
		LabelURL:  "https://labels.example.com/a.pdf",
	})

	router := setupOrderRouter(repo)
	req := httptest.NewRequest(http.MethodPut, "/api/orders/1001/label", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", "demo")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestUpdateLabelStatusInvalidBody(t *testing.T) {
	router := setupOrderRouter(new(mockOrderRepo))
	req := httptest.NewRequest(http.MethodPut, "/api/orders/1001/label", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", "demo")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateLabelStatusNotFound(t *testing.T) {
	repo := new(mockOrderRepo)
	repo.On("UpdateLabelState", uint(9999), "demo", false, "").Return(nil, gorm.ErrRecordNotFound)

	body, _ := json.Marshal(models.UpdateLabelRequest{})

	router := setupOrderRouter(repo)
	req := httptest.NewRequest(http.MethodPut, "/api/orders/9999/label", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", "demo")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
