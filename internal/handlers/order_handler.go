package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"label-service/internal/models"
	"label-service/internal/repository"
)

// OrderHandler exposes order reads and the manual label-state update
type OrderHandler struct {
	repo   repository.OrderRepository
	logger *logrus.Entry
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(repo repository.OrderRepository, logger *logrus.Logger) *OrderHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &OrderHandler{
		repo:   repo,
		logger: logger.WithField("component", "order-handler"),
	}
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	orders, total, err := h.repo.List(getTenantID(c), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list orders")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   "Failed to list orders",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.ListOrdersResponse{
		Success: true,
		Data:    orders,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

// GetOrder handles GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.repo.GetByID(orderID, getTenantID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   "Order not found",
				Message: "No order exists with the given id for this tenant",
			})
			return
		}
		h.logger.WithError(err).WithField("order_id", orderID).Error("Failed to get order")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   "Failed to get order",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    order,
	})
}

// UpdateLabelStatus handles PUT /api/orders/:id/label
//
// This is the manual escape hatch the dashboard uses to correct label state;
// the orchestrated path persists through the same repository call, so the
// printed-date invariant holds either way.
func (h *OrderHandler) UpdateLabelStatus(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req models.UpdateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	order, err := h.repo.UpdateLabelState(orderID, getTenantID(c), req.IsPrinted, req.LabelURL)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   "Order not found",
				Message: "No order exists with the given id for this tenant",
			})
			return
		}
		h.logger.WithError(err).WithField("order_id", orderID).Error("Failed to update label state")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   "Failed to update label state",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    order,
	})
}
