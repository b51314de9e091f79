package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"label-service/internal/carrier"
	"label-service/internal/models"
	"label-service/internal/services"
)

// ConnectionTester is the carrier health-probe surface used by the handler
type ConnectionTester interface {
	TestConnection(ctx context.Context, apiKeyOverride string) error
}

// LabelHandler exposes label generation and the carrier connectivity probe
type LabelHandler struct {
	orchestrator services.LabelOrchestrator
	carrier      ConnectionTester
	logger       *logrus.Entry
}

// NewLabelHandler creates a new label handler
func NewLabelHandler(orchestrator services.LabelOrchestrator, carrierClient ConnectionTester, logger *logrus.Logger) *LabelHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LabelHandler{
		orchestrator: orchestrator,
		carrier:      carrierClient,
		logger:       logger.WithField("component", "label-handler"),
	}
}

// GenerateLabel handles POST /api/orders/:id/label/generate
//
// The request body is optional: an empty body means a plain, non-simulated
// run with no overrides. An x-api-key header overrides the server-held
// carrier key for this request only.
func (h *LabelHandler) GenerateLabel(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req models.GenerateLabelRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error:   "Invalid request body",
				Message: err.Error(),
			})
			return
		}
	}

	result, err := h.orchestrator.GenerateLabel(c.Request.Context(), services.GenerateLabelInput{
		OrderID:          orderID,
		TenantID:         getTenantID(c),
		ManualShipmentID: req.ManualShipmentID,
		Simulate:         req.Simulate,
		ConfirmReprint:   req.ConfirmReprint,
		APIKeyOverride:   c.GetHeader("x-api-key"),
	})
	if err != nil {
		h.respondGenerateError(c, orderID, err)
		return
	}

	status := http.StatusOK
	if result.Outcome == services.OutcomeReprintConfirmationRequired {
		status = http.StatusConflict
	}

	c.JSON(status, models.GenerateLabelResponse{
		Success:    result.Outcome != services.OutcomeReprintConfirmationRequired,
		Status:     string(result.Outcome),
		LabelURL:   result.LabelURL,
		ShipmentID: result.ShipmentID,
		Warning:    result.Warning,
		Data:       result.Order,
	})
}

// TestCarrierConnection handles POST /api/carrier/test-connection
func (h *LabelHandler) TestCarrierConnection(c *gin.Context) {
	err := h.carrier.TestConnection(c.Request.Context(), c.GetHeader("x-api-key"))
	if err != nil {
		status, code := carrierErrorStatus(err)
		c.JSON(status, models.ErrorResponse{
			Success: false,
			Error:   "Carrier connection test failed",
			Code:    code,
			Message: err.Error(),
		})
		return
	}

	message := "Carrier connection OK"
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: &message,
	})
}

// HealthCheck handles GET /health
func (h *LabelHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "label-service",
	})
}

func (h *LabelHandler) respondGenerateError(c *gin.Context, orderID uint, err error) {
	log := h.logger.WithField("order_id", orderID)

	switch {
	case errors.Is(err, services.ErrOrderBusy):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Error:   "Order busy",
			Code:    "ORDER_BUSY",
			Message: err.Error(),
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error:   "Order not found",
			Message: "No order exists with the given id for this tenant",
		})
	default:
		if kind := carrier.KindOf(err); kind != "" {
			status, code := carrierErrorStatus(err)
			log.WithField("code", code).WithError(err).Warn("label generation failed")
			c.JSON(status, models.ErrorResponse{
				Success: false,
				Error:   "Label generation failed",
				Code:    code,
				Message: err.Error(),
			})
			return
		}
		log.WithError(err).Error("label generation failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   "Label generation failed",
			Message: err.Error(),
		})
	}
}

// carrierErrorStatus maps a classified carrier error to an HTTP status and
// response code. Connectivity problems are reported as 502 like other
// upstream failures; the code in the body keeps them distinguishable.
func carrierErrorStatus(err error) (int, string) {
	kind := carrier.KindOf(err)
	switch kind {
	case carrier.KindMissingCredentials:
		return http.StatusUnauthorized, string(kind)
	case carrier.KindShipmentNotFound:
		return http.StatusNotFound, string(kind)
	case carrier.KindUpstreamError, carrier.KindConnectivityError:
		return http.StatusBadGateway, string(kind)
	case carrier.KindProxyInternalError:
		return http.StatusInternalServerError, string(kind)
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// parseOrderID extracts the :id path parameter, responding 400 on failure
func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   "Invalid order ID",
			Message: "Order ID must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

// getTenantID extracts the tenant from the request context
func getTenantID(c *gin.Context) string {
	if tenantID, exists := c.Get("tenant_id"); exists {
		if id, ok := tenantID.(string); ok {
			return id
		}
	}
	return c.GetHeader("X-Tenant-ID")
}
