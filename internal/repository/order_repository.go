package repository

import (
	"time"

	"label-service/internal/models"
	"gorm.io/gorm"
)

// OrderRepository handles database operations for orders and their label state
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint, tenantID string) (*models.Order, error)
	List(tenantID string, limit, offset int) ([]*models.Order, int64, error)
	UpdateLabelState(id uint, tenantID string, isPrinted bool, labelURL string) (*models.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create creates a new order
func (r *orderRepository) Create(order *models.Order) error {
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now().UTC()
	}
	return r.db.Create(order).Error
}

// GetByID retrieves an order with its customer and items
func (r *orderRepository) GetByID(id uint, tenantID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).
		Preload("Customer").
		Preload("OrderItems").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List retrieves orders with pagination
func (r *orderRepository) List(tenantID string, limit, offset int) ([]*models.Order, int64, error) {
	var orders []*models.Order
	var total int64

	if err := r.db.Model(&models.Order{}).Where("tenant_id = ?", tenantID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("tenant_id = ?", tenantID).
		Preload("Customer").
		Preload("OrderItems").
		Order("order_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateLabelState persists the order's label fields and returns the
// refreshed order. LabelPrintedDate is set only on the false->true
// transition and cleared when the label state is reset, keeping it non-null
// iff IsLabelPrinted is true.
func (r *orderRepository) UpdateLabelState(id uint, tenantID string, isPrinted bool, labelURL string) (*models.Order, error) {
	order, err := r.GetByID(id, tenantID)
	if err != nil {
		return nil, err
	}

	updates := labelUpdateColumns(order, isPrinted, labelURL, time.Now().UTC())

	if err := r.db.Model(&models.Order{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	return r.GetByID(id, tenantID)
}

// labelUpdateColumns computes the column updates for a label-state change
func labelUpdateColumns(order *models.Order, isPrinted bool, labelURL string, now time.Time) map[string]interface{} {
	updates := map[string]interface{}{
		"is_label_printed": isPrinted,
		"label_url":        labelURL,
		"updated_at":       now,
	}

	switch {
	case isPrinted && !order.IsLabelPrinted:
		updates["label_printed_date"] = &now
	case !isPrinted:
		updates["label_printed_date"] = gorm.Expr("NULL")
	}

	return updates
}
