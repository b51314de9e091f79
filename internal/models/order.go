package models

import (
	"time"
)

// OrderStatus represents the fulfillment status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
)

// Order represents an order record with its shipping-label state.
//
// The label fields (IsLabelPrinted, LabelPrintedDate, LabelURL) are mutated
// exclusively by the label orchestrator after a successful carrier operation.
// LabelPrintedDate is non-null iff IsLabelPrinted is true.
type Order struct {
	ID                    uint        `json:"id" gorm:"primaryKey"`
	TenantID              string      `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	OrderNumber           string      `json:"orderNumber" gorm:"type:varchar(100);uniqueIndex"`
	OrderDate             time.Time   `json:"orderDate" gorm:"not null"`
	TotalAmount           float64     `json:"totalAmount" gorm:"type:decimal(10,2)"`
	Status                OrderStatus `json:"status" gorm:"type:varchar(50);not null;default:'Pending'"`
	StripePaymentIntentID string      `json:"stripePaymentIntentId" gorm:"type:varchar(255)"`

	// Label state
	IsLabelPrinted   bool       `json:"isLabelPrinted" gorm:"not null;default:false"`
	LabelPrintedDate *time.Time `json:"labelPrintedDate"`
	LabelURL         string     `json:"labelUrl" gorm:"type:varchar(500)"`

	// Shipping address snapshot, frozen at order creation
	ShippingAddressSnapshot    string `json:"shippingAddressSnapshot" gorm:"type:varchar(500)"`
	ShippingCitySnapshot       string `json:"shippingCitySnapshot" gorm:"type:varchar(100)"`
	ShippingCountrySnapshot    string `json:"shippingCountrySnapshot" gorm:"type:varchar(10)"`
	ShippingPostalCodeSnapshot string `json:"shippingPostalCodeSnapshot" gorm:"type:varchar(20)"`

	CustomerID *uint     `json:"customerId"`
	Customer   *Customer `json:"customer,omitempty"`

	OrderItems []OrderItem `json:"orderItems,omitempty" gorm:"foreignKey:OrderID"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Customer represents the customer profile an order belongs to.
// Its address fields are the fallback receiver address when an order
// carries no shipping snapshot.
type Customer struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	TenantID   string `json:"tenantId" gorm:"type:varchar(255);not null;index"`
	FirstName  string `json:"firstName" gorm:"type:varchar(100)"`
	LastName   string `json:"lastName" gorm:"type:varchar(100)"`
	Email      string `json:"email" gorm:"type:varchar(255);index"`
	Address    string `json:"address" gorm:"type:varchar(500)"`
	City       string `json:"city" gorm:"type:varchar(100)"`
	Country    string `json:"country" gorm:"type:varchar(10)"` // ISO 2-letter code
	PostalCode string `json:"postalCode" gorm:"type:varchar(20)"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// OrderItem represents a line item on an order
type OrderItem struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	OrderID     uint    `json:"orderId" gorm:"not null;index"`
	ProductName string  `json:"productName" gorm:"type:varchar(255)"`
	SKU         string  `json:"sku" gorm:"type:varchar(100)"`
	Quantity    int     `json:"quantity" gorm:"not null"`
	UnitPrice   float64 `json:"unitPrice" gorm:"type:decimal(10,2)"`
}

// FullName returns the customer's display name
func (c *Customer) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
