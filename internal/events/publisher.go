package events

import (
	"context"
	"os"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/sirupsen/logrus"
)

// Label event types
const (
	LabelPrinted = "label.printed"
	LabelBooked  = "label.booked"
	LabelFailed  = "label.failed"
)

// LabelEvent represents a label lifecycle event
type LabelEvent struct {
	events.BaseEvent
	OrderID     string `json:"orderId,omitempty"`
	OrderNumber string `json:"orderNumber,omitempty"`
	ShipmentID  string `json:"shipmentId,omitempty"`
	LabelURL    string `json:"labelUrl,omitempty"`
	Simulated   bool   `json:"simulated,omitempty"`
	ErrorCode   string `json:"errorCode,omitempty"`
	Warning     string `json:"warning,omitempty"`
}

func (e *LabelEvent) GetSubject() string {
	return e.EventType
}

func (e *LabelEvent) GetStream() string {
	return "LABEL_EVENTS"
}

// Publisher wraps the shared events publisher for label-specific events
type Publisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPublisher creates a new label events publisher
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "label-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := publisher.EnsureStream(ctx, "LABEL_EVENTS", []string{"label.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure LABEL_EVENTS stream")
	}

	return &Publisher{
		publisher: publisher,
		logger:    logger.WithField("component", "events.publisher"),
	}, nil
}

// PublishLabelPrinted publishes a label printed event
func (p *Publisher) PublishLabelPrinted(ctx context.Context, tenantID, orderID, orderNumber, shipmentID, labelURL string, simulated bool) error {
	event := &LabelEvent{
		BaseEvent: events.BaseEvent{
			EventType: LabelPrinted,
			TenantID:  tenantID,
			Timestamp: time.Now().UTC(),
		},
		OrderID:     orderID,
		OrderNumber: orderNumber,
		ShipmentID:  shipmentID,
		LabelURL:    labelURL,
		Simulated:   simulated,
	}

	return p.publisher.Publish(ctx, event)
}

// PublishLabelBooked publishes an event for a label produced via a fresh booking
func (p *Publisher) PublishLabelBooked(ctx context.Context, tenantID, orderID, orderNumber, shipmentID, labelURL, warning string, simulated bool) error {
	event := &LabelEvent{
		BaseEvent: events.BaseEvent{
			EventType: LabelBooked,
			TenantID:  tenantID,
			Timestamp: time.Now().UTC(),
		},
		OrderID:     orderID,
		OrderNumber: orderNumber,
		ShipmentID:  shipmentID,
		LabelURL:    labelURL,
		Warning:     warning,
		Simulated:   simulated,
	}

	return p.publisher.Publish(ctx, event)
}

// PublishLabelFailed publishes a label generation failure event
func (p *Publisher) PublishLabelFailed(ctx context.Context, tenantID, orderID, orderNumber, errorCode string) error {
	event := &LabelEvent{
		BaseEvent: events.BaseEvent{
			EventType: LabelFailed,
			TenantID:  tenantID,
			Timestamp: time.Now().UTC(),
		},
		OrderID:     orderID,
		OrderNumber: orderNumber,
		ErrorCode:   errorCode,
	}

	return p.publisher.Publish(ctx, event)
}

// IsConnected returns true if connected to NATS
func (p *Publisher) IsConnected() bool {
	return p.publisher.IsConnected()
}

// Close closes the publisher connection
func (p *Publisher) Close() {
	p.publisher.Close()
}
