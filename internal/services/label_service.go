package services

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"label-service/internal/carrier"
	"label-service/internal/config"
	"label-service/internal/models"
	"label-service/internal/repository"
)

// LabelOutcome tags how a successful generation run produced its label
type LabelOutcome string

const (
	// OutcomePrinted means the label came from printing an existing shipment.
	OutcomePrinted LabelOutcome = "PRINTED"
	// OutcomeBooked means a new shipment was booked (or mock-booked) first.
	OutcomeBooked LabelOutcome = "BOOKED"
	// OutcomeReprintConfirmationRequired means the order already has a printed
	// label and the caller did not confirm the reprint. No carrier call was made.
	OutcomeReprintConfirmationRequired LabelOutcome = "REPRINT_CONFIRMATION_REQUIRED"
)

// ErrOrderBusy is returned when a label run is already in flight for the order.
var ErrOrderBusy = errors.New("a label operation is already in progress for this order")

// CarrierClient is the carrier proxy surface the orchestrator depends on
type CarrierClient interface {
	BookShipment(ctx context.Context, request models.ShipmentRequest, apiKeyOverride string, simulate bool) (*models.LabelOperationResult, error)
	PrintLabel(ctx context.Context, shipmentID string, apiKeyOverride string, simulate bool) (*models.LabelOperationResult, error)
}

// EventPublisher publishes label lifecycle events. Best-effort: publish
// failures never affect the API outcome.
type EventPublisher interface {
	PublishLabelPrinted(ctx context.Context, tenantID, orderID, orderNumber, shipmentID, labelURL string, simulated bool) error
	PublishLabelBooked(ctx context.Context, tenantID, orderID, orderNumber, shipmentID, labelURL, warning string, simulated bool) error
	PublishLabelFailed(ctx context.Context, tenantID, orderID, orderNumber, errorCode string) error
}

// GenerateLabelInput carries everything one generation run needs
type GenerateLabelInput struct {
	OrderID          uint
	TenantID         string
	ManualShipmentID string
	Simulate         bool
	ConfirmReprint   bool
	APIKeyOverride   string
}

// GenerateLabelResult is the tagged outcome of a generation run
type GenerateLabelResult struct {
	Outcome    LabelOutcome
	LabelURL   string
	ShipmentID string
	Warning    string
	Order      *models.Order
}

// LabelOrchestrator drives the print-or-book state machine for an order
type LabelOrchestrator interface {
	GenerateLabel(ctx context.Context, input GenerateLabelInput) (*GenerateLabelResult, error)
}

// LabelService implements LabelOrchestrator over the order repository and the
// carrier client. At most one generation run per order is allowed at a time;
// concurrent attempts are rejected with ErrOrderBusy rather than queued, since
// the second run would only reprint what the first just produced.
type LabelService struct {
	repo      repository.OrderRepository
	carrier   CarrierClient
	publisher EventPublisher
	warehouse config.WarehouseConfig
	logger    *logrus.Entry

	mu       sync.Mutex
	inFlight map[uint]struct{}
}

// NewLabelService creates the label orchestrator. publisher may be nil when
// eventing is disabled.
func NewLabelService(repo repository.OrderRepository, carrierClient CarrierClient, publisher EventPublisher, warehouse config.WarehouseConfig, logger *logrus.Logger) *LabelService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LabelService{
		repo:      repo,
		carrier:   carrierClient,
		publisher: publisher,
		warehouse: warehouse,
		logger:    logger.WithField("component", "label-service"),
		inFlight:  make(map[uint]struct{}),
	}
}

// GenerateLabel runs the full print-or-book flow for one order.
//
// Decision order:
//  1. An already-printed label requires explicit reprint confirmation before
//     any carrier traffic.
//  2. Simulation on an unprinted order with no manual shipment id goes
//     straight to a simulated booking; there is no shipment worth printing.
//  3. Otherwise print first, using the manual shipment id when given or the
//     order id coerced to a string.
//  4. Booking is the fallback only when the carrier confirmed the shipment id
//     does not exist AND the id was derived, not operator-supplied. An
//     operator-supplied id that fails is an input error to surface, not to
//     paper over with a new booking.
func (s *LabelService) GenerateLabel(ctx context.Context, input GenerateLabelInput) (*GenerateLabelResult, error) {
	if !s.acquire(input.OrderID) {
		return nil, ErrOrderBusy
	}
	defer s.release(input.OrderID)

	log := s.logger.WithFields(logrus.Fields{
		"order_id":  input.OrderID,
		"tenant_id": input.TenantID,
	})

	order, err := s.repo.GetByID(input.OrderID, input.TenantID)
	if err != nil {
		return nil, err
	}

	if order.IsLabelPrinted && !input.ConfirmReprint {
		log.Info("label already printed, awaiting reprint confirmation")
		return &GenerateLabelResult{
			Outcome:  OutcomeReprintConfirmationRequired,
			LabelURL: order.LabelURL,
			Order:    order,
		}, nil
	}

	if input.Simulate && !order.IsLabelPrinted && input.ManualShipmentID == "" {
		result, err := s.carrier.BookShipment(ctx, s.buildShipmentRequest(order), input.APIKeyOverride, true)
		if err != nil {
			return nil, err
		}
		return s.finalize(ctx, log, order, input, OutcomeBooked, result)
	}

	shipmentID := input.ManualShipmentID
	if shipmentID == "" {
		shipmentID = strconv.FormatUint(uint64(order.ID), 10)
	}

	printResult, err := s.carrier.PrintLabel(ctx, shipmentID, input.APIKeyOverride, input.Simulate)
	if err == nil {
		return s.finalize(ctx, log, order, input, OutcomePrinted, printResult)
	}

	if carrier.KindOf(err) == carrier.KindShipmentNotFound && input.ManualShipmentID == "" {
		log.WithField("shipment_id", shipmentID).Info("no existing shipment, booking a new one")
		bookResult, bookErr := s.carrier.BookShipment(ctx, s.buildShipmentRequest(order), input.APIKeyOverride, input.Simulate)
		if bookErr != nil {
			s.publishFailure(ctx, order, input.TenantID, bookErr)
			return nil, bookErr
		}
		return s.finalize(ctx, log, order, input, OutcomeBooked, bookResult)
	}

	s.publishFailure(ctx, order, input.TenantID, err)
	return nil, err
}

// finalize persists the label state and reports the outcome
func (s *LabelService) finalize(ctx context.Context, log *logrus.Entry, order *models.Order, input GenerateLabelInput, outcome LabelOutcome, result *models.LabelOperationResult) (*GenerateLabelResult, error) {
	updated, err := s.repo.UpdateLabelState(order.ID, input.TenantID, true, result.LabelURL)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"outcome":     outcome,
		"shipment_id": result.ShipmentID,
		"simulated":   input.Simulate,
	}).Info("label generated")

	if s.publisher != nil {
		orderID := strconv.FormatUint(uint64(order.ID), 10)
		var pubErr error
		if outcome == OutcomeBooked {
			pubErr = s.publisher.PublishLabelBooked(ctx, input.TenantID, orderID, order.OrderNumber, result.ShipmentID, result.LabelURL, result.Warning, input.Simulate)
		} else {
			pubErr = s.publisher.PublishLabelPrinted(ctx, input.TenantID, orderID, order.OrderNumber, result.ShipmentID, result.LabelURL, input.Simulate)
		}
		if pubErr != nil {
			log.WithError(pubErr).Warn("failed to publish label event")
		}
	}

	return &GenerateLabelResult{
		Outcome:    outcome,
		LabelURL:   result.LabelURL,
		ShipmentID: result.ShipmentID,
		Warning:    result.Warning,
		Order:      updated,
	}, nil
}

func (s *LabelService) publishFailure(ctx context.Context, order *models.Order, tenantID string, cause error) {
	if s.publisher == nil {
		return
	}
	code := string(carrier.KindOf(cause))
	if code == "" {
		code = "INTERNAL_ERROR"
	}
	orderID := strconv.FormatUint(uint64(order.ID), 10)
	if err := s.publisher.PublishLabelFailed(ctx, tenantID, orderID, order.OrderNumber, code); err != nil {
		s.logger.WithError(err).Warn("failed to publish label failure event")
	}
}

// buildShipmentRequest assembles the carrier booking payload from the order.
// The receiver address prefers the order's frozen shipping snapshot and falls
// back to the customer profile field by field.
func (s *LabelService) buildShipmentRequest(order *models.Order) models.ShipmentRequest {
	receiver := models.Party{
		AddressLine1: order.ShippingAddressSnapshot,
		City:         order.ShippingCitySnapshot,
		Country:      order.ShippingCountrySnapshot,
		PostalCode:   order.ShippingPostalCodeSnapshot,
	}

	if c := order.Customer; c != nil {
		receiver.Name = c.FullName()
		receiver.Email = c.Email
		if receiver.AddressLine1 == "" {
			receiver.AddressLine1 = c.Address
		}
		if receiver.City == "" {
			receiver.City = c.City
		}
		if receiver.Country == "" {
			receiver.Country = c.Country
		}
		if receiver.PostalCode == "" {
			receiver.PostalCode = c.PostalCode
		}
	}

	return models.ShipmentRequest{
		Reference: order.OrderNumber,
		Sender: models.Party{
			Name:         s.warehouse.Name,
			Email:        s.warehouse.Email,
			AddressLine1: s.warehouse.Address,
			City:         s.warehouse.City,
			Country:      s.warehouse.Country,
			PostalCode:   s.warehouse.PostalCode,
		},
		Receiver: receiver,
		Parcels: []models.Parcel{
			{
				Weight:   1.5,
				Height:   10,
				Length:   20,
				Width:    15,
				Contents: "Fragrances",
			},
		},
		CarrierProductID: "postnord_my_pack_collect",
	}
}

func (s *LabelService) acquire(orderID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[orderID]; busy {
		return false
	}
	s.inFlight[orderID] = struct{}{}
	return true
}

func (s *LabelService) release(orderID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, orderID)
}
