package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"label-service/internal/models"
)

// PlaceholderLabelURL is the deterministic label document returned whenever
// no real label could be produced (simulation mode, missing credentials,
// fail-open booking).
const PlaceholderLabelURL = "https://www.w3.org/WAI/ER/tests/xhtml/testfiles/resources/pdf/dummy.pdf"

// Client talks to the Sendify external API.
//
// The two operations have deliberately different failure postures: booking
// fails open (the operator always gets some label output, with a warning),
// printing fails closed (a failure is diagnostic information the orchestrator
// needs to decide whether to fall back to booking).
type Client struct {
	resolver   *Resolver
	httpClient *http.Client
	logger     *logrus.Entry
}

// NewClient creates a Sendify client using the given credential resolver.
func NewClient(resolver *Resolver, logger *logrus.Entry) *Client {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Client{
		resolver: resolver,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.WithField("component", "sendify-client"),
	}
}

// mockShipmentID generates a shipment id for simulated bookings. Unique
// within a session is enough; nothing downstream depends on its shape.
func mockShipmentID() string {
	return "shp_sim_" + uuid.NewString()[:8]
}

// BookShipment books a new shipment with the carrier.
//
// Simulation takes precedence over everything, including valid credentials:
// the operator must be able to demo the booking workflow with zero risk of a
// real charge. Missing credentials and upstream failures degrade to the
// placeholder label with a warning instead of failing, since booking is often
// exploratory.
func (c *Client) BookShipment(ctx context.Context, request models.ShipmentRequest, apiKeyOverride string, simulate bool) (*models.LabelOperationResult, error) {
	if simulate {
		c.logger.WithField("reference", request.Reference).Info("simulated booking, skipping carrier call")
		return &models.LabelOperationResult{
			LabelURL:   PlaceholderLabelURL,
			ShipmentID: mockShipmentID(),
			Warning:    "Simulation mode: no real booking occurred and no charge was incurred.",
		}, nil
	}

	creds, err := c.resolver.Resolve(apiKeyOverride)
	if err != nil {
		c.logger.WithField("reference", request.Reference).Warn("no carrier credentials, booking in mock mode")
		return &models.LabelOperationResult{
			LabelURL:   PlaceholderLabelURL,
			ShipmentID: mockShipmentID(),
			Warning:    "Sendify credentials missing: returned a mock label, no booking occurred.",
		}, nil
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.BookURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create booking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", creds.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("booking call failed, falling back to placeholder label")
		return &models.LabelOperationResult{
			LabelURL:   PlaceholderLabelURL,
			ShipmentID: mockShipmentID(),
			Warning:    fmt.Sprintf("Real booking failed (%v): returned a placeholder label.", err),
		}, nil
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"status":    resp.StatusCode,
			"reference": request.Reference,
		}).Warn("carrier rejected booking, falling back to placeholder label")
		return &models.LabelOperationResult{
			LabelURL:   PlaceholderLabelURL,
			ShipmentID: mockShipmentID(),
			Warning:    fmt.Sprintf("Real booking failed (status %d: %s): returned a placeholder label.", resp.StatusCode, truncate(string(respBody), 200)),
		}, nil
	}

	var bookResp struct {
		ID       string `json:"id"`
		LabelURL string `json:"label_url"`
	}
	if err := json.Unmarshal(respBody, &bookResp); err != nil || bookResp.ID == "" {
		c.logger.Warn("unparseable booking response, falling back to placeholder label")
		return &models.LabelOperationResult{
			LabelURL:   PlaceholderLabelURL,
			ShipmentID: mockShipmentID(),
			Warning:    "Booking response was not understood: returned a placeholder label.",
		}, nil
	}

	labelURL := bookResp.LabelURL
	if labelURL == "" {
		labelURL = fmt.Sprintf("%s/%s/label", creds.BookURL, bookResp.ID)
	}

	c.logger.WithFields(logrus.Fields{
		"shipment_id": bookResp.ID,
		"reference":   request.Reference,
	}).Info("shipment booked")

	return &models.LabelOperationResult{
		LabelURL:   labelURL,
		ShipmentID: bookResp.ID,
	}, nil
}

// PrintLabel retrieves the printable label document for an existing shipment.
//
// Unlike booking this fails closed: the shipment id is one the caller believes
// already exists, so every failure is surfaced as a classified error. A pure
// print mutates nothing upstream and is idempotent on the carrier side.
func (c *Client) PrintLabel(ctx context.Context, shipmentID string, apiKeyOverride string, simulate bool) (*models.LabelOperationResult, error) {
	if simulate {
		id := shipmentID
		if id == "" {
			id = mockShipmentID()
		}
		c.logger.WithField("shipment_id", id).Info("simulated print, skipping carrier call")
		return &models.LabelOperationResult{
			LabelURL:   PlaceholderLabelURL,
			ShipmentID: id,
			Warning:    "Simulation mode: returned a placeholder label.",
		}, nil
	}

	creds, err := c.resolver.Resolve(apiKeyOverride)
	if err != nil {
		return nil, err
	}

	// Shipment ids must always cross the wire as strings; carriers reject
	// numeric ids even when ours originate as integers.
	payload := struct {
		ShipmentID string `json:"shipment_id"`
	}{ShipmentID: shipmentID}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal print request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.PrintURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create print request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", creds.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{
			Kind:    KindProxyInternalError,
			Message: fmt.Sprintf("carrier request failed: %v", err),
		}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		cerr := classifyResponse(resp.StatusCode, respBody)
		c.logger.WithFields(logrus.Fields{
			"shipment_id": shipmentID,
			"status":      resp.StatusCode,
			"kind":        cerr.Kind,
		}).Warn("print request failed")
		return nil, cerr
	}

	var printResp struct {
		LabelURL string `json:"label_url"`
	}
	if err := json.Unmarshal(respBody, &printResp); err != nil || printResp.LabelURL == "" {
		return nil, &Error{
			Kind:       KindUpstreamError,
			Message:    "carrier response did not contain a label_url",
			StatusCode: resp.StatusCode,
			Upstream:   string(respBody),
		}
	}

	c.logger.WithField("shipment_id", shipmentID).Info("label retrieved")

	return &models.LabelOperationResult{
		LabelURL:   printResp.LabelURL,
		ShipmentID: shipmentID,
	}, nil
}

// TestConnection verifies the resolved credentials against the carrier with a
// harmless authenticated read. This is the explicit health probe; the print
// and book paths never infer connectivity from response shape alone.
func (c *Client) TestConnection(ctx context.Context, apiKeyOverride string) error {
	creds, err := c.resolver.Resolve(apiKeyOverride)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, creds.ProductsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}
	req.Header.Set("x-api-key", creds.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{
			Kind:    KindProxyInternalError,
			Message: fmt.Sprintf("carrier probe failed: %v", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &Error{
			Kind:       KindConnectivityError,
			Message:    "carrier rejected the connection probe",
			StatusCode: resp.StatusCode,
			Upstream:   string(respBody),
		}
	}

	return nil
}

// truncate limits diagnostic bodies embedded in warnings
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
