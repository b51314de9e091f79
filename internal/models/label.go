package models

// Party represents one side of a shipment in the carrier's wire format
type Party struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	Country      string `json:"country"`
	PostalCode   string `json:"postal_code"`
}

// Parcel describes one package in a shipment
type Parcel struct {
	Weight   float64 `json:"weight"` // kg
	Height   float64 `json:"height"` // cm
	Length   float64 `json:"length"` // cm
	Width    float64 `json:"width"`  // cm
	Contents string  `json:"contents"`
}

// ShipmentRequest is the carrier booking payload, built fresh per booking
// attempt from the order's shipping snapshot (or the customer profile when
// no snapshot exists). Never persisted.
type ShipmentRequest struct {
	Reference        string   `json:"reference"`
	Sender           Party    `json:"sender"`
	Receiver         Party    `json:"receiver"`
	Parcels          []Parcel `json:"parcels"`
	CarrierProductID string   `json:"carrier_product_id"`
}

// LabelOperationResult is the normalized outcome of one carrier interaction
type LabelOperationResult struct {
	LabelURL   string `json:"labelUrl"`
	ShipmentID string `json:"shipmentId"`
	Warning    string `json:"warning,omitempty"`
}

// GenerateLabelRequest is the inbound payload for a label generation run
type GenerateLabelRequest struct {
	ManualShipmentID string `json:"manualShipmentId"`
	Simulate         bool   `json:"simulate"`
	ConfirmReprint   bool   `json:"confirmReprint"`
}

// UpdateLabelRequest updates an order's persisted label state
type UpdateLabelRequest struct {
	IsPrinted bool   `json:"isPrinted"`
	LabelURL  string `json:"labelUrl"`
}

// GenerateLabelResponse is the orchestration outcome returned to the caller
type GenerateLabelResponse struct {
	Success    bool   `json:"success"`
	Status     string `json:"status"` // PRINTED | BOOKED | REPRINT_CONFIRMATION_REQUIRED
	LabelURL   string `json:"labelUrl,omitempty"`
	ShipmentID string `json:"shipmentId,omitempty"`
	Warning    string `json:"warning,omitempty"`
	Data       *Order `json:"data,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"` // error taxonomy kind, when applicable
	Message string `json:"message"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message *string     `json:"message,omitempty"`
}

// ListOrdersResponse represents a paginated list of orders
type ListOrdersResponse struct {
	Success bool     `json:"success"`
	Data    []*Order `json:"data"`
	Total   int64    `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}
