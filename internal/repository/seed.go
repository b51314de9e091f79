package repository

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"label-service/internal/models"
)

const seedTenantID = "demo"

// SeedDemoOrders seeds a pair of demo orders so a fresh environment has
// something to print labels against. Idempotent: it does nothing when any
// order already exists.
func SeedDemoOrders(db *gorm.DB, logger *logrus.Logger) error {
	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	printedAt := now.Add(-1 * time.Hour)

	elena := models.Customer{
		TenantID:   seedTenantID,
		FirstName:  "Elena",
		LastName:   "Larsson",
		Email:      "elena.larsson@example.com",
		Address:    "Kungsgatan 12",
		City:       "Stockholm",
		Country:    "SE",
		PostalCode: "11143",
	}
	marcus := models.Customer{
		TenantID:   seedTenantID,
		FirstName:  "Marcus",
		LastName:   "Berg",
		Email:      "marcus.berg@example.com",
		Address:    "Avenyn 8",
		City:       "Gothenburg",
		Country:    "SE",
		PostalCode: "41136",
	}

	if err := db.Create(&elena).Error; err != nil {
		return err
	}
	if err := db.Create(&marcus).Error; err != nil {
		return err
	}

	orders := []models.Order{
		{
			ID:                      1001,
			TenantID:                seedTenantID,
			OrderNumber:             "DNO-A1B2",
			OrderDate:               now.Add(-48 * time.Hour),
			TotalAmount:             145.00,
			Status:                  models.OrderStatusPending,
			IsLabelPrinted:          false,
			ShippingAddressSnapshot:    elena.Address,
			ShippingCitySnapshot:       elena.City,
			ShippingCountrySnapshot:    elena.Country,
			ShippingPostalCodeSnapshot: elena.PostalCode,
			CustomerID:                 &elena.ID,
			OrderItems: []models.OrderItem{
				{ProductName: "Midnight Oud 50ml", SKU: "FRG-OUD-50", Quantity: 1, UnitPrice: 85.00},
				{ProductName: "Citrus Vetiver 30ml", SKU: "FRG-VET-30", Quantity: 1, UnitPrice: 60.00},
			},
		},
		{
			ID:                      1002,
			TenantID:                seedTenantID,
			OrderNumber:             "DNO-C3D4",
			OrderDate:               now.Add(-24 * time.Hour),
			TotalAmount:             90.00,
			Status:                  models.OrderStatusProcessing,
			IsLabelPrinted:          true,
			LabelPrintedDate:        &printedAt,
			LabelURL:                "https://www.w3.org/WAI/ER/tests/xhtml/testfiles/resources/pdf/dummy.pdf",
			ShippingAddressSnapshot:    marcus.Address,
			ShippingCitySnapshot:       marcus.City,
			ShippingCountrySnapshot:    marcus.Country,
			ShippingPostalCodeSnapshot: marcus.PostalCode,
			CustomerID:                 &marcus.ID,
			OrderItems: []models.OrderItem{
				{ProductName: "Amber Noir 100ml", SKU: "FRG-AMB-100", Quantity: 1, UnitPrice: 90.00},
			},
		},
	}

	for i := range orders {
		if err := db.Create(&orders[i]).Error; err != nil {
			return err
		}
	}

	logger.WithField("orders", len(orders)).Info("Seeded demo orders")
	return nil
}
