package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Tesseract-Nexus/go-shared/secrets"
)

// Config holds all configuration for the label service
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	RedisURL  string
	Sendify   SendifyConfig
	Warehouse WarehouseConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// SendifyConfig holds the server-side carrier credentials and endpoint
// overrides. The API key is optional: without it the service still runs,
// booking degrades to mock mode and printing reports missing credentials.
type SendifyConfig struct {
	APIKey   string
	BookURL  string
	PrintURL string
}

// WarehouseConfig is the fixed sender profile stamped on every booking
type WarehouseConfig struct {
	Name       string
	Email      string
	Address    string
	City       string
	Country    string
	PostalCode string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8094"),
			Env:  getEnv("NODE_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: secrets.GetDBPassword(),
			DBName:   getEnv("DB_NAME", "labels"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisURL: getEnv("REDIS_URL", "redis://redis.redis-marketplace.svc.cluster.local:6379/0"),
		Sendify: SendifyConfig{
			APIKey:   getEnv("SENDIFY_API_KEY", ""),
			BookURL:  getEnv("SENDIFY_BOOK_URL", ""),
			PrintURL: getEnv("SENDIFY_PRINT_URL", ""),
		},
		Warehouse: WarehouseConfig{
			Name:       getEnv("WAREHOUSE_NAME", "OrderFlow Warehouse"),
			Email:      getEnv("WAREHOUSE_EMAIL", "logistics@orderflow.com"),
			Address:    getEnv("WAREHOUSE_ADDRESS", "123 Distribution Blvd"),
			City:       getEnv("WAREHOUSE_CITY", "Logistics City"),
			Country:    getEnv("WAREHOUSE_COUNTRY", "SE"),
			PostalCode: getEnv("WAREHOUSE_POSTAL_CODE", "12345"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Warehouse.Country == "" {
		return fmt.Errorf("WAREHOUSE_COUNTRY is required")
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an integer environment variable or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
