// internal/workers/storefront/personalize-catalog/config.go
package personalizecatalog

import "time"

type Config struct {
	Timeout time.Duration
	// MaxProducts caps the product list forwarded to the stylist service.
	MaxProducts int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		MaxProducts: 50,
	}
}
