// internal/workers/storefront/rank-annotated-products/config.go
package rankannotatedproducts

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
