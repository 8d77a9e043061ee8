// internal/workers/profile/load-style-profile/config.go
package loadstyleprofile

import "time"

type Config struct {
	Timeout time.Duration
	// FailOnMissing throws PROFILE_NOT_FOUND instead of completing with found=false.
	FailOnMissing bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
