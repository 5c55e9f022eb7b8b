// internal/workers/claim/detect-carrier/config.go
package detectcarrier

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
