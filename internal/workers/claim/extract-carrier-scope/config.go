// internal/workers/claim/extract-carrier-scope/config.go
package extractcarrierscope

import "time"

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  60 * time.Second,
		CacheTTL: 24 * time.Hour,
	}
}
