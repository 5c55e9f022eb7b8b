// internal/workers/claim/validate-scope/config.go
package validatescope

import "time"

type Config struct {
	Timeout      time.Duration
	MaxLineItems int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      10 * time.Second,
		MaxLineItems: 500,
	}
}
