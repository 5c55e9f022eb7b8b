// internal/workers/infrastructure/build-claim-report/config.go
package buildclaimreport

import "time"

type Config struct {
	Timeout    time.Duration
	AppVersion string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    10 * time.Second,
		AppVersion: "1.0.0",
	}
}
