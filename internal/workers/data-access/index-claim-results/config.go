// internal/workers/data-access/index-claim-results/config.go
package indexclaimresults

import "time"

type Config struct {
	Timeout   time.Duration
	IndexName string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   15 * time.Second,
		IndexName: "claim-evaluations",
	}
}
