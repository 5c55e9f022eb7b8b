// internal/workers/communication/notify-adjuster/config.go
package notifyadjuster

import "time"

type Config struct {
	Timeout      time.Duration
	AWSRegion    string
	EmailFrom    string
	SNSTopicARN  string
	EmailEnabled bool
	SNSEnabled   bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		AWSRegion:    "us-east-1",
		EmailFrom:    "claims@reconciliation.example.com",
		EmailEnabled: true,
		SNSEnabled:   false,
	}
}
