// internal/workers/claim/extract-carrier-scope/models.go
package extractcarrierscope

import "claims-workers/internal/models"

type Input struct {
	ClaimID      string `json:"claimId"`
	DocumentText string `json:"documentText"`
}

type Output struct {
	LineItems []models.LineItem `json:"carrierScope"`
	ItemCount int               `json:"itemCount"`
	FromCache bool              `json:"fromCache"`
}
