// internal/workers/claim/validate-scope/models.go
package validatescope

import "claims-workers/internal/models"

type Input struct {
	ClaimID   string                   `json:"claimId"`
	ScopeType string                   `json:"scopeType,omitempty"` // contractor or carrier
	LineItems []map[string]interface{} `json:"lineItems"`
}

type Output struct {
	Valid            bool              `json:"valid"`
	ValidationErrors []string          `json:"validationErrors"`
	NormalizedScope  []models.LineItem `json:"normalizedScope"`
	ItemCount        int               `json:"itemCount"`
	TotalSquares     float64           `json:"totalSquares"`
	ScopeTotal       float64           `json:"scopeTotal"`
}
