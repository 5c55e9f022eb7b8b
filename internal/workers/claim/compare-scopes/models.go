// internal/workers/claim/compare-scopes/models.go
package comparescopes

import "claims-workers/internal/models"

type Input struct {
	ClaimID         string              `json:"claimId"`
	ContractorScope []models.LineItem   `json:"contractorScope"`
	CarrierScope    []models.LineItem   `json:"carrierScope"`
	Jurisdiction    models.Jurisdiction `json:"jurisdiction"`
}

type Output struct {
	Comparison     models.ScopeComparison `json:"scopeComparison"`
	CodeUpgrades   []models.CodeUpgrade   `json:"codeUpgrades"`
	MissingCount   int                    `json:"missingCount"`
	UnderpaidCount int                    `json:"underpaidCount"`
	UnderpaidTotal float64                `json:"underpaidTotal"`
}
