// internal/workers/claim/generate-supplement/models.go
package generatesupplement

import (
	"claims-workers/internal/models"
	"claims-workers/internal/scopediff"
)

type Input struct {
	ClaimID      string                 `json:"claimId"`
	CarrierName  string                 `json:"carrierName"`
	Comparison   models.ScopeComparison `json:"scopeComparison"`
	CodeUpgrades []models.CodeUpgrade   `json:"codeUpgrades"`
	Jurisdiction models.Jurisdiction    `json:"jurisdiction"`
	Tone         models.NegotiationTone `json:"tone,omitempty"`
}

type Output struct {
	Arguments []models.SupplementArgument `json:"supplementArguments"`
	Script    scopediff.NegotiationScript `json:"negotiationScript"`
	Totals    models.SupplementTotals     `json:"supplementTotals"`
}
