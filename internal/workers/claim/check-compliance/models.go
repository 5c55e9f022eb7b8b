// internal/workers/claim/check-compliance/models.go
package checkcompliance

import "claims-workers/internal/models"

type Input struct {
	ClaimID     string `json:"claimId"`
	CarrierName string `json:"carrierName,omitempty"`
	// Carriers lists every carrier on a multi-carrier loss; when more than
	// one is present their rules are merged before evaluation.
	Carriers  []string          `json:"carriers,omitempty"`
	LineItems []models.LineItem `json:"normalizedScope"`
}

type Output struct {
	CarrierName   string                      `json:"carrierName"`
	RuleApplied   bool                        `json:"ruleApplied"`
	Conflicts     []models.ComplianceConflict `json:"conflicts"`
	AdjustedScope []models.LineItem           `json:"adjustedScope"`
	Adjustments   []models.ScopeAdjustment    `json:"adjustments"`
	Summary       models.ComplianceSummary    `json:"complianceSummary"`
}
