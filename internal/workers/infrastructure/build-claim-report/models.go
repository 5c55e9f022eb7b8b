// internal/workers/infrastructure/build-claim-report/models.go
package buildclaimreport

import (
	"claims-workers/internal/models"
)

type Input struct {
	ClaimID        string                      `json:"claimId"`
	CarrierName    string                      `json:"carrierName"`
	DetectedFrom   models.DetectionSource      `json:"detectedFrom,omitempty"`
	Confidence     float64                     `json:"confidence,omitempty"`
	Summary        models.ComplianceSummary    `json:"complianceSummary"`
	Conflicts      []models.ComplianceConflict `json:"conflicts"`
	AdjustedScope  []models.LineItem           `json:"adjustedScope"`
	Comparison     models.ScopeComparison      `json:"scopeComparison"`
	Arguments      []models.SupplementArgument `json:"supplementArguments"`
	Totals         models.SupplementTotals     `json:"supplementTotals"`
	OverallScore   float64                     `json:"overallScore"`
	Category       models.SeverityCategory     `json:"severityCategory"`
	CriticalZones  []string                    `json:"criticalZones"`
	RepairPriority []string                    `json:"repairPriority"`
}

type Output struct {
	ClaimReport map[string]interface{} `json:"claimReport"`
	GeneratedAt string                 `json:"reportGeneratedAt"`
}
