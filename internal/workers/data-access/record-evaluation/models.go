// internal/workers/data-access/record-evaluation/models.go
package recordevaluation

import "claims-workers/internal/models"

type Input struct {
	ClaimID       string                   `json:"claimId"`
	CarrierName   string                   `json:"carrierName"`
	Summary       models.ComplianceSummary `json:"complianceSummary"`
	SupplementAsk float64                  `json:"supplementTotal"`
	OverallScore  float64                  `json:"overallScore"`
	Category      models.SeverityCategory  `json:"severityCategory"`
	ClaimReport   map[string]interface{}   `json:"claimReport"`
}

type Output struct {
	EvaluationID string `json:"evaluationId"`
	RecordedAt   string `json:"recordedAt"`
}
