// internal/workers/data-access/index-claim-results/models.go
package indexclaimresults

import "claims-workers/internal/models"

type Input struct {
	ClaimID      string                   `json:"claimId"`
	EvaluationID string                   `json:"evaluationId"`
	CarrierName  string                   `json:"carrierName"`
	Summary      models.ComplianceSummary `json:"complianceSummary"`
	Totals       models.SupplementTotals  `json:"supplementTotals"`
	OverallScore float64                  `json:"overallScore"`
	Category     models.SeverityCategory  `json:"severityCategory"`
	ClaimReport  map[string]interface{}   `json:"claimReport"`
}

type Output struct {
	Indexed    bool   `json:"indexed"`
	DocumentID string `json:"documentId"`
	IndexName  string `json:"indexName"`
}

// claimDocument is the flattened search document. Kept deliberately shallow
// so adjusters can filter on any field in Kibana.
type claimDocument struct {
	ClaimID         string                 `json:"claimId"`
	EvaluationID    string                 `json:"evaluationId"`
	Carrier         string                 `json:"carrier"`
	Verdict         string                 `json:"verdict"`
	ApprovalChance  int                    `json:"approvalChance"`
	CriticalIssues  int                    `json:"criticalIssues"`
	Warnings        int                    `json:"warnings"`
	SupplementTotal float64                `json:"supplementTotal"`
	SeverityScore   float64                `json:"severityScore"`
	Severity        string                 `json:"severity"`
	Report          map[string]interface{} `json:"report,omitempty"`
	IndexedAt       string                 `json:"indexedAt"`
}
