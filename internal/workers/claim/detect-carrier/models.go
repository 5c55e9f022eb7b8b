// internal/workers/claim/detect-carrier/models.go
package detectcarrier

import "claims-workers/internal/models"

type Input struct {
	ClaimID            string `json:"claimId"`
	ManualCarrier      string `json:"manualCarrier,omitempty"`
	AdjusterEmail      string `json:"adjusterEmail,omitempty"`
	PolicyDocumentText string `json:"policyDocumentText,omitempty"`
	AdjusterNotes      string `json:"adjusterNotes,omitempty"`
}

type Output struct {
	CarrierName   string                 `json:"carrierName"`
	Confidence    float64                `json:"confidence"`
	DetectedFrom  models.DetectionSource `json:"detectedFrom"`
	Supported     bool                   `json:"supported"`
	Alternatives  []string               `json:"alternatives"`
	CarrierRule   *models.CarrierRule    `json:"carrierRule,omitempty"`
	NeedsManualID bool                   `json:"needsManualId"`
}
