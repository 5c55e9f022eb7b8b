// internal/workers/communication/notify-adjuster/models.go
package notifyadjuster

import "claims-workers/internal/models"

type Input struct {
	ClaimID         string                   `json:"claimId"`
	AdjusterEmail   string                   `json:"adjusterEmail"`
	CarrierName     string                   `json:"carrierName"`
	Verdict         models.ComplianceVerdict `json:"overallCompliance"`
	ApprovalChance  int                      `json:"estimatedApprovalChance"`
	SupplementTotal float64                  `json:"supplementTotal"`
	Category        models.SeverityCategory  `json:"severityCategory"`
	CriticalZones   []string                 `json:"criticalZones"`
}

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"notificationStatus"`
	EmailSent      bool   `json:"emailSent"`
	AlertPublished bool   `json:"alertPublished"`
	SentAt         string `json:"sentAt"`
}
