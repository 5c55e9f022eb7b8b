// internal/workers/claim/score-severity/models.go
package scoreseverity

import "claims-workers/internal/models"

type Input struct {
	ClaimID     string              `json:"claimId"`
	DamageZones []models.DamageZone `json:"damageZones"`
}

type Output struct {
	OverallScore   float64                 `json:"overallScore"`
	Category       models.SeverityCategory `json:"severityCategory"`
	ZoneScores     []models.SeverityScore  `json:"zoneScores"`
	CriticalZones  []string                `json:"criticalZones"`
	RepairPriority []string                `json:"repairPriority"`
}
