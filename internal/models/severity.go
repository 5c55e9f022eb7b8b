// internal/models/severity.go
package models

// MaterialCondition grades the state of materials in a damage zone.
type MaterialCondition string

const (
	ConditionExcellent MaterialCondition = "excellent"
	ConditionGood      MaterialCondition = "good"
	ConditionFair      MaterialCondition = "fair"
	ConditionPoor      MaterialCondition = "poor"
	ConditionCritical  MaterialCondition = "critical"
)

// Urgency grades how quickly a zone needs repair.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// DamageZone is one observed area of damage on the property.
type DamageZone struct {
	Name              string            `json:"name"`
	DamageType        []string          `json:"damageType"`
	CoveragePercent   float64           `json:"coveragePercent"`
	MaterialCondition MaterialCondition `json:"materialCondition"`
	StructuralImpact  bool              `json:"structuralImpact"`
	Urgency           Urgency           `json:"urgency"`
}

// SeverityCategory buckets a severity score.
type SeverityCategory string

const (
	CategoryCatastrophic SeverityCategory = "catastrophic"
	CategorySevere       SeverityCategory = "severe"
	CategoryModerate     SeverityCategory = "moderate"
	CategoryMinor        SeverityCategory = "minor"
)

// SeverityScore is the derived score for one zone. Derived, never written
// back onto the zone.
type SeverityScore struct {
	ZoneName        string           `json:"zoneName"`
	ExtentScore     float64          `json:"extentScore"`
	ConditionScore  float64          `json:"conditionScore"`
	StructuralScore float64          `json:"structuralScore"`
	UrgencyScore    float64          `json:"urgencyScore"`
	Score           float64          `json:"score"`
	Category        SeverityCategory `json:"category"`
}

// SeverityReport is the property-level severity assessment.
type SeverityReport struct {
	ZoneScores     []SeverityScore  `json:"zoneScores"`
	OverallScore   float64          `json:"overallScore"`
	Category       SeverityCategory `json:"category"`
	CriticalZones  []string         `json:"criticalZones"`
	RepairPriority []string         `json:"repairPriority"`
}
