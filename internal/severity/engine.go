// internal/severity/engine.go

// Package severity scores damage zones and orders them for repair.
package severity

import (
	"math"
	"sort"

	"claims-workers/internal/common/logger"
	"claims-workers/internal/models"
)

// Sub-score weights. Structural impact and damage extent dominate.
const (
	weightExtent     = 0.30
	weightCondition  = 0.25
	weightStructural = 0.30
	weightUrgency    = 0.15

	criticalZoneThreshold = 7.0
)

var conditionScores = map[models.MaterialCondition]float64{
	models.ConditionExcellent: 1,
	models.ConditionGood:      3,
	models.ConditionFair:      5,
	models.ConditionPoor:      8,
	models.ConditionCritical:  10,
}

var urgencyScores = map[models.Urgency]float64{
	models.UrgencyLow:      2,
	models.UrgencyMedium:   5,
	models.UrgencyHigh:     8,
	models.UrgencyCritical: 10,
}

var urgencyRank = map[models.Urgency]int{
	models.UrgencyCritical: 3,
	models.UrgencyHigh:     2,
	models.UrgencyMedium:   1,
	models.UrgencyLow:      0,
}

// rankUrgency defaults unknown urgency to medium, matching the scoring
// fallback in ScoreZone.
func rankUrgency(u models.Urgency) int {
	if rank, ok := urgencyRank[u]; ok {
		return rank
	}
	return urgencyRank[models.UrgencyMedium]
}

// Engine scores damage zones. Stateless; safe for concurrent use.
type Engine struct {
	logger logger.Logger
}

func NewEngine(log logger.Logger) *Engine {
	return &Engine{
		logger: log.WithFields(map[string]interface{}{"component": "severity-engine"}),
	}
}

// ScoreZone computes the weighted severity score for one zone.
func (e *Engine) ScoreZone(zone models.DamageZone) models.SeverityScore {
	extent := extentScore(zone.CoveragePercent)
	condition := conditionScores[zone.MaterialCondition]
	if condition == 0 {
		condition = conditionScores[models.ConditionFair]
	}
	structural := 2.0
	if zone.StructuralImpact {
		structural = 10
	}
	urgency := urgencyScores[zone.Urgency]
	if urgency == 0 {
		urgency = urgencyScores[models.UrgencyMedium]
	}

	score := extent*weightExtent + condition*weightCondition + structural*weightStructural + urgency*weightUrgency
	score = math.Round(score*10) / 10

	return models.SeverityScore{
		ZoneName:        zone.Name,
		ExtentScore:     extent,
		ConditionScore:  condition,
		StructuralScore: structural,
		UrgencyScore:    urgency,
		Score:           score,
		Category:        categorize(score),
	}
}

// Assess scores every zone and builds the property-level report. The overall
// score is the unweighted mean of zone scores; zones count equally
// regardless of area.
func (e *Engine) Assess(zones []models.DamageZone) models.SeverityReport {
	report := models.SeverityReport{
		ZoneScores:     []models.SeverityScore{},
		CriticalZones:  []string{},
		RepairPriority: []string{},
		Category:       models.CategoryMinor,
	}
	if len(zones) == 0 {
		return report
	}

	var sum float64
	for _, zone := range zones {
		score := e.ScoreZone(zone)
		report.ZoneScores = append(report.ZoneScores, score)
		sum += score.Score
		if score.Score >= criticalZoneThreshold {
			report.CriticalZones = append(report.CriticalZones, zone.Name)
		}
	}

	report.OverallScore = math.Round(sum/float64(len(zones))*10) / 10
	report.Category = categorize(report.OverallScore)
	report.RepairPriority = e.prioritize(zones, report.ZoneScores)

	e.logger.Info("severity assessed", map[string]interface{}{
		"zones":    len(zones),
		"overall":  report.OverallScore,
		"category": report.Category,
	})
	return report
}

// prioritize orders zones by urgency rank, then score descending. The sort
// is stable so ties keep their input order.
func (e *Engine) prioritize(zones []models.DamageZone, scores []models.SeverityScore) []string {
	type ranked struct {
		name    string
		urgency int
		score   float64
	}
	order := make([]ranked, len(zones))
	for i, zone := range zones {
		order[i] = ranked{
			name:    zone.Name,
			urgency: rankUrgency(zone.Urgency),
			score:   scores[i].Score,
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].urgency != order[j].urgency {
			return order[i].urgency > order[j].urgency
		}
		return order[i].score > order[j].score
	})

	names := make([]string, len(order))
	for i, r := range order {
		names[i] = r.name
	}
	return names
}

func extentScore(coveragePercent float64) float64 {
	switch {
	case coveragePercent >= 75:
		return 10
	case coveragePercent >= 50:
		return 8
	case coveragePercent >= 25:
		return 6
	case coveragePercent >= 10:
		return 4
	default:
		return 2
	}
}

func categorize(score float64) models.SeverityCategory {
	switch {
	case score >= 8.5:
		return models.CategoryCatastrophic
	case score >= 6.5:
		return models.CategorySevere
	case score >= 4.0:
		return models.CategoryModerate
	default:
		return models.CategoryMinor
	}
}
