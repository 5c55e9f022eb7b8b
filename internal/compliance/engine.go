// internal/compliance/engine.go

// Package compliance evaluates a repair scope against a carrier's
// underwriting rules, producing conflicts, a corrected scope, and an
// approval prognosis.
package compliance

import (
	"fmt"
	"strings"

	"claims-workers/internal/common/logger"
	"claims-workers/internal/models"
	"claims-workers/internal/policy"
)

// Result bundles everything one evaluation produces.
type Result struct {
	Conflicts     []models.ComplianceConflict `json:"conflicts"`
	AdjustedScope []models.LineItem           `json:"adjustedScope"`
	Adjustments   []models.ScopeAdjustment    `json:"adjustments"`
	Summary       models.ComplianceSummary    `json:"summary"`
}

// Engine runs the rule passes. Stateless; safe for concurrent use.
type Engine struct {
	logger logger.Logger
}

func NewEngine(log logger.Logger) *Engine {
	return &Engine{
		logger: log.WithFields(map[string]interface{}{"component": "compliance-engine"}),
	}
}

// Evaluate checks a scope against a rule record. A nil rule means no checks
// are performed; the scope passes through unchanged with an approved
// summary, not an error.
func (e *Engine) Evaluate(scope []models.LineItem, rule *models.CarrierRule) Result {
	if rule == nil {
		adjusted := make([]models.LineItem, len(scope))
		copy(adjusted, scope)
		return Result{
			Conflicts:     []models.ComplianceConflict{},
			AdjustedScope: adjusted,
			Adjustments:   []models.ScopeAdjustment{},
			Summary:       e.summarize(nil, nil),
		}
	}

	var conflicts []models.ComplianceConflict
	conflicts = append(conflicts, e.checkMissingRequired(scope, rule)...)
	conflicts = append(conflicts, e.checkDeniedItems(scope, rule)...)
	conflicts = append(conflicts, e.checkPriceLimits(scope, rule)...)
	conflicts = append(conflicts, e.checkWaste(scope, rule)...)
	conflicts = append(conflicts, e.checkOverheadProfit(scope, rule)...)
	conflicts = append(conflicts, e.checkIceAndWater(scope, rule)...)

	adjusted, adjustments := e.adjustScope(scope, rule)
	summary := e.summarize(conflicts, rule)

	e.logger.Info("compliance evaluated", map[string]interface{}{
		"carrier":   rule.CarrierName,
		"items":     len(scope),
		"conflicts": len(conflicts),
		"verdict":   summary.OverallCompliance,
	})

	return Result{
		Conflicts:     conflicts,
		AdjustedScope: adjusted,
		Adjustments:   adjustments,
		Summary:       summary,
	}
}

func (e *Engine) checkMissingRequired(scope []models.LineItem, rule *models.CarrierRule) []models.ComplianceConflict {
	var out []models.ComplianceConflict
	for _, code := range rule.RequiredItems {
		if scopeHasCode(scope, code) {
			continue
		}
		desc := catalogDescription(code)
		out = append(out, models.ComplianceConflict{
			Type:            models.ConflictMissingRequired,
			Severity:        models.SeverityCritical,
			ItemCode:        code,
			ItemDescription: desc,
			Reason:          fmt.Sprintf("%s requires %s (%s) on every roof replacement scope", rule.CarrierName, code, desc),
			Recommendation:  fmt.Sprintf("Add %s to the scope before submission", code),
		})
	}
	return out
}

func (e *Engine) checkDeniedItems(scope []models.LineItem, rule *models.CarrierRule) []models.ComplianceConflict {
	var out []models.ComplianceConflict
	for _, li := range scope {
		for _, denied := range rule.DeniedItems {
			if !li.MatchesCode(denied) {
				continue
			}
			out = append(out, models.ComplianceConflict{
				Type:            models.ConflictDeniedItem,
				Severity:        models.SeverityCritical,
				ItemCode:        li.Code,
				ItemDescription: li.Description,
				Reason:          fmt.Sprintf("%s does not pay %s", rule.CarrierName, li.Code),
				Recommendation:  "Remove the item or document why it is unavoidable on this loss",
				CarrierNote:     findNote(rule, li.Code),
			})
		}
	}
	return out
}

func (e *Engine) checkPriceLimits(scope []models.LineItem, rule *models.CarrierRule) []models.ComplianceConflict {
	var out []models.ComplianceConflict
	for _, code := range uniqueLimitCodes(rule.LineItemLimits) {
		limit, _ := policy.MostRestrictiveLimit(rule.LineItemLimits, code)
		for _, li := range scope {
			if !li.MatchesCode(limit.Code) {
				continue
			}
			if li.UnitPrice <= limit.MaxPrice {
				continue
			}
			out = append(out, models.ComplianceConflict{
				Type:            models.ConflictExceedsLimit,
				Severity:        models.SeverityWarning,
				ItemCode:        li.Code,
				ItemDescription: li.Description,
				Reason: fmt.Sprintf("Unit price $%.2f exceeds %s cap of $%.2f/%s",
					li.UnitPrice, rule.CarrierName, limit.MaxPrice, limit.Unit),
				Recommendation: fmt.Sprintf("Reprice at or below $%.2f/%s or attach market pricing evidence", limit.MaxPrice, limit.Unit),
			})
		}
	}
	return out
}

func (e *Engine) checkWaste(scope []models.LineItem, rule *models.CarrierRule) []models.ComplianceConflict {
	if !rule.HasWasteLimit {
		return nil
	}

	var totalQty float64
	for _, li := range scope {
		totalQty += li.Quantity
	}
	if totalQty == 0 {
		return nil
	}

	var out []models.ComplianceConflict
	for _, li := range scope {
		if !isWasteItem(li) {
			continue
		}
		percent := li.Quantity / totalQty * 100
		if percent <= rule.WasteLimitPercent {
			continue
		}
		out = append(out, models.ComplianceConflict{
			Type:            models.ConflictWasteViolation,
			Severity:        models.SeverityCritical,
			ItemCode:        li.Code,
			ItemDescription: li.Description,
			Reason: fmt.Sprintf("Waste is %.1f%% of scope quantity; %s caps waste at %.0f%%",
				percent, rule.CarrierName, rule.WasteLimitPercent),
			Recommendation: "Justify the waste factor with cut-up roof measurements or reduce it",
		})
	}
	return out
}

func (e *Engine) checkOverheadProfit(scope []models.LineItem, rule *models.CarrierRule) []models.ComplianceConflict {
	if rule.OverheadProfitAllowed {
		return nil
	}
	var out []models.ComplianceConflict
	for _, li := range scope {
		if !isOverheadProfitItem(li) {
			continue
		}
		out = append(out, models.ComplianceConflict{
			Type:            models.ConflictOPDenied,
			Severity:        models.SeverityCritical,
			ItemCode:        li.Code,
			ItemDescription: li.Description,
			Reason:          fmt.Sprintf("%s does not allow overhead and profit on this loss type", rule.CarrierName),
			Recommendation:  "Remove O&P or document general contractor supervision across three or more trades",
			CarrierNote:     findNote(rule, "O&P"),
		})
	}
	return out
}

func (e *Engine) checkIceAndWater(scope []models.LineItem, rule *models.CarrierRule) []models.ComplianceConflict {
	if rule.AllowsIceAndWater {
		return nil
	}
	var out []models.ComplianceConflict
	for _, li := range scope {
		if !isIceAndWaterItem(li) {
			continue
		}
		out = append(out, models.ComplianceConflict{
			Type:            models.ConflictCodeUpgrade,
			Severity:        models.SeverityWarning,
			ItemCode:        li.Code,
			ItemDescription: li.Description,
			Reason:          fmt.Sprintf("%s pays ice and water shield only where code mandates it", rule.CarrierName),
			Recommendation:  "Cite the local code section requiring ice and water shield",
			CarrierNote:     firstUpgradeRule(rule, "ice"),
		})
	}
	return out
}

// summarize turns the conflict list into the approval prognosis. Confidence
// grows with the number of encoded price limits for the carrier: the more of
// its pricing book is on file, the more the verdict can be trusted.
func (e *Engine) summarize(conflicts []models.ComplianceConflict, rule *models.CarrierRule) models.ComplianceSummary {
	critical, warnings := 0, 0
	var required, optional, notes []string
	seenNotes := map[string]bool{}

	for _, c := range conflicts {
		switch c.Severity {
		case models.SeverityCritical:
			critical++
			required = append(required, c.Recommendation)
		case models.SeverityWarning:
			warnings++
			optional = append(optional, c.Recommendation)
		}
		if c.CarrierNote != "" && !seenNotes[c.CarrierNote] {
			seenNotes[c.CarrierNote] = true
			notes = append(notes, c.CarrierNote)
		}
	}
	if rule != nil {
		for _, n := range rule.Notes {
			if !seenNotes[n] {
				seenNotes[n] = true
				notes = append(notes, n)
			}
		}
	}

	chance := 100 - 20*critical - 5*warnings
	if chance < 0 {
		chance = 0
	}

	verdict := models.VerdictLikelyDenied
	switch {
	case critical == 0 && warnings <= 1:
		verdict = models.VerdictApproved
	case critical <= 2:
		verdict = models.VerdictNeedsRevision
	}

	limitCount := 0
	if rule != nil {
		limitCount = len(rule.LineItemLimits)
	}
	confidence := 60 + 5*limitCount
	if confidence > 95 {
		confidence = 95
	}

	return models.ComplianceSummary{
		OverallCompliance:       verdict,
		ConfidenceScore:         confidence,
		CriticalIssues:          critical,
		Warnings:                warnings,
		RequiredCorrections:     required,
		OptionalEnhancements:    optional,
		CarrierNotes:            notes,
		EstimatedApprovalChance: chance,
	}
}

func scopeHasCode(scope []models.LineItem, code string) bool {
	for _, li := range scope {
		if li.MatchesCode(code) {
			return true
		}
	}
	return false
}

func uniqueLimitCodes(limits []models.LineItemLimit) []string {
	seen := map[string]bool{}
	var codes []string
	for _, l := range limits {
		key := strings.ToUpper(l.Code)
		if !seen[key] {
			seen[key] = true
			codes = append(codes, l.Code)
		}
	}
	return codes
}

func isWasteItem(li models.LineItem) bool {
	return containsFold(li.Description, "waste") || containsFold(li.Code, "waste")
}

func isOverheadProfitItem(li models.LineItem) bool {
	for _, term := range []string{"overhead", "profit", "o&p"} {
		if containsFold(li.Description, term) || containsFold(li.Code, term) {
			return true
		}
	}
	return false
}

func isIceAndWaterItem(li models.LineItem) bool {
	for _, term := range []string{"ice & water", "ice and water", "ice/water"} {
		if containsFold(li.Description, term) {
			return true
		}
	}
	return containsFold(li.Code, "IWS")
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func findNote(rule *models.CarrierRule, keyword string) string {
	for _, n := range rule.Notes {
		if containsFold(n, keyword) {
			return n
		}
	}
	return ""
}

func firstUpgradeRule(rule *models.CarrierRule, keyword string) string {
	for _, r := range rule.CodeUpgradeRules {
		if containsFold(r, keyword) {
			return r
		}
	}
	return ""
}
