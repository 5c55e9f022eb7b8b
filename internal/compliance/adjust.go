// internal/compliance/adjust.go
package compliance

import (
	"fmt"

	"claims-workers/internal/models"
	"claims-workers/internal/policy"
)

// catalogEntry fixes the description, unit, and default pricing used when a
// missing required item has to be synthesized into the corrected scope.
type catalogEntry struct {
	Description string
	Unit        models.Unit
	UnitPrice   float64
}

var requiredItemCatalog = map[string]catalogEntry{
	"RFG220": {"3 tab - 25 yr. - composition shingle roofing", models.UnitSquare, 295.00},
	"RFG240": {"Laminated - comp. shingle rfg. - w/out felt", models.UnitSquare, 385.00},
	"RFG300": {"Roofing felt - 15 lb.", models.UnitSquare, 32.50},
	"RFG410": {"Drip edge", models.UnitLinearFoot, 2.85},
	"RFG420": {"Asphalt starter - universal starter course", models.UnitLinearFoot, 1.95},
	"RFGIWS": {"Ice & water barrier", models.UnitSquareFoot, 1.85},
}

const (
	// Perimeter items (drip edge, starter) run roughly 4.5 linear feet per
	// roofing square on a typical gable roof.
	linearFeetPerSquare = 4.5

	// Floor applied to every synthesized quantity so tiny or SQ-less scopes
	// still get a usable line.
	minSynthesizedQuantity = 10
)

func catalogDescription(code string) string {
	if entry, ok := requiredItemCatalog[code]; ok {
		return entry.Description
	}
	return code
}

// adjustScope produces the corrected scope: prices clamped to carrier caps,
// denied and disallowed O&P lines zeroed, missing required lines
// synthesized. The input scope is never mutated.
func (e *Engine) adjustScope(scope []models.LineItem, rule *models.CarrierRule) ([]models.LineItem, []models.ScopeAdjustment) {
	adjusted := make([]models.LineItem, 0, len(scope)+len(rule.RequiredItems))
	adjustments := []models.ScopeAdjustment{}

	deniedSet := map[string]bool{}
	for _, code := range rule.DeniedItems {
		deniedSet[code] = true
	}

	for _, li := range scope {
		item := li

		if limit, ok := policy.MostRestrictiveLimit(rule.LineItemLimits, item.Code); ok && item.UnitPrice > limit.MaxPrice {
			item.UnitPrice = limit.MaxPrice
			item.TotalPrice = item.Quantity * limit.MaxPrice
			adjustments = append(adjustments, models.ScopeAdjustment{
				ItemCode: item.Code,
				Action:   "price_clamped",
				Reason:   fmt.Sprintf("Unit price reduced to %s cap of $%.2f/%s", rule.CarrierName, limit.MaxPrice, limit.Unit),
			})
		}

		if isDenied(item, deniedSet) || (!rule.OverheadProfitAllowed && isOverheadProfitItem(item)) {
			item.Quantity = 0
			item.TotalPrice = 0
			adjustments = append(adjustments, models.ScopeAdjustment{
				ItemCode: item.Code,
				Action:   "item_removed",
				Reason:   fmt.Sprintf("%s does not pay this item; quantity zeroed", rule.CarrierName),
			})
		}

		adjusted = append(adjusted, item)
	}

	totalSquares := models.TotalSquares(scope)
	for _, code := range rule.RequiredItems {
		if scopeHasCode(scope, code) {
			continue
		}
		line := synthesizeRequiredItem(code, totalSquares)
		// Catalog pricing is subject to the same caps as submitted lines.
		if limit, ok := policy.MostRestrictiveLimit(rule.LineItemLimits, line.Code); ok && line.UnitPrice > limit.MaxPrice {
			line.UnitPrice = limit.MaxPrice
			line.TotalPrice = line.Quantity * limit.MaxPrice
		}
		adjusted = append(adjusted, line)
		adjustments = append(adjustments, models.ScopeAdjustment{
			ItemCode: code,
			Action:   "item_added",
			Reason:   fmt.Sprintf("Added %s required line, quantity estimated from %.1f squares", rule.CarrierName, totalSquares),
		})
	}

	return adjusted, adjustments
}

// synthesizeRequiredItem builds a missing required line. Perimeter items get
// 4.5 LF per square; everything else defaults to the scope's square count,
// floored at 10 units either way.
func synthesizeRequiredItem(code string, totalSquares float64) models.LineItem {
	entry, known := requiredItemCatalog[code]
	if !known {
		entry = catalogEntry{Description: code, Unit: models.UnitEach, UnitPrice: 0}
	}

	var qty float64
	if entry.Unit == models.UnitLinearFoot {
		qty = totalSquares * linearFeetPerSquare
	} else {
		qty = totalSquares
	}
	if qty < minSynthesizedQuantity {
		qty = minSynthesizedQuantity
	}

	return models.LineItem{
		Code:        code,
		Description: entry.Description,
		Quantity:    qty,
		Unit:        entry.Unit,
		UnitPrice:   entry.UnitPrice,
		TotalPrice:  qty * entry.UnitPrice,
	}
}

func isDenied(li models.LineItem, deniedSet map[string]bool) bool {
	for code := range deniedSet {
		if li.MatchesCode(code) {
			return true
		}
	}
	return false
}
