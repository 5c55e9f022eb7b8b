// internal/scopediff/codeupgrades.go
package scopediff

import (
	"fmt"
	"strings"

	"claims-workers/internal/models"
)

// upgradeRequirement is one building-code requirement. The scope satisfies
// it when any keyword appears in an item description or code.
type upgradeRequirement struct {
	ItemCode      string
	Description   string
	CodeSection   string
	Reasoning     string
	EstimatedCost float64
	Required      bool
	Keywords      []string
}

// baselineUpgrades apply in every jurisdiction (model IRC adoption).
var baselineUpgrades = []upgradeRequirement{
	{
		ItemCode:      "RFG410",
		Description:   "Drip edge at eaves and rakes",
		CodeSection:   "IRC R905.2.8.5",
		Reasoning:     "A drip edge is required at eaves and rake edges for asphalt shingle roofs",
		EstimatedCost: 485,
		Required:      true,
		Keywords:      []string{"drip edge", "rfg410"},
	},
	{
		ItemCode:      "RFGVENT",
		Description:   "Attic ventilation to current ratio",
		CodeSection:   "IRC R806.2",
		Reasoning:     "Re-roof permits require net free ventilation area of 1/150 of the attic floor",
		EstimatedCost: 650,
		Required:      false,
		Keywords:      []string{"vent", "ridge vent", "turbine"},
	},
}

// stateUpgrades add state-specific requirements on top of the baseline.
var stateUpgrades = map[string][]upgradeRequirement{
	"FL": {
		{
			ItemCode:      "RFGNAIL",
			Description:   "Enhanced nailing pattern / secondary water barrier",
			CodeSection:   "FBC R4402 (HVHZ)",
			Reasoning:     "Florida re-roofs must meet current wind uplift and secondary water barrier requirements",
			EstimatedCost: 1250,
			Required:      true,
			Keywords:      []string{"secondary water", "peel and stick", "enhanced nail"},
		},
	},
	"TX": {
		{
			ItemCode:      "RFGCL4",
			Description:   "Class 4 impact-rated shingles",
			CodeSection:   "TDI windstorm guidance",
			Reasoning:     "Hail-prone Texas jurisdictions credit impact-rated shingles on replacement",
			EstimatedCost: 900,
			Required:      false,
			Keywords:      []string{"class 4", "impact resistant", "impact-rated"},
		},
	},
	"CA": {
		{
			ItemCode:      "RFGCOOL",
			Description:   "Cool-roof rated covering",
			CodeSection:   "CA Title 24 Part 6",
			Reasoning:     "California re-roofs over 50% of roof area must use cool-roof rated products",
			EstimatedCost: 1100,
			Required:      true,
			Keywords:      []string{"cool roof", "reflective", "cri listed"},
		},
	},
	"MN": {
		{
			ItemCode:      "RFGIWS",
			Description:   "Ice barrier at eaves",
			CodeSection:   "IRC R905.1.2",
			Reasoning:     "Ice barrier extending 24 inches inside the exterior wall line is mandatory in ice-dam regions",
			EstimatedCost: 780,
			Required:      true,
			Keywords:      []string{"ice & water", "ice and water", "ice barrier", "rfgiws"},
		},
	},
}

// CodeUpgrades returns every jurisdiction requirement the scope does not
// already satisfy.
func (e *Engine) CodeUpgrades(scope []models.LineItem, jur models.Jurisdiction) []models.CodeUpgrade {
	requirements := make([]upgradeRequirement, 0, len(baselineUpgrades)+2)
	requirements = append(requirements, baselineUpgrades...)
	requirements = append(requirements, stateUpgrades[strings.ToUpper(jur.State)]...)

	label := jurisdictionLabel(jur)
	var upgrades []models.CodeUpgrade
	for _, req := range requirements {
		if scopeSatisfies(scope, req.Keywords) {
			continue
		}
		upgrades = append(upgrades, models.CodeUpgrade{
			ItemCode:      req.ItemCode,
			Description:   req.Description,
			CodeSection:   req.CodeSection,
			Jurisdiction:  label,
			Reasoning:     req.Reasoning,
			EstimatedCost: req.EstimatedCost,
			Required:      req.Required,
		})
	}

	e.logger.Info("code upgrades evaluated", map[string]interface{}{
		"jurisdiction": label,
		"unmet":        len(upgrades),
	})
	return upgrades
}

func scopeSatisfies(scope []models.LineItem, keywords []string) bool {
	for _, li := range scope {
		desc := strings.ToLower(li.Description)
		code := strings.ToLower(li.Code)
		for _, kw := range keywords {
			if strings.Contains(desc, kw) || strings.Contains(code, kw) {
				return true
			}
		}
	}
	return false
}

func jurisdictionLabel(jur models.Jurisdiction) string {
	state := strings.ToUpper(jur.State)
	if jur.City != "" {
		return fmt.Sprintf("%s, %s", jur.City, state)
	}
	return state
}
