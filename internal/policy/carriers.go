// internal/policy/carriers.go
package policy

// rawCarrier is the seed record for one carrier, with limits still in the
// legacy string encoding. Parsed and validated in NewStore.
type rawCarrier struct {
	Name                      string
	Aliases                   []string
	RequiresStarterRake       bool
	AllowsIceAndWater         bool
	DripEdgeRequired          bool
	OverheadProfitAllowed     bool
	WasteLimitPercent         float64
	HasWasteLimit             bool
	LineItemLimits            []string
	RequiredItems             []string
	DeniedItems               []string
	CodeUpgradeRules          []string
	Notes                     []string
	DocumentationRequirements []string
}

// carrierTable is the static underwriting rule table. Compiled from adjuster
// guideline sheets; amounts are per-unit caps in USD.
var carrierTable = []rawCarrier{
	{
		Name:                  "State Farm",
		Aliases:               []string{"state farm", "statefarm", "state farm insurance"},
		AllowsIceAndWater:     true,
		DripEdgeRequired:      true,
		OverheadProfitAllowed: true,
		WasteLimitPercent:     15,
		HasWasteLimit:         true,
		LineItemLimits:        []string{"RFG220 <= 350/SQ", "RFG240 <= 425/SQ"},
		RequiredItems:         []string{"RFG410"},
		CodeUpgradeRules:      []string{"Code upgrades require ordinance or law endorsement on the policy"},
		Notes:                 []string{"Prefers Xactimate pricing for the loss region"},
		DocumentationRequirements: []string{
			"Photos of each roof slope",
			"Itemized estimate with trade codes",
		},
	},
	{
		Name:                  "Allstate",
		Aliases:               []string{"allstate", "allstate insurance", "all state"},
		RequiresStarterRake:   true,
		AllowsIceAndWater:     true,
		OverheadProfitAllowed: false,
		WasteLimitPercent:     10,
		HasWasteLimit:         true,
		LineItemLimits:        []string{"RFG220 <= 325/SQ", "RFG300 <= 85/SQ"},
		DeniedItems:           []string{"RFG460"},
		CodeUpgradeRules:      []string{"Drip edge denied unless required by local code"},
		Notes:                 []string{"O&P only with three or more trades and a GC agreement"},
		DocumentationRequirements: []string{
			"Steep-charge photos when slope exceeds 7/12",
		},
	},
	{
		Name:                  "USAA",
		Aliases:               []string{"usaa", "united services automobile association"},
		AllowsIceAndWater:     true,
		DripEdgeRequired:      true,
		OverheadProfitAllowed: true,
		LineItemLimits:        []string{"RFG240 <= 450/SQ"},
		RequiredItems:         []string{"RFG300"},
		Notes:                 []string{"Generally contractor-friendly on supplements"},
		DocumentationRequirements: []string{
			"Signed contract with the insured",
		},
	},
	{
		Name:                  "Farmers",
		Aliases:               []string{"farmers", "farmers insurance", "farmers ins"},
		AllowsIceAndWater:     false,
		OverheadProfitAllowed: false,
		WasteLimitPercent:     12,
		HasWasteLimit:         true,
		LineItemLimits:        []string{"RFG220 <= 340/SQ"},
		DeniedItems:           []string{"RFG470"},
		CodeUpgradeRules:      []string{"Ice and water shield denied outside mandatory code zones"},
		DocumentationRequirements: []string{
			"Weather report for date of loss",
		},
	},
	{
		Name:                  "Liberty Mutual",
		Aliases:               []string{"liberty mutual", "liberty", "libertymutual"},
		RequiresStarterRake:   true,
		AllowsIceAndWater:     false,
		DripEdgeRequired:      true,
		OverheadProfitAllowed: true,
		WasteLimitPercent:     10,
		HasWasteLimit:         true,
		LineItemLimits:        []string{"RFG220 <= 345/SQ", "RFG410 <= 3.10/LF"},
		RequiredItems:         []string{"RFG410", "RFG420"},
		DocumentationRequirements: []string{
			"Eagleview or equivalent roof measurement report",
		},
	},
	{
		Name:                  "Nationwide",
		Aliases:               []string{"nationwide", "nationwide insurance"},
		AllowsIceAndWater:     true,
		OverheadProfitAllowed: true,
		WasteLimitPercent:     15,
		HasWasteLimit:         true,
		CodeUpgradeRules:      []string{"Ventilation upgrades denied without an engineer report"},
		Notes:                 []string{"Slow on supplement turnaround; expect 10+ business days"},
	},
	{
		Name:                  "American Family",
		Aliases:               []string{"american family", "amfam", "american family insurance"},
		AllowsIceAndWater:     true,
		OverheadProfitAllowed: false,
		WasteLimitPercent:     12,
		HasWasteLimit:         true,
		LineItemLimits:        []string{"RFG220 <= 330/SQ"},
		DocumentationRequirements: []string{
			"Hail hit count per test square",
		},
	},
	{
		Name:                  "Travelers",
		Aliases:               []string{"travelers", "travelers insurance", "travellers"},
		AllowsIceAndWater:     true,
		DripEdgeRequired:      true,
		OverheadProfitAllowed: true,
		WasteLimitPercent:     15,
		HasWasteLimit:         true,
		LineItemLimits:        []string{"RFG240 <= 440/SQ", "RFG300 <= 90/SQ"},
		RequiredItems:         []string{"RFG300"},
		Notes:                 []string{"Requires supplement submission within 30 days of ACV payment"},
	},
}
