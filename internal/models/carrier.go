// internal/models/carrier.go
package models

// LineItemLimit is the structured form of a carrier's per-code price cap.
// Legacy policy data encodes these as "CODE <= 350/SQ" strings; the policy
// store parses and validates them once at construction time.
type LineItemLimit struct {
	Code     string  `json:"code"`
	MaxPrice float64 `json:"maxPrice"`
	Unit     Unit    `json:"unit"`
}

// CarrierRule is an immutable per-carrier underwriting rule record.
// Built once at process start; merged copies may be synthesized when a claim
// matches multiple carriers, but existing records are never mutated.
type CarrierRule struct {
	CarrierName               string          `json:"carrierName"`
	RequiresStarterRake       bool            `json:"requiresStarterRake"`
	AllowsIceAndWater         bool            `json:"allowsIceAndWater"`
	DripEdgeRequired          bool            `json:"dripEdgeRequired"`
	OverheadProfitAllowed     bool            `json:"overheadProfitAllowed"`
	WasteLimitPercent         float64         `json:"wasteLimitPercent,omitempty"`
	HasWasteLimit             bool            `json:"hasWasteLimit"`
	LineItemLimits            []LineItemLimit `json:"lineItemLimits"`
	RequiredItems             []string        `json:"requiredItems"`
	DeniedItems               []string        `json:"deniedItems"`
	CodeUpgradeRules          []string        `json:"codeUpgradeRules"`
	Notes                     []string        `json:"notes"`
	DocumentationRequirements []string        `json:"documentationRequirements"`
}

// DetectionSource identifies which signal produced a carrier detection.
type DetectionSource string

const (
	DetectedFromEmail    DetectionSource = "email_domain"
	DetectedFromDocument DetectionSource = "policy_document"
	DetectedFromNotes    DetectionSource = "notes"
	DetectedFromManual   DetectionSource = "manual_input"
	DetectedFromNone     DetectionSource = "none"
)

// CarrierDetection is the result of one detection strategy, or of the
// aggregate detector. A nil Rule with zero confidence means "unknown
// carrier"; downstream engines treat that as "no checks performed".
type CarrierDetection struct {
	CarrierName  string          `json:"carrierName,omitempty"`
	Confidence   float64         `json:"confidence"`
	DetectedFrom DetectionSource `json:"detectedFrom"`
	Rule         *CarrierRule    `json:"rule,omitempty"`
	Alternatives []string        `json:"alternatives,omitempty"`
}

// Resolved reports whether detection produced a usable carrier identity.
func (d CarrierDetection) Resolved() bool {
	return d.CarrierName != "" && d.Confidence > 0
}
