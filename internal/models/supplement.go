// internal/models/supplement.go
package models

// PriceDelta pairs a matched line item with the dollar gap between the
// contractor's price and the carrier's price.
type PriceDelta struct {
	Item           LineItem `json:"item"`
	ContractorPaid float64  `json:"contractorPaid"`
	CarrierPaid    float64  `json:"carrierPaid"`
	Difference     float64  `json:"difference"`
}

// CodeMismatch records the same work priced under different trade codes.
type CodeMismatch struct {
	Description    string `json:"description"`
	ContractorCode string `json:"contractorCode"`
	CarrierCode    string `json:"carrierCode"`
}

// ScopeComparison is the structured diff of a contractor scope against the
// carrier-issued scope.
type ScopeComparison struct {
	MissingItems   []LineItem     `json:"missingItems"`
	UnderpaidItems []PriceDelta   `json:"underpaidItems"`
	OverpaidItems  []PriceDelta   `json:"overpaidItems"`
	CodeMismatches []CodeMismatch `json:"codeMismatches"`
}

// CodeUpgrade is a jurisdiction-specific building-code requirement the
// carrier scope does not yet satisfy.
type CodeUpgrade struct {
	ItemCode      string  `json:"itemCode"`
	Description   string  `json:"description"`
	CodeSection   string  `json:"codeSection"`
	Jurisdiction  string  `json:"jurisdiction"`
	Reasoning     string  `json:"reasoning"`
	EstimatedCost float64 `json:"estimatedCost"`
	Required      bool    `json:"required"`
}

// SupplementArgument is one negotiable line in a supplement package. The
// Argument prose comes from the text-generation service; every other field
// is deterministic engine output and survives a failed generation call.
type SupplementArgument struct {
	ItemCode        string   `json:"itemCode"`
	ItemDescription string   `json:"itemDescription"`
	ClaimAmount     float64  `json:"claimAmount"`
	CarrierAmount   float64  `json:"carrierAmount"`
	Difference      float64  `json:"difference"`
	Argument        string   `json:"argument"`
	Evidence        []string `json:"evidence"`
	CodeReferences  []string `json:"codeReferences"`
	PhotoReferences []string `json:"photoReferences"`
}

// SupplementTotals carries the locally computed money summary; the numeric
// total is never delegated to the text-generation service.
type SupplementTotals struct {
	Subtotal float64 `json:"subtotal"`
	TaxRate  float64 `json:"taxRate"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// NegotiationTone selects the instruction preset for the negotiation script.
type NegotiationTone string

const (
	ToneProfessional NegotiationTone = "professional"
	ToneFirm         NegotiationTone = "firm"
	ToneLegal        NegotiationTone = "legal"
)
