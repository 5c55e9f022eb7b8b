// internal/models/compliance.go
package models

// ConflictType classifies a compliance conflict.
type ConflictType string

const (
	ConflictMissingRequired ConflictType = "missing_required"
	ConflictDeniedItem      ConflictType = "denied_item"
	ConflictExceedsLimit    ConflictType = "exceeds_limit"
	ConflictWasteViolation  ConflictType = "waste_violation"
	ConflictOPDenied        ConflictType = "op_denied"
	ConflictCodeUpgrade     ConflictType = "code_upgrade_issue"
)

// ConflictSeverity ranks how strongly a conflict threatens approval.
type ConflictSeverity string

const (
	SeverityCritical ConflictSeverity = "critical"
	SeverityWarning  ConflictSeverity = "warning"
	SeverityInfo     ConflictSeverity = "info"
)

// ComplianceConflict is one detected rule violation in a scope.
type ComplianceConflict struct {
	Type            ConflictType     `json:"type"`
	Severity        ConflictSeverity `json:"severity"`
	ItemCode        string           `json:"itemCode,omitempty"`
	ItemDescription string           `json:"itemDescription"`
	Reason          string           `json:"reason"`
	Recommendation  string           `json:"recommendation"`
	CarrierNote     string           `json:"carrierNote,omitempty"`
}

// ComplianceVerdict is the overall outcome of a compliance check.
type ComplianceVerdict string

const (
	VerdictApproved      ComplianceVerdict = "approved"
	VerdictNeedsRevision ComplianceVerdict = "needs_revision"
	VerdictLikelyDenied  ComplianceVerdict = "likely_denied"
)

// ComplianceSummary aggregates conflicts into an approval prognosis.
type ComplianceSummary struct {
	OverallCompliance       ComplianceVerdict `json:"overallCompliance"`
	ConfidenceScore         int               `json:"confidenceScore"`
	CriticalIssues          int               `json:"criticalIssues"`
	Warnings                int               `json:"warnings"`
	RequiredCorrections     []string          `json:"requiredCorrections"`
	OptionalEnhancements    []string          `json:"optionalEnhancements"`
	CarrierNotes            []string          `json:"carrierNotes"`
	EstimatedApprovalChance int               `json:"estimatedApprovalChance"`
}

// ScopeAdjustment records one change the compliance engine made while
// producing the corrected scope.
type ScopeAdjustment struct {
	ItemCode string `json:"itemCode"`
	Action   string `json:"action"` // price_clamped, item_removed, item_added
	Reason   string `json:"reason"`
}
