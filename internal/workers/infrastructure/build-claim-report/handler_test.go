// internal/workers/infrastructure/build-claim-report/handler_test.go
package buildclaimreport

import (
	"context"
	"errors"
	"testing"

	"claims-workers/internal/common/logger"
	"claims-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func validInput() *Input {
	return &Input{
		ClaimID:      "claim-1",
		CarrierName:  "State Farm",
		DetectedFrom: models.DetectedFromEmail,
		Confidence:   0.95,
		Summary: models.ComplianceSummary{
			OverallCompliance:       models.VerdictNeedsRevision,
			EstimatedApprovalChance: 75,
			CriticalIssues:          1,
			Warnings:                1,
		},
		Comparison: models.ScopeComparison{
			MissingItems: []models.LineItem{
				{Code: "RFG410", Description: "Drip edge", Quantity: 180, Unit: models.UnitLinearFoot, UnitPrice: 2.85, TotalPrice: 513},
			},
		},
		Arguments: []models.SupplementArgument{
			{ItemCode: "RFG410", ItemDescription: "Drip edge", Difference: 513},
		},
		Totals:       models.SupplementTotals{Subtotal: 513, TaxRate: 0.0825, Tax: 42.32, Total: 555.32},
		OverallScore: 6.8,
		Category:     models.CategorySevere,
	}
}

func TestHandler_Execute_BuildsValidReport(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), validInput())

	require.NoError(t, err)
	assert.Equal(t, "claim-1", output.ClaimReport["claimId"])
	assert.NotEmpty(t, output.GeneratedAt)

	carrier := output.ClaimReport["carrier"].(map[string]interface{})
	assert.Equal(t, "State Farm", carrier["name"])

	reconciliation := output.ClaimReport["reconciliation"].(map[string]interface{})
	assert.Equal(t, 1, reconciliation["missingItems"])
	assert.InDelta(t, 555.32, reconciliation["requestedTotal"].(float64), 0.01)
}

func TestHandler_Execute_MissingClaimIDFailsValidation(t *testing.T) {
	h := newTestHandler(t)

	input := validInput()
	input.ClaimID = ""

	_, err := h.Execute(context.Background(), input)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReportValidationFailed))
}

func TestHandler_Execute_OutOfRangeSeverityFailsValidation(t *testing.T) {
	h := newTestHandler(t)

	input := validInput()
	input.OverallScore = 14.2

	_, err := h.Execute(context.Background(), input)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReportValidationFailed))
}

func TestHandler_Execute_UnknownCategoryFailsValidation(t *testing.T) {
	h := newTestHandler(t)

	input := validInput()
	input.Category = models.SeverityCategory("apocalyptic")

	_, err := h.Execute(context.Background(), input)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReportValidationFailed))
}
