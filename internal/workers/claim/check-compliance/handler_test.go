// internal/workers/claim/check-compliance/handler_test.go
package checkcompliance

import (
	"context"
	"testing"

	"claims-workers/internal/common/logger"
	"claims-workers/internal/models"
	"claims-workers/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	store, err := policy.NewStore()
	require.NoError(t, err)
	return NewHandler(LoadConfig(), store, logger.NewTestLogger(t))
}

func shingleScope() []models.LineItem {
	return []models.LineItem{
		{Code: "RFG220", Description: "3-tab comp shingle", Quantity: 25, Unit: models.UnitSquare, UnitPrice: 400, TotalPrice: 10000},
		{Code: "RFG410", Description: "Drip edge", Quantity: 180, Unit: models.UnitLinearFoot, UnitPrice: 2.85, TotalPrice: 513},
	}
}

func TestHandler_Execute_ClampsOverLimitItem(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		ClaimID:     "claim-1",
		CarrierName: "State Farm",
		LineItems:   shingleScope(),
	})

	require.NoError(t, err)
	assert.True(t, output.RuleApplied)
	assert.Equal(t, "State Farm", output.CarrierName)

	var clamped *models.LineItem
	for i := range output.AdjustedScope {
		if output.AdjustedScope[i].Code == "RFG220" {
			clamped = &output.AdjustedScope[i]
		}
	}
	require.NotNil(t, clamped)
	assert.Equal(t, 350.0, clamped.UnitPrice)

	var sawLimitConflict bool
	for _, c := range output.Conflicts {
		if c.Type == models.ConflictExceedsLimit {
			sawLimitConflict = true
		}
	}
	assert.True(t, sawLimitConflict)
}

func TestHandler_Execute_MissingRequiredItemSynthesized(t *testing.T) {
	h := newTestHandler(t)

	scope := []models.LineItem{
		{Code: "RFG220", Description: "3-tab comp shingle", Quantity: 25, Unit: models.UnitSquare, UnitPrice: 300, TotalPrice: 7500},
	}

	output, err := h.Execute(context.Background(), &Input{
		ClaimID:     "claim-2",
		CarrierName: "statefarm",
		LineItems:   scope,
	})

	require.NoError(t, err)

	var sawMissing bool
	for _, c := range output.Conflicts {
		if c.Type == models.ConflictMissingRequired && c.ItemCode == "RFG410" {
			sawMissing = true
		}
	}
	assert.True(t, sawMissing)

	var synthesized *models.LineItem
	for i := range output.AdjustedScope {
		if output.AdjustedScope[i].Code == "RFG410" {
			synthesized = &output.AdjustedScope[i]
		}
	}
	require.NotNil(t, synthesized)
	// 25 squares at 4.5 LF per square
	assert.InDelta(t, 112.5, synthesized.Quantity, 0.01)
}

func TestHandler_Execute_UnknownCarrierPassesThrough(t *testing.T) {
	h := newTestHandler(t)

	scope := shingleScope()
	output, err := h.Execute(context.Background(), &Input{
		ClaimID:     "claim-3",
		CarrierName: "Mom and Pop Mutual",
		LineItems:   scope,
	})

	require.NoError(t, err)
	assert.False(t, output.RuleApplied)
	assert.Empty(t, output.Conflicts)
	assert.Equal(t, scope, output.AdjustedScope)
	assert.Equal(t, models.VerdictApproved, output.Summary.OverallCompliance)
}

func TestHandler_Execute_MergedCarriers(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		ClaimID:   "claim-4",
		Carriers:  []string{"State Farm", "Allstate"},
		LineItems: shingleScope(),
	})

	require.NoError(t, err)
	assert.True(t, output.RuleApplied)
	assert.Contains(t, output.CarrierName, "State Farm")
	assert.Contains(t, output.CarrierName, "Allstate")
}

func TestHandler_Execute_InvalidScopeFails(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{
		ClaimID:     "claim-5",
		CarrierName: "State Farm",
		LineItems: []models.LineItem{
			{Code: "RFG220", Quantity: -1, Unit: models.UnitSquare},
		},
	})

	require.Error(t, err)
}
