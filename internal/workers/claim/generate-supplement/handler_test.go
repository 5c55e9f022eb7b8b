// internal/workers/claim/generate-supplement/handler_test.go
package generatesupplement

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"claims-workers/internal/common/logger"
	"claims-workers/internal/models"
	"claims-workers/internal/scopediff"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu       sync.Mutex
	calls    int
	failWhen func(payload string) bool
	response string
}

func (f *fakeGenerator) Generate(_ context.Context, _, payload string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWhen != nil && f.failWhen(payload) {
		return "", errors.New("generation failed")
	}
	if f.response != "" {
		return f.response, nil
	}
	return "Generated argument prose.", nil
}

func newTestHandler(t *testing.T, gen *fakeGenerator) *Handler {
	cfg := scopediff.DefaultConfig()
	cfg.BatchDelay = 0
	engine := scopediff.NewEngine(cfg, gen, logger.NewTestLogger(t))
	return NewHandler(LoadConfig(), engine, logger.NewTestLogger(t))
}

func testComparison() models.ScopeComparison {
	return models.ScopeComparison{
		MissingItems: []models.LineItem{
			{Code: "RFG410", Description: "Drip edge", Quantity: 180, Unit: models.UnitLinearFoot, UnitPrice: 2.85, TotalPrice: 513},
		},
		UnderpaidItems: []models.PriceDelta{
			{
				Item:           models.LineItem{Code: "RFG220", Description: "3-tab shingle"},
				ContractorPaid: 8000,
				CarrierPaid:    7500,
				Difference:     500,
			},
		},
	}
}

func TestHandler_Execute_BuildsFullPackage(t *testing.T) {
	gen := &fakeGenerator{}
	h := newTestHandler(t, gen)

	upgrades := []models.CodeUpgrade{
		{ItemCode: "RFGIWS", Description: "Ice barrier at eaves", CodeSection: "IRC R905.1.2", Jurisdiction: "MN", EstimatedCost: 780, Required: true},
		{ItemCode: "RFGVENT", Description: "Attic ventilation", CodeSection: "IRC R806.2", EstimatedCost: 650, Required: false},
	}

	output, err := h.Execute(context.Background(), &Input{
		ClaimID:      "claim-1",
		CarrierName:  "State Farm",
		Comparison:   testComparison(),
		CodeUpgrades: upgrades,
		Jurisdiction: models.Jurisdiction{State: "MN"},
		Tone:         models.ToneFirm,
	})

	require.NoError(t, err)
	// missing + underpaid + required upgrade; recommended upgrade excluded
	require.Len(t, output.Arguments, 3)
	for _, arg := range output.Arguments {
		assert.NotEmpty(t, arg.Argument)
	}

	assert.Equal(t, models.ToneFirm, output.Script.Tone)
	assert.InDelta(t, 513+500+780, output.Script.TotalRequested, 0.01)

	assert.InDelta(t, 1793.0, output.Totals.Subtotal, 0.01)
	assert.InDelta(t, 1793.0*0.0825, output.Totals.Tax, 0.01)
	assert.InDelta(t, output.Totals.Subtotal+output.Totals.Tax, output.Totals.Total, 0.01)
}

func TestHandler_Execute_GenerationFailureKeepsNumbers(t *testing.T) {
	gen := &fakeGenerator{
		failWhen: func(payload string) bool {
			return strings.Contains(payload, "RFG220")
		},
	}
	h := newTestHandler(t, gen)

	output, err := h.Execute(context.Background(), &Input{
		ClaimID:     "claim-2",
		CarrierName: "Allstate",
		Comparison:  testComparison(),
	})

	require.NoError(t, err)
	require.Len(t, output.Arguments, 2)

	var underpaid *models.SupplementArgument
	for i := range output.Arguments {
		if output.Arguments[i].ItemCode == "RFG220" {
			underpaid = &output.Arguments[i]
		}
	}
	require.NotNil(t, underpaid)
	assert.Empty(t, underpaid.Argument)
	assert.InDelta(t, 500.0, underpaid.Difference, 0.01)
}

func TestHandler_Execute_UnknownToneFallsBack(t *testing.T) {
	gen := &fakeGenerator{}
	h := newTestHandler(t, gen)

	output, err := h.Execute(context.Background(), &Input{
		ClaimID:    "claim-3",
		Comparison: testComparison(),
		Tone:       models.NegotiationTone("sarcastic"),
	})

	require.NoError(t, err)
	assert.Equal(t, models.ToneProfessional, output.Script.Tone)
}

func TestHandler_Execute_EmptyComparison(t *testing.T) {
	gen := &fakeGenerator{}
	h := newTestHandler(t, gen)

	output, err := h.Execute(context.Background(), &Input{ClaimID: "claim-4"})

	require.NoError(t, err)
	assert.Empty(t, output.Arguments)
	assert.Zero(t, output.Totals.Total)
}
