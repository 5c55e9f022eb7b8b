// internal/scopediff/codeupgrades_test.go
package scopediff

import (
	"testing"

	"claims-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upgradeCodes(upgrades []models.CodeUpgrade) []string {
	codes := make([]string, len(upgrades))
	for i, u := range upgrades {
		codes[i] = u.ItemCode
	}
	return codes
}

func TestCodeUpgrades_BaselineOnly(t *testing.T) {
	e := newTestDiffEngine(t, &fakeGenerator{})

	scope := []models.LineItem{
		{Code: "RFG240", Description: "Laminated shingles"},
	}

	upgrades := e.CodeUpgrades(scope, models.Jurisdiction{State: "oh"})

	codes := upgradeCodes(upgrades)
	assert.Contains(t, codes, "RFG410")
	assert.Contains(t, codes, "RFGVENT")
	assert.Len(t, upgrades, 2)
	for _, u := range upgrades {
		assert.Equal(t, "OH", u.Jurisdiction)
	}
}

func TestCodeUpgrades_StateSpecific(t *testing.T) {
	e := newTestDiffEngine(t, &fakeGenerator{})

	scope := []models.LineItem{
		{Code: "RFG240", Description: "Laminated shingles"},
	}

	upgrades := e.CodeUpgrades(scope, models.Jurisdiction{City: "Minneapolis", State: "MN"})

	codes := upgradeCodes(upgrades)
	assert.Contains(t, codes, "RFGIWS")

	var iws models.CodeUpgrade
	for _, u := range upgrades {
		if u.ItemCode == "RFGIWS" {
			iws = u
		}
	}
	require.NotZero(t, iws.ItemCode)
	assert.Equal(t, "Minneapolis, MN", iws.Jurisdiction)
	assert.True(t, iws.Required)
	assert.Equal(t, "IRC R905.1.2", iws.CodeSection)
}

func TestCodeUpgrades_SatisfiedRequirementsSkipped(t *testing.T) {
	e := newTestDiffEngine(t, &fakeGenerator{})

	scope := []models.LineItem{
		{Code: "RFG410", Description: "Drip edge at eaves and rakes"},
		{Code: "RFGVENT", Description: "Ridge vent installation"},
		{Code: "RFGIWS", Description: "Ice & water barrier at eaves"},
	}

	upgrades := e.CodeUpgrades(scope, models.Jurisdiction{State: "MN"})
	assert.Empty(t, upgrades)
}

func TestCodeUpgrades_UnknownStateFallsBackToBaseline(t *testing.T) {
	e := newTestDiffEngine(t, &fakeGenerator{})

	upgrades := e.CodeUpgrades(nil, models.Jurisdiction{State: "ZZ"})
	assert.Len(t, upgrades, 2)
}
