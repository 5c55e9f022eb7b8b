// internal/scopediff/compare.go

// Package scopediff reconciles a contractor's scope against the carrier's
// issued scope: structured comparison, jurisdiction code upgrades, and the
// supplement package with persuasive arguments.
package scopediff

import (
	"time"

	"claims-workers/internal/common/genai"
	"claims-workers/internal/common/logger"
	"claims-workers/internal/models"
)

// Config carries the tunables that were magic numbers in earlier tooling.
// Defaults reproduce the observed behavior.
type Config struct {
	// PriceDeltaThreshold is the dollar gap below which a price difference
	// is ignored rather than classified underpaid/overpaid.
	PriceDeltaThreshold float64 `mapstructure:"price_delta_threshold"`

	// MaxArgumentItems caps how many underpaid items get generated prose,
	// bounding external call volume.
	MaxArgumentItems int `mapstructure:"max_argument_items"`

	// BatchSize and BatchDelay pace generation calls to stay under provider
	// rate limits.
	BatchSize  int           `mapstructure:"batch_size"`
	BatchDelay time.Duration `mapstructure:"batch_delay"`

	TaxRate float64 `mapstructure:"tax_rate"`
}

func DefaultConfig() Config {
	return Config{
		PriceDeltaThreshold: 50,
		MaxArgumentItems:    5,
		BatchSize:           5,
		BatchDelay:          time.Second,
		TaxRate:             0.0825,
	}
}

// Engine is the diff/supplement engine. The text generator is injected so
// tests run against a fake.
type Engine struct {
	config    Config
	generator genai.TextGenerator
	logger    logger.Logger
}

func NewEngine(cfg Config, gen genai.TextGenerator, log logger.Logger) *Engine {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	return &Engine{
		config:    cfg,
		generator: gen,
		logger:    log.WithFields(map[string]interface{}{"component": "scope-diff"}),
	}
}

// Compare diffs the contractor scope against the carrier scope. Items match
// by code first, then by case-insensitive description. An empty carrier
// scope (for example after a failed extraction) degrades to every contractor
// item reported missing.
func (e *Engine) Compare(contractor, carrier []models.LineItem) models.ScopeComparison {
	comparison := models.ScopeComparison{
		MissingItems:   []models.LineItem{},
		UnderpaidItems: []models.PriceDelta{},
		OverpaidItems:  []models.PriceDelta{},
		CodeMismatches: []models.CodeMismatch{},
	}

	for _, item := range contractor {
		match, found := findMatch(item, carrier)
		if !found {
			comparison.MissingItems = append(comparison.MissingItems, item)
			continue
		}

		diff := item.TotalPrice - match.TotalPrice
		switch {
		case diff > e.config.PriceDeltaThreshold:
			comparison.UnderpaidItems = append(comparison.UnderpaidItems, models.PriceDelta{
				Item:           item,
				ContractorPaid: item.TotalPrice,
				CarrierPaid:    match.TotalPrice,
				Difference:     diff,
			})
		case diff < -e.config.PriceDeltaThreshold:
			comparison.OverpaidItems = append(comparison.OverpaidItems, models.PriceDelta{
				Item:           item,
				ContractorPaid: item.TotalPrice,
				CarrierPaid:    match.TotalPrice,
				Difference:     -diff,
			})
		}

		// Same work under different trade codes is recorded irrespective
		// of price.
		if item.Code != "" && match.Code != "" && !item.MatchesCode(match.Code) {
			comparison.CodeMismatches = append(comparison.CodeMismatches, models.CodeMismatch{
				Description:    item.Description,
				ContractorCode: item.Code,
				CarrierCode:    match.Code,
			})
		}
	}

	return comparison
}

func findMatch(item models.LineItem, scope []models.LineItem) (models.LineItem, bool) {
	if item.Code != "" {
		for _, candidate := range scope {
			if candidate.MatchesCode(item.Code) {
				return candidate, true
			}
		}
	}
	for _, candidate := range scope {
		if candidate.MatchesDescription(item.Description) {
			return candidate, true
		}
	}
	return models.LineItem{}, false
}
