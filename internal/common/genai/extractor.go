// internal/common/genai/extractor.go
package genai

import (
	"context"
	"encoding/json"
	"strings"

	"claims-workers/internal/common/logger"
	"claims-workers/internal/models"
)

const extractionInstruction = `You convert insurance carrier scope documents into JSON.
Return ONLY a JSON array of line items, no prose. Each element:
{"code": string, "description": string, "quantity": number, "unit": "SQ"|"LF"|"EA"|"SF"|"HR", "unitPrice": number, "totalPrice": number}.
Use an empty string for a missing code. Skip headers, totals, and tax lines.`

// ScopeExtractor turns unstructured carrier scope text into line items via
// the text-generation service. Extraction failure degrades to an empty list;
// the comparison then treats every contractor item as missing.
type ScopeExtractor struct {
	generator TextGenerator
	logger    logger.Logger
}

func NewScopeExtractor(gen TextGenerator, log logger.Logger) *ScopeExtractor {
	return &ScopeExtractor{
		generator: gen,
		logger:    log.WithFields(map[string]interface{}{"component": "scope-extractor"}),
	}
}

func (x *ScopeExtractor) ExtractLineItems(ctx context.Context, rawText string) []models.LineItem {
	if strings.TrimSpace(rawText) == "" {
		return []models.LineItem{}
	}

	response, err := x.generator.Generate(ctx, extractionInstruction, rawText)
	if err != nil {
		x.logger.Warn("scope extraction call failed", map[string]interface{}{
			"error": err,
		})
		return []models.LineItem{}
	}

	items, err := parseLineItemJSON(response)
	if err != nil {
		x.logger.Warn("scope extraction returned unparseable output", map[string]interface{}{
			"error": err,
		})
		return []models.LineItem{}
	}

	valid := make([]models.LineItem, 0, len(items))
	for _, li := range items {
		if err := models.ValidateLineItem(li); err != nil {
			x.logger.Warn("dropping malformed extracted line item", map[string]interface{}{
				"code":  li.Code,
				"error": err,
			})
			continue
		}
		valid = append(valid, li)
	}
	return valid
}

// parseLineItemJSON tolerates markdown code fences around the JSON array.
func parseLineItemJSON(response string) ([]models.LineItem, error) {
	cleaned := strings.TrimSpace(response)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var items []models.LineItem
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, err
	}
	return items, nil
}
