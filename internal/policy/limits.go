// internal/policy/limits.go
package policy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"claims-workers/internal/models"
)

// Legacy policy data encodes price caps as "RFG220 <= 350/SQ". The store
// parses these once at construction; a malformed entry is a load-time
// validation error, never a silent per-evaluation skip.
var legacyLimitPattern = regexp.MustCompile(`^\s*(\S+)\s*<=\s*\$?(\d+(?:\.\d+)?)\s*/\s*([A-Za-z]{2})\s*$`)

// ParseLegacyLimit converts a legacy limit string into a structured record.
func ParseLegacyLimit(raw string) (models.LineItemLimit, error) {
	m := legacyLimitPattern.FindStringSubmatch(raw)
	if m == nil {
		return models.LineItemLimit{}, fmt.Errorf("malformed line item limit %q: want \"<code> <= <price>/<unit>\"", raw)
	}

	price, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return models.LineItemLimit{}, fmt.Errorf("malformed price in limit %q: %w", raw, err)
	}

	unit := models.Unit(strings.ToUpper(m[3]))
	valid := false
	for _, u := range models.ValidUnits {
		if unit == u {
			valid = true
			break
		}
	}
	if !valid {
		return models.LineItemLimit{}, fmt.Errorf("unknown unit in limit %q", raw)
	}

	return models.LineItemLimit{
		Code:     strings.ToUpper(m[1]),
		MaxPrice: price,
		Unit:     unit,
	}, nil
}

// ParseLegacyLimits parses a whole legacy limit list, failing on the first
// malformed entry.
func ParseLegacyLimits(raw []string) ([]models.LineItemLimit, error) {
	limits := make([]models.LineItemLimit, 0, len(raw))
	for _, entry := range raw {
		limit, err := ParseLegacyLimit(entry)
		if err != nil {
			return nil, err
		}
		limits = append(limits, limit)
	}
	return limits, nil
}

// MostRestrictiveLimit returns the lowest cap for a code among possibly
// duplicated limits (merged rules concatenate lists without deduplication).
func MostRestrictiveLimit(limits []models.LineItemLimit, code string) (models.LineItemLimit, bool) {
	var best models.LineItemLimit
	found := false
	for _, l := range limits {
		if !strings.EqualFold(l.Code, code) {
			continue
		}
		if !found || l.MaxPrice < best.MaxPrice {
			best = l
			found = true
		}
	}
	return best, found
}
