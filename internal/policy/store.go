// internal/policy/store.go

// Package policy holds the in-memory per-carrier underwriting rule table.
// Lookup here is case-insensitive exact match only; fuzzy matching lives in
// the carrier detector.
package policy

import (
	"fmt"
	"sort"
	"strings"

	"claims-workers/internal/models"
)

const (
	// DefaultStrictness is returned for carriers not present in the store.
	DefaultStrictness = 5

	// DefaultWasteLimitPercent stands in for carriers without an explicit
	// waste cap when merging rules.
	DefaultWasteLimitPercent = 15
)

// Store is the read-only policy lookup contract.
type Store interface {
	GetRule(name string) (*models.CarrierRule, bool)
	ListCarriers() []string
	IsSupported(name string) bool
	StrictnessScore(name string) int
	MergeRules(names []string) *models.CarrierRule
	ResolveAlias(input string) (string, bool)
	Aliases(name string) []string
}

type memoryStore struct {
	rules   map[string]*models.CarrierRule // keyed by lowercase canonical name
	names   []string                       // canonical names, sorted
	aliases map[string]string              // lowercase alias -> canonical name
}

// NewStore builds the store from the static carrier table. Legacy limit
// strings are parsed here; any malformed entry fails construction.
func NewStore() (Store, error) {
	s := &memoryStore{
		rules:   make(map[string]*models.CarrierRule, len(carrierTable)),
		aliases: make(map[string]string),
	}

	for _, raw := range carrierTable {
		limits, err := ParseLegacyLimits(raw.LineItemLimits)
		if err != nil {
			return nil, fmt.Errorf("carrier %s: %w", raw.Name, err)
		}

		rule := &models.CarrierRule{
			CarrierName:               raw.Name,
			RequiresStarterRake:       raw.RequiresStarterRake,
			AllowsIceAndWater:         raw.AllowsIceAndWater,
			DripEdgeRequired:          raw.DripEdgeRequired,
			OverheadProfitAllowed:     raw.OverheadProfitAllowed,
			WasteLimitPercent:         raw.WasteLimitPercent,
			HasWasteLimit:             raw.HasWasteLimit,
			LineItemLimits:            limits,
			RequiredItems:             raw.RequiredItems,
			DeniedItems:               raw.DeniedItems,
			CodeUpgradeRules:          raw.CodeUpgradeRules,
			Notes:                     raw.Notes,
			DocumentationRequirements: raw.DocumentationRequirements,
		}

		key := strings.ToLower(raw.Name)
		if _, dup := s.rules[key]; dup {
			return nil, fmt.Errorf("duplicate carrier %s in policy table", raw.Name)
		}
		s.rules[key] = rule
		s.names = append(s.names, raw.Name)

		s.aliases[key] = raw.Name
		for _, alias := range raw.Aliases {
			s.aliases[strings.ToLower(strings.TrimSpace(alias))] = raw.Name
		}
	}

	sort.Strings(s.names)
	return s, nil
}

// MustNewStore panics on table errors. The table is static, so a failure
// here is a programming error caught at startup.
func MustNewStore() Store {
	s, err := NewStore()
	if err != nil {
		panic(err)
	}
	return s
}

func (s *memoryStore) GetRule(name string) (*models.CarrierRule, bool) {
	rule, ok := s.rules[strings.ToLower(strings.TrimSpace(name))]
	return rule, ok
}

func (s *memoryStore) ListCarriers() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *memoryStore) IsSupported(name string) bool {
	_, ok := s.GetRule(name)
	return ok
}

// StrictnessScore is a deterministic 0-10 weighted sum of how hard a carrier
// pushes back on scopes. Unknown carriers get the neutral default.
func (s *memoryStore) StrictnessScore(name string) int {
	rule, ok := s.GetRule(name)
	if !ok {
		return DefaultStrictness
	}

	score := 0
	if !rule.OverheadProfitAllowed {
		score += 3
	}
	if !rule.AllowsIceAndWater {
		score += 2
	}
	if rule.HasWasteLimit && rule.WasteLimitPercent < 10 {
		score += 2
	}
	if len(rule.DeniedItems) > 0 {
		score++
	}
	for _, cur := range rule.CodeUpgradeRules {
		if strings.Contains(strings.ToLower(cur), "denied") {
			score += 2
			break
		}
	}

	if score > 10 {
		score = 10
	}
	return score
}

// ResolveAlias maps a free-form carrier name or alias to its canonical name.
func (s *memoryStore) ResolveAlias(input string) (string, bool) {
	name, ok := s.aliases[strings.ToLower(strings.TrimSpace(input))]
	return name, ok
}

// Aliases returns every alias registered for a canonical carrier name,
// including the name itself.
func (s *memoryStore) Aliases(name string) []string {
	canonical, ok := s.ResolveAlias(name)
	if !ok {
		return nil
	}
	var out []string
	for alias, target := range s.aliases {
		if target == canonical {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// MergeRules builds a synthetic rule that is the most restrictive union of
// all matched carriers. Unknown names are skipped; no matches returns nil.
func (s *memoryStore) MergeRules(names []string) *models.CarrierRule {
	var matched []*models.CarrierRule
	var matchedNames []string
	for _, n := range names {
		if rule, ok := s.GetRule(n); ok {
			matched = append(matched, rule)
			matchedNames = append(matchedNames, rule.CarrierName)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	if len(matched) == 1 {
		clone := *matched[0]
		return &clone
	}

	merged := &models.CarrierRule{
		CarrierName:           strings.Join(matchedNames, " + "),
		AllowsIceAndWater:     true,
		OverheadProfitAllowed: true,
		HasWasteLimit:         true,
	}

	requiredSet := map[string]bool{}
	deniedSet := map[string]bool{}
	upgradeSet := map[string]bool{}
	docSet := map[string]bool{}

	minWaste := -1.0
	for _, rule := range matched {
		// Permissive flags survive only if every carrier permits.
		merged.AllowsIceAndWater = merged.AllowsIceAndWater && rule.AllowsIceAndWater
		merged.OverheadProfitAllowed = merged.OverheadProfitAllowed && rule.OverheadProfitAllowed

		// Restrictive flags stick if any carrier requires.
		merged.RequiresStarterRake = merged.RequiresStarterRake || rule.RequiresStarterRake
		merged.DripEdgeRequired = merged.DripEdgeRequired || rule.DripEdgeRequired

		waste := DefaultWasteLimitPercent * 1.0
		if rule.HasWasteLimit {
			waste = rule.WasteLimitPercent
		}
		if minWaste < 0 || waste < minWaste {
			minWaste = waste
		}

		// Limit lists concatenate; downstream consumers apply the most
		// restrictive cap per code when duplicates exist.
		merged.LineItemLimits = append(merged.LineItemLimits, rule.LineItemLimits...)

		for _, code := range rule.RequiredItems {
			if !requiredSet[code] {
				requiredSet[code] = true
				merged.RequiredItems = append(merged.RequiredItems, code)
			}
		}
		for _, code := range rule.DeniedItems {
			if !deniedSet[code] {
				deniedSet[code] = true
				merged.DeniedItems = append(merged.DeniedItems, code)
			}
		}
		for _, cur := range rule.CodeUpgradeRules {
			if !upgradeSet[cur] {
				upgradeSet[cur] = true
				merged.CodeUpgradeRules = append(merged.CodeUpgradeRules, cur)
			}
		}
		for _, doc := range rule.DocumentationRequirements {
			if !docSet[doc] {
				docSet[doc] = true
				merged.DocumentationRequirements = append(merged.DocumentationRequirements, doc)
			}
		}
		merged.Notes = append(merged.Notes, rule.Notes...)
	}
	merged.WasteLimitPercent = minWaste

	return merged
}
