// internal/carrier/detector.go

// Package carrier resolves insurance carrier identity from the noisy signals
// that arrive with a claim: adjuster email addresses, extracted policy
// document text, contractor notes, and explicit user input.
package carrier

import (
	"regexp"
	"sort"
	"strings"

	"claims-workers/internal/common/logger"
	"claims-workers/internal/models"
	"claims-workers/internal/policy"
)

const (
	// shortCircuitConfidence ends aggregation early when a strong signal
	// (email or policy document) identifies the carrier.
	shortCircuitConfidence = 0.7

	// headerWindow is how far into a policy document the carrier name must
	// appear to count as letterhead.
	headerWindow = 500
)

type domainEntry struct {
	Carrier    string
	Confidence float64
}

// Known adjuster email domains. Confidence reflects how exclusively the
// domain belongs to the carrier.
var emailDomains = map[string]domainEntry{
	"statefarm.com":        {"State Farm", 1.0},
	"allstate.com":         {"Allstate", 0.95},
	"usaa.com":             {"USAA", 1.0},
	"farmersinsurance.com": {"Farmers", 0.95},
	"farmers.com":          {"Farmers", 0.9},
	"libertymutual.com":    {"Liberty Mutual", 0.95},
	"nationwide.com":       {"Nationwide", 0.95},
	"amfam.com":            {"American Family", 0.95},
	"travelers.com":        {"Travelers", 0.95},
}

// Input carries every detection signal available for a claim. All fields are
// optional; empty signals are skipped.
type Input struct {
	ManualInput   string `json:"manualInput,omitempty"`
	AdjusterEmail string `json:"adjusterEmail,omitempty"`
	DocumentText  string `json:"documentText,omitempty"`
	NotesText     string `json:"notesText,omitempty"`
}

// Detector runs the detection strategies against the policy store.
type Detector struct {
	store  policy.Store
	logger logger.Logger
}

func NewDetector(store policy.Store, log logger.Logger) *Detector {
	return &Detector{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "carrier-detector"}),
	}
}

// FromEmail resolves a carrier from the adjuster's email domain. Exact table
// match wins at table confidence; otherwise a substring match against the
// domain minus its top-level suffix scores 0.8x.
func (d *Detector) FromEmail(email string) models.CarrierDetection {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return models.CarrierDetection{DetectedFrom: models.DetectedFromNone}
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))

	if entry, ok := emailDomains[domain]; ok {
		return d.resolved(entry.Carrier, entry.Confidence, models.DetectedFromEmail)
	}

	base := domain
	if dot := strings.LastIndex(domain, "."); dot > 0 {
		base = domain[:dot]
	}

	// Multiple table entries can substring-match the same unknown domain;
	// best match wins: highest confidence, then longest base, then name.
	type domainMatch struct {
		entry domainEntry
		base  string
	}
	var matches []domainMatch
	for known, entry := range emailDomains {
		knownBase := known
		if dot := strings.LastIndex(known, "."); dot > 0 {
			knownBase = known[:dot]
		}
		if strings.Contains(base, knownBase) || strings.Contains(knownBase, base) {
			matches = append(matches, domainMatch{entry: entry, base: knownBase})
		}
	}
	if len(matches) == 0 {
		return models.CarrierDetection{DetectedFrom: models.DetectedFromNone}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].entry.Confidence != matches[j].entry.Confidence {
			return matches[i].entry.Confidence > matches[j].entry.Confidence
		}
		if len(matches[i].base) != len(matches[j].base) {
			return len(matches[i].base) > len(matches[j].base)
		}
		return matches[i].base < matches[j].base
	})
	best := matches[0]
	return d.resolved(best.entry.Carrier, best.entry.Confidence*0.8, models.DetectedFromEmail)
}

// FromDocument scans extracted policy document text for carrier aliases.
func (d *Detector) FromDocument(text string) models.CarrierDetection {
	return d.fromText(text, models.DetectedFromDocument)
}

// FromNotes scans informal contractor notes. Notes are noisier than policy
// documents, so the confidence curve starts lower and caps lower.
func (d *Detector) FromNotes(text string) models.CarrierDetection {
	return d.fromText(text, models.DetectedFromNotes)
}

type textCandidate struct {
	carrier    string
	confidence float64
}

func (d *Detector) fromText(text string, source models.DetectionSource) models.CarrierDetection {
	if strings.TrimSpace(text) == "" {
		return models.CarrierDetection{DetectedFrom: models.DetectedFromNone}
	}

	header := text
	if len(header) > headerWindow {
		header = header[:headerWindow]
	}
	headerLower := strings.ToLower(header)

	var candidates []textCandidate
	for _, name := range d.store.ListCarriers() {
		count := 0
		inHeader := false
		for _, alias := range d.store.Aliases(name) {
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(alias) + `\b`)
			count += len(re.FindAllStringIndex(text, -1))
			if strings.Contains(headerLower, strings.ToLower(alias)) {
				inHeader = true
			}
		}
		if count == 0 {
			continue
		}

		var confidence float64
		switch source {
		case models.DetectedFromDocument:
			confidence = 0.6 + 0.1*float64(count)
			if confidence > 0.95 {
				confidence = 0.95
			}
			if inHeader {
				confidence += 0.15
				if confidence > 1.0 {
					confidence = 1.0
				}
			}
		default: // notes
			confidence = 0.5 + 0.15*float64(count)
			if confidence > 0.9 {
				confidence = 0.9
			}
		}
		candidates = append(candidates, textCandidate{carrier: name, confidence: confidence})
	}

	if len(candidates) == 0 {
		return models.CarrierDetection{DetectedFrom: models.DetectedFromNone}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].confidence > candidates[j].confidence
	})

	result := d.resolved(candidates[0].carrier, candidates[0].confidence, source)
	for _, alt := range candidates[1:] {
		result.Alternatives = append(result.Alternatives, alt.carrier)
		if len(result.Alternatives) == 2 {
			break
		}
	}
	return result
}

// FromManual resolves an explicit user choice. A known alias is trusted
// completely; an unknown name is carried verbatim at half confidence with no
// rule so downstream engines skip rule checks.
func (d *Detector) FromManual(input string) models.CarrierDetection {
	if strings.TrimSpace(input) == "" {
		return models.CarrierDetection{DetectedFrom: models.DetectedFromNone}
	}
	if name, ok := d.store.ResolveAlias(input); ok {
		return d.resolved(name, 1.0, models.DetectedFromManual)
	}
	return models.CarrierDetection{
		CarrierName:  strings.TrimSpace(input),
		Confidence:   0.5,
		DetectedFrom: models.DetectedFromManual,
	}
}

// Detect aggregates all strategies. Manual input wins outright when it
// resolves; email and document detections short-circuit above the threshold;
// otherwise the best remaining candidate is returned.
func (d *Detector) Detect(input Input) models.CarrierDetection {
	var candidates []models.CarrierDetection

	if input.ManualInput != "" {
		manual := d.FromManual(input.ManualInput)
		if manual.Rule != nil {
			d.logDetection(manual)
			return manual
		}
		if manual.Resolved() {
			candidates = append(candidates, manual)
		}
	}

	if input.AdjusterEmail != "" {
		email := d.FromEmail(input.AdjusterEmail)
		if email.Confidence > shortCircuitConfidence {
			d.logDetection(email)
			return email
		}
		if email.Resolved() {
			candidates = append(candidates, email)
		}
	}

	if input.DocumentText != "" {
		doc := d.FromDocument(input.DocumentText)
		if doc.Confidence > shortCircuitConfidence {
			d.logDetection(doc)
			return doc
		}
		if doc.Resolved() {
			candidates = append(candidates, doc)
		}
	}

	if input.NotesText != "" {
		notes := d.FromNotes(input.NotesText)
		if notes.Resolved() {
			candidates = append(candidates, notes)
		}
	}

	if len(candidates) == 0 {
		return models.CarrierDetection{DetectedFrom: models.DetectedFromNone}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
		}
	}
	d.logDetection(best)
	return best
}

func (d *Detector) resolved(name string, confidence float64, source models.DetectionSource) models.CarrierDetection {
	rule, _ := d.store.GetRule(name)
	return models.CarrierDetection{
		CarrierName:  name,
		Confidence:   confidence,
		DetectedFrom: source,
		Rule:         rule,
	}
}

func (d *Detector) logDetection(det models.CarrierDetection) {
	d.logger.Info("carrier detected", map[string]interface{}{
		"carrier":    det.CarrierName,
		"confidence": det.Confidence,
		"source":     det.DetectedFrom,
	})
}
