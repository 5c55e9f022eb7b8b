// internal/scopediff/supplement.go
package scopediff

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"claims-workers/internal/models"
)

const argumentInstruction = `You are a roofing insurance supplement specialist writing to a carrier desk adjuster.
Write one persuasive paragraph for the line item described. Cite the code section when one is given.
Stay factual, reference the amounts exactly as provided, and do not invent numbers.`

var toneInstructions = map[models.NegotiationTone]string{
	models.ToneProfessional: "Write a courteous, collaborative phone script for discussing the supplement with the adjuster.",
	models.ToneFirm:         "Write a direct, assertive phone script that presses for payment of each supplement item.",
	models.ToneLegal:        "Write a formal script referencing policy obligations and applicable building code, suitable for escalation.",
}

// NegotiationScript is the talk track for presenting the supplement. The
// total is computed locally and never delegated to the text service.
type NegotiationScript struct {
	Tone           models.NegotiationTone `json:"tone"`
	Script         string                 `json:"script"`
	TotalRequested float64                `json:"totalRequested"`
}

// SupplementPackage is the full deliverable of the supplement pass.
type SupplementPackage struct {
	Arguments []models.SupplementArgument `json:"arguments"`
	Script    NegotiationScript           `json:"script"`
	Totals    models.SupplementTotals     `json:"totals"`
}

// BuildArguments assembles one argument per missing item, per top underpaid
// item, and per required code upgrade, then fills in prose via the text
// service in rate-limited batches. A failed call leaves that argument's
// prose empty; the numeric fields always survive.
func (e *Engine) BuildArguments(ctx context.Context, comparison models.ScopeComparison, upgrades []models.CodeUpgrade, jur models.Jurisdiction) []models.SupplementArgument {
	args := make([]models.SupplementArgument, 0,
		len(comparison.MissingItems)+len(comparison.UnderpaidItems)+len(upgrades))

	for _, item := range comparison.MissingItems {
		args = append(args, models.SupplementArgument{
			ItemCode:        item.Code,
			ItemDescription: item.Description,
			ClaimAmount:     item.TotalPrice,
			CarrierAmount:   0,
			Difference:      item.TotalPrice,
			Evidence: []string{
				fmt.Sprintf("Item absent from carrier scope: %s", item.Description),
				fmt.Sprintf("Contractor pricing: %.2f %s @ $%.2f", item.Quantity, item.Unit, item.UnitPrice),
			},
			CodeReferences:  []string{},
			PhotoReferences: []string{},
		})
	}

	underpaid := make([]models.PriceDelta, len(comparison.UnderpaidItems))
	copy(underpaid, comparison.UnderpaidItems)
	sort.SliceStable(underpaid, func(i, j int) bool {
		return underpaid[i].Difference > underpaid[j].Difference
	})
	if e.config.MaxArgumentItems > 0 && len(underpaid) > e.config.MaxArgumentItems {
		underpaid = underpaid[:e.config.MaxArgumentItems]
	}
	for _, delta := range underpaid {
		args = append(args, models.SupplementArgument{
			ItemCode:        delta.Item.Code,
			ItemDescription: delta.Item.Description,
			ClaimAmount:     delta.ContractorPaid,
			CarrierAmount:   delta.CarrierPaid,
			Difference:      delta.Difference,
			Evidence: []string{
				fmt.Sprintf("Carrier allowed $%.2f against contractor price $%.2f", delta.CarrierPaid, delta.ContractorPaid),
			},
			CodeReferences:  []string{},
			PhotoReferences: []string{},
		})
	}

	for _, upgrade := range upgrades {
		if !upgrade.Required {
			continue
		}
		args = append(args, models.SupplementArgument{
			ItemCode:        upgrade.ItemCode,
			ItemDescription: upgrade.Description,
			ClaimAmount:     upgrade.EstimatedCost,
			CarrierAmount:   0,
			Difference:      upgrade.EstimatedCost,
			Evidence: []string{
				fmt.Sprintf("Mandated in %s: %s", upgrade.Jurisdiction, upgrade.Reasoning),
			},
			CodeReferences:  []string{upgrade.CodeSection},
			PhotoReferences: []string{},
		})
	}

	e.fillArguments(ctx, args, jur)
	return args
}

// fillArguments issues one generation call per argument, grouped into
// batches with a fixed inter-batch delay. Each call is isolated: a failure
// is logged and that argument keeps empty prose.
func (e *Engine) fillArguments(ctx context.Context, args []models.SupplementArgument, jur models.Jurisdiction) {
	for start := 0; start < len(args); start += e.config.BatchSize {
		end := start + e.config.BatchSize
		if end > len(args) {
			end = len(args)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				prose, err := e.generator.Generate(ctx, argumentInstruction, e.argumentPayload(args[idx], jur))
				if err != nil {
					e.logger.Warn("argument generation failed", map[string]interface{}{
						"itemCode": args[idx].ItemCode,
						"error":    err,
					})
					return
				}
				args[idx].Argument = strings.TrimSpace(prose)
			}(i)
		}
		wg.Wait()

		if end < len(args) && e.config.BatchDelay > 0 {
			select {
			case <-time.After(e.config.BatchDelay):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (e *Engine) argumentPayload(arg models.SupplementArgument, jur models.Jurisdiction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Item: %s (%s)\n", arg.ItemDescription, arg.ItemCode)
	fmt.Fprintf(&b, "Contractor amount: $%.2f\n", arg.ClaimAmount)
	fmt.Fprintf(&b, "Carrier amount: $%.2f\n", arg.CarrierAmount)
	fmt.Fprintf(&b, "Difference requested: $%.2f\n", arg.Difference)
	if jur.State != "" {
		fmt.Fprintf(&b, "Jurisdiction: %s\n", jurisdictionLabel(jur))
	}
	for _, ref := range arg.CodeReferences {
		fmt.Fprintf(&b, "Code reference: %s\n", ref)
	}
	for _, ev := range arg.Evidence {
		fmt.Fprintf(&b, "Evidence: %s\n", ev)
	}
	return b.String()
}

// BuildScript produces the negotiation talk track for a tone preset.
func (e *Engine) BuildScript(ctx context.Context, args []models.SupplementArgument, tone models.NegotiationTone, carrierName string) NegotiationScript {
	instruction, ok := toneInstructions[tone]
	if !ok {
		tone = models.ToneProfessional
		instruction = toneInstructions[tone]
	}

	var total float64
	var b strings.Builder
	fmt.Fprintf(&b, "Carrier: %s\n", carrierName)
	for _, arg := range args {
		total += arg.Difference
		fmt.Fprintf(&b, "- %s (%s): requesting $%.2f\n", arg.ItemDescription, arg.ItemCode, arg.Difference)
	}
	fmt.Fprintf(&b, "Total requested: $%.2f\n", total)

	script := NegotiationScript{Tone: tone, TotalRequested: total}
	prose, err := e.generator.Generate(ctx, instruction, b.String())
	if err != nil {
		e.logger.Warn("negotiation script generation failed", map[string]interface{}{
			"tone":  tone,
			"error": err,
		})
		return script
	}
	script.Script = strings.TrimSpace(prose)
	return script
}

// Totals computes the supplement money summary locally.
func (e *Engine) Totals(args []models.SupplementArgument) models.SupplementTotals {
	var subtotal float64
	for _, arg := range args {
		subtotal += arg.Difference
	}
	tax := subtotal * e.config.TaxRate
	return models.SupplementTotals{
		Subtotal: subtotal,
		TaxRate:  e.config.TaxRate,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}
