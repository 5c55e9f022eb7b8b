// internal/workers/claim/check-compliance/handler.go
package checkcompliance

import (
	"context"
	"encoding/json"
	"fmt"

	"claims-workers/internal/common/logger"
	"claims-workers/internal/compliance"
	"claims-workers/internal/models"
	"claims-workers/internal/policy"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "check-compliance"
)

type Handler struct {
	config *Config
	store  policy.Store
	engine *compliance.Engine
	logger logger.Logger
}

func NewHandler(config *Config, store policy.Store, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  store,
		engine: compliance.NewEngine(log),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "COMPLIANCE_CHECK_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if err := models.ValidateScope(input.LineItems); err != nil {
		return nil, fmt.Errorf("invalid scope: %w", err)
	}

	rule, carrierName := h.resolveRule(input)
	result := h.engine.Evaluate(input.LineItems, rule)

	h.logger.Info("compliance check finished", map[string]interface{}{
		"claimId":   input.ClaimID,
		"carrier":   carrierName,
		"conflicts": len(result.Conflicts),
		"verdict":   result.Summary.OverallCompliance,
	})

	return &Output{
		CarrierName:   carrierName,
		RuleApplied:   rule != nil,
		Conflicts:     result.Conflicts,
		AdjustedScope: result.AdjustedScope,
		Adjustments:   result.Adjustments,
		Summary:       result.Summary,
	}, nil
}

// resolveRule picks the rule record for the claim. Multi-carrier losses get
// a merged rule; a single unsupported carrier gets no rule at all.
func (h *Handler) resolveRule(input *Input) (*models.CarrierRule, string) {
	if len(input.Carriers) > 1 {
		merged := h.store.MergeRules(input.Carriers)
		if merged != nil {
			return merged, merged.CarrierName
		}
	}

	name := input.CarrierName
	if name == "" && len(input.Carriers) == 1 {
		name = input.Carriers[0]
	}
	if name == "" {
		return nil, ""
	}
	if canonical, ok := h.store.ResolveAlias(name); ok {
		rule, _ := h.store.GetRule(canonical)
		return rule, canonical
	}
	return nil, name
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
