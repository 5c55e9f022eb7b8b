// internal/workers/claim/compare-scopes/handler.go
package comparescopes

import (
	"context"
	"encoding/json"
	"fmt"

	"claims-workers/internal/common/logger"
	"claims-workers/internal/models"
	"claims-workers/internal/scopediff"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "compare-scopes"
)

type Handler struct {
	config *Config
	engine *scopediff.Engine
	logger logger.Logger
}

func NewHandler(config *Config, engine *scopediff.Engine, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		engine: engine,
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
		h.failJob(client, job, "SCOPE_COMPARISON_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if len(input.ContractorScope) == 0 {
		return nil, fmt.Errorf("contractor scope is empty")
	}
	if err := models.ValidateScope(input.ContractorScope); err != nil {
		return nil, fmt.Errorf("invalid contractor scope: %w", err)
	}
	if err := models.ValidateScope(input.CarrierScope); err != nil {
		return nil, fmt.Errorf("invalid carrier scope: %w", err)
	}

	comparison := h.engine.Compare(input.ContractorScope, input.CarrierScope)

	// A requirement the contractor already scoped is argued as a missing
	// item, never again as a code upgrade; gate on both scopes combined.
	combined := make([]models.LineItem, 0, len(input.ContractorScope)+len(input.CarrierScope))
	combined = append(combined, input.ContractorScope...)
	combined = append(combined, input.CarrierScope...)
	upgrades := h.engine.CodeUpgrades(combined, input.Jurisdiction)

	var underpaidTotal float64
	for _, delta := range comparison.UnderpaidItems {
		underpaidTotal += delta.Difference
	}

	h.logger.Info("scopes compared", map[string]interface{}{
		"claimId":        input.ClaimID,
		"missing":        len(comparison.MissingItems),
		"underpaid":      len(comparison.UnderpaidItems),
		"underpaidTotal": underpaidTotal,
		"codeUpgrades":   len(upgrades),
	})

	return &Output{
		Comparison:     comparison,
		CodeUpgrades:   upgrades,
		MissingCount:   len(comparison.MissingItems),
		UnderpaidCount: len(comparison.UnderpaidItems),
		UnderpaidTotal: underpaidTotal,
	}, nil
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
