// internal/workers/claim/validate-scope/handler.go
package validatescope

import (
	"context"
	"encoding/json"
	"fmt"

	"claims-workers/internal/common/logger"
	"claims-workers/internal/common/validation"
	"claims-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-scope"
)

var quantityMinimum = 0.0

// lineItemSchema gates the raw JSON shape before decoding into the typed
// model. Unknown fields are tolerated; estimate exports carry vendor extras.
var lineItemSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"code":        {Type: "string", MinLength: intPtr(1)},
		"description": {Type: "string"},
		"quantity":    {Type: "number", Minimum: &quantityMinimum},
		"unit":        {Type: "string", Enum: []string{"SQ", "LF", "EA", "SF", "HR"}},
		"unitPrice":   {Type: "number"},
		"totalPrice":  {Type: "number"},
		"category":    {Type: "string"},
	},
	Required:             []string{"code", "quantity", "unit", "unitPrice"},
	AdditionalProperties: true,
}

func intPtr(v int) *int { return &v }

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
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
		h.failJob(client, job, "SCOPE_VALIDATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	output := &Output{
		ValidationErrors: []string{},
		NormalizedScope:  []models.LineItem{},
	}

	if len(input.LineItems) == 0 {
		output.ValidationErrors = append(output.ValidationErrors, "scope contains no line items")
		return output, nil
	}
	if len(input.LineItems) > h.config.MaxLineItems {
		output.ValidationErrors = append(output.ValidationErrors,
			fmt.Sprintf("scope exceeds %d line items", h.config.MaxLineItems))
		return output, nil
	}

	for i, raw := range input.LineItems {
		result := validation.ValidateInput(raw, lineItemSchema)
		if !result.Valid {
			for _, msg := range result.GetErrorMessages() {
				output.ValidationErrors = append(output.ValidationErrors,
					fmt.Sprintf("item %d: %s", i, msg))
			}
			continue
		}

		item, err := decodeLineItem(raw)
		if err != nil {
			output.ValidationErrors = append(output.ValidationErrors,
				fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		if err := models.ValidateLineItem(item); err != nil {
			output.ValidationErrors = append(output.ValidationErrors,
				fmt.Sprintf("item %d (%s): %v", i, item.Code, err))
			continue
		}
		output.NormalizedScope = append(output.NormalizedScope, item)
	}

	output.Valid = len(output.ValidationErrors) == 0
	output.ItemCount = len(output.NormalizedScope)
	output.TotalSquares = models.TotalSquares(output.NormalizedScope)
	for _, item := range output.NormalizedScope {
		output.ScopeTotal += item.TotalPrice
	}

	h.logger.Info("scope validated", map[string]interface{}{
		"claimId":   input.ClaimID,
		"scopeType": input.ScopeType,
		"valid":     output.Valid,
		"items":     output.ItemCount,
		"errors":    len(output.ValidationErrors),
	})

	return output, nil
}

func decodeLineItem(raw map[string]interface{}) (models.LineItem, error) {
	var item models.LineItem
	data, err := json.Marshal(raw)
	if err != nil {
		return item, fmt.Errorf("re-encode line item: %w", err)
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return item, fmt.Errorf("decode line item: %w", err)
	}
	// Estimate exports often omit the extended total; derive it.
	if item.TotalPrice == 0 && item.Quantity > 0 && item.UnitPrice > 0 {
		item.TotalPrice = item.Quantity * item.UnitPrice
	}
	return item, nil
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
