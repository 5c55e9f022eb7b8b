// internal/workers/infrastructure/build-claim-report/handler.go
package buildclaimreport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"claims-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
)

const TaskType = "build-claim-report"

var (
	ErrReportValidationFailed = errors.New("REPORT_VALIDATION_FAILED")
)

// reportSchema is the contract the assembled report must satisfy before it
// leaves the process. Downstream consumers (indexing, notification, the
// adjuster portal) rely on this shape.
const reportSchema = `{
	"type": "object",
	"required": ["claimId", "carrier", "compliance", "reconciliation", "severity", "metadata"],
	"properties": {
		"claimId": {"type": "string", "minLength": 1},
		"carrier": {
			"type": "object",
			"required": ["name"],
			"properties": {
				"name": {"type": "string"},
				"detectedFrom": {"type": "string"},
				"confidence": {"type": "number", "minimum": 0, "maximum": 1}
			}
		},
		"compliance": {
			"type": "object",
			"required": ["verdict", "approvalChance"],
			"properties": {
				"verdict": {"type": "string", "enum": ["approved", "needs_revision", "likely_denied"]},
				"approvalChance": {"type": "number", "minimum": 0, "maximum": 100},
				"criticalIssues": {"type": "number"},
				"warnings": {"type": "number"}
			}
		},
		"reconciliation": {
			"type": "object",
			"required": ["requestedTotal"],
			"properties": {
				"missingItems": {"type": "number"},
				"underpaidItems": {"type": "number"},
				"argumentCount": {"type": "number"},
				"requestedTotal": {"type": "number", "minimum": 0}
			}
		},
		"severity": {
			"type": "object",
			"required": ["overallScore", "category"],
			"properties": {
				"overallScore": {"type": "number", "minimum": 0, "maximum": 10},
				"category": {"type": "string", "enum": ["catastrophic", "severe", "moderate", "minor"]}
			}
		},
		"metadata": {
			"type": "object",
			"required": ["generatedAt", "version"]
		}
	}
}`

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
		errorCode := "REPORT_BUILD_ERROR"
		if errors.Is(err, ErrReportValidationFailed) {
			errorCode = "REPORT_VALIDATION_FAILED"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	generatedAt := time.Now().UTC().Format(time.RFC3339)

	report := map[string]interface{}{
		"claimId": input.ClaimID,
		"carrier": map[string]interface{}{
			"name":         input.CarrierName,
			"detectedFrom": string(input.DetectedFrom),
			"confidence":   input.Confidence,
		},
		"compliance": map[string]interface{}{
			"verdict":             string(input.Summary.OverallCompliance),
			"approvalChance":      input.Summary.EstimatedApprovalChance,
			"criticalIssues":      input.Summary.CriticalIssues,
			"warnings":            input.Summary.Warnings,
			"requiredCorrections": input.Summary.RequiredCorrections,
			"conflicts":           input.Conflicts,
			"adjustedScope":       input.AdjustedScope,
		},
		"reconciliation": map[string]interface{}{
			"missingItems":   len(input.Comparison.MissingItems),
			"underpaidItems": len(input.Comparison.UnderpaidItems),
			"codeMismatches": len(input.Comparison.CodeMismatches),
			"argumentCount":  len(input.Arguments),
			"arguments":      input.Arguments,
			"requestedTotal": input.Totals.Total,
			"subtotal":       input.Totals.Subtotal,
			"tax":            input.Totals.Tax,
		},
		"severity": map[string]interface{}{
			"overallScore":   input.OverallScore,
			"category":       string(input.Category),
			"criticalZones":  input.CriticalZones,
			"repairPriority": input.RepairPriority,
		},
		"metadata": map[string]interface{}{
			"generatedAt": generatedAt,
			"version":     h.config.AppVersion,
		},
	}

	if err := h.validateReport(report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReportValidationFailed, err)
	}

	h.logger.Info("claim report built", map[string]interface{}{
		"claimId": input.ClaimID,
		"carrier": input.CarrierName,
		"verdict": input.Summary.OverallCompliance,
	})

	return &Output{
		ClaimReport: report,
		GeneratedAt: generatedAt,
	}, nil
}

// validateReport round-trips the report through JSON first so typed values
// (enums, structs) compare as plain JSON types during schema validation.
func (h *Handler) validateReport(report map[string]interface{}) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(reportSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("report validation failed: %v", errs)
	}

	return nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
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
		h.logger.Error("failed to throw error", map[string]interface{}{"error": err})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
