// internal/workers/claim/detect-carrier/handler.go
package detectcarrier

import (
	"context"
	"encoding/json"
	"fmt"

	"claims-workers/internal/carrier"
	"claims-workers/internal/common/logger"
	"claims-workers/internal/policy"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "detect-carrier"
)

type Handler struct {
	config   *Config
	store    policy.Store
	detector *carrier.Detector
	logger   logger.Logger
}

func NewHandler(config *Config, store policy.Store, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		store:    store,
		detector: carrier.NewDetector(store, log),
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.failJob(client, job, "CARRIER_DETECTION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	detection := h.detector.Detect(carrier.Input{
		ManualInput:   input.ManualCarrier,
		AdjusterEmail: input.AdjusterEmail,
		DocumentText:  input.PolicyDocumentText,
		NotesText:     input.AdjusterNotes,
	})

	output := &Output{
		CarrierName:  detection.CarrierName,
		Confidence:   detection.Confidence,
		DetectedFrom: detection.DetectedFrom,
		Supported:    detection.Rule != nil,
		Alternatives: detection.Alternatives,
		CarrierRule:  detection.Rule,
	}
	if output.Alternatives == nil {
		output.Alternatives = []string{}
	}
	if !detection.Resolved() {
		output.NeedsManualID = true
	}

	h.logger.Info("carrier detection finished", map[string]interface{}{
		"claimId":      input.ClaimID,
		"carrier":      output.CarrierName,
		"confidence":   output.Confidence,
		"detectedFrom": output.DetectedFrom,
		"supported":    output.Supported,
	})

	return output, nil
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
