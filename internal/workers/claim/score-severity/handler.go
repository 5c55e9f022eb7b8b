// internal/workers/claim/score-severity/handler.go
package scoreseverity

import (
	"context"
	"encoding/json"
	"fmt"

	"claims-workers/internal/common/logger"
	"claims-workers/internal/severity"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "score-severity"
)

type Handler struct {
	config *Config
	engine *severity.Engine
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		engine: severity.NewEngine(log),
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
		h.failJob(client, job, "SEVERITY_SCORE_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	for i, zone := range input.DamageZones {
		if zone.Name == "" {
			return nil, fmt.Errorf("damage zone %d has no name", i)
		}
		if zone.CoveragePercent < 0 || zone.CoveragePercent > 100 {
			return nil, fmt.Errorf("damage zone %q: coverage percent %v out of range", zone.Name, zone.CoveragePercent)
		}
	}

	report := h.engine.Assess(input.DamageZones)

	h.logger.Info("severity scored", map[string]interface{}{
		"claimId":  input.ClaimID,
		"zones":    len(input.DamageZones),
		"overall":  report.OverallScore,
		"category": report.Category,
	})

	return &Output{
		OverallScore:   report.OverallScore,
		Category:       report.Category,
		ZoneScores:     report.ZoneScores,
		CriticalZones:  report.CriticalZones,
		RepairPriority: report.RepairPriority,
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
