// internal/workers/data-access/index-claim-results/handler.go
package indexclaimresults

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"claims-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
)

const (
	TaskType = "index-claim-results"
)

var (
	ErrIndexingFailed = errors.New("INDEXING_FAILED")
	ErrIndexTimeout   = errors.New("SEARCH_TIMEOUT")
)

type Handler struct {
	config *Config
	client *elasticsearch.Client
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
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
		errorCode := "INDEXING_FAILED"
		if errors.Is(err, ErrIndexTimeout) {
			errorCode = "SEARCH_TIMEOUT"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ClaimID == "" {
		return nil, fmt.Errorf("claimId is required")
	}

	doc := claimDocument{
		ClaimID:         input.ClaimID,
		EvaluationID:    input.EvaluationID,
		Carrier:         input.CarrierName,
		Verdict:         string(input.Summary.OverallCompliance),
		ApprovalChance:  input.Summary.EstimatedApprovalChance,
		CriticalIssues:  input.Summary.CriticalIssues,
		Warnings:        input.Summary.Warnings,
		SupplementTotal: input.Totals.Total,
		SeverityScore:   input.OverallScore,
		Severity:        string(input.Category),
		Report:          input.ClaimReport,
		IndexedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: encode document: %v", ErrIndexingFailed, err)
	}

	// Claim ID is the document ID, so re-runs overwrite instead of
	// duplicating.
	res, err := h.client.Index(
		h.config.IndexName,
		bytes.NewReader(body),
		h.client.Index.WithDocumentID(input.ClaimID),
		h.client.Index.WithContext(ctx),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrIndexTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrIndexingFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: index response: %s", ErrIndexingFailed, res.Status())
	}

	h.logger.Info("claim results indexed", map[string]interface{}{
		"claimId": input.ClaimID,
		"index":   h.config.IndexName,
	})

	return &Output{
		Indexed:    true,
		DocumentID: input.ClaimID,
		IndexName:  h.config.IndexName,
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
