// internal/workers/data-access/record-evaluation/handler.go
package recordevaluation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"claims-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "record-evaluation"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateEvaluation  = errors.New("DUPLICATE_EVALUATION")
)

type Handler struct {
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		db:     db,
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		if errors.Is(err, ErrDatabaseInsertFailed) {
			errorCode = "DATABASE_INSERT_FAILED"
		} else if errors.Is(err, ErrDuplicateEvaluation) {
			errorCode = "DUPLICATE_EVALUATION"
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

	// One evaluation row per claim; re-runs update the workflow, not the
	// history table.
	var exists bool
	err := h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM claim_evaluations
			WHERE claim_id = $1
		)`, input.ClaimID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: evaluation already recorded for claim %s",
			ErrDuplicateEvaluation, input.ClaimID)
	}

	evaluationID := uuid.New().String()
	recordedAt := time.Now().UTC().Format(time.RFC3339)

	reportJSON, err := json.Marshal(input.ClaimReport)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal claim report: %v", ErrDatabaseInsertFailed, err)
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO claim_evaluations (
			id, claim_id, carrier_name, verdict, approval_chance,
			critical_issues, warnings, supplement_total,
			severity_score, severity_category, report, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		evaluationID,
		input.ClaimID,
		input.CarrierName,
		string(input.Summary.OverallCompliance),
		input.Summary.EstimatedApprovalChance,
		input.Summary.CriticalIssues,
		input.Summary.Warnings,
		input.SupplementAsk,
		input.OverallScore,
		string(input.Category),
		reportJSON,
		recordedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	// Audit trail is best effort.
	auditJSON, err := json.Marshal(map[string]interface{}{
		"claimId":         input.ClaimID,
		"carrier":         input.CarrierName,
		"verdict":         input.Summary.OverallCompliance,
		"supplementTotal": input.SupplementAsk,
	})
	if err != nil {
		h.logger.Warn("failed to marshal audit details", map[string]interface{}{
			"error": err,
		})
		auditJSON = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"evaluation_recorded",
		"claim_evaluation",
		evaluationID,
		auditJSON,
		recordedAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":        err,
			"evaluationId": evaluationID,
		})
	}

	h.logger.Info("evaluation recorded", map[string]interface{}{
		"evaluationId": evaluationID,
		"claimId":      input.ClaimID,
		"carrier":      input.CarrierName,
		"verdict":      input.Summary.OverallCompliance,
	})

	return &Output{
		EvaluationID: evaluationID,
		RecordedAt:   recordedAt,
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
