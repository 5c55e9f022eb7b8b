// internal/workers/data-access/record-evaluation/handler_test.go
package recordevaluation

import (
	"context"
	"errors"
	"testing"
	"time"

	"claims-workers/internal/common/logger"
	"claims-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestInput() *Input {
	return &Input{
		ClaimID:     "claim-001",
		CarrierName: "State Farm",
		Summary: models.ComplianceSummary{
			OverallCompliance:       models.VerdictNeedsRevision,
			EstimatedApprovalChance: 75,
			CriticalIssues:          1,
			Warnings:                1,
		},
		SupplementAsk: 1793.55,
		OverallScore:  6.8,
		Category:      models.CategorySevere,
		ClaimReport:   map[string]interface{}{"claimId": "claim-001"},
	}
}

func TestHandler_Execute_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("claim-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(`INSERT INTO claim_evaluations`).
		WithArgs(
			sqlmock.AnyArg(), // evaluation ID (UUID)
			"claim-001",
			"State Farm",
			"needs_revision",
			75,
			1,
			1,
			1793.55,
			6.8,
			"severe",
			sqlmock.AnyArg(), // report JSON
			sqlmock.AnyArg(), // created_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(
			"evaluation_recorded",
			"claim_evaluation",
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.NotEmpty(t, output.EvaluationID)

	_, err = time.Parse(time.RFC3339, output.RecordedAt)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_DuplicateEvaluation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("claim-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	_, err = handler.Execute(context.Background(), createTestInput())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateEvaluation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("claim-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(`INSERT INTO claim_evaluations`).
		WillReturnError(errors.New("connection reset"))

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	_, err = handler.Execute(context.Background(), createTestInput())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDatabaseInsertFailed))
}

func TestHandler_Execute_AuditFailureIsNonFatal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("claim-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(`INSERT INTO claim_evaluations`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnError(errors.New("audit table locked"))

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.NotEmpty(t, output.EvaluationID)
}

func TestHandler_Execute_MissingClaimID(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	input := createTestInput()
	input.ClaimID = ""

	_, err = handler.Execute(context.Background(), input)
	require.Error(t, err)
}
