package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardErrorMessage(t *testing.T) {
	err := NewDatabaseInsertFailedError(fmt.Errorf("pq: connection lost"))

	assert.Equal(t, ErrCodeDatabaseInsertFailed, err.Code)
	assert.True(t, err.Retryable)
	assert.Contains(t, err.Error(), "DATABASE_INSERT_FAILED")
	assert.Contains(t, err.Details, "connection lost")
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("retryable technical error keeps retries", func(t *testing.T) {
		stdErr := NewIndexingFailedError("claim-evaluations", fmt.Errorf("es unavailable"))
		bpmnErr := ConvertToBPMNError(stdErr)

		assert.Equal(t, "INDEXING_FAILED", bpmnErr.Code)
		assert.Equal(t, 3, bpmnErr.Retries)
		assert.True(t, bpmnErr.Retryable)
	})

	t.Run("business error gets zero retries", func(t *testing.T) {
		stdErr := NewScopeValidationFailedError("item 2: missing unitPrice")
		bpmnErr := ConvertToBPMNError(stdErr)

		assert.Equal(t, "SCOPE_VALIDATION_FAILED", bpmnErr.Code)
		assert.Equal(t, 0, bpmnErr.Retries)
		assert.False(t, bpmnErr.Retryable)
	})

	t.Run("unmapped code falls through unchanged", func(t *testing.T) {
		stdErr := NewBusinessRuleError("duplicate evaluation", "claim already recorded")
		bpmnErr := ConvertToBPMNError(stdErr)

		assert.Equal(t, "BUSINESS_RULE_VIOLATION", bpmnErr.Code)
		assert.Equal(t, 0, bpmnErr.Retries)
	})

	t.Run("original code carried in error variables", func(t *testing.T) {
		stdErr := NewGenAIFailedError(fmt.Errorf("bad gateway"))
		bpmnErr := ConvertToBPMNError(stdErr)

		vars := bpmnErr.ToErrorVariables()
		assert.Equal(t, "GENAI_GENERATION_FAILED", vars["errorCode"])
		assert.Equal(t, string(ErrCodeGenAIFailed), vars["originalErrorCode"])
		assert.NotEmpty(t, vars["timestamp"])
	})
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeDatabaseConnectionFailed, 3},
		{ErrCodeDatabaseInsertFailed, 3},
		{ErrCodeIndexingFailed, 3},
		{ErrCodeNotificationSendFailed, 3},
		{ErrCodeGenAIFailed, 3},
		{ErrCodeQueryTimeout, 2},
		{ErrCodeSearchTimeout, 2},
		{ErrCodeGenAITimeout, 1},
		{ErrCodeCarrierDetectionFailed, 0},
		{ErrCodeScopeValidationFailed, 0},
		{ErrCodeComplianceCheckFailed, 0},
		{ErrCodeReportValidationFailed, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetRetryCount(tt.code))
			assert.Equal(t, tt.want > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "CARRIER", GetErrorCategory(ErrCodeCarrierDetectionFailed))
	assert.Equal(t, "CARRIER", GetErrorCategory(ErrCodeCarrierNotSupported))
	assert.Equal(t, "RECONCILIATION", GetErrorCategory(ErrCodeComplianceCheckFailed))
	assert.Equal(t, "RECONCILIATION", GetErrorCategory(ErrCodeScopeComparisonFailed))
	assert.Equal(t, "RECONCILIATION", GetErrorCategory(ErrCodeSupplementBuildFailed))
	assert.Equal(t, "RECONCILIATION", GetErrorCategory(ErrCodeSeverityScoreFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDatabaseInsertFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexingFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeGenAITimeout))
	assert.Equal(t, "GENERAL", GetErrorCategory(ErrorCode("SOMETHING_ELSE")))
}

type capturingLogger struct {
	msg    string
	fields map[string]interface{}
}

func (l *capturingLogger) Error(msg string, fields map[string]interface{}) {
	l.msg = msg
	l.fields = fields
}

func TestErrorHandlerNormalize(t *testing.T) {
	h := NewErrorHandler(&capturingLogger{})

	t.Run("standard error passes through", func(t *testing.T) {
		stdErr := NewNotificationSendFailedError("email", fmt.Errorf("ses throttled"))
		got := h.normalizeError(stdErr)
		require.Same(t, stdErr, got)
	})

	t.Run("plain error wrapped as internal", func(t *testing.T) {
		got := h.normalizeError(fmt.Errorf("boom"))
		assert.Equal(t, ErrorCode("INTERNAL_ERROR"), got.Code)
		assert.Equal(t, "boom", got.Details)
		assert.False(t, got.Retryable)
	})
}
