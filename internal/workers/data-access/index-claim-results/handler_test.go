// internal/workers/data-access/index-claim-results/handler_test.go
package indexclaimresults

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"claims-workers/internal/common/logger"
	"claims-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method string
	path   string
	body   []byte
}

func newStubElasticsearch(t *testing.T, status int, response string) (*elasticsearch.Client, *capturedRequest) {
	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.body, _ = io.ReadAll(r.Body)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{server.URL},
	})
	require.NoError(t, err)
	return client, captured
}

func createTestInput() *Input {
	return &Input{
		ClaimID:      "claim-001",
		EvaluationID: "eval-001",
		CarrierName:  "Travelers",
		Summary: models.ComplianceSummary{
			OverallCompliance:       models.VerdictApproved,
			EstimatedApprovalChance: 100,
		},
		Totals:       models.SupplementTotals{Total: 555.32},
		OverallScore: 4.2,
		Category:     models.CategoryModerate,
	}
}

func TestHandler_Execute_IndexesDocument(t *testing.T) {
	client, captured := newStubElasticsearch(t, http.StatusCreated, `{"result":"created"}`)
	h := NewHandler(LoadConfig(), client, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.True(t, output.Indexed)
	assert.Equal(t, "claim-001", output.DocumentID)
	assert.Equal(t, "claim-evaluations", output.IndexName)

	assert.Equal(t, http.MethodPut, captured.method)
	assert.Equal(t, "/claim-evaluations/_doc/claim-001", captured.path)

	var doc claimDocument
	require.NoError(t, json.Unmarshal(captured.body, &doc))
	assert.Equal(t, "Travelers", doc.Carrier)
	assert.Equal(t, "approved", doc.Verdict)
	assert.InDelta(t, 555.32, doc.SupplementTotal, 0.01)
	assert.NotEmpty(t, doc.IndexedAt)
}

func TestHandler_Execute_IndexErrorFails(t *testing.T) {
	client, _ := newStubElasticsearch(t, http.StatusInternalServerError, `{"error":"boom"}`)
	h := NewHandler(LoadConfig(), client, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), createTestInput())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexingFailed)
}

func TestHandler_Execute_MissingClaimID(t *testing.T) {
	client, _ := newStubElasticsearch(t, http.StatusCreated, `{"result":"created"}`)
	h := NewHandler(LoadConfig(), client, logger.NewTestLogger(t))

	input := createTestInput()
	input.ClaimID = ""

	_, err := h.Execute(context.Background(), input)
	require.Error(t, err)
}
