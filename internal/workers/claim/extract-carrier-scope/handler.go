// internal/workers/claim/extract-carrier-scope/handler.go
package extractcarrierscope

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"claims-workers/internal/common/genai"
	"claims-workers/internal/common/logger"
	"claims-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "extract-carrier-scope"

	cacheKeyPrefix = "claims:scope:extract:"
)

// Cache is the subset of redis operations the handler needs. Satisfied by
// *redis.Client; nil disables caching.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type Handler struct {
	config    *Config
	extractor *genai.ScopeExtractor
	cache     Cache
	logger    logger.Logger
}

func NewHandler(config *Config, gen genai.TextGenerator, cache Cache, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		extractor: genai.NewScopeExtractor(gen, log),
		cache:     cache,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.failJob(client, job, "SCOPE_EXTRACTION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.DocumentText == "" {
		return nil, fmt.Errorf("document text is empty")
	}

	key := cacheKey(input.DocumentText)
	if cached, ok := h.lookupCache(ctx, key); ok {
		h.logger.Info("carrier scope served from cache", map[string]interface{}{
			"claimId": input.ClaimID,
			"items":   len(cached),
		})
		return &Output{LineItems: cached, ItemCount: len(cached), FromCache: true}, nil
	}

	items := h.extractor.ExtractLineItems(ctx, input.DocumentText)
	h.storeCache(ctx, key, items)

	h.logger.Info("carrier scope extracted", map[string]interface{}{
		"claimId": input.ClaimID,
		"items":   len(items),
	})

	return &Output{LineItems: items, ItemCount: len(items)}, nil
}

func cacheKey(documentText string) string {
	sum := sha256.Sum256([]byte(documentText))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (h *Handler) lookupCache(ctx context.Context, key string) ([]models.LineItem, bool) {
	if h.cache == nil {
		return nil, false
	}
	raw, err := h.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			h.logger.Warn("cache lookup failed", map[string]interface{}{
				"key":   key,
				"error": err,
			})
		}
		return nil, false
	}
	var items []models.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		h.logger.Warn("cache entry corrupt, ignoring", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		return nil, false
	}
	return items, true
}

func (h *Handler) storeCache(ctx context.Context, key string, items []models.LineItem) {
	if h.cache == nil || len(items) == 0 {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, key, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("cache store failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
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
