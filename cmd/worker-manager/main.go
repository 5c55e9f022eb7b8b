// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"claims-workers/internal/common/camunda"
	"claims-workers/internal/common/config"
	"claims-workers/internal/common/database"
	"claims-workers/internal/common/genai"
	"claims-workers/internal/common/logger"
	"claims-workers/internal/common/observability"
	"claims-workers/internal/policy"
	"claims-workers/internal/scopediff"

	// Claim Pipeline Workers (7)
	cc "claims-workers/internal/workers/claim/check-compliance"
	cs "claims-workers/internal/workers/claim/compare-scopes"
	dc "claims-workers/internal/workers/claim/detect-carrier"
	ecs "claims-workers/internal/workers/claim/extract-carrier-scope"
	gs "claims-workers/internal/workers/claim/generate-supplement"
	ss "claims-workers/internal/workers/claim/score-severity"
	vsc "claims-workers/internal/workers/claim/validate-scope"

	// Infrastructure Workers (1)
	bcr "claims-workers/internal/workers/infrastructure/build-claim-report"

	// Data Access Workers (2)
	icr "claims-workers/internal/workers/data-access/index-claim-results"
	re "claims-workers/internal/workers/data-access/record-evaluation"

	// Communication Workers (1)
	na "claims-workers/internal/workers/communication/notify-adjuster"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// workerTimeout resolves the per-worker timeout from config, falling back to
// the handler package default when the config omits it.
func workerTimeout(cfg *config.Config, taskType string, fallback time.Duration) time.Duration {
	if wc, ok := cfg.Workers[taskType]; ok && wc.Timeout > 0 {
		return time.Duration(wc.Timeout) * time.Millisecond
	}
	return fallback
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("config load failed: %v", err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Shared Domain Services ---
	policyStore := policy.MustNewStore()

	generator := genai.NewHTTPGenerator(genai.Config{
		BaseURL:     cfg.GenAI.BaseURL,
		APIKey:      cfg.GenAI.APIKey,
		MaxTokens:   cfg.GenAI.MaxTokens,
		Temperature: cfg.GenAI.Temperature,
		MaxRetries:  cfg.GenAI.MaxRetries,
		Timeout:     time.Duration(cfg.GenAI.Timeout) * time.Millisecond,
	}, log)

	diffEngine := scopediff.NewEngine(scopediff.Config{
		PriceDeltaThreshold: cfg.Reconciliation.PriceDeltaThreshold,
		MaxArgumentItems:    cfg.Reconciliation.MaxArgumentItems,
		BatchSize:           cfg.Reconciliation.BatchSize,
		BatchDelay:          time.Duration(cfg.Reconciliation.BatchDelayMS) * time.Millisecond,
		TaxRate:             cfg.Reconciliation.TaxRate,
	}, generator, log)

	zapLog.Info("Policy store, GenAI client and reconciliation engine initialized")

	// --- START: Register ALL 11 Workers ---

	// --- 1. Claim Pipeline Workers (7) ---
	if cfg.Workers[dc.TaskType].Enabled {
		dcCfg := dc.LoadConfig()
		dcCfg.Timeout = workerTimeout(cfg, dc.TaskType, dcCfg.Timeout)
		handler := dc.NewHandler(dcCfg, policyStore, log)
		startWorker(zeebeClient, dc.TaskType, cfg.Workers[dc.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[vsc.TaskType].Enabled {
		vscCfg := vsc.LoadConfig()
		vscCfg.Timeout = workerTimeout(cfg, vsc.TaskType, vscCfg.Timeout)
		handler := vsc.NewHandler(vscCfg, log)
		startWorker(zeebeClient, vsc.TaskType, cfg.Workers[vsc.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[cc.TaskType].Enabled {
		ccCfg := cc.LoadConfig()
		ccCfg.Timeout = workerTimeout(cfg, cc.TaskType, ccCfg.Timeout)
		handler := cc.NewHandler(ccCfg, policyStore, log)
		startWorker(zeebeClient, cc.TaskType, cfg.Workers[cc.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ecs.TaskType].Enabled {
		ecsCfg := ecs.LoadConfig()
		ecsCfg.Timeout = workerTimeout(cfg, ecs.TaskType, ecsCfg.Timeout)
		handler := ecs.NewHandler(ecsCfg, generator, redis.Client, log)
		startWorker(zeebeClient, ecs.TaskType, cfg.Workers[ecs.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[cs.TaskType].Enabled {
		csCfg := cs.LoadConfig()
		csCfg.Timeout = workerTimeout(cfg, cs.TaskType, csCfg.Timeout)
		handler := cs.NewHandler(csCfg, diffEngine, log)
		startWorker(zeebeClient, cs.TaskType, cfg.Workers[cs.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[gs.TaskType].Enabled {
		gsCfg := gs.LoadConfig()
		gsCfg.Timeout = workerTimeout(cfg, gs.TaskType, gsCfg.Timeout)
		handler := gs.NewHandler(gsCfg, diffEngine, log)
		startWorker(zeebeClient, gs.TaskType, cfg.Workers[gs.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ss.TaskType].Enabled {
		ssCfg := ss.LoadConfig()
		ssCfg.Timeout = workerTimeout(cfg, ss.TaskType, ssCfg.Timeout)
		handler := ss.NewHandler(ssCfg, log)
		startWorker(zeebeClient, ss.TaskType, cfg.Workers[ss.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Infrastructure Workers (1) ---
	if cfg.Workers[bcr.TaskType].Enabled {
		bcrCfg := bcr.LoadConfig()
		bcrCfg.Timeout = workerTimeout(cfg, bcr.TaskType, bcrCfg.Timeout)
		bcrCfg.AppVersion = cfg.App.Version
		handler := bcr.NewHandler(bcrCfg, log)
		startWorker(zeebeClient, bcr.TaskType, cfg.Workers[bcr.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Data Access Workers (2) ---
	if cfg.Workers[re.TaskType].Enabled {
		reCfg := re.LoadConfig()
		reCfg.Timeout = workerTimeout(cfg, re.TaskType, reCfg.Timeout)
		handler := re.NewHandler(reCfg, pg.DB, log)
		startWorker(zeebeClient, re.TaskType, cfg.Workers[re.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[icr.TaskType].Enabled {
		icrCfg := icr.LoadConfig()
		icrCfg.Timeout = workerTimeout(cfg, icr.TaskType, icrCfg.Timeout)
		handler := icr.NewHandler(icrCfg, esClient.Client, log)
		startWorker(zeebeClient, icr.TaskType, cfg.Workers[icr.TaskType], handler.Handle, zapLog)
	}

	// --- 4. Communication Workers (1) ---
	if cfg.Workers[na.TaskType].Enabled {
		naCfg := na.LoadConfig()
		naCfg.Timeout = workerTimeout(cfg, na.TaskType, naCfg.Timeout)
		naCfg.AWSRegion = cfg.Notifications.AWSRegion
		naCfg.EmailFrom = cfg.Notifications.EmailFrom
		naCfg.SNSTopicARN = cfg.Notifications.SNSTopicARN
		naCfg.SNSEnabled = cfg.Notifications.SNSTopicARN != ""
		handler, err := na.NewHandler(naCfg, log)
		if err != nil {
			zapLog.Fatal("failed to create notify-adjuster handler", zap.Error(err))
		}
		startWorker(zeebeClient, na.TaskType, cfg.Workers[na.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All 11 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, jw := range jobWorkers {
		jw.Close()
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

var jobWorkers []worker.JobWorker

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc camunda.HandlerFunc, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	timeout := time.Duration(wcfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	jw := camunda.StartWorker(client, taskType, wcfg.MaxJobsActive, timeout, handlerFunc, log)
	jobWorkers = append(jobWorkers, jw)
}
