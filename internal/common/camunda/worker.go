// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"claims-workers/internal/common/metrics"
)

// HandlerFunc is the job callback shape the Zeebe client expects. Completion
// and failure are the handler's responsibility.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// StartWorker opens a job worker with the handler wrapped in prometheus
// instrumentation. The returned JobWorker must be closed on shutdown.
func StartWorker(client zbc.Client, taskType string, maxJobsActive int, timeout time.Duration, handler HandlerFunc, log *zap.Logger) worker.JobWorker {
	instrumented := func(jc worker.JobClient, job entities.Job) {
		metrics.WorkerJobsReceived.WithLabelValues(taskType).Inc()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		start := time.Now()

		handler(jc, job)

		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
		metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
	}

	jw := client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobsActive),
		zap.Duration("timeout", timeout),
	)

	return jw
}
