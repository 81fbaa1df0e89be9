package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// JobMetrics records background job activity. All methods are safe on a nil
// receiver, so callers can hold a nil JobMetrics when metrics are disabled.
type JobMetrics struct {
	jobsStarted  *prometheus.CounterVec
	jobsFinished *prometheus.CounterVec
	jobsKilled   *prometheus.CounterVec
	jobsFailed   *prometheus.CounterVec
	filesMoved   prometheus.Counter
	bytesMoved   prometheus.Counter
	filesSkipped prometheus.Counter
}

// NewJobMetrics creates a Prometheus-backed JobMetrics instance.
// Returns nil if metrics are not enabled (Init not called).
func NewJobMetrics() *JobMetrics {
	reg := Registry()
	if reg == nil {
		return nil
	}

	jobTypeLabel := []string{"job_type"} // download, upload, validate

	return &JobMetrics{
		jobsStarted: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "tams_jobs_started_total",
			Help: "Total number of background jobs started",
		}, jobTypeLabel),
		jobsFinished: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "tams_jobs_finished_total",
			Help: "Total number of background jobs that finished normally",
		}, jobTypeLabel),
		jobsKilled: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "tams_jobs_killed_total",
			Help: "Total number of background jobs cancelled by the user",
		}, jobTypeLabel),
		jobsFailed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "tams_jobs_failed_total",
			Help: "Total number of background jobs that ended in error",
		}, jobTypeLabel),
		filesMoved: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "tams_files_transferred_total",
			Help: "Total number of files copied between library tiers",
		}),
		bytesMoved: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "tams_bytes_transferred_total",
			Help: "Total bytes copied between library tiers",
		}),
		filesSkipped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "tams_files_skipped_total",
			Help: "Total files skipped due to recoverable per-file errors",
		}),
	}
}

// JobStarted records a job entering the running state.
func (m *JobMetrics) JobStarted(jobType string) {
	if m == nil {
		return
	}
	m.jobsStarted.WithLabelValues(jobType).Inc()
}

// JobFinished records a normal completion.
func (m *JobMetrics) JobFinished(jobType string) {
	if m == nil {
		return
	}
	m.jobsFinished.WithLabelValues(jobType).Inc()
}

// JobKilled records a user cancellation.
func (m *JobMetrics) JobKilled(jobType string) {
	if m == nil {
		return
	}
	m.jobsKilled.WithLabelValues(jobType).Inc()
}

// JobFailed records an unrecoverable job error.
func (m *JobMetrics) JobFailed(jobType string) {
	if m == nil {
		return
	}
	m.jobsFailed.WithLabelValues(jobType).Inc()
}

// FileTransferred records one copied file of the given size.
func (m *JobMetrics) FileTransferred(bytes int64) {
	if m == nil {
		return
	}
	m.filesMoved.Inc()
	if bytes > 0 {
		m.bytesMoved.Add(float64(bytes))
	}
}

// FileSkipped records a file skipped due to a recoverable error.
func (m *JobMetrics) FileSkipped() {
	if m == nil {
		return
	}
	m.filesSkipped.Inc()
}
