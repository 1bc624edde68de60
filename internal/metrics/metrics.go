package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the service's prometheus instruments. Register once per
// process; handlers and the queue share the instance.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration prometheus.Histogram

	jobsEnqueued  prometheus.Counter
	jobsCompleted prometheus.Counter
	jobsFailed    prometheus.Counter
	jobsDead      prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fairway_http_requests_total",
			Help: "HTTP requests by method and status class",
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fairway_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		jobsEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fairway_queue_jobs_enqueued_total",
			Help: "Background jobs enqueued",
		}),
		jobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fairway_queue_jobs_completed_total",
			Help: "Background jobs completed successfully",
		}),
		jobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fairway_queue_jobs_failed_total",
			Help: "Background job attempts that failed",
		}),
		jobsDead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fairway_queue_jobs_dead_total",
			Help: "Background jobs moved to the dead letter table",
		}),
	}

	reg.MustRegister(c.requests, c.requestDuration, c.jobsEnqueued, c.jobsCompleted, c.jobsFailed, c.jobsDead)
	return c
}

func (c *Collector) RecordRequest(method, status string, seconds float64) {
	c.requests.WithLabelValues(method, status).Inc()
	c.requestDuration.Observe(seconds)
}

func (c *Collector) RecordEnqueue()   { c.jobsEnqueued.Inc() }
func (c *Collector) RecordCompleted() { c.jobsCompleted.Inc() }
func (c *Collector) RecordFailed()    { c.jobsFailed.Inc() }
func (c *Collector) RecordDead()      { c.jobsDead.Inc() }
