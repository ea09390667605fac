// Package metrics exposes Prometheus counters for the request path and the
// handful of domain operations worth watching on a low-traffic admin tool.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration prometheus.Histogram
	logins          prometheus.Counter
	loginFailures   prometheus.Counter
	checkIns        prometheus.Counter
	backupExports   prometheus.Counter
	backupImports   prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "echotube_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "echotube_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "echotube_logins_total",
			Help: "Successful logins.",
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "echotube_login_failures_total",
			Help: "Rejected login attempts.",
		}),
		checkIns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "echotube_checkins_total",
			Help: "Check-in records appended.",
		}),
		backupExports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "echotube_backup_exports_total",
			Help: "Backup snapshots exported.",
		}),
		backupImports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "echotube_backup_imports_total",
			Help: "Backup snapshots imported.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.logins,
		c.loginFailures,
		c.checkIns,
		c.backupExports,
		c.backupImports,
	)

	return c
}

func (c *Collector) RecordRequest(method, path string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.requestDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordLogin(success bool) {
	if success {
		c.logins.Inc()
	} else {
		c.loginFailures.Inc()
	}
}

func (c *Collector) RecordCheckIn()      { c.checkIns.Inc() }
func (c *Collector) RecordBackupExport() { c.backupExports.Inc() }
func (c *Collector) RecordBackupImport() { c.backupImports.Inc() }

// Handler serves the scrape endpoint for the given gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
