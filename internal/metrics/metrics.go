package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	reportsTotal     *prometheus.CounterVec
	reportDuration   *prometheus.HistogramVec
	dcfNotComputable prometheus.Counter
	sectorPeers      prometheus.Histogram
	priceRequests    *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.reportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finratio_reports_total",
			Help: "Total number of reports built",
		},
		[]string{"kind", "status"},
	)
	r.reportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finratio_report_duration_seconds",
			Help:    "Report build duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	r.dcfNotComputable = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "finratio_dcf_not_computable_total",
			Help: "Total number of valuations that produced a non-finite value",
		},
	)
	r.sectorPeers = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "finratio_sector_peers",
			Help:    "Number of peers folded into a sector report",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)
	r.priceRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finratio_price_requests_total",
			Help: "Total number of price provider requests",
		},
		[]string{"provider", "status"},
	)

	reg.MustRegister(r.reportsTotal)
	reg.MustRegister(r.reportDuration)
	reg.MustRegister(r.dcfNotComputable)
	reg.MustRegister(r.sectorPeers)
	reg.MustRegister(r.priceRequests)

	return r
}

// RecordRequest records metrics for an HTTP request served by route.
func (r *Registry) RecordRequest(method, route string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, route, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, route).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordReport records a finished report build. kind is "company" or
// "sector". A nil registry records nothing.
func (r *Registry) RecordReport(kind, status string, duration float64) {
	if r == nil {
		return
	}
	r.reportsTotal.WithLabelValues(kind, status).Inc()
	r.reportDuration.WithLabelValues(kind).Observe(duration)
}

// RecordDCFNotComputable counts a valuation whose final value is NaN or
// infinite.
func (r *Registry) RecordDCFNotComputable() {
	if r == nil {
		return
	}
	r.dcfNotComputable.Inc()
}

// ObserveSectorPeers records the peer count of a sector report.
func (r *Registry) ObserveSectorPeers(n int) {
	if r == nil {
		return
	}
	r.sectorPeers.Observe(float64(n))
}

// RecordPriceRequest records one price provider call.
func (r *Registry) RecordPriceRequest(provider, status string) {
	if r == nil {
		return
	}
	r.priceRequests.WithLabelValues(provider, status).Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
