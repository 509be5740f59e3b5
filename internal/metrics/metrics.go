package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry            *prometheus.Registry
	requests            *prometheus.CounterVec
	requestErrors       prometheus.Counter
	requestDuration     *prometheus.HistogramVec
	breachesMarked      prometheus.Counter
	complaintsEvaluated prometheus.Counter
	liveClients         prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cms_requests_total",
			Help: "HTTP requests served, by method and status code.",
		}, []string{"method", "status"}),
		requestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cms_request_errors_total",
			Help: "HTTP requests answered with a 4xx or 5xx status.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cms_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		breachesMarked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cms_sla_breaches_marked_total",
			Help: "Complaints flagged as SLA breached by the sweep.",
		}),
		complaintsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cms_complaints_evaluated_total",
			Help: "Complaints run through the SLA evaluator.",
		}),
		liveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cms_live_clients",
			Help: "Connected live channel clients.",
		}),
	}
	registry.MustRegister(
		m.requests,
		m.requestErrors,
		m.requestDuration,
		m.breachesMarked,
		m.complaintsEvaluated,
		m.liveClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(seconds)
	if status >= http.StatusBadRequest {
		m.requestErrors.Inc()
	}
}

func (m *Metrics) AddBreachesMarked(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.breachesMarked.Add(float64(n))
}

func (m *Metrics) AddEvaluated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.complaintsEvaluated.Add(float64(n))
}

func (m *Metrics) SetLiveClients(n int) {
	if m == nil {
		return
	}
	m.liveClients.Set(float64(n))
}
