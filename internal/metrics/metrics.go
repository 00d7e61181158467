package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submissions counts intake attempts by result: accepted, invalid,
// persistence_error or delivery_error.
var Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "tradenet_order_submissions_total",
	Help: "Order submissions received by the gateway",
}, []string{"result"})

// Executions counts terminal outcomes written by the execution worker.
var Executions = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "tradenet_order_executions_total",
	Help: "Terminal order outcomes written by the execution worker",
}, []string{"status"})

// ExchangeDurations observes exchange round trips by outcome.
var ExchangeDurations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "tradenet_exchange_request_duration_seconds",
	Help:    "Exchange order placement latency",
	Buckets: prometheus.DefBuckets,
}, []string{"outcome"})

// RoutedEvents counts status events handled by the event router by result:
// delivered, offline or invalid.
var RoutedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "tradenet_routed_events_total",
	Help: "Status events handled by the event router",
}, []string{"result"})

// Connections is the number of live websocket connections.
var Connections = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "tradenet_ws_connections",
	Help: "Live websocket connections in the registry",
})

func init() {
	prometheus.MustRegister(Submissions, Executions, ExchangeDurations, RoutedEvents, Connections)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
