// Package metrics holds the process wide prometheus collectors.
package metrics

import (
	"fmt"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"resty.dev/v3"
)

var (
	SourceItemsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_source_items_fetched_total",
		Help: "Raw items returned by content sources",
	}, []string{"source"})

	SourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_source_failures_total",
		Help: "Failed content source fetches",
	}, []string{"source"})

	ItemsFiltered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_items_filtered_total",
		Help: "Items passed through the dedup filter by outcome",
	}, []string{"outcome"})

	AICalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_ai_calls_total",
		Help: "Text generation attempts by outcome",
	}, []string{"outcome"})

	AIKeyRotations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_ai_key_rotations_total",
		Help: "API key cursor advances",
	})

	QueueItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_queue_items_total",
		Help: "Queue items that reached a terminal status",
	}, []string{"platform", "status"})

	EngagementActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_engagement_actions_total",
		Help: "Engagement actions by type and outcome",
	}, []string{"platform", "action", "outcome"})

	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_job_runs_total",
		Help: "Scheduled job runs by outcome",
	}, []string{"job", "outcome"})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "autopilot_websocket_clients",
		Help: "Connected dashboard listeners",
	})

	apiLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "autopilot_external_api_latency_seconds",
		Help:    "Latency of outgoing HTTP calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "host", "status"})
)

// RestyMiddleware observes the latency of every response of a resty client.
func RestyMiddleware(_ *resty.Client, response *resty.Response) error {
	reqURL, err := url.Parse(response.Request.URL)
	if err != nil {
		return err
	}

	apiLatency.WithLabelValues(
		response.Request.Method,
		reqURL.Host,
		fmt.Sprintf("%d", response.StatusCode()),
	).Observe(response.Duration().Seconds())

	return nil
}
