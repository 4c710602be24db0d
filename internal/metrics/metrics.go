// Copyright Project Contour Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics provides Prometheus metrics for the monitoring engine.
package metrics

import (
	"net/http"

	"github.com/basyskom-jvoe/open62541-go/internal/build"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provide Prometheus metrics for the monitoring engine.
type Metrics struct {
	buildInfoGauge *prometheus.GaugeVec

	subscriptionGauge        *prometheus.GaugeVec
	monitoredItemGauge       *prometheus.GaugeVec
	queueDepthGauge          *prometheus.GaugeVec
	notificationsEnqueued    *prometheus.CounterVec
	notificationsEvicted     *prometheus.CounterVec
	samplesTaken             *prometheus.CounterVec
	sampleErrors             *prometheus.CounterVec
	samplingDurationSummary  prometheus.Summary
	managementOperations     *prometheus.CounterVec
}

const (
	BuildInfoGauge = "uamond_build_info"

	SubscriptionGauge       = "uamond_subscriptions"
	MonitoredItemGauge      = "uamond_monitored_items"
	QueueDepthGauge         = "uamond_queue_depth"
	NotificationsEnqueued   = "uamond_notifications_enqueued_total"
	NotificationsEvicted    = "uamond_notifications_evicted_total"
	SamplesTaken            = "uamond_samples_taken_total"
	SampleErrors            = "uamond_sample_errors_total"
	samplingDurationSummary = "uamond_sampling_duration_seconds"
	managementOperations    = "uamond_management_operation_total"
)

// NewMetrics creates a new set of metrics and registers them with
// the supplied registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := Metrics{
		buildInfoGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: BuildInfoGauge,
				Help: "Build information. Labels include the branch and git SHA the binary was built from, and its version.",
			},
			[]string{"branch", "revision", "version"},
		),
		subscriptionGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: SubscriptionGauge,
				Help: "Current number of active subscriptions.",
			},
			[]string{},
		),
		monitoredItemGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MonitoredItemGauge,
				Help: "Current number of monitored items, by subscription.",
			},
			[]string{"subscription"},
		),
		queueDepthGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: QueueDepthGauge,
				Help: "Current depth of the subscription's global notification queue.",
			},
			[]string{"subscription"},
		),
		notificationsEnqueued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: NotificationsEnqueued,
				Help: "Total number of notifications enqueued, by subscription and monitored item.",
			},
			[]string{"subscription", "item"},
		),
		notificationsEvicted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: NotificationsEvicted,
				Help: "Total number of notifications evicted by the queue overflow policy, by subscription and monitored item.",
			},
			[]string{"subscription", "item"},
		),
		samplesTaken: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: SamplesTaken,
				Help: "Total number of sampling callbacks executed, by monitored item.",
			},
			[]string{"subscription", "item"},
		),
		sampleErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: SampleErrors,
				Help: "Total number of sampling callbacks that read a Bad status from the address space, by monitored item.",
			},
			[]string{"subscription", "item"},
		),
		samplingDurationSummary: prometheus.NewSummary(prometheus.SummaryOpts{
			Name:       samplingDurationSummary,
			Help:       "Summary of the time spent in a single sampling-and-change-detection pass.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
		managementOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: managementOperations,
				Help: "Total number of management API operations received, by operation and result status.",
			},
			[]string{"op", "status"},
		),
	}
	m.buildInfoGauge.WithLabelValues(build.Branch, build.Sha, build.Version).Set(1)
	m.register(registry)
	return &m
}

// register registers the Metrics with the supplied registry.
func (m *Metrics) register(registry *prometheus.Registry) {
	registry.MustRegister(
		m.buildInfoGauge,
		m.subscriptionGauge,
		m.monitoredItemGauge,
		m.queueDepthGauge,
		m.notificationsEnqueued,
		m.notificationsEvicted,
		m.samplesTaken,
		m.sampleErrors,
		m.samplingDurationSummary,
		m.managementOperations,
	)
}

// SetSubscriptionCount records the current number of active subscriptions.
func (m *Metrics) SetSubscriptionCount(n int) {
	m.subscriptionGauge.WithLabelValues().Set(float64(n))
}

// SetMonitoredItemCount records the current number of monitored items owned
// by a subscription.
func (m *Metrics) SetMonitoredItemCount(subscription string, n int) {
	m.monitoredItemGauge.WithLabelValues(subscription).Set(float64(n))
}

// SetQueueDepth records the current depth of a subscription's global queue.
func (m *Metrics) SetQueueDepth(subscription string, n int) {
	m.queueDepthGauge.WithLabelValues(subscription).Set(float64(n))
}

// IncNotificationsEnqueued increments the enqueued-notification counter for
// a monitored item.
func (m *Metrics) IncNotificationsEnqueued(subscription, item string) {
	m.notificationsEnqueued.WithLabelValues(subscription, item).Inc()
}

// IncNotificationsEvicted increments the evicted-notification counter for a
// monitored item, recording an overflow-policy eviction.
func (m *Metrics) IncNotificationsEvicted(subscription, item string) {
	m.notificationsEvicted.WithLabelValues(subscription, item).Inc()
}

// IncSamplesTaken increments the sampling-callback counter for a monitored
// item.
func (m *Metrics) IncSamplesTaken(subscription, item string) {
	m.samplesTaken.WithLabelValues(subscription, item).Inc()
}

// IncSampleErrors increments the sample-error counter for a monitored item.
func (m *Metrics) IncSampleErrors(subscription, item string) {
	m.sampleErrors.WithLabelValues(subscription, item).Inc()
}

// NewSamplingTimer starts a timer that records its observed duration into
// the sampling duration summary when ObserveDuration is called.
func (m *Metrics) NewSamplingTimer() *prometheus.Timer {
	return prometheus.NewTimer(m.samplingDurationSummary)
}

// IncManagementOperation increments the management-API operation counter.
func (m *Metrics) IncManagementOperation(op, status string) {
	m.managementOperations.WithLabelValues(op, status).Inc()
}

// Handler returns a http Handler for a metrics endpoint.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
