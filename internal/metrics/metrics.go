// Package metrics collects and exposes Prometheus metrics for the relay.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the relay's Prometheus instruments.
type Collector struct {
	registry *prometheus.Registry

	eventsReceived *prometheus.CounterVec
	eventsDropped  *prometheus.CounterVec
	deliveries     *prometheus.CounterVec
	deliveryMisses *prometheus.CounterVec

	messagesStored      prometheus.Counter
	messagesSoftDeleted prometheus.Counter

	wsConnections    prometheus.Gauge
	identitiesOnline prometheus.Gauge

	httpRequests *prometheus.CounterVec
}

// NewCollector builds a Collector backed by its own registry, pre-registered
// with the standard process and Go runtime collectors.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		eventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelchat_events_received_total",
			Help: "Inbound websocket events by event name.",
		}, []string{"event"}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelchat_events_dropped_total",
			Help: "Inbound websocket events dropped, by reason.",
		}, []string{"reason"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelchat_deliveries_total",
			Help: "Events delivered to live connections, by event name.",
		}, []string{"event"}),
		deliveryMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelchat_delivery_misses_total",
			Help: "Deliveries addressed to identities with zero live connections, by event name.",
		}, []string{"event"}),
		messagesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelchat_messages_stored_total",
			Help: "Chat messages appended to the conversation store.",
		}),
		messagesSoftDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelchat_messages_soft_deleted_total",
			Help: "Per-viewer soft deletes applied to stored messages.",
		}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reelchat_ws_connections",
			Help: "Currently open websocket connections.",
		}),
		identitiesOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reelchat_identities_online",
			Help: "Identities with at least one live connection.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelchat_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.eventsReceived,
		c.eventsDropped,
		c.deliveries,
		c.deliveryMisses,
		c.messagesStored,
		c.messagesSoftDeleted,
		c.wsConnections,
		c.identitiesOnline,
		c.httpRequests,
	)

	return c
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordEventReceived(event string) {
	c.eventsReceived.WithLabelValues(event).Inc()
}

func (c *Collector) RecordEventDropped(reason string) {
	c.eventsDropped.WithLabelValues(reason).Inc()
}

// RecordDelivery records the outcome of a single addressed delivery: count
// connections reached, or a miss when the recipient was offline.
func (c *Collector) RecordDelivery(event string, count int) {
	if count == 0 {
		c.deliveryMisses.WithLabelValues(event).Inc()
		return
	}
	c.deliveries.WithLabelValues(event).Add(float64(count))
}

func (c *Collector) RecordMessageStored() {
	c.messagesStored.Inc()
}

func (c *Collector) RecordMessageSoftDeleted() {
	c.messagesSoftDeleted.Inc()
}

// SetPresence updates the live-connection and online-identity gauges.
func (c *Collector) SetPresence(identities, conns int) {
	c.identitiesOnline.Set(float64(identities))
	c.wsConnections.Set(float64(conns))
}

func (c *Collector) RecordHTTPRequest(method string, status int) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Drop reasons for RecordEventDropped.
const (
	DropReasonRateLimited  = "rate_limited"
	DropReasonTooLarge     = "too_large"
	DropReasonMalformed    = "malformed"
	DropReasonUnknownEvent = "unknown_event"
	DropReasonInvalid      = "invalid"
)
