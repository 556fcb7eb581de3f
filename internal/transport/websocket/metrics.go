package websocket

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "hive_client"

// sessionMetrics holds the Prometheus counters shared by every session in the process.
type sessionMetrics struct {
	sessionsOpened  prometheus.Counter
	sessionFailures prometheus.Counter
	sessionsClosed  prometheus.Counter
	framesReceived  prometheus.Counter
	framesSent      prometheus.Counter
	writeErrors     prometheus.Counter
	decodeFailures  prometheus.Counter
	pingsSent       prometheus.Counter
}

var (
	globalMetrics     *sessionMetrics
	globalMetricsOnce sync.Once
)

func metrics() *sessionMetrics {
	globalMetricsOnce.Do(func() {
		globalMetrics = newSessionMetrics(prometheus.DefaultRegisterer)
	})
	return globalMetrics
}

func newSessionMetrics(registry prometheus.Registerer) *sessionMetrics {
	factory := promauto.With(registry)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "session",
			Name:      name,
			Help:      help,
		})
	}

	return &sessionMetrics{
		sessionsOpened:  counter("opened_total", "Sessions that completed the websocket handshake"),
		sessionFailures: counter("failures_total", "Sessions that ended with a transport failure"),
		sessionsClosed:  counter("closed_total", "Sessions closed by the client"),
		framesReceived:  counter("frames_received_total", "Text frames read from the match server"),
		framesSent:      counter("frames_sent_total", "Text frames written to the match server"),
		writeErrors:     counter("write_errors_total", "Failed frame writes"),
		decodeFailures:  counter("decode_failures_total", "Inbound lines dropped because they could not be decoded"),
		pingsSent:       counter("pings_sent_total", "Keep-alive pings written"),
	}
}
