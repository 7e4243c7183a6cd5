package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AlarmMetrics tracks live push streams and delivery outcomes.
type AlarmMetrics struct {
	liveStreams prometheus.Gauge
	delivered   *prometheus.CounterVec
	failed      *prometheus.CounterVec
}

// NewAlarmMetrics registers the alarm delivery metrics on the provided registerer.
func NewAlarmMetrics(reg prometheus.Registerer) *AlarmMetrics {
	if reg == nil {
		return &AlarmMetrics{}
	}
	liveStreams := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "alarm_live_streams",
		Help: "Number of currently connected alarm streams.",
	})
	delivered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "alarm_delivered_total",
		Help: "Alarms pushed to a live stream.",
	}, []string{"type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "alarm_delivery_failures_total",
		Help: "Alarm pushes that failed and evicted the stream.",
	}, []string{"type"})
	reg.MustRegister(liveStreams, delivered, failed)
	return &AlarmMetrics{
		liveStreams: liveStreams,
		delivered:   delivered,
		failed:      failed,
	}
}

// StreamOpened increments the live stream gauge.
func (a *AlarmMetrics) StreamOpened() {
	if a == nil || a.liveStreams == nil {
		return
	}
	a.liveStreams.Inc()
}

// StreamClosed decrements the live stream gauge.
func (a *AlarmMetrics) StreamClosed() {
	if a == nil || a.liveStreams == nil {
		return
	}
	a.liveStreams.Dec()
}

// IncDelivered increments the delivered counter for the alarm type.
func (a *AlarmMetrics) IncDelivered(alarmType string) {
	if a == nil || a.delivered == nil {
		return
	}
	a.delivered.WithLabelValues(normalizeLabel(alarmType)).Inc()
}

// IncFailed increments the failure counter for the alarm type.
func (a *AlarmMetrics) IncFailed(alarmType string) {
	if a == nil || a.failed == nil {
		return
	}
	a.failed.WithLabelValues(normalizeLabel(alarmType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
