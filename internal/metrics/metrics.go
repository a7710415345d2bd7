// Package metrics exposes controller readings and HTTP traffic to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	bc "boiler_controller"
)

const namespace = "boiler"

// Metrics is nil-safe: every method on a nil *Metrics is a no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	temperature      *prometheus.GaugeVec
	temperatureValid *prometheus.GaugeVec
	actuator         *prometheus.GaugeVec
	manual           *prometheus.GaugeVec
	state            *prometheus.GaugeVec
	comfortState     *prometheus.GaugeVec
	mode             *prometheus.GaugeVec
	setpoint         prometheus.Gauge
	systemEnabled    prometheus.Gauge
	fanMinutes       prometheus.Gauge
	fanCycles        prometheus.Gauge
	events           *prometheus.CounterVec

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New registers the collectors on reg. Passing prometheus.NewRegistry()
// keeps tests isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature_celsius",
			Help:      "Latest accepted temperature by sensor role.",
		}, []string{"role"}),
		temperatureValid: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature_valid",
			Help:      "1 while the sensor role has a valid reading.",
		}, []string{"role"}),
		actuator: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actuator_on",
			Help:      "Actuator output (1 on, 0 off).",
		}, []string{"actuator"}),
		manual: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actuator_manual",
			Help:      "1 while the actuator is under a manual override.",
		}, []string{"actuator"}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "Current controller state (1 for the active state).",
		}, []string{"state"}),
		comfortState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "comfort_state",
			Help:      "Current Comfort sub-state (1 for the active state).",
		}, []string{"state"}),
		mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mode",
			Help:      "Current operating mode (1 for the active mode).",
		}, []string{"mode"}),
		setpoint: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "setpoint_celsius",
			Help:      "Auto mode supply setpoint.",
		}),
		systemEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "system_enabled",
			Help:      "1 while the controller drives the actuators.",
		}),
		fanMinutes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fan_work_minutes",
			Help:      "Total fan work time in minutes.",
		}),
		fanCycles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fan_cycles",
			Help:      "Total fan on-cycles.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Journal events by type.",
		}, []string{"type"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.temperature,
		m.temperatureValid,
		m.actuator,
		m.manual,
		m.state,
		m.comfortState,
		m.mode,
		m.setpoint,
		m.systemEnabled,
		m.fanMinutes,
		m.fanCycles,
		m.events,
		m.httpRequestsTotal,
		m.httpDuration,
	)
	return m
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Observe copies a state snapshot into the gauges.
func (m *Metrics) Observe(st bc.BoilerState) {
	if m == nil {
		return
	}
	for role, t := range st.Temperatures {
		m.temperatureValid.WithLabelValues(role).Set(boolGauge(t.Valid))
		if t.Valid {
			m.temperature.WithLabelValues(role).Set(t.Value)
		}
	}
	m.actuator.WithLabelValues("fan").Set(boolGauge(st.Fan))
	m.actuator.WithLabelValues("pump").Set(boolGauge(st.Pump))
	m.manual.WithLabelValues("fan").Set(boolGauge(st.FanManual))
	m.manual.WithLabelValues("pump").Set(boolGauge(st.PumpManual))

	m.state.Reset()
	m.state.WithLabelValues(st.State).Set(1)
	m.comfortState.Reset()
	if st.ComfortState != "" {
		m.comfortState.WithLabelValues(st.ComfortState).Set(1)
	}
	m.mode.Reset()
	m.mode.WithLabelValues(st.Mode).Set(1)

	m.setpoint.Set(st.Setpoint)
	m.systemEnabled.Set(boolGauge(st.SystemEnabled))
	m.fanMinutes.Set(float64(st.FanMinutesTotal))
	m.fanCycles.Set(float64(st.FanCyclesTotal))
}

// EventRecorded counts a journal event.
func (m *Metrics) EventRecorded(typ string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(typ).Inc()
}

// GinMiddleware records request counts and durations by route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
