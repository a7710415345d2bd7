package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	bc "boiler_controller"
)

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Observe(bc.BoilerState{
		Mode:          "auto",
		State:         "HEATING",
		Fan:           true,
		Setpoint:      62.5,
		SystemEnabled: true,
		Temperatures: map[string]bc.Temperature{
			"supply": {Value: 58.25, Valid: true},
			"return": {Value: 0, Valid: false},
		},
		FanCyclesTotal: 7,
	})

	if got := testutil.ToFloat64(m.temperature.WithLabelValues("supply")); got != 58.25 {
		t.Errorf("supply gauge = %v", got)
	}
	if got := testutil.ToFloat64(m.temperatureValid.WithLabelValues("return")); got != 0 {
		t.Errorf("return valid gauge = %v", got)
	}
	if got := testutil.ToFloat64(m.actuator.WithLabelValues("fan")); got != 1 {
		t.Errorf("fan gauge = %v", got)
	}
	if got := testutil.ToFloat64(m.setpoint); got != 62.5 {
		t.Errorf("setpoint gauge = %v", got)
	}
	if got := testutil.ToFloat64(m.fanCycles); got != 7 {
		t.Errorf("fan cycles gauge = %v", got)
	}

	m.Observe(bc.BoilerState{Mode: "auto", State: "IDLE"})
	if got := testutil.CollectAndCount(m.state); got != 1 {
		t.Errorf("only the active state should be exported, got %d series", got)
	}
	if got := testutil.ToFloat64(m.state.WithLabelValues("IDLE")); got != 1 {
		t.Errorf("IDLE gauge = %v", got)
	}
}

func TestEventRecorded(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.EventRecorded("OVERHEAT")
	m.EventRecorded("OVERHEAT")
	m.EventRecorded("COAL_BURNED")

	if got := testutil.ToFloat64(m.events.WithLabelValues("OVERHEAT")); got != 2 {
		t.Errorf("OVERHEAT count = %v", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.Observe(bc.BoilerState{State: "IDLE"})
	m.EventRecorded("OVERHEAT")
}

func TestGinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/health", "200")); got != 1 {
		t.Errorf("health requests = %v", got)
	}
	if got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("unmatched", "404")); got != 1 {
		t.Errorf("unmatched requests = %v", got)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Error("exposition should contain the request counter")
	}
}
