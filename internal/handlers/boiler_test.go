package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	bc "boiler_controller"
	"boiler_controller/internal/control"
	"boiler_controller/internal/service"
)

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newBoilerRouter() (*mockBoiler, http.Handler) {
	b := newMockBoiler()
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Monitoring:    &mockMonitoring{state: bc.BoilerState{Mode: "comfort", State: "HEATING", Setpoint: 60}},
		Boiler:        b,
	}
	return b, newTestRouter(s)
}

func TestBoilerHandlers_GetStateRequiresAuth(t *testing.T) {
	_, r := newBoilerRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/boiler/state", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	w = serve(r, http.MethodGet, "/api/v1/boiler/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("state status=%d, body=%s", w.Code, w.Body.String())
	}
	var st bc.BoilerState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.Mode != "comfort" || st.State != "HEATING" {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestBoilerHandlers_GetStateError(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 1},
		Monitoring:    &mockMonitoring{err: fmt.Errorf("boom")},
	}
	w := serve(newTestRouter(s), http.MethodGet, "/api/v1/boiler/state", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestBoilerHandlers_SetModeIncludesState(t *testing.T) {
	b, r := newBoilerRouter()

	w := serve(r, http.MethodPost, "/api/v1/boiler/mode", `{"mode":"comfort"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("mode status=%d, body=%s", w.Code, w.Body.String())
	}
	if b.count("SetMode") != 1 || b.lastMode != "comfort" {
		t.Fatalf("SetMode calls=%d mode=%q", b.count("SetMode"), b.lastMode)
	}
	var resp struct {
		Status string         `json:"status"`
		Mode   string         `json:"mode"`
		State  bc.BoilerState `json:"state"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != statusModeSet || resp.Mode != "comfort" || resp.State.State != "HEATING" {
		t.Fatalf("bad mode response: %+v", resp)
	}

	w = serve(r, http.MethodPost, "/api/v1/boiler/mode", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing mode, got %d", w.Code)
	}
}

func TestBoilerHandlers_CommandErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &control.RangeError{Field: "setpoint", Value: 99, Min: 40, Max: 80}, http.StatusBadRequest},
		{"ignition_unavailable", control.ErrIgnitionUnavailable, http.StatusConflict},
		{"home_offline", fmt.Errorf("set mode: %w", control.ErrHomeSensorOffline), http.StatusConflict},
		{"disabled", control.ErrSystemDisabled, http.StatusConflict},
		{"loop_stopped", service.ErrLoopStopped, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, r := newBoilerRouter()
			b.err = tc.err

			w := serve(r, http.MethodPost, "/api/v1/boiler/ignition", "")
			if w.Code != tc.want {
				t.Fatalf("status: got %d, want %d (body=%s)", w.Code, tc.want, w.Body.String())
			}
			var out struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.Error == "" {
				t.Fatalf("expected error message, body=%s", w.Body.String())
			}
		})
	}
}

func TestBoilerHandlers_UpdateAutoSettingsMergesBody(t *testing.T) {
	b, r := newBoilerRouter()

	w := serve(r, http.MethodPut, "/api/v1/boiler/settings/auto", `{"setpoint":65}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	want := control.DefaultAutoParams()
	want.Setpoint = 65
	if b.auto != want {
		t.Fatalf("stored %+v, want %+v", b.auto, want)
	}

	w = serve(r, http.MethodGet, "/api/v1/boiler/settings/auto", "")
	var got control.AutoParams
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if w.Code != http.StatusOK || got.Setpoint != 65 {
		t.Fatalf("get status=%d, settings=%+v", w.Code, got)
	}
}

func TestBoilerHandlers_UpdateComfortSettingsRejected(t *testing.T) {
	b, r := newBoilerRouter()

	w := serve(r, http.MethodPut, "/api/v1/boiler/settings/comfort", `{"target_home_temp":"warm"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", w.Code)
	}
	if b.count("UpdateComfortSettings") != 0 {
		t.Fatalf("update must not be called for a bad body")
	}

	w = serve(r, http.MethodPut, "/api/v1/boiler/settings/comfort", `{"target_home_temp":22.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if b.comfort.TargetHomeTemp != 22.5 || b.comfort.MinBoilerTemp != control.DefaultComfortParams().MinBoilerTemp {
		t.Fatalf("unexpected comfort settings: %+v", b.comfort)
	}
}

func TestBoilerHandlers_Control(t *testing.T) {
	b, r := newBoilerRouter()

	w := serve(r, http.MethodPost, "/api/v1/boiler/control", `{"device":"pump","state":true,"manual":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	want := service.ControlParams{Device: "pump", State: true, Manual: true}
	if b.lastControl != want {
		t.Fatalf("got %+v, want %+v", b.lastControl, want)
	}

	w = serve(r, http.MethodPost, "/api/v1/boiler/control", `{"device":"pump","manual":false}`)
	if w.Code != http.StatusOK || b.lastControl.Manual {
		t.Fatalf("release status=%d, params=%+v", w.Code, b.lastControl)
	}

	w = serve(r, http.MethodPost, "/api/v1/boiler/control", `{"device":"fan","state":true}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without manual, got %d", w.Code)
	}
}

func TestBoilerHandlers_FlagCommands(t *testing.T) {
	b, r := newBoilerRouter()

	if w := serve(r, http.MethodPost, "/api/v1/boiler/system", `{"enabled":false}`); w.Code != http.StatusOK {
		t.Fatalf("system status=%d, body=%s", w.Code, w.Body.String())
	}
	if b.count("SetSystemEnabled") != 1 || b.lastEnabled {
		t.Fatalf("SetSystemEnabled calls=%d enabled=%v", b.count("SetSystemEnabled"), b.lastEnabled)
	}

	if w := serve(r, http.MethodPost, "/api/v1/boiler/coal-feeding", `{"active":true}`); w.Code != http.StatusOK {
		t.Fatalf("coal feeding status=%d, body=%s", w.Code, w.Body.String())
	}
	if !b.lastActive {
		t.Fatalf("coal feeding not activated")
	}

	if w := serve(r, http.MethodPost, "/api/v1/boiler/system", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without enabled, got %d", w.Code)
	}
}

func TestBoilerHandlers_ResetAndSensors(t *testing.T) {
	b, r := newBoilerRouter()

	for _, path := range []string{"/api/v1/boiler/reset", "/api/v1/boiler/sensors/reset", "/api/v1/boiler/ignition"} {
		if w := serve(r, http.MethodPost, path, ""); w.Code != http.StatusOK {
			t.Fatalf("%s status=%d, body=%s", path, w.Code, w.Body.String())
		}
	}
	if b.count("ResetFaults") != 1 || b.count("ResetSensors") != 1 || b.count("StartIgnition") != 1 {
		t.Fatalf("unexpected calls: %v", b.calls)
	}

	w := serve(r, http.MethodPut, "/api/v1/boiler/sensors/mapping", `{"mapping":{"supply":"28-000000000001"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("mapping status=%d, body=%s", w.Code, w.Body.String())
	}
	if b.lastMapping["supply"] != "28-000000000001" {
		t.Fatalf("mapping not forwarded: %v", b.lastMapping)
	}

	b.err = fmt.Errorf("gpio write failed")
	if w := serve(r, http.MethodPost, "/api/v1/boiler/sensors/reset", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on sensor reset failure, got %d", w.Code)
	}
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	r := newTestRouter(&service.Service{})

	for _, path := range []string{"/health", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, w.Code)
		}
	}
}
