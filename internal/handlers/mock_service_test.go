package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	bc "boiler_controller"
	"boiler_controller/internal/control"
	"boiler_controller/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	registrationClosed bool
	registrationErr    error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}
func (m *mockAuth) RegistrationOpen(ctx context.Context) (bool, error) {
	return !m.registrationClosed, m.registrationErr
}

// mockBoiler records the last argument of every command. err is returned
// from every command.
type mockBoiler struct {
	mu sync.Mutex

	err     error
	auto    control.AutoParams
	comfort control.ComfortParams

	calls       map[string]int
	lastMode    string
	lastControl service.ControlParams
	lastEnabled bool
	lastActive  bool
	lastMapping map[string]string
}

func newMockBoiler() *mockBoiler {
	return &mockBoiler{
		auto:    control.DefaultAutoParams(),
		comfort: control.DefaultComfortParams(),
		calls:   map[string]int{},
	}
}

func (m *mockBoiler) call(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
	return m.err
}

func (m *mockBoiler) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockBoiler) SetMode(ctx context.Context, mode string) error {
	m.lastMode = mode
	return m.call("SetMode")
}
func (m *mockBoiler) AutoSettings(ctx context.Context) (control.AutoParams, error) {
	return m.auto, m.call("AutoSettings")
}
func (m *mockBoiler) UpdateAutoSettings(ctx context.Context, p control.AutoParams) error {
	if err := m.call("UpdateAutoSettings"); err != nil {
		return err
	}
	m.auto = p
	return nil
}
func (m *mockBoiler) ComfortSettings(ctx context.Context) (control.ComfortParams, error) {
	return m.comfort, m.call("ComfortSettings")
}
func (m *mockBoiler) UpdateComfortSettings(ctx context.Context, p control.ComfortParams) error {
	if err := m.call("UpdateComfortSettings"); err != nil {
		return err
	}
	m.comfort = p
	return nil
}
func (m *mockBoiler) SetControl(ctx context.Context, p service.ControlParams) error {
	m.lastControl = p
	return m.call("SetControl")
}
func (m *mockBoiler) SetSystemEnabled(ctx context.Context, enabled bool) error {
	m.lastEnabled = enabled
	return m.call("SetSystemEnabled")
}
func (m *mockBoiler) StartIgnition(ctx context.Context) error { return m.call("StartIgnition") }
func (m *mockBoiler) ResetFaults(ctx context.Context) error   { return m.call("ResetFaults") }
func (m *mockBoiler) ResetSensors(ctx context.Context) error  { return m.call("ResetSensors") }
func (m *mockBoiler) RemapSensors(ctx context.Context, mapping map[string]string) error {
	m.lastMapping = mapping
	return m.call("RemapSensors")
}
func (m *mockBoiler) SetCoalFeeding(ctx context.Context, active bool) error {
	m.lastActive = active
	return m.call("SetCoalFeeding")
}

type mockMonitoring struct {
	state bc.BoilerState
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (bc.BoilerState, error) {
	return m.state, m.err
}

type mockEventLog struct {
	resp     []bc.BoilerEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]bc.BoilerEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, nil)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
