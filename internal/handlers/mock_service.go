package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"thermo_relay/internal/models"
	"thermo_relay/internal/service"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockController struct {
	updateErr  error
	controlErr error

	lastParams  service.ConfigParams
	lastAction  service.Action
	updateCalls int
	controlCall int
}

func (m *mockController) UpdateConfig(ctx context.Context, p service.ConfigParams) error {
	m.updateCalls++
	m.lastParams = p
	return m.updateErr
}
func (m *mockController) Control(ctx context.Context, action service.Action) error {
	m.controlCall++
	m.lastAction = action
	return m.controlErr
}

type mockMonitoring struct {
	mu      sync.Mutex
	status  models.StatusView
	history []models.DataPoint
}

func (m *mockMonitoring) GetStatus(ctx context.Context) models.StatusView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}
func (m *mockMonitoring) GetConfig() models.Configuration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status.Config
}
func (m *mockMonitoring) setStatus(v models.StatusView) {
	m.mu.Lock()
	m.status = v
	m.mu.Unlock()
}
func (m *mockMonitoring) GetHistory() []models.DataPoint {
	return m.history
}

type mockEventLog struct {
	resp []models.ControllerEvent
	err  error
	last service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.ControllerEvent, error) {
	m.last = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, opts ...Option) *gin.Engine {
	h := NewHandler(s, nil, opts...)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func testConfiguration() models.Configuration {
	return models.Configuration{TempLow: 20, TempHigh: 25, CheckInterval: 5, MinTemp: -10, MaxTemp: 50}
}

func testStatus() models.StatusView {
	temp := 22.5
	return models.StatusView{
		State:           models.StateRelayOff,
		Temperature:     &temp,
		Running:         true,
		SensorConnected: true,
		RelayWorking:    true,
		TotalReadings:   3,
		Config:          testConfiguration(),
	}
}
