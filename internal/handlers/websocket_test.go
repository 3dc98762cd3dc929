package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"thermo_relay/internal/models"
	"thermo_relay/internal/service"
)

func TestParseInterval(t *testing.T) {
	cases := []struct {
		u    string
		want time.Duration
	}{
		{"/ws", defaultInterval},
		{"/ws?interval=200ms", 200 * time.Millisecond},
		{"/ws?interval_ms=150", 150 * time.Millisecond},
		{"/ws?interval=20s", defaultInterval},
		{"/ws?interval_ms=20000", defaultInterval},
		{"/ws?interval=-1s", defaultInterval},
		{"/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
		{"/ws?interval=2s&interval_ms=150", 2 * time.Second},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, tc.u, nil)
		if got := parseInterval(c); got != tc.want {
			t.Errorf("parseInterval(%s) = %v, want %v", tc.u, got, tc.want)
		}
	}
}

func TestFingerprintIgnoresUptime(t *testing.T) {
	a := testStatus()
	b := a
	b.UptimeSeconds += 30
	if fingerprint(a) != fingerprint(b) {
		t.Fatal("uptime alone must not count as a change")
	}
	b.TotalReadings++
	if fingerprint(a) == fingerprint(b) {
		t.Fatal("a new reading must count as a change")
	}
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialStatus(t *testing.T, mon *mockMonitoring, query string) *wsClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(&service.Service{Monitoring: mon}, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = query
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn}
}

// next reads one status message, or returns ok=false on timeout.
func (c *wsClient) next(timeout time.Duration) (models.StatusView, bool) {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	var env struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := c.conn.ReadJSON(&env); err != nil {
		if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
			return models.StatusView{}, false
		}
		if strings.Contains(err.Error(), "timeout") {
			return models.StatusView{}, false
		}
		c.t.Fatalf("read: %v", err)
	}
	if env.Type != msgStatus {
		c.t.Fatalf("type = %q, want %q", env.Type, msgStatus)
	}
	var st models.StatusView
	if err := json.Unmarshal(env.Data, &st); err != nil {
		c.t.Fatalf("unmarshal status: %v", err)
	}
	return st, true
}

func TestWebSocket_InitialStatus(t *testing.T) {
	c := dialStatus(t, &mockMonitoring{status: testStatus()}, "interval_ms=20")

	st, ok := c.next(time.Second)
	if !ok {
		t.Fatal("no initial status")
	}
	if st.State != models.StateRelayOff || st.Temperature == nil || *st.Temperature != 22.5 || !st.Running {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestWebSocket_PushesOnlyOnChange(t *testing.T) {
	mon := &mockMonitoring{status: testStatus()}
	c := dialStatus(t, mon, "interval_ms=20")

	if _, ok := c.next(time.Second); !ok {
		t.Fatal("no initial status")
	}
	if _, ok := c.next(150 * time.Millisecond); ok {
		t.Fatal("unchanged status must not be re-sent")
	}
}

func TestWebSocket_ChangeIsPushed(t *testing.T) {
	mon := &mockMonitoring{status: testStatus()}
	c := dialStatus(t, mon, "interval_ms=20")
	if _, ok := c.next(time.Second); !ok {
		t.Fatal("no initial status")
	}

	next := testStatus()
	next.RelayActive = true
	next.State = models.StateRelayOn
	mon.setStatus(next)

	st, ok := c.next(time.Second)
	if !ok {
		t.Fatal("change was not pushed")
	}
	if st.State != models.StateRelayOn || !st.RelayActive {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestWebSocket_RefreshForcesPush(t *testing.T) {
	c := dialStatus(t, &mockMonitoring{status: testStatus()}, "interval=5s")
	if _, ok := c.next(time.Second); !ok {
		t.Fatal("no initial status")
	}

	if err := c.conn.WriteJSON(wsEnvelope{Type: msgRefresh}); err != nil {
		t.Fatalf("write refresh: %v", err)
	}
	if _, ok := c.next(time.Second); !ok {
		t.Fatal("refresh did not produce a status")
	}
}
