package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"thermo_relay/internal/models"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxMsgSize      = 1 << 12 // 4 KB
	defaultInterval = 1 * time.Second
	maxInterval     = 10 * time.Second

	msgStatus  = "status"
	msgRefresh = "refresh"
)

// wsEnvelope frames every message in both directions.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// The page and API share a single origin on the device LAN.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// statusFingerprint is the part of a snapshot worth pushing. Uptime moves
// every second and is left out.
type statusFingerprint struct {
	State        models.ControllerState
	Temperature  float64
	HasTemp      bool
	RelayActive  bool
	Sensor       bool
	RelayWorking bool
	Readings     uint64
	Errors       uint64
	Config       models.Configuration
}

func fingerprint(v models.StatusView) statusFingerprint {
	fp := statusFingerprint{
		State:        v.State,
		RelayActive:  v.RelayActive,
		Sensor:       v.SensorConnected,
		RelayWorking: v.RelayWorking,
		Readings:     v.TotalReadings,
		Errors:       v.Errors,
		Config:       v.Config,
	}
	if v.Temperature != nil {
		fp.Temperature, fp.HasTemp = *v.Temperature, true
	}
	return fp
}

// @Summary      Live status stream
// @Description  WebSocket. Sends {"type":"status"} on connect and whenever the snapshot changes; send {"type":"refresh"} to force one.
// @Tags         controller
// @Param        interval     query  string  false  "Poll period, e.g. 500ms (max 10s)"
// @Param        interval_ms  query  int     false  "Poll period in milliseconds"
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	refresh := make(chan struct{}, 1)
	done := make(chan struct{})
	go h.readClient(conn, refresh, done)

	h.streamStatus(c.Request.Context(), conn, interval, refresh, done)
}

// streamStatus polls the controller and writes a snapshot when it changed,
// when the client asks for one, and once on connect.
func (h *Handler) streamStatus(ctx context.Context, conn *websocket.Conn, interval time.Duration, refresh <-chan struct{}, done <-chan struct{}) {
	poll := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer poll.Stop()
	defer ping.Stop()

	var last *statusFingerprint
	push := func(force bool) bool {
		st := h.services.Monitoring.GetStatus(ctx)
		fp := fingerprint(st)
		if !force && last != nil && *last == fp {
			return true
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(wsEnvelope{Type: msgStatus, Data: st}); err != nil {
			if h.log != nil {
				h.log.Infow("ws_write_failed", "err", err)
			}
			return false
		}
		last = &fp
		return true
	}

	if !push(true) {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-refresh:
			if !push(true) {
				return
			}
		case <-poll.C:
			if !push(false) {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		}
	}
}

// readClient drains client messages, turning {"type":"refresh"} into a
// forced push. It closes done when the connection ends.
func (h *Handler) readClient(conn *websocket.Conn, refresh chan<- struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if h.log != nil && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
		var msg wsEnvelope
		if json.Unmarshal(data, &msg) != nil || msg.Type != msgRefresh {
			continue
		}
		select {
		case refresh <- struct{}{}:
		default: // one pending refresh is enough
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000, falling back to
// defaultInterval when absent or outside (0, maxInterval].
func parseInterval(c *gin.Context) time.Duration {
	valid := func(d time.Duration) bool { return d > 0 && d <= maxInterval }

	if d, err := time.ParseDuration(c.Query("interval")); err == nil && valid(d) {
		return d
	}
	if ms, err := strconv.Atoi(c.Query("interval_ms")); err == nil {
		if d := time.Duration(ms) * time.Millisecond; valid(d) {
			return d
		}
	}
	return defaultInterval
}
