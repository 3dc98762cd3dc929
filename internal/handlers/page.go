package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"thermo_relay/internal/models"
	"thermo_relay/internal/service"
)

const (
	pageRefreshMillis = 30_000
	errInvalidForm    = "Invalid data"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"temp": func(t *float64) string {
		if t == nil {
			return "N/A"
		}
		return fmt.Sprintf("%.1f°C", *t)
	},
	"onOff": func(on bool) string {
		if on {
			return "ON"
		}
		return "OFF"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Temperature Relay Controller</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.status { background: #e8f5e8; padding: 15px; margin-bottom: 20px; }
.status.shutdown { background: #f8e0e0; }
.form-group { margin-bottom: 15px; }
label { display: block; margin-bottom: 5px; font-weight: bold; }
input[type="number"] { width: 100%; padding: 8px; border: 1px solid #ddd; }
.temp { font-size: 2em; font-weight: bold; color: #007bff; }
.relay { font-size: 1.2em; font-weight: bold; }
.relay.on { color: #28a745; }
.relay.off { color: #dc3545; }
.error { color: #dc3545; }
</style>
</head>
<body>
<div class="container">
<h1>Temperature Relay Controller</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<div class="status{{if eq .Status.State "SHUTDOWN"}} shutdown{{end}}">
<h2>Current Status</h2>
<p><strong>Temperature:</strong> <span class="temp">{{temp .Status.Temperature}}</span></p>
<p><strong>Relay:</strong> <span class="relay {{if .Status.RelayActive}}on{{else}}off{{end}}">{{onOff .Status.RelayActive}}</span></p>
<p><strong>Controller:</strong> {{if .Status.Running}}Running{{else}}Stopped{{end}} ({{.Status.State}})</p>
<p><strong>Sensor:</strong> {{if .Status.SensorConnected}}connected{{else}}disconnected{{end}}</p>
</div>
<form method="POST">
<h2>Configuration</h2>
<div class="form-group">
<label for="temp_low">Temperature Low (activate relay):</label>
<input type="number" id="temp_low" name="temp_low" step="0.1" value="{{.Status.Config.TempLow}}" required>
</div>
<div class="form-group">
<label for="temp_high">Temperature High (deactivate relay):</label>
<input type="number" id="temp_high" name="temp_high" step="0.1" value="{{.Status.Config.TempHigh}}" required>
</div>
<div class="form-group">
<label for="check_interval">Check Interval (seconds):</label>
<input type="number" id="check_interval" name="check_interval" min="1" max="60" value="{{.Status.Config.CheckInterval}}" required>
</div>
<button type="submit">Save Configuration</button>
</form>
<p><button onclick="location.reload()">Refresh Status</button></p>
</div>
<script>
setTimeout(function() { location.reload(); }, {{.RefreshMillis}});
</script>
</body>
</html>
`

const testHTML = `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<h1>Controller Test Page</h1>
<p>If you can see this, the web server is working!</p>
</body>
</html>
`

type indexData struct {
	Status        models.StatusView
	Error         string
	RefreshMillis int
}

// renderIndex executes the page template into a byte slice.
func renderIndex(d indexData) ([]byte, error) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *Handler) indexPage(c *gin.Context) {
	body, err := renderIndex(indexData{
		Status:        h.services.Monitoring.GetStatus(c.Request.Context()),
		Error:         c.Query("error"),
		RefreshMillis: pageRefreshMillis,
	})
	if err != nil {
		if h.log != nil {
			h.log.Errorw("page_render_failed", "err", err)
		}
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

func (h *Handler) testPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(testHTML))
}

// parseConfigForm reads the form fields, keeping the current value for any
// field that is absent.
func parseConfigForm(c *gin.Context, cur models.Configuration) (service.ConfigParams, error) {
	p := service.ConfigParams{
		TempLow:       cur.TempLow,
		TempHigh:      cur.TempHigh,
		CheckInterval: cur.CheckInterval,
	}
	var err error
	if v, ok := c.GetPostForm("temp_low"); ok {
		if p.TempLow, err = strconv.ParseFloat(v, 64); err != nil {
			return p, fmt.Errorf("temp_low: %w", err)
		}
	}
	if v, ok := c.GetPostForm("temp_high"); ok {
		if p.TempHigh, err = strconv.ParseFloat(v, 64); err != nil {
			return p, fmt.Errorf("temp_high: %w", err)
		}
	}
	if v, ok := c.GetPostForm("check_interval"); ok {
		if p.CheckInterval, err = strconv.Atoi(v); err != nil {
			return p, fmt.Errorf("check_interval: %w", err)
		}
	}
	return p, nil
}

// submitConfigForm applies the page form and redirects back to the page.
// A rejected configuration is reported on the page itself.
func (h *Handler) submitConfigForm(c *gin.Context) {
	params, err := parseConfigForm(c, h.services.Monitoring.GetConfig())
	if err != nil {
		if h.log != nil {
			h.log.Infow("page_form_invalid", "err", err)
		}
		c.String(http.StatusBadRequest, errInvalidForm)
		return
	}

	location := "/"
	if err := h.services.Controller.UpdateConfig(c.Request.Context(), params); err != nil {
		if !errors.Is(err, service.ErrInvalidConfig) {
			h.logAndJSONError(c, http.StatusInternalServerError, errUpdateConfig, "page_config_update_failed", err)
			return
		}
		location = "/?error=" + url.QueryEscape(err.Error())
	}
	c.Redirect(http.StatusSeeOther, location)
}
