package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Sensor.Driver != SensorW1 || cfg.Relay.Driver != RelayGPIO {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	c := cfg.Controller.Configuration()
	if c.TempLow != 20 || c.TempHigh != 25 || c.CheckInterval != 5 || c.MinTemp != -10 || c.MaxTemp != 50 {
		t.Fatalf("controller defaults %+v", c)
	}
	if !cfg.Controller.MonitorWhenStopped || cfg.Controller.HistoryCapacity != 100 {
		t.Fatalf("controller options %+v", cfg.Controller)
	}
	if cfg.MQTTEnabled() {
		t.Fatal("MQTT should be disabled without a broker")
	}
	if cfg.Auth.TokenTTL != time.Hour || cfg.Simulator.Conversion != 750*time.Millisecond {
		t.Fatalf("durations not decoded: %+v %+v", cfg.Auth, cfg.Simulator)
	}
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
port: "9090"
log:
  level: debug
controller:
  temp_low: 60
  temp_high: 70
  max_temp: 80
  tick_timeout: 3s
sensor:
  driver: simulated
relay:
  driver: simulated
  active_low: true
mqtt:
  broker: tcp://broker.local:1883
  topic_prefix: boiler/room
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.Log.Level != "debug" {
		t.Fatalf("top-level values %+v", cfg)
	}
	if cfg.Controller.TempLow != 60 || cfg.Controller.TempHigh != 70 || cfg.Controller.MaxTemp != 80 {
		t.Fatalf("controller %+v", cfg.Controller)
	}
	if cfg.Controller.TickTimeout != 3*time.Second {
		t.Fatalf("tick_timeout = %v", cfg.Controller.TickTimeout)
	}
	if !cfg.Relay.ActiveLow || cfg.Sensor.Driver != SensorSimulated {
		t.Fatalf("drivers %+v %+v", cfg.Sensor, cfg.Relay)
	}
	if !cfg.MQTTEnabled() || cfg.MQTT.TopicPrefix != "boiler/room" {
		t.Fatalf("mqtt %+v", cfg.MQTT)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("THERMO_RELAY_RELAY_LINE", "27")
	t.Setenv("THERMO_RELAY_CONTROLLER_CHECK_INTERVAL", "10")

	cfg, err := Load(writeConfig(t, "port: \"8081\"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Relay.Line != 27 || cfg.Controller.CheckInterval != 10 {
		t.Fatalf("env overrides not applied: line=%d interval=%d", cfg.Relay.Line, cfg.Controller.CheckInterval)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"thresholds inverted": "controller:\n  temp_low: 30\n  temp_high: 25\n",
		"low below min":       "controller:\n  min_temp: 25\n",
		"high above max":      "controller:\n  max_temp: 22\n",
		"interval too long":   "controller:\n  check_interval: 61\n",
		"unknown sensor":      "sensor:\n  driver: dht22\n",
		"unknown relay":       "relay:\n  driver: spi\n",
		"bad log level":       "log:\n  level: trace\n",
		"store not json":      "storage:\n  backend: file\n  file: config.yml\n",
		"auth without key":    "auth:\n  enabled: true\n",
		"bad qos":             "mqtt:\n  qos: 3\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), "invalid config") {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("an explicit path that does not exist should fail")
	}
}
