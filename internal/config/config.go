// Package config loads the process configuration from configs/config.yml,
// THERMO_RELAY_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"thermo_relay/internal/models"
)

// EnvPrefix prefixes environment overrides, e.g. THERMO_RELAY_RELAY_LINE=27.
const EnvPrefix = "THERMO_RELAY"

// Driver names.
const (
	SensorW1        = "w1"
	SensorSimulated = "simulated"
	RelayGPIO       = "gpio"
	RelaySimulated  = "simulated"
	StorageSQLite   = "sqlite"
	StorageFile     = "file"
)

type Config struct {
	Port       string           `mapstructure:"port" validate:"required"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Controller ControllerConfig `mapstructure:"controller"`
	Sensor     SensorConfig     `mapstructure:"sensor"`
	Relay      RelayConfig      `mapstructure:"relay"`
	Simulator  SimulatorConfig  `mapstructure:"simulator"`
	MQTT       MQTTConfig       `mapstructure:"mqtt"`
	Auth       AuthConfig       `mapstructure:"auth"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File       string `mapstructure:"file"` // empty: console only
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

type DBConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// StorageConfig selects where the operator thresholds are persisted.
type StorageConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=sqlite file"`
	File    string `mapstructure:"file" validate:"required,endswith=.json"`
}

type ControllerConfig struct {
	TempLow            float64       `mapstructure:"temp_low"`
	TempHigh           float64       `mapstructure:"temp_high" validate:"gtfield=TempLow"`
	CheckInterval      int           `mapstructure:"check_interval" validate:"min=1,max=60"`
	MinTemp            float64       `mapstructure:"min_temp" validate:"ltefield=TempLow"`
	MaxTemp            float64       `mapstructure:"max_temp" validate:"gtefield=TempHigh"`
	HistoryCapacity    int           `mapstructure:"history_capacity" validate:"min=1,max=100000"`
	MonitorWhenStopped bool          `mapstructure:"monitor_when_stopped"`
	TickTimeout        time.Duration `mapstructure:"tick_timeout" validate:"gte=0"`
}

type SensorConfig struct {
	Driver            string  `mapstructure:"driver" validate:"oneof=w1 simulated"`
	W1Glob            string  `mapstructure:"w1_glob" validate:"required_if=Driver w1"`
	DisconnectedValue float64 `mapstructure:"disconnected_value"`
	PhysicalMin       float64 `mapstructure:"physical_min"`
	PhysicalMax       float64 `mapstructure:"physical_max" validate:"gtfield=PhysicalMin"`
}

type RelayConfig struct {
	Driver    string `mapstructure:"driver" validate:"oneof=gpio simulated"`
	Chip      string `mapstructure:"chip" validate:"required_if=Driver gpio"`
	Line      int    `mapstructure:"line" validate:"gte=0"`
	ActiveLow bool   `mapstructure:"active_low"`
}

// SimulatorConfig tunes the thermal model used by the simulated drivers.
type SimulatorConfig struct {
	AmbientC    float64       `mapstructure:"ambient_c"`
	StartC      float64       `mapstructure:"start_c"`
	HeatCPerSec float64       `mapstructure:"heat_c_per_sec" validate:"gte=0"`
	CoolCPerSec float64       `mapstructure:"cool_c_per_sec" validate:"gte=0"`
	Conversion  time.Duration `mapstructure:"conversion" validate:"gte=0"`
}

// MQTTConfig enables event and status publishing when Broker is set.
type MQTTConfig struct {
	Broker         string        `mapstructure:"broker" validate:"omitempty,url"`
	ClientID       string        `mapstructure:"client_id" validate:"required"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	TopicPrefix    string        `mapstructure:"topic_prefix" validate:"required"`
	QoS            int           `mapstructure:"qos" validate:"min=0,max=2"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"gt=0"`
}

// AuthConfig protects the mutating API routes with bearer tokens when enabled.
type AuthConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	SigningKey string        `mapstructure:"signing_key" validate:"required_if=Enabled true"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
}

// Configuration returns the controller thresholds and safety bounds.
func (c ControllerConfig) Configuration() models.Configuration {
	return models.Configuration{
		TempLow:       c.TempLow,
		TempHigh:      c.TempHigh,
		CheckInterval: c.CheckInterval,
		MinTemp:       c.MinTemp,
		MaxTemp:       c.MaxTemp,
	}
}

// MQTTEnabled reports whether a broker is configured.
func (c *Config) MQTTEnabled() bool { return c.MQTT.Broker != "" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("db.path", "thermo_relay.db")

	v.SetDefault("storage.backend", StorageSQLite)
	v.SetDefault("storage.file", "config.json")

	v.SetDefault("controller.temp_low", 20.0)
	v.SetDefault("controller.temp_high", 25.0)
	v.SetDefault("controller.check_interval", 5)
	v.SetDefault("controller.min_temp", -10.0)
	v.SetDefault("controller.max_temp", 50.0)
	v.SetDefault("controller.history_capacity", 100)
	v.SetDefault("controller.monitor_when_stopped", true)
	v.SetDefault("controller.tick_timeout", 0)

	v.SetDefault("sensor.driver", SensorW1)
	v.SetDefault("sensor.w1_glob", "/sys/bus/w1/devices/28-*/w1_slave")
	v.SetDefault("sensor.disconnected_value", -127.0)
	v.SetDefault("sensor.physical_min", -55.0)
	v.SetDefault("sensor.physical_max", 125.0)

	v.SetDefault("relay.driver", RelayGPIO)
	v.SetDefault("relay.chip", "gpiochip0")
	v.SetDefault("relay.line", 17)
	v.SetDefault("relay.active_low", false)

	v.SetDefault("simulator.ambient_c", 18.0)
	v.SetDefault("simulator.start_c", 18.0)
	v.SetDefault("simulator.heat_c_per_sec", 0.25)
	v.SetDefault("simulator.cool_c_per_sec", 0.05)
	v.SetDefault("simulator.conversion", 750*time.Millisecond)

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "thermo-relay")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic_prefix", "thermo_relay")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.connect_timeout", 10*time.Second)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", time.Hour)
}

// Load reads the config file at path, or configs/config.yml when path is
// empty. A missing default file is not an error; defaults and environment
// overrides still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func Validate(cfg *Config) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
