package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	_ "thermo_relay/docs"
	"thermo_relay/internal/config"
	"thermo_relay/internal/handlers"
	"thermo_relay/internal/logger"
	"thermo_relay/internal/mqtt"
	"thermo_relay/internal/relay"
	"thermo_relay/internal/repository"
	"thermo_relay/internal/repository/db"
	"thermo_relay/internal/sensor"
	"thermo_relay/internal/server"
	"thermo_relay/internal/service"
	"thermo_relay/internal/simulator"
)

// @title        Thermo Relay API
// @version      1.0
// @description  Hysteresis temperature relay controller.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	configPath := flag.String("config", "", "path to config file (default configs/config.yml)")
	flag.Parse()

	// load config.yml, env overrides and defaults
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.GetWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatalw("controller exited", "err", err)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// open DB
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	probe, drv, err := openHardware(cfg, log)
	if err != nil {
		return err
	}
	// Close de-energizes the relay on every exit path.
	defer func() {
		if cerr := drv.Close(); cerr != nil {
			log.Errorw("relay_close_failed", "err", cerr)
		}
	}()

	deps := service.Deps{
		Reader: sensor.NewReader(probe, sensor.Options{
			DisconnectedValue: cfg.Sensor.DisconnectedValue,
			PhysicalMin:       cfg.Sensor.PhysicalMin,
			PhysicalMax:       cfg.Sensor.PhysicalMax,
		}),
		Relay: drv,
		Log:   log,
	}

	if cfg.MQTTEnabled() {
		// The relay loop must run without a broker; MQTT is reporting only.
		if pub, err := openMQTT(cfg, log); err != nil {
			log.Warnw("mqtt_disabled", "err", err)
		} else {
			defer func() {
				if cerr := pub.Close(); cerr != nil {
					log.Errorw("mqtt_close_failed", "err", cerr)
				}
			}()
			deps.Sinks = append(deps.Sinks, pub)
			deps.Status = pub
		}
	}

	// wire dependencies
	repos := repository.NewRepository(conn, configStore(cfg))
	services := service.NewService(ctx, repos, deps, service.Options{
		Controller: service.ControllerOptions{
			Defaults:           cfg.Controller.Configuration(),
			HistoryCapacity:    cfg.Controller.HistoryCapacity,
			MonitorWhenStopped: cfg.Controller.MonitorWhenStopped,
		},
		TickTimeout: cfg.Controller.TickTimeout,
		Auth: service.AuthOptions{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		},
	})
	apiHandler := handlers.NewHandler(services, log, handlers.WithAuth(cfg.Auth.Enabled))
	srv := server.New(cfg.Port, apiHandler.InitRoutes())

	log.Infow("controller starting",
		"addr", srv.Addr(),
		"sensor", cfg.Sensor.Driver,
		"relay", cfg.Relay.Driver,
		"storage", cfg.Storage.Backend,
		"mqtt", cfg.MQTTEnabled(),
		"auth", cfg.Auth.Enabled,
	)

	// control loop and HTTP server share one lifetime
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		services.Scheduler.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})

	err = g.Wait()
	log.Infow("shutting down")
	return err
}

// openHardware selects the probe and relay drivers. The simulated drivers
// share one thermal model so switching the relay moves the temperature.
func openHardware(cfg *config.Config, log *logger.Logger) (sensor.Probe, relay.Driver, error) {
	var plant *simulator.Plant
	if cfg.Sensor.Driver == config.SensorSimulated || cfg.Relay.Driver == config.RelaySimulated {
		plant = simulator.NewPlant(simulator.Options{
			AmbientC:       cfg.Simulator.AmbientC,
			StartC:         cfg.Simulator.StartC,
			HeatCPerSec:    cfg.Simulator.HeatCPerSec,
			CoolCPerSec:    cfg.Simulator.CoolCPerSec,
			ConversionTime: cfg.Simulator.Conversion,
		})
		log.Infow("simulator enabled", "ambient_c", cfg.Simulator.AmbientC, "start_c", cfg.Simulator.StartC)
	}

	var probe sensor.Probe = plant
	if cfg.Sensor.Driver == config.SensorW1 {
		w1, err := sensor.NewW1Probe(cfg.Sensor.W1Glob)
		if err != nil {
			return nil, nil, fmt.Errorf("open w1 probe: %w", err)
		}
		log.Infow("w1 probe found", "path", w1.Path())
		probe = w1
	}

	var drv relay.Driver = plant
	if cfg.Relay.Driver == config.RelayGPIO {
		gpio, err := relay.NewGPIODriver(cfg.Relay.Chip, cfg.Relay.Line, cfg.Relay.ActiveLow)
		if err != nil {
			return nil, nil, fmt.Errorf("open relay gpio: %w", err)
		}
		drv = gpio
	}
	return probe, drv, nil
}

func openMQTT(cfg *config.Config, log *logger.Logger) (*mqtt.RealPublisher, error) {
	pub, err := mqtt.NewRealPublisher(mqtt.Options{
		Broker:         cfg.MQTT.Broker,
		ClientID:       cfg.MQTT.ClientID,
		Username:       cfg.MQTT.Username,
		Password:       cfg.MQTT.Password,
		TopicPrefix:    cfg.MQTT.TopicPrefix,
		QoS:            byte(cfg.MQTT.QoS),
		ConnectTimeout: cfg.MQTT.ConnectTimeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("connect mqtt %s: %w", cfg.MQTT.Broker, err)
	}
	return pub, nil
}

// configStore returns the JSON file store when configured; nil selects the
// SQLite table.
func configStore(cfg *config.Config) repository.ConfigStore {
	if cfg.Storage.Backend == config.StorageFile {
		return repository.NewConfigFile(cfg.Storage.File)
	}
	return nil
}
