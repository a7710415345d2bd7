package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "boiler_controller/docs"
	"boiler_controller/internal/clock"
	"boiler_controller/internal/config"
	"boiler_controller/internal/control"
	"boiler_controller/internal/encoder"
	"boiler_controller/internal/handlers"
	"boiler_controller/internal/hardware"
	"boiler_controller/internal/logger"
	"boiler_controller/internal/metrics"
	"boiler_controller/internal/mqtt"
	"boiler_controller/internal/repository"
	"boiler_controller/internal/repository/db"
	"boiler_controller/internal/sensor"
	"boiler_controller/internal/server"
	"boiler_controller/internal/service"
)

const (
	retentionInterval = time.Hour
	shutdownTimeout   = 10 * time.Second
)

// @title                       Boiler Controller API
// @version                     1.0
// @description                 Control and monitoring of a solid-fuel boiler.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load(os.Getenv("BOILER_CONFIG"))
	if err != nil {
		logger.Get(logger.InfoLevel, logger.ConsoleFormat).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	plant, err := openPlant(cfg, log)
	if err != nil {
		log.Fatalw("failed to open hardware", "err", err)
	}
	defer func() {
		if cerr := plant.relays.Close(); cerr != nil {
			log.Errorw("failed to release relays", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	core := control.NewCore(sensor.NewPipeline(plant.bus, plant.mapping), control.Options{
		AutoIgnition: cfg.Control.AutoIgnition,
	})
	ctrl := service.NewController(service.ControllerDeps{
		Core:     core,
		Clock:    clock.NewSystem(),
		Relays:   plant.relays,
		Settings: repos.Settings,
		Events:   repos.EventRepo,
		Metrics:  m,
		Log:      log,
	})
	services := service.NewService(repos, ctrl, service.AuthConfig{
		SigningKey: []byte(cfg.Auth.SigningKey),
		TokenTTL:   cfg.Auth.TokenTTL,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	goRun := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	if cfg.MQTT.Enabled {
		client, reporter, err := startMQTT(cfg.MQTT, services, ctrl, log)
		if err != nil {
			log.Fatalw("failed to start mqtt", "err", err)
		}
		defer func() { _ = client.Close() }()
		ctrl.SetEventSink(reporter)
		services.SetSetpointSink(reporter)
		goRun(func() { reporter.Run(ctx) })
	}

	if cfg.Encoder.Enabled {
		w, err := encoder.NewWatcher(encoder.Pins{
			Chip: cfg.GPIO.Chip,
			CLK:  cfg.Encoder.CLK,
			DT:   cfg.Encoder.DT,
			SW:   cfg.Encoder.SW,
		})
		if err != nil {
			log.Warnw("encoder_unavailable", "err", err)
		} else {
			defer func() { _ = w.Close() }()
			goRun(func() { services.RunEncoder(ctx, w.Events()) })
		}
	}

	if plant.sim != nil {
		goRun(func() { plant.sim.Run(ctx, cfg.Control.Tick) })
	}
	goRun(func() { services.Run(ctx, cfg.Control.Tick) })
	goRun(func() { services.RunRetention(ctx, cfg.DB.EventRetention, retentionInterval, log) })

	apiHandler := handlers.NewHandler(services, log, m)
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(cancel, srv, log)
	wg.Wait()
}

// plant is the set of devices the controller drives.
type plant struct {
	relays  hardware.Relays
	bus     sensor.Bus
	mapping map[sensor.Role]string
	sim     *service.SimulatorService
}

// openPlant opens the GPIO relays and the 1-Wire bus, or a simulated boiler
// when gpio is disabled.
func openPlant(cfg *config.Config, log *logger.Logger) (*plant, error) {
	mapping, err := cfg.RoleMapping()
	if err != nil {
		return nil, err
	}

	if !cfg.GPIO.Enabled {
		relays := hardware.NewFakeRelays()
		bus := sensor.NewFakeBus()
		if len(mapping) == 0 {
			mapping = service.SimulatedMapping()
		}
		log.Infow("hardware_simulated", "mapping", len(mapping))
		return &plant{
			relays:  relays,
			bus:     bus,
			mapping: mapping,
			sim:     service.NewSimulatorService(bus, relays, mapping),
		}, nil
	}

	relays, err := hardware.NewGPIORelays(hardware.RelayPins{
		Chip:        cfg.GPIO.Chip,
		Fan:         hardware.Line{Offset: cfg.GPIO.Fan.Line, ActiveLow: cfg.GPIO.Fan.ActiveLow},
		Pump:        hardware.Line{Offset: cfg.GPIO.Pump.Line, ActiveLow: cfg.GPIO.Pump.ActiveLow},
		SensorPower: hardware.Line{Offset: cfg.GPIO.SensorPower.Line, ActiveLow: cfg.GPIO.SensorPower.ActiveLow},
	})
	if err != nil {
		return nil, err
	}
	bus := hardware.NewW1Bus(cfg.Sensors.W1Path, relays.SetSensorPower)
	if len(mapping) == 0 {
		found, derr := bus.Discover()
		log.Warnw("sensor_mapping_empty", "discovered", found, "err", derr)
	}
	return &plant{relays: relays, bus: bus, mapping: mapping}, nil
}

func startMQTT(cfg config.MQTTConfig, services *service.Service, states mqtt.StateSource, log *logger.Logger) (*mqtt.Client, *mqtt.Reporter, error) {
	topics := mqtt.NewTopics(cfg.Prefix, cfg.HomeTemperatureTopic, cfg.HomeStatusTopic)
	client, err := mqtt.NewClient(mqtt.Options{
		Broker:   cfg.Broker,
		ClientID: cfg.ClientID,
		Username: cfg.Username,
		Password: cfg.Password,
	}, topics, mqtt.NewRouter(topics, services), log)
	if err != nil {
		return nil, nil, err
	}
	reporter := mqtt.NewReporter(client, topics, states, log, cfg.StateInterval, cfg.SimpleInterval)
	return client, reporter, nil
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http_listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown blocks until SIGINT or SIGTERM, then stops the background
// loops and drains in-flight requests.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
