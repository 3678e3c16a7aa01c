package main

import (
	"ble-locate/internal/aggregator"
	"ble-locate/internal/cache"
	"ble-locate/internal/config"
	"ble-locate/internal/database/influx"
	"ble-locate/internal/database/postgres"
	"ble-locate/internal/database/postgres/repositories"
	"ble-locate/internal/interfaces"
	"ble-locate/internal/logger"
	"ble-locate/internal/mq"
	"ble-locate/internal/mq/handlers"
	"ble-locate/internal/services"
	"ble-locate/internal/solver"
	"ble-locate/internal/viewer"
	"context"
	"fmt"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type Application struct {
	config *config.Config

	postgresDB  *postgres.PostgresDB
	influxDB    *influx.InfluxDB
	redisClient *redis.Client

	deviceRepository *repositories.DeviceRepository
	predictionCache  *cache.PredictionCache

	aggregator    *aggregator.Aggregator
	fanOut        *services.FanOut
	locateService *services.LocateService
	dispatcher    *services.Dispatcher
	sweeper       *services.Sweeper

	mqttClient         interfaces.IMqClient
	topicManager       *mq.TopicManager
	measurementHandler *handlers.MeasurementHandler

	hub          *viewer.Hub
	viewerServer *viewer.Server

	shutdownChan chan os.Signal
	ctx          context.Context
	cancelFunc   context.CancelFunc
}

func main() {
	app := &Application{}

	if err := app.initialize(); err != nil {
		log.Error().Err(err).Msg("Failed to initialize application")
		_ = app.shutdown()
		os.Exit(1)
	}

	if err := app.run(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run application")
	}
}

func (app *Application) initialize() error {
	var err error

	app.config, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.NewLogger(app.config.Logger)
	log.Info().
		Str("component", "main").
		Str("service", app.config.Service.Name).
		Str("version", app.config.Service.Version).
		Msg("Setting up service...")

	app.ctx, app.cancelFunc = context.WithCancel(context.Background())
	app.shutdownChan = make(chan os.Signal, 1)
	signal.Notify(app.shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.initializeDatabases(); err != nil {
		return fmt.Errorf("error while initialize databases: %w", err)
	}

	if err := app.initializeMQTT(); err != nil {
		return fmt.Errorf("error while initializing MQTT: %w", err)
	}

	app.initializeViewer()

	if err := app.initializeServices(); err != nil {
		return fmt.Errorf("error while initializing services: %w", err)
	}

	if err := app.setupTopicHandlers(); err != nil {
		return fmt.Errorf("error while setting up topic handlers: %w", err)
	}

	if app.config.Viewer.Enabled {
		app.viewerServer.Start()
	}

	log.Info().Msg("Successfully initialized application")
	return nil
}

func (app *Application) initializeDatabases() error {
	var err error

	if app.config.Postgres.Enabled {
		app.postgresDB, err = postgres.NewConnection(app.config.Postgres, logger.GetLogger("postgres"))
		if err != nil {
			return fmt.Errorf("could not connect to PostgreSQL: %w", err)
		}
		app.deviceRepository = repositories.NewDeviceRepository(app.postgresDB.GetDB())
		log.Info().
			Str("component", "main").
			Str("host", app.config.Postgres.Host).
			Msg("Connected to PostgreSQL")
	}

	if app.config.InfluxDB.Enabled {
		app.influxDB, err = influx.NewConnection(app.config.InfluxDB, logger.GetLogger("influxdb"))
		if err != nil {
			return fmt.Errorf("could not connect to InfluxDB: %w", err)
		}
		log.Info().
			Str("component", "main").
			Str("url", app.config.InfluxDB.URL).
			Msg("Connected to InfluxDB")
	}

	if app.config.Redis.Enabled {
		ctx, cancel := context.WithTimeout(app.ctx, 10*time.Second)
		defer cancel()

		app.redisClient, err = cache.NewRedisClient(ctx, app.config.Redis)
		if err != nil {
			return fmt.Errorf("could not connect to Redis: %w", err)
		}
		app.predictionCache = cache.NewPredictionCache(
			cache.NewRedisKVStore(app.redisClient),
			app.config.Redis.KeyPrefix,
			app.config.Service.MeasurementTTL,
			logger.GetLogger("prediction-cache"),
		)
		log.Info().
			Str("component", "main").
			Str("addr", app.config.Redis.Addr).
			Msg("Connected to Redis")
	}

	return nil
}

func (app *Application) initializeMQTT() error {
	app.topicManager = mq.NewTopicManager(app.config.MQTT.BaseTopic, logger.GetLogger("topic-manager"))

	client, err := mq.NewClient(app.config.MQTT, logger.GetLogger("mq-client"))
	if err != nil {
		return fmt.Errorf("could not create MQTT client: %w", err)
	}
	app.mqttClient = client

	connectCtx, cancel := context.WithTimeout(app.ctx, app.config.MQTT.ConnectTimeout)
	defer cancel()

	if err := app.mqttClient.Connect(connectCtx); err != nil {
		return fmt.Errorf("could not connect to MQTT broker: %w", err)
	}

	log.Info().
		Str("component", "main").
		Str("broker", app.config.MQTT.GetUrl()).
		Msg("Successfully initialized MQTT client")
	return nil
}

func (app *Application) initializeViewer() {
	var predictions viewer.PredictionSource
	if app.predictionCache != nil {
		predictions = app.predictionCache
	}
	var devices viewer.DeviceLister
	if app.deviceRepository != nil {
		devices = app.deviceRepository
	}

	app.hub = viewer.NewHub(
		predictions,
		app.config.Viewer.SendBuffer,
		app.config.Viewer.WriteTimeout,
		logger.GetLogger("viewer-hub"),
	)
	app.viewerServer = viewer.NewServer(
		app.config.Viewer,
		app.config.Service,
		app.hub,
		devices,
		logger.GetLogger("viewer"),
	)
}

func (app *Application) initializeServices() error {
	pipeline := app.config.Pipeline

	app.fanOut = services.NewFanOut(logger.GetLogger("fanout"))
	app.fanOut.Add(mq.NewSink(app.mqttClient, app.topicManager, logger.GetLogger("mq-sink")))
	if app.config.Viewer.Enabled {
		app.fanOut.Add(app.hub)
	}
	if app.influxDB != nil {
		app.fanOut.Add(influx.NewObservationWriter(app.influxDB.GetWriteAPI(), logger.GetLogger("observation-writer")))
	}
	if app.deviceRepository != nil {
		app.fanOut.Add(services.NewDeviceService(app.deviceRepository, logger.GetLogger("device-service")))
	}
	if app.predictionCache != nil {
		app.fanOut.Add(app.predictionCache)
	}

	app.aggregator = aggregator.New(pipeline, aggregator.DefaultShardCount)
	app.locateService = services.NewLocateService(
		app.aggregator,
		solver.New(pipeline),
		app.fanOut,
		pipeline,
		logger.GetLogger("locate-service"),
	)

	app.dispatcher = services.NewDispatcher(
		app.config.Service.MaxConcurrentProcessing,
		app.config.Service.WorkerQueueSize,
		app.locateService.ProcessMeasurement,
		logger.GetLogger("dispatcher"),
	)
	app.dispatcher.Start(app.ctx)

	app.sweeper = services.NewSweeper(
		app.aggregator,
		app.config.Service.MeasurementTTL,
		app.config.Service.SweepInterval,
		logger.GetLogger("sweeper"),
	)
	app.sweeper.Start(app.ctx)

	log.Info().
		Str("component", "main").
		Int("workers", app.config.Service.MaxConcurrentProcessing).
		Msg("Successfully initialized services")
	return nil
}

func (app *Application) setupTopicHandlers() error {
	app.measurementHandler = handlers.NewMeasurementHandler(
		app.dispatcher,
		logger.GetLogger("measurement-handler"),
		app.topicManager,
		app.config.MQTT.Source,
	)

	if err := app.mqttClient.Subscribe(app.measurementHandler.Topic(), app.config.MQTT.QoS, app.measurementHandler.HandleMessage); err != nil {
		return fmt.Errorf("error subscribing to measurement topic: %w", err)
	}

	return nil
}

func (app *Application) run() error {
	select {
	case sig := <-app.shutdownChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case <-app.ctx.Done():
		log.Info().Msg("context cancelled, shutting down application")
	}

	return app.shutdown()
}

// shutdown stops intake first so that queued measurements can still be delivered to every sink.
func (app *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if app.mqttClient != nil && app.measurementHandler != nil {
		if err := app.mqttClient.Unsubscribe(app.measurementHandler.Topic()); err != nil {
			log.Warn().Err(err).Msg("Error unsubscribing from measurement topic")
		}
	}

	if app.dispatcher != nil {
		app.dispatcher.Stop()
	}

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if app.sweeper != nil {
		<-app.sweeper.Done()
	}

	if app.mqttClient != nil {
		app.mqttClient.Disconnect(shutdownCtx)
	}

	if app.viewerServer != nil {
		if err := app.viewerServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error stopping viewer server")
		}
	}

	if app.influxDB != nil {
		app.influxDB.Close()
	}

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Redis connection")
		}
	}

	if app.postgresDB != nil {
		if err := app.postgresDB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing PostgreSQL connection")
		}
	}

	log.Info().Msg("Shutdown complete")
	return nil
}
