package influx

import (
	"ble-locate/internal/config/components"
	"context"
	"fmt"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/rs/zerolog"
	"time"
)

type InfluxDB struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	config   components.InfluxConfigImpl
}

func NewConnection(cfg components.InfluxConfigImpl, logger zerolog.Logger) (*InfluxDB, error) {
	options := influxdb2.DefaultOptions().
		SetBatchSize(uint(cfg.BatchSize)).
		SetFlushInterval(uint(cfg.FlushInterval * 1000))
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, options)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("error connecting to InfluxDB: %w", err)
	}

	if health.Status != "pass" {
		client.Close()
		return nil, fmt.Errorf("InfluxDB health check failed: %s", health.Status)
	}

	writeAPI := client.WriteAPI(cfg.Organization, cfg.Bucket)

	go func() {
		for err := range writeAPI.Errors() {
			logger.Error().Err(err).Msg("InfluxDB write failed")
		}
	}()

	return &InfluxDB{
		client:   client,
		writeAPI: writeAPI,
		config:   cfg,
	}, nil
}

func (i *InfluxDB) GetWriteAPI() api.WriteAPI {
	return i.writeAPI
}

func (i *InfluxDB) Close() {
	i.writeAPI.Flush()
	i.client.Close()
}
