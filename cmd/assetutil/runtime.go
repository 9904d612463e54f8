package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/matijazezelj/assetutil/internal/alert"
	"github.com/matijazezelj/assetutil/internal/blob"
	"github.com/matijazezelj/assetutil/internal/cloud"
	"github.com/matijazezelj/assetutil/internal/config"
	"github.com/matijazezelj/assetutil/internal/graph"
	"github.com/matijazezelj/assetutil/internal/inventory"
	"github.com/matijazezelj/assetutil/internal/metrics"
	"github.com/matijazezelj/assetutil/internal/store"
)

// runtime is an opened inventory with the backends it was built from.
type runtime struct {
	cfg    *config.Config
	inv    *inventory.Inventory
	sqlite *store.SQLiteDB // nil unless storage.driver is sqlite
	mirror *graph.Mirror   // nil unless memgraph is enabled and reachable
	dbPath string

	closers []func()
}

// openRuntime loads the configuration and opens the storage it names.
// Redis and Memgraph are optional: when they cannot be reached a warning is
// logged and the inventory runs without them.
func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	rt := &runtime{cfg: cfg}

	stores, err := rt.openStores(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}

	if cfg.Storage.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, running without cache", "addr", cfg.Storage.Redis.Addr, "error", err)
			_ = client.Close()
		} else {
			stores = stores.WithCache(client, cfg.Storage.Redis.TTL, logger)
			rt.closers = append(rt.closers, func() { _ = client.Close() })
			logger.Info("redis cache enabled", "addr", cfg.Storage.Redis.Addr)
		}
	}

	if cfg.Storage.Memgraph.Enabled {
		m, err := graph.Connect(ctx, cfg.Storage.Memgraph.URI, cfg.Storage.Memgraph.Username, cfg.Storage.Memgraph.Password, logger)
		if err != nil {
			logger.Warn("memgraph unavailable, running without graph mirror", "error", err)
		} else {
			rt.mirror = m
			stores.Assets = m.Assets(stores.Assets)
			stores.Dependencies = m.Dependencies(stores.Dependencies)
			rt.closers = append(rt.closers, func() { _ = m.Close(context.Background()) })
		}
	}

	opts := []inventory.Option{
		inventory.WithLogger(logger),
		inventory.WithObserver(metrics.Observer{}),
		inventory.WithVerifier(cloud.NewAWSVerifier(cfg.Cloud.AWSEndpoint)),
	}
	blobs, err := openBlobStore(ctx, cfg.Blob)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if blobs != nil {
		opts = append(opts, inventory.WithBlobStore(blobs))
	}

	rt.inv = inventory.New(stores, opts...)
	return rt, nil
}

func (rt *runtime) openStores(ctx context.Context) (inventory.Stores, error) {
	switch rt.cfg.Storage.Driver {
	case "memory":
		logger.Warn("using in-memory storage, data is lost on exit")
		return inventory.MemoryStores(), nil

	case "postgres":
		pool, err := store.OpenPostgres(ctx, rt.cfg.Storage.DSN)
		if err != nil {
			return inventory.Stores{}, err
		}
		rt.closers = append(rt.closers, pool.Close)
		return inventory.PostgresStores(ctx, pool)

	default:
		rt.dbPath = rt.cfg.Storage.Path
		if dbPath != "" {
			rt.dbPath = dbPath
		}
		db, err := store.OpenSQLite(rt.dbPath)
		if err != nil {
			return inventory.Stores{}, err
		}
		rt.sqlite = db
		rt.closers = append(rt.closers, func() { _ = db.Close() })
		return inventory.SQLiteStores(ctx, db)
	}
}

func openBlobStore(ctx context.Context, cfg config.BlobConfig) (inventory.BlobStore, error) {
	switch cfg.Driver {
	case "fs":
		return blob.NewFSStore(afero.NewOsFs(), cfg.Path)
	case "s3":
		return blob.NewS3Store(ctx, blob.S3Config{
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	default:
		return nil, nil
	}
}

// Close releases the backends in reverse opening order.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

// actorContext tags ctx with the --actor flag for history entries.
func actorContext(ctx context.Context) context.Context {
	return inventory.WithActor(ctx, actor)
}

// buildAlerter assembles the configured alert channels. The returned
// cleanup closes the Kafka producer.
func buildAlerter(cfg config.AlertsConfig) (*alert.Multi, func(), error) {
	var alerters []alert.Alerter
	cleanup := func() {}

	if cfg.Stdout.Enabled {
		alerters = append(alerters, alert.NewStdoutAlerter())
	}
	if cfg.Webhook.Enabled && cfg.Webhook.URL != "" {
		alerters = append(alerters, alert.NewWebhookAlerter(cfg.Webhook.URL, cfg.Webhook.Headers))
	}
	if cfg.Kafka.Enabled {
		k, err := alert.NewKafkaAlerter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, cleanup, fmt.Errorf("creating kafka alerter: %w", err)
		}
		alerters = append(alerters, k)
		cleanup = k.Close
	}
	return alert.NewMulti(alerters...), cleanup, nil
}
