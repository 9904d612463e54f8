package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matijazezelj/assetutil/internal/store"
	"github.com/matijazezelj/assetutil/pkg/models"
)

// Stores holds one collection per entity kind.
type Stores struct {
	Assets            store.Collection[models.Asset]
	Dependencies      store.Collection[models.Dependency]
	Schedules         store.Collection[models.MaintenanceSchedule]
	ArchivedSchedules store.Collection[models.MaintenanceSchedule]
	Integrations      store.Collection[models.Integration]
	Configurations    store.Collection[models.Configuration]
	History           store.Collection[models.HistoryEntry]
	Attachments       store.Collection[models.Attachment]
}

// MemoryStores returns empty in-process collections.
func MemoryStores() Stores {
	return Stores{
		Assets:            store.NewMemoryCollection[models.Asset](),
		Dependencies:      store.NewMemoryCollection[models.Dependency](),
		Schedules:         store.NewMemoryCollection[models.MaintenanceSchedule](),
		ArchivedSchedules: store.NewMemoryCollection[models.MaintenanceSchedule](),
		Integrations:      store.NewMemoryCollection[models.Integration](),
		Configurations:    store.NewMemoryCollection[models.Configuration](),
		History:           store.NewMemoryCollection[models.HistoryEntry](),
		Attachments:       store.NewMemoryCollection[models.Attachment](),
	}
}

// SQLiteStores returns collections backed by db, creating tables as needed.
func SQLiteStores(ctx context.Context, db *store.SQLiteDB) (Stores, error) {
	var s Stores
	var err error
	if s.Assets, err = store.NewSQLiteCollection[models.Asset](ctx, db, store.TableAssets); err != nil {
		return Stores{}, err
	}
	if s.Dependencies, err = store.NewSQLiteCollection[models.Dependency](ctx, db, store.TableDependencies); err != nil {
		return Stores{}, err
	}
	if s.Schedules, err = store.NewSQLiteCollection[models.MaintenanceSchedule](ctx, db, store.TableSchedules); err != nil {
		return Stores{}, err
	}
	if s.ArchivedSchedules, err = store.NewSQLiteCollection[models.MaintenanceSchedule](ctx, db, store.TableArchivedSchedules); err != nil {
		return Stores{}, err
	}
	if s.Integrations, err = store.NewSQLiteCollection[models.Integration](ctx, db, store.TableIntegrations); err != nil {
		return Stores{}, err
	}
	if s.Configurations, err = store.NewSQLiteCollection[models.Configuration](ctx, db, store.TableConfigurations); err != nil {
		return Stores{}, err
	}
	if s.History, err = store.NewSQLiteCollection[models.HistoryEntry](ctx, db, store.TableHistory); err != nil {
		return Stores{}, err
	}
	if s.Attachments, err = store.NewSQLiteCollection[models.Attachment](ctx, db, store.TableAttachments); err != nil {
		return Stores{}, err
	}
	return s, nil
}

// PostgresStores returns collections backed by pool, creating tables as
// needed.
func PostgresStores(ctx context.Context, pool *pgxpool.Pool) (Stores, error) {
	var s Stores
	var err error
	if s.Assets, err = store.NewPostgresCollection[models.Asset](ctx, pool, store.TableAssets); err != nil {
		return Stores{}, err
	}
	if s.Dependencies, err = store.NewPostgresCollection[models.Dependency](ctx, pool, store.TableDependencies); err != nil {
		return Stores{}, err
	}
	if s.Schedules, err = store.NewPostgresCollection[models.MaintenanceSchedule](ctx, pool, store.TableSchedules); err != nil {
		return Stores{}, err
	}
	if s.ArchivedSchedules, err = store.NewPostgresCollection[models.MaintenanceSchedule](ctx, pool, store.TableArchivedSchedules); err != nil {
		return Stores{}, err
	}
	if s.Integrations, err = store.NewPostgresCollection[models.Integration](ctx, pool, store.TableIntegrations); err != nil {
		return Stores{}, err
	}
	if s.Configurations, err = store.NewPostgresCollection[models.Configuration](ctx, pool, store.TableConfigurations); err != nil {
		return Stores{}, err
	}
	if s.History, err = store.NewPostgresCollection[models.HistoryEntry](ctx, pool, store.TableHistory); err != nil {
		return Stores{}, err
	}
	if s.Attachments, err = store.NewPostgresCollection[models.Attachment](ctx, pool, store.TableAttachments); err != nil {
		return Stores{}, err
	}
	return s, nil
}

// WithCache puts a Redis read-through cache in front of every collection
// that is read by id. History is append-only and listed, so it is left as is.
func (s Stores) WithCache(client store.RedisClient, ttl time.Duration, logger *slog.Logger) Stores {
	s.Assets = store.NewCachedCollection(s.Assets, client, "assetutil:asset", ttl, logger)
	s.Dependencies = store.NewCachedCollection(s.Dependencies, client, "assetutil:dependency", ttl, logger)
	s.Schedules = store.NewCachedCollection(s.Schedules, client, "assetutil:maintenance", ttl, logger)
	s.Integrations = store.NewCachedCollection(s.Integrations, client, "assetutil:integration", ttl, logger)
	s.Configurations = store.NewCachedCollection(s.Configurations, client, "assetutil:configuration", ttl, logger)
	s.Attachments = store.NewCachedCollection(s.Attachments, client, "assetutil:attachment", ttl, logger)
	return s
}

// Inventory wires the services over one set of stores. Every mutation is
// recorded in History.
type Inventory struct {
	Assets         *AssetService
	Dependencies   *DependencyService
	Maintenance    *MaintenanceService
	Integrations   *CloudIntegrationService
	Configurations *ConfigurationService
	History        *HistoryService
	Attachments    *AttachmentService

	logger *slog.Logger
}

// New builds the services sharing opts.
func New(stores Stores, opts ...Option) *Inventory {
	hist := NewHistoryService(stores.History, opts...)
	inv := &Inventory{
		Assets:         NewAssetService(stores.Assets, opts...),
		Dependencies:   NewDependencyService(stores.Dependencies, opts...),
		Maintenance:    NewMaintenanceService(stores.Schedules, stores.ArchivedSchedules, opts...),
		Integrations:   NewCloudIntegrationService(stores.Integrations, opts...),
		Configurations: NewConfigurationService(stores.Configurations, opts...),
		History:        hist,
		Attachments:    NewAttachmentService(stores.Attachments, opts...),
		logger:         hist.logger,
	}
	inv.Assets.history = hist
	inv.Dependencies.history = hist
	inv.Maintenance.history = hist
	inv.Configurations.history = hist
	return inv
}

// Removal counts the records removed together with an asset.
type Removal struct {
	Dependencies   int `json:"dependencies"`
	Schedules      int `json:"schedules"`
	Configurations int `json:"configurations"`
	Attachments    int `json:"attachments"`
}

// RemoveAsset deletes the asset. With cascade it also deletes the
// dependencies touching it and its active schedules, configurations and
// attachments. Archived schedules and history are kept.
func (inv *Inventory) RemoveAsset(ctx context.Context, id string, cascade bool) (Removal, error) {
	var r Removal
	if err := inv.Assets.DeleteAsset(ctx, id); err != nil {
		return r, err
	}
	if !cascade {
		return r, nil
	}

	var errs []error
	deps, err := inv.Dependencies.GetDependenciesForAsset(ctx, id)
	if err != nil {
		return r, err
	}
	for _, d := range deps {
		if err := inv.Dependencies.RemoveDependency(ctx, d.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		r.Dependencies++
	}

	schedules, err := inv.Maintenance.GetAllSchedules(ctx)
	if err != nil {
		return r, err
	}
	for _, m := range schedules {
		if m.AssetID != id {
			continue
		}
		if err := inv.Maintenance.DeleteSchedule(ctx, m.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		r.Schedules++
	}

	configs, err := inv.Configurations.GetConfigurationsForAsset(ctx, id)
	if err != nil {
		return r, err
	}
	for _, c := range configs {
		if err := inv.Configurations.DeleteConfiguration(ctx, c.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		r.Configurations++
	}

	attachments, err := inv.Attachments.GetAttachmentsForAsset(ctx, id)
	if err != nil {
		return r, err
	}
	for _, a := range attachments {
		if err := inv.Attachments.DeleteAttachment(ctx, a.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		r.Attachments++
	}

	inv.logger.Info("asset removed", "asset_id", id,
		"dependencies", r.Dependencies, "schedules", r.Schedules,
		"configurations", r.Configurations, "attachments", r.Attachments)
	if len(errs) > 0 {
		return r, fmt.Errorf("removing records of asset %s: %w", id, errors.Join(errs...))
	}
	return r, nil
}

// Stats summarizes the inventory.
type Stats struct {
	Assets             int            `json:"assets"`
	AssetsByStatus     map[string]int `json:"assetsByStatus"`
	AssetsByType       map[string]int `json:"assetsByType"`
	Dependencies       int            `json:"dependencies"`
	Schedules          int            `json:"schedules"`
	CancelledSchedules int            `json:"cancelledSchedules"`
	Integrations       int            `json:"integrations"`
	Configurations     int            `json:"configurations"`
	HistoryEntries     int            `json:"historyEntries"`
	Attachments        int            `json:"attachments"`
}

// Stats counts every collection.
func (inv *Inventory) Stats(ctx context.Context) (Stats, error) {
	st := Stats{AssetsByStatus: map[string]int{}, AssetsByType: map[string]int{}}

	assets, err := inv.Assets.GetAllAssets(ctx)
	if err != nil {
		return st, err
	}
	st.Assets = len(assets)
	for _, a := range assets {
		st.AssetsByStatus[string(a.Status)]++
		st.AssetsByType[a.Type]++
	}

	deps, err := inv.Dependencies.GetAllDependencies(ctx)
	if err != nil {
		return st, err
	}
	st.Dependencies = len(deps)

	schedules, err := inv.Maintenance.GetAllSchedules(ctx)
	if err != nil {
		return st, err
	}
	st.Schedules = len(schedules)

	archived, err := inv.Maintenance.archive.List(ctx)
	if err != nil {
		return st, fmt.Errorf("listing archived schedules: %w", err)
	}
	st.CancelledSchedules = len(archived)

	integrations, err := inv.Integrations.ListIntegrations(ctx)
	if err != nil {
		return st, err
	}
	st.Integrations = len(integrations)

	configs, err := inv.Configurations.GetAllConfigurations(ctx)
	if err != nil {
		return st, err
	}
	st.Configurations = len(configs)

	history, err := inv.History.GetAllHistory(ctx)
	if err != nil {
		return st, err
	}
	st.HistoryEntries = len(history)

	attachments, err := inv.Attachments.GetAllAttachments(ctx)
	if err != nil {
		return st, err
	}
	st.Attachments = len(attachments)
	return st, nil
}

// Snapshot is the asset graph: assets as nodes, dependencies as edges.
type Snapshot struct {
	Assets       []models.Asset      `json:"assets" yaml:"assets"`
	Dependencies []models.Dependency `json:"dependencies" yaml:"dependencies"`
}

// Snapshot returns every asset and dependency.
func (inv *Inventory) Snapshot(ctx context.Context) (Snapshot, error) {
	assets, err := inv.Assets.GetAllAssets(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	deps, err := inv.Dependencies.GetAllDependencies(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Assets: assets, Dependencies: deps}, nil
}
