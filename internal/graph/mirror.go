// Package graph mirrors the inventory's assets and dependencies into
// Memgraph (or any Bolt-speaking Neo4j-compatible server) and renders the
// asset graph in export formats.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/matijazezelj/assetutil/internal/ident"
	"github.com/matijazezelj/assetutil/internal/store"
	"github.com/matijazezelj/assetutil/pkg/models"
)

const batchSize = 500

// Mirror writes assets and dependencies through to Memgraph. Mirror
// failures are logged and never fail the primary write.
type Mirror struct {
	driver     neo4j.DriverWithContext
	newSession sessionFactory
	logger     *slog.Logger
}

// Connect opens a driver to uri and checks connectivity.
func Connect(ctx context.Context, uri, username, password string, logger *slog.Logger) (*Mirror, error) {
	auth := neo4j.NoAuth()
	if username != "" {
		auth = neo4j.BasicAuth(username, password, "")
	}

	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("creating memgraph driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(context.Background())
		return nil, fmt.Errorf("memgraph connectivity check failed: %w", err)
	}

	logger.Info("memgraph mirror connected", "uri", uri)
	return &Mirror{driver: driver, newSession: driverSessions(driver), logger: logger}, nil
}

// Close closes the driver.
func (m *Mirror) Close(ctx context.Context) error {
	if m.driver == nil {
		return nil
	}
	return m.driver.Close(ctx)
}

// Assets wraps next so that writes are mirrored as :Asset nodes. Deleting
// an asset that still has relationships leaves a bare node carrying only
// its id, the same shape Sync gives a dependency endpoint with no asset.
func (m *Mirror) Assets(next store.Collection[models.Asset]) store.Collection[models.Asset] {
	return &mirrored[models.Asset]{
		Collection: next,
		mirror:     m,
		kind:       "asset",
		upsert:     func(a models.Asset) []statement { return []statement{upsertAsset(a)} },
		remove:     removeAsset,
	}
}

// Dependencies wraps next so that writes are mirrored as :DEPENDS_ON
// relationships. Missing endpoint nodes are created as bare :Asset nodes.
func (m *Mirror) Dependencies(next store.Collection[models.Dependency]) store.Collection[models.Dependency] {
	return &mirrored[models.Dependency]{
		Collection: next,
		mirror:     m,
		kind:       "dependency",
		upsert: func(d models.Dependency) []statement {
			return []statement{removeDependency(d.ID), upsertDependency(d)}
		},
		remove: func(id string) []statement { return []statement{removeDependency(id), pruneBareAssets()} },
	}
}

type mirrored[T store.Record] struct {
	store.Collection[T]
	mirror *Mirror
	kind   string
	upsert func(T) []statement
	remove func(id string) []statement
}

func (c *mirrored[T]) Put(ctx context.Context, rec T) error {
	if err := c.Collection.Put(ctx, rec); err != nil {
		return err
	}
	if err := run(ctx, c.mirror.newSession, c.upsert(rec)...); err != nil {
		c.mirror.logger.Warn("failed to mirror write to memgraph", "kind", c.kind, "id", rec.RecordID(), "error", err)
	}
	return nil
}

func (c *mirrored[T]) Delete(ctx context.Context, id string) error {
	if err := c.Collection.Delete(ctx, id); err != nil {
		return err
	}
	if err := run(ctx, c.mirror.newSession, c.remove(id)...); err != nil {
		c.mirror.logger.Warn("failed to mirror delete to memgraph", "kind", c.kind, "id", id, "error", err)
	}
	return nil
}

func upsertAsset(a models.Asset) statement {
	return statement{`
		MERGE (n:Asset {id: $id})
		SET n.name = $name,
		    n.type = $type,
		    n.status = $status,
		    n.location = $location,
		    n.provider = $provider,
		    n.configuration = $configuration,
		    n.updated_at = $updatedAt
	`, assetParams(a)}
}

func upsertDependency(d models.Dependency) statement {
	return statement{`
		MERGE (from:Asset {id: $sourceID})
		MERGE (to:Asset {id: $targetID})
		CREATE (from)-[:DEPENDS_ON {id: $id, type: $type, impact: $impact, description: $description}]->(to)
	`, dependencyParams(d)}
}

func removeAsset(id string) []statement {
	params := map[string]any{"id": id}
	return []statement{
		{`MATCH (n:Asset {id: $id}) WHERE NOT (n)--() DELETE n`, params},
		{`MATCH (n:Asset {id: $id}) SET n = {id: $id}`, params},
	}
}

// pruneBareAssets drops id-only nodes once their last relationship is gone.
func pruneBareAssets() statement {
	return statement{`MATCH (n:Asset) WHERE n.name IS NULL AND NOT (n)--() DELETE n`, nil}
}

func removeDependency(id string) statement {
	return statement{`MATCH ()-[r:DEPENDS_ON {id: $id}]->() DELETE r`, map[string]any{"id": id}}
}

func assetParams(a models.Asset) map[string]any {
	cfg, _ := json.Marshal(a.Configuration)
	return map[string]any{
		"id":            a.ID,
		"name":          a.Name,
		"type":          a.Type,
		"status":        string(a.Status),
		"location":      a.Location,
		"provider":      string(a.Provider),
		"configuration": string(cfg),
		"updatedAt":     ident.ISO(a.UpdatedAt),
	}
}

func dependencyParams(d models.Dependency) map[string]any {
	return map[string]any{
		"id":          d.ID,
		"sourceID":    d.SourceAssetID,
		"targetID":    d.TargetAssetID,
		"type":        string(d.Type),
		"impact":      string(d.Impact),
		"description": d.Description,
	}
}

// SyncResult reports what a full sync wrote.
type SyncResult struct {
	Assets       int `json:"assets"`
	Dependencies int `json:"dependencies"`
}

// Sync replaces the mirrored graph with the given assets and dependencies.
func (m *Mirror) Sync(ctx context.Context, assets []models.Asset, deps []models.Dependency) (SyncResult, error) {
	session := m.newSession(ctx)
	defer session.Close(ctx) //nolint:errcheck // best-effort cleanup

	m.logger.Info("clearing memgraph data")
	if _, err := session.Run(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
		return SyncResult{}, fmt.Errorf("clearing memgraph: %w", err)
	}

	for _, cypher := range []string{
		"CREATE INDEX ON :Asset(id)",
		"CREATE INDEX ON :Asset(type)",
	} {
		if _, err := session.Run(ctx, cypher, nil); err != nil {
			m.logger.Warn("creating index (may already exist)", "error", err)
		}
	}

	for i := 0; i < len(assets); i += batchSize {
		end := min(i+batchSize, len(assets))
		params := make([]map[string]any, 0, end-i)
		for _, a := range assets[i:end] {
			params = append(params, assetParams(a))
		}
		_, err := session.Run(ctx, `
			UNWIND $assets AS a
			CREATE (:Asset {
				id: a.id, name: a.name, type: a.type, status: a.status,
				location: a.location, provider: a.provider,
				configuration: a.configuration, updated_at: a.updatedAt
			})
		`, map[string]any{"assets": params})
		if err != nil {
			return SyncResult{}, fmt.Errorf("syncing asset batch %d-%d: %w", i, end, err)
		}
	}

	for i := 0; i < len(deps); i += batchSize {
		end := min(i+batchSize, len(deps))
		params := make([]map[string]any, 0, end-i)
		for _, d := range deps[i:end] {
			params = append(params, dependencyParams(d))
		}
		_, err := session.Run(ctx, `
			UNWIND $deps AS d
			MERGE (from:Asset {id: d.sourceID})
			MERGE (to:Asset {id: d.targetID})
			CREATE (from)-[:DEPENDS_ON {id: d.id, type: d.type, impact: d.impact, description: d.description}]->(to)
		`, map[string]any{"deps": params})
		if err != nil {
			return SyncResult{}, fmt.Errorf("syncing dependency batch %d-%d: %w", i, end, err)
		}
	}

	m.logger.Info("memgraph sync complete", "assets", len(assets), "dependencies", len(deps))
	return SyncResult{Assets: len(assets), Dependencies: len(deps)}, nil
}
