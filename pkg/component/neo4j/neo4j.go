// Package neo4j wraps the Neo4j driver for knowledge graph lookups.
//
// The client degrades to always-empty results when the driver could not be
// constructed at startup, so a missing graph database never blocks the chat
// path.
package neo4j

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"
	neo4jdrv "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	graphopts "github.com/vietsaga/vietsaga/pkg/options/graph"
)

// ChunkLink is one relationship summary tied to a retrieved chunk.
type ChunkLink struct {
	Relation    string
	Description string
	ChunkID     int64
}

// Client wraps the Neo4j driver.
type Client struct {
	driver neo4jdrv.DriverWithContext
	opts   *graphopts.Options
}

// New creates a new graph client. Construction failures are logged and yield
// a client whose queries return empty results.
func New(opts *graphopts.Options) *Client {
	driver, err := neo4jdrv.NewDriverWithContext(
		opts.URI,
		neo4jdrv.BasicAuth(opts.Username, opts.Password, ""),
	)
	if err != nil {
		logger.Warnw("graph driver unavailable, links will be empty", "uri", opts.URI, "error", err.Error())
		driver = nil
	}
	return &Client{
		driver: driver,
		opts:   opts,
	}
}

// Close closes the underlying driver.
func (c *Client) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}
	return c.driver.Close(ctx)
}

// Available reports whether the driver was constructed.
func (c *Client) Available() bool {
	return c.driver != nil
}

const chunkLinksQuery = `
MATCH (c:Chunk)
WHERE c.chunk_id IN $chunk_ids
OPTIONAL MATCH (c)<-[:MENTIONED_IN]-(e:Entity)
OPTIONAL MATCH (c)-[:BELONGS_TO]->(d:Dynasty)
WITH c, d, collect(DISTINCT e.name) AS entities
RETURN c.chunk_id AS chunk_id,
       coalesce(c.summary, substring(c.text,0,220)) AS summary,
       d.name AS dynasty,
       entities
ORDER BY c.chunk_id
LIMIT $limit`

// LinksForChunks fetches entity/dynasty relationship summaries for the given
// chunk ids. An empty input or an unavailable driver yields an empty slice.
func (c *Client) LinksForChunks(ctx context.Context, chunkIDs []int64, limit int) ([]ChunkLink, error) {
	if len(chunkIDs) == 0 || c.driver == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	session := c.driver.NewSession(ctx, neo4jdrv.SessionConfig{
		DatabaseName: c.opts.Database,
		AccessMode:   neo4jdrv.AccessModeRead,
	})
	defer func() { _ = session.Close(ctx) }()

	result, err := session.ExecuteRead(ctx, func(tx neo4jdrv.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, chunkLinksQuery, map[string]any{
			"chunk_ids": chunkIDs,
			"limit":     limit,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("graph query failed: %w", err)
	}

	records, _ := result.([]*neo4jdrv.Record)
	links := make([]ChunkLink, 0, len(records))
	for _, record := range records {
		link := ChunkLink{}

		dynasty := "Tư liệu"
		if v, ok := record.Get("dynasty"); ok && v != nil {
			if s, ok := v.(string); ok && s != "" {
				dynasty = s
			}
		}

		var entities []string
		if v, ok := record.Get("entities"); ok && v != nil {
			if raw, ok := v.([]any); ok {
				for _, item := range raw {
					if s, ok := item.(string); ok && s != "" {
						entities = append(entities, s)
					}
				}
			}
		}

		link.Relation = dynasty
		if len(entities) > 0 {
			if len(entities) > 3 {
				entities = entities[:3]
			}
			link.Relation = dynasty + " · " + strings.Join(entities, ", ")
		}

		if v, ok := record.Get("summary"); ok && v != nil {
			if s, ok := v.(string); ok {
				link.Description = s
			}
		}
		if v, ok := record.Get("chunk_id"); ok && v != nil {
			if id, ok := v.(int64); ok {
				link.ChunkID = id
			}
		}

		links = append(links, link)
	}
	return links, nil
}
