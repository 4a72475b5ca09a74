package driver

import (
	"context"

	"github.com/agenthands/geoparse/internal/config"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphDriver is the part of the Bolt API the gazetteer store needs.
// Tests substitute a mock.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}

// Connect opens a Memgraph connection from config and makes sure the
// :Place indices exist.
func Connect(ctx context.Context, cfg config.MemgraphConfig) (*MemgraphDriver, error) {
	d, err := NewMemgraphDriver(ctx, cfg.URI, cfg.User, cfg.Password)
	if err != nil {
		return nil, err
	}
	if err := d.BuildIndices(ctx); err != nil {
		_ = d.Close(ctx)
		return nil, err
	}
	return d, nil
}
