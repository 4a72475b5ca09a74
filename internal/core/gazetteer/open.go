package gazetteer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agenthands/geoparse/internal/config"
	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/agenthands/geoparse/internal/driver"
)

// Open loads the index described by cfg. d is only used for memgraph
// sources and may be nil otherwise.
func Open(ctx context.Context, cfg config.GazetteerConfig, d driver.GraphDriver) (*Index, error) {
	switch strings.ToLower(cfg.Source) {
	case "", "file":
		switch strings.ToLower(filepath.Ext(cfg.Path)) {
		case ".db", ".sqlite", ".sqlite3":
			return LoadSQLite(cfg.Path, cfg.Table)
		}
		return LoadFile(cfg.Path)
	case "memgraph":
		if d == nil {
			return nil, &model.ConfigurationError{Field: "gazetteer.source", Reason: "memgraph source needs a graph connection"}
		}
		return LoadGraph(ctx, d)
	default:
		return nil, &model.ConfigurationError{Field: "gazetteer.source", Reason: fmt.Sprintf("unknown source %q", cfg.Source)}
	}
}
