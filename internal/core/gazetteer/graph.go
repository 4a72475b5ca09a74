package gazetteer

import (
	"context"
	"fmt"

	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/agenthands/geoparse/internal/driver"
)

const seedBatchSize = 500

// LoadGraph builds an index from the :Place nodes stored in Memgraph,
// preserving the order they were seeded in.
func LoadGraph(ctx context.Context, d driver.GraphDriver) (*Index, error) {
	const source = "memgraph"

	res, err := d.ExecuteQuery(ctx, driver.LoadPlacesQuery, nil)
	if err != nil {
		return nil, &model.DataLoadError{Source: source, Err: err}
	}

	rows := make([]Row, 0, len(res.Records))
	for i, rec := range res.Records {
		name, _ := rec.Get("name")
		typ, _ := rec.Get("type")
		nameStr, ok := name.(string)
		if !ok {
			return nil, &model.DataLoadError{Source: source, Err: rowError(i, fmt.Errorf("name is %T, not a string", name))}
		}
		typStr, _ := typ.(string)

		row := Row{Name: nameStr, Type: typStr}
		if raw, ok := rec.Get("aliases"); ok {
			row.Aliases = toStrings(raw)
		}
		rows = append(rows, row)
	}
	return build(source, rows)
}

func toStrings(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// SeedGraph writes every entry of ix to Memgraph as a :Place node and
// returns the number of nodes written.
func SeedGraph(ctx context.Context, d driver.GraphDriver, ix *Index) (int, error) {
	saved := 0
	batch := make([]map[string]interface{}, 0, seedBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := d.ExecuteQuery(ctx, driver.SavePlacesQuery, map[string]interface{}{"places": batch}); err != nil {
			return fmt.Errorf("failed to save places %d-%d: %w", saved, saved+len(batch), err)
		}
		saved += len(batch)
		batch = make([]map[string]interface{}, 0, seedBatchSize)
		return nil
	}

	for seq, e := range ix.entries {
		aliases := e.Aliases
		if aliases == nil {
			aliases = []string{}
		}
		batch = append(batch, map[string]interface{}{
			"name":    e.CanonicalName,
			"type":    string(e.Type),
			"aliases": aliases,
			"seq":     int64(seq),
		})
		if len(batch) == seedBatchSize {
			if err := flush(); err != nil {
				return saved, err
			}
		}
	}
	if err := flush(); err != nil {
		return saved, err
	}
	return saved, nil
}

// ResetGraph removes every :Place node.
func ResetGraph(ctx context.Context, d driver.GraphDriver) error {
	if _, err := d.ExecuteQuery(ctx, driver.DeletePlacesQuery, nil); err != nil {
		return fmt.Errorf("failed to delete places: %w", err)
	}
	return nil
}
