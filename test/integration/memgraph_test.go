//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/geoparse/internal/app"
	"github.com/agenthands/geoparse/internal/config"
	"github.com/agenthands/geoparse/internal/core/gazetteer"
	"github.com/agenthands/geoparse/internal/driver"
	"github.com/joho/godotenv"
)

const fixture = "../../internal/core/testdata/places.csv"

func memgraphConfig(t *testing.T) config.MemgraphConfig {
	t.Helper()
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}
	return config.MemgraphConfig{
		URI:      uri,
		User:     os.Getenv("MEMGRAPH_USER"),
		Password: os.Getenv("MEMGRAPH_PASSWORD"),
	}
}

func TestSeedAndLoadGraph(t *testing.T) {
	ctx := context.Background()
	mcfg := memgraphConfig(t)

	d, err := driver.Connect(ctx, mcfg)
	require.NoError(t, err)
	defer d.Close(ctx)

	ix, err := gazetteer.LoadFile(fixture)
	require.NoError(t, err)

	require.NoError(t, gazetteer.ResetGraph(ctx, d))
	n, err := gazetteer.SeedGraph(ctx, d, ix)
	require.NoError(t, err)
	assert.Equal(t, ix.Len(), n)

	loaded, err := gazetteer.LoadGraph(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, ix.Stats(), loaded.Stats())
	assert.Equal(t, ix.AllNames(), loaded.AllNames())

	hits := loaded.Alias("USA")
	require.Len(t, hits, 1)
	assert.Equal(t, "United States", hits[0].Entry.CanonicalName)
}

func TestPipelineOverGraph(t *testing.T) {
	ctx := context.Background()
	mcfg := memgraphConfig(t)

	d, err := driver.Connect(ctx, mcfg)
	require.NoError(t, err)
	ix, err := gazetteer.LoadFile(fixture)
	require.NoError(t, err)
	require.NoError(t, gazetteer.ResetGraph(ctx, d))
	_, err = gazetteer.SeedGraph(ctx, d, ix)
	require.NoError(t, err)
	require.NoError(t, d.Close(ctx))

	cfg := config.Default()
	cfg.Gazetteer.Source = "memgraph"
	cfg.Memgraph = mcfg
	cfg.Extraction.NER = "off"

	a, err := app.New(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close(ctx)

	r, err := a.Pipeline.ProcessQuery(ctx, "Which saw higher rainfall, Maharashtra, Ahmedabad or entire New-Zealand?")
	require.NoError(t, err)
	require.Len(t, r.Matches, 3)
	assert.Equal(t, "Maharashtra", r.Matches[0].CanonicalName)
	assert.Equal(t, "Ahmedabad", r.Matches[1].CanonicalName)
	assert.Equal(t, "New Zealand", r.Matches[2].CanonicalName)
}
