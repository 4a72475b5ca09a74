package gazetteer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/agenthands/geoparse/internal/config"
	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/agenthands/geoparse/internal/driver"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGraph(t *testing.T) {
	d := &MockDriver{MockResult: neo4j.EagerResult{
		Records: []*neo4j.Record{
			placeRecord("Mumbai", "City", "Bombay"),
			placeRecord("Maharashtra", "State"),
			placeRecord("India", "Country", "IN", "IND"),
		},
	}}

	ix, err := LoadGraph(context.Background(), d)
	require.NoError(t, err)

	require.Len(t, d.Executed, 1)
	assert.Equal(t, driver.LoadPlacesQuery, d.Executed[0].Query)
	assert.Equal(t, []string{"Mumbai"}, ix.Names(model.City))
	assert.Equal(t, []string{"Maharashtra"}, ix.Names(model.State))
	assert.Len(t, ix.Alias("Bombay"), 1)
	assert.Len(t, ix.Alias("IND"), 1)
}

func TestLoadGraphErrors(t *testing.T) {
	var lerr *model.DataLoadError

	_, err := LoadGraph(context.Background(), &MockDriver{Err: fmt.Errorf("connection refused")})
	assert.True(t, errors.As(err, &lerr))

	_, err = LoadGraph(context.Background(), &MockDriver{})
	assert.ErrorIs(t, err, ErrNoEntries)

	bad := &MockDriver{MockResult: neo4j.EagerResult{Records: []*neo4j.Record{
		{Keys: []string{"name", "type"}, Values: []any{int64(7), "City"}},
	}}}
	_, err = LoadGraph(context.Background(), bad)
	assert.True(t, errors.As(err, &lerr))
}

func TestSeedGraph(t *testing.T) {
	rows := make([]Row, 0, seedBatchSize+1)
	for i := 0; i < seedBatchSize+1; i++ {
		rows = append(rows, Row{Name: fmt.Sprintf("Town %d", i), Type: "City"})
	}
	ix, err := Build(rows)
	require.NoError(t, err)

	d := &MockDriver{}
	saved, err := SeedGraph(context.Background(), d, ix)
	require.NoError(t, err)
	assert.Equal(t, seedBatchSize+1, saved)

	require.Len(t, d.Executed, 2)
	assert.Equal(t, driver.SavePlacesQuery, d.Executed[0].Query)
	first := d.Executed[0].Params["places"].([]map[string]interface{})
	assert.Len(t, first, seedBatchSize)
	assert.Equal(t, "Town 0", first[0]["name"])
	assert.Equal(t, "City", first[0]["type"])
	assert.Equal(t, int64(0), first[0]["seq"])
	last := d.Executed[1].Params["places"].([]map[string]interface{})
	assert.Len(t, last, 1)
	assert.Equal(t, int64(seedBatchSize), last[0]["seq"])
}

func TestSeedGraphFailure(t *testing.T) {
	ix, err := Build(sampleRows())
	require.NoError(t, err)

	saved, err := SeedGraph(context.Background(), &MockDriver{Err: fmt.Errorf("boom")}, ix)
	assert.Error(t, err)
	assert.Equal(t, 0, saved)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	ix, err := Open(ctx, config.GazetteerConfig{Path: "testdata/worldcities_sample.csv"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, ix.Stats().Cities)

	var cerr *model.ConfigurationError
	_, err = Open(ctx, config.GazetteerConfig{Source: "memgraph"}, nil)
	assert.True(t, errors.As(err, &cerr))

	_, err = Open(ctx, config.GazetteerConfig{Source: "ftp"}, nil)
	assert.True(t, errors.As(err, &cerr))

	d := &MockDriver{MockResult: neo4j.EagerResult{Records: []*neo4j.Record{placeRecord("Paris", "City")}}}
	ix, err = Open(ctx, config.GazetteerConfig{Source: "memgraph"}, d)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris"}, ix.Names(model.City))
}
