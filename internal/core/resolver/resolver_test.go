package resolver

import (
	"errors"
	"math"
	"testing"

	"github.com/agenthands/geoparse/internal/core/gazetteer"
	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/agenthands/geoparse/internal/core/similarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex(t *testing.T) *gazetteer.Index {
	t.Helper()
	ix, err := gazetteer.Build([]gazetteer.Row{
		{City: "Mumbai", Admin: "Maharashtra", Country: "India", ISO2: "IN", ISO3: "IND"},
		{City: "Delhi", Admin: "Delhi", Country: "India"},
		{City: "Ahmedabad", Admin: "Gujarat", Country: "India"},
		{City: "Chennai", Admin: "Tamil Nadu", Country: "India"},
		{City: "Auckland", Admin: "Auckland", Country: "New Zealand", ISO2: "NZ", ISO3: "NZL"},
	})
	require.NoError(t, err)
	return ix
}

func newResolver(t *testing.T, opts Options) *Resolver {
	t.Helper()
	r, err := New(testIndex(t), opts)
	require.NoError(t, err)
	return r
}

func candidate(text string) model.Candidate {
	return model.NewCandidate(text, 0, len(text), model.SourceCapitalized)
}

func TestResolveExact(t *testing.T) {
	r := newResolver(t, DefaultOptions())

	m, ok := r.Resolve(candidate("Mumbai"), nil)
	require.True(t, ok)
	assert.Equal(t, "Mumbai", m.CanonicalName)
	assert.Equal(t, model.City, m.EntityType)
	assert.Equal(t, 100.0, m.Confidence)
	assert.Equal(t, "Mumbai", m.Token())

	m, ok = r.Resolve(candidate("MAHARASHTRA"), nil)
	require.True(t, ok)
	assert.Equal(t, "Maharashtra", m.CanonicalName)
	assert.Equal(t, model.State, m.EntityType)
}

func TestResolveExactSpelling(t *testing.T) {
	ix, err := gazetteer.Build([]gazetteer.Row{
		{City: "Sao Paulo", Admin: "São Paulo", Country: "Brazil"},
	})
	require.NoError(t, err)
	r, err := New(ix, DefaultOptions())
	require.NoError(t, err)

	cases := []struct {
		surface string
		want    model.EntityType
		name    string
	}{
		{"São Paulo", model.State, "São Paulo"},
		{"SÃO PAULO", model.State, "São Paulo"},
		{"Sao Paulo", model.City, "Sao Paulo"},
	}
	for _, c := range cases {
		m, ok := r.Resolve(candidate(c.surface), nil)
		require.True(t, ok, c.surface)
		assert.Equal(t, c.name, m.CanonicalName, c.surface)
		assert.Equal(t, c.want, m.EntityType, c.surface)
		assert.Equal(t, 100.0, m.Confidence)
	}
}

func TestResolveHyphenatedName(t *testing.T) {
	r := newResolver(t, DefaultOptions())

	m, ok := r.Resolve(candidate("New-Zealand"), nil)
	require.True(t, ok)
	assert.Equal(t, "New Zealand", m.CanonicalName)
	assert.Equal(t, model.Country, m.EntityType)
	assert.Equal(t, 100.0, m.Confidence)
}

func TestResolveAliases(t *testing.T) {
	r := newResolver(t, DefaultOptions())

	m, ok := r.Resolve(candidate("Bombay"), nil)
	require.True(t, ok)
	assert.Equal(t, "Mumbai", m.CanonicalName)
	assert.Equal(t, 100.0, m.Confidence)

	m, ok = r.Resolve(candidate("NZ"), nil)
	require.True(t, ok)
	assert.Equal(t, "New Zealand", m.CanonicalName)

	// lowercase acronyms are ordinary words
	_, ok = r.Resolve(candidate("nz"), nil)
	assert.False(t, ok)
}

func TestResolveNearMiss(t *testing.T) {
	r := newResolver(t, DefaultOptions())

	m, ok := r.Resolve(candidate("Mumbay"), nil)
	require.True(t, ok)
	assert.Equal(t, "Mumbai", m.CanonicalName)
	assert.Equal(t, model.City, m.EntityType)
	assert.InDelta(t, 83.33, m.Confidence, 0.01)
}

func TestResolveBelowThreshold(t *testing.T) {
	r := newResolver(t, DefaultOptions())

	_, ok := r.Resolve(candidate("Deli"), nil)
	assert.False(t, ok)

	_, ok = r.Resolve(candidate("Mumbai Indians"), nil)
	assert.False(t, ok)

	_, ok = r.Resolve(candidate("Weather"), nil)
	assert.False(t, ok)
}

func TestResolveTieBreak(t *testing.T) {
	r := newResolver(t, DefaultOptions())
	lenient, err := r.WithThreshold(75)
	require.NoError(t, err)

	m, ok := lenient.Resolve(candidate("Deli"), nil)
	require.True(t, ok)
	assert.Equal(t, "Delhi", m.CanonicalName)
	assert.Equal(t, model.City, m.EntityType)
	assert.InDelta(t, 79.0, m.Confidence, 0.01)

	hinted := candidate("Deli")
	hinted.TypeHint = model.State
	m, ok = lenient.Resolve(hinted, nil)
	require.True(t, ok)
	assert.Equal(t, model.State, m.EntityType)

	m, ok = r.Resolve(candidate("Delhi"), nil)
	require.True(t, ok)
	assert.Equal(t, model.City, m.EntityType)

	statesFirst := newResolver(t, Options{Threshold: 80, Priority: []model.EntityType{model.State, model.City, model.Country}})
	m, ok = statesFirst.Resolve(candidate("Delhi"), nil)
	require.True(t, ok)
	assert.Equal(t, model.State, m.EntityType)
}

func TestResolveContextualTieBreak(t *testing.T) {
	opts := DefaultOptions()
	opts.Contextual = true
	r := newResolver(t, opts)

	qc := NewContext()
	qc.Observe(model.State)
	qc.Observe(model.State)

	m, ok := r.Resolve(candidate("Delhi"), qc)
	require.True(t, ok)
	assert.Equal(t, model.State, m.EntityType)

	m, ok = r.Resolve(candidate("Delhi"), nil)
	require.True(t, ok)
	assert.Equal(t, model.City, m.EntityType)

	plain := newResolver(t, DefaultOptions())
	m, ok = plain.Resolve(candidate("Delhi"), qc)
	require.True(t, ok)
	assert.Equal(t, model.City, m.EntityType)
}

func TestResolveRestrictedTypes(t *testing.T) {
	r := newResolver(t, Options{Threshold: 80, Priority: []model.EntityType{model.Country}})

	_, ok := r.Resolve(candidate("Mumbai"), nil)
	assert.False(t, ok)

	m, ok := r.Resolve(candidate("Indai"), nil)
	if ok {
		assert.Equal(t, model.Country, m.EntityType)
	}
	assert.Equal(t, []model.EntityType{model.Country}, r.Priority())
}

func TestThresholdMonotonic(t *testing.T) {
	r := newResolver(t, Options{Threshold: 0})
	inputs := []string{"Mumbay", "Deli", "Ahmedabd", "Chenai", "Aukland", "Gujrat", "Mumbai Indians", "Paris", "Tamil"}
	thresholds := []float64{0, 40, 60, 75, 80, 90, 100}

	for _, in := range inputs {
		var prev *model.ScoredMatch
		for i := len(thresholds) - 1; i >= 0; i-- {
			rt, err := r.WithThreshold(thresholds[i])
			require.NoError(t, err)
			m, ok := rt.Resolve(candidate(in), nil)
			if prev != nil {
				require.True(t, ok, "%q accepted at a higher threshold but not at %v", in, thresholds[i])
				assert.Equal(t, prev.CanonicalName, m.CanonicalName)
				assert.Equal(t, prev.EntityType, m.EntityType)
			}
			if ok {
				assert.GreaterOrEqual(t, m.Confidence, thresholds[i])
				prev = &m
			}
		}
	}
}

func TestWithThresholdCopies(t *testing.T) {
	r := newResolver(t, DefaultOptions())
	strict, err := r.WithThreshold(95)
	require.NoError(t, err)

	assert.Equal(t, 80.0, r.Threshold())
	assert.Equal(t, 95.0, strict.Threshold())

	_, ok := strict.Resolve(candidate("Mumbay"), nil)
	assert.False(t, ok)
	_, ok = r.Resolve(candidate("Mumbay"), nil)
	assert.True(t, ok)

	_, err = r.WithThreshold(101)
	var cerr *model.ConfigurationError
	assert.True(t, errors.As(err, &cerr))
}

func TestNewValidation(t *testing.T) {
	ix := testIndex(t)
	var cerr *model.ConfigurationError

	_, err := New(ix, Options{Threshold: -1})
	assert.True(t, errors.As(err, &cerr))

	_, err = New(ix, Options{Threshold: math.NaN()})
	assert.True(t, errors.As(err, &cerr))

	_, err = New(ix, Options{Threshold: 80, Weights: similarity.Weights{Ratio: -1, Partial: 2}})
	assert.True(t, errors.As(err, &cerr))
	assert.Equal(t, "resolver.weights", cerr.Field)

	_, err = New(ix, Options{Threshold: 80, Priority: []model.EntityType{model.City, model.City}})
	assert.True(t, errors.As(err, &cerr))

	citiesOnly, err := gazetteer.Build([]gazetteer.Row{{Name: "Paris", Type: "city"}})
	require.NoError(t, err)
	_, err = New(citiesOnly, DefaultOptions())
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, cerr.Reason, "State")

	_, err = New(citiesOnly, Options{Threshold: 80, Priority: []model.EntityType{model.City}})
	assert.NoError(t, err)

	_, err = New(nil, DefaultOptions())
	assert.True(t, errors.As(err, &cerr))
}
