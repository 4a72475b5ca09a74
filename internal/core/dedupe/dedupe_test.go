package dedupe

import (
	"math/rand"
	"testing"

	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cand(text string, start, end int, src model.SourceMethod) model.Candidate {
	return model.NewCandidate(text, start, end, src)
}

func TestNormalize(t *testing.T) {
	text := `Rain in "Paris." today`
	c, ok := Normalize(text, cand(text, 8, 16, model.SourceNER))
	require.True(t, ok)
	assert.Equal(t, "Paris", c.Text)
	assert.Equal(t, 9, c.Start)
	assert.Equal(t, 14, c.End)

	text = "New   York"
	c, ok = Normalize(text, cand(text, 0, len(text), model.SourceChunker))
	require.True(t, ok)
	assert.Equal(t, "New   York", c.Text)
	assert.Equal(t, "New York", c.Normalized)

	_, ok = Normalize("?!", cand("?!", 0, 2, model.SourceNER))
	assert.False(t, ok)

	_, ok = Normalize("Paris", model.Candidate{Text: "Lyon", Start: 0, End: 4})
	assert.False(t, ok)
	_, ok = Normalize("Paris", model.Candidate{Text: "", Start: 3, End: 3})
	assert.False(t, ok)
}

func TestVariants(t *testing.T) {
	assert.Equal(t, []string{"new-zealand", "new zealand"}, Variants(model.Candidate{Text: "New-Zealand"}))
	assert.Equal(t, []string{"paris"}, Variants(model.Candidate{Text: "PARIS"}))
	assert.Equal(t, []string{"mumbai's", "mumbai"}, Variants(model.Candidate{Text: "Mumbai's"}))
	assert.Equal(t, []string{"sao paulo"}, Variants(model.Candidate{Text: "São Paulo"}))
	assert.Empty(t, Variants(model.Candidate{Text: "..."}))
}

func TestMergeCollapsesSameText(t *testing.T) {
	text := "Delhi, then delhi again"
	got := Merge(text, []model.Candidate{
		cand(text, 0, 5, model.SourceCapitalized),
		cand(text, 0, 6, model.SourceNER), // "Delhi," trims to the same span
		cand(text, 12, 17, model.SourceGazetteer),
	})

	require.Len(t, got, 1)
	assert.Equal(t, "Delhi", got[0].Text)
	assert.Equal(t, 0, got[0].Start)
	assert.Equal(t, []model.SourceMethod{model.SourceNER, model.SourceCapitalized, model.SourceGazetteer}, got[0].Sources)
}

func TestMergeNestsContainedSpans(t *testing.T) {
	text := "Rain in Maharashtra and Gujarat"
	got := Merge(text, []model.Candidate{
		cand(text, 8, 19, model.SourceCapitalized),
		cand(text, 8, 31, model.SourceCapitalized),
		cand(text, 24, 31, model.SourceCapitalized),
		cand(text, 24, 31, model.SourceNER),
	})

	require.Len(t, got, 1)
	assert.Equal(t, "Maharashtra and Gujarat", got[0].Text)
	require.Len(t, got[0].Nested, 2)
	assert.Equal(t, "Maharashtra", got[0].Nested[0].Text)
	assert.Equal(t, "Gujarat", got[0].Nested[1].Text)
	assert.Equal(t, []model.SourceMethod{model.SourceNER, model.SourceCapitalized}, got[0].Nested[1].Sources)
}

func TestMergeKeepsPartialOverlapsApart(t *testing.T) {
	text := "New York City Hall"
	got := Merge(text, []model.Candidate{
		cand(text, 0, 13, model.SourceNER),
		cand(text, 9, 18, model.SourceChunker),
	})
	require.Len(t, got, 2)
	assert.Equal(t, "New York City", got[0].Text)
	assert.Equal(t, "City Hall", got[1].Text)
}

func TestMergeAppliesSignals(t *testing.T) {
	text := "Rain in Gujarat state and Kerala"
	signal := cand(text, 8, 15, model.SourceCustomGeo)
	signal.TypeHint = model.State
	signal.Boost = 1
	orphan := cand(text, 26, 32, model.SourceCustomGeo)
	orphan.TypeHint = model.City

	got := Merge(text, []model.Candidate{
		signal,
		orphan,
		cand(text, 8, 15, model.SourceCapitalized),
	})

	require.Len(t, got, 1)
	assert.Equal(t, "Gujarat", got[0].Text)
	assert.Equal(t, model.State, got[0].TypeHint)
	assert.Equal(t, 1, got[0].Boost)
	assert.True(t, got[0].HasSource(model.SourceCustomGeo))
}

func TestMergeIsOrderIndependent(t *testing.T) {
	text := "Which saw higher rainfall, Maharashtra, Ahmedabad or entire New-Zealand?"
	raw := []model.Candidate{
		cand(text, 27, 38, model.SourceCapitalized),
		cand(text, 27, 38, model.SourceNER),
		cand(text, 40, 49, model.SourceChunker),
		cand(text, 60, 71, model.SourceCapitalized),
		cand(text, 60, 72, model.SourceNER),
		cand(text, 64, 71, model.SourceChunker),
	}
	want := Merge(text, raw)
	require.Len(t, want, 3)
	assert.Equal(t, "New-Zealand", want[2].Text)
	assert.Len(t, want[2].Nested, 1)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.Candidate(nil), raw...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Merge(text, shuffled))
	}
}

func TestTruncate(t *testing.T) {
	text := "Paris Lyon Nice Lille"
	cands := []model.Candidate{
		cand(text, 0, 5, model.SourceCapitalized),
		cand(text, 6, 10, model.SourceCapitalized),
		cand(text, 11, 15, model.SourceCapitalized),
		cand(text, 16, 21, model.SourceCapitalized),
	}
	cands[3].Boost = 1

	kept, dropped := Truncate(cands, 2)
	assert.Equal(t, 2, dropped)
	require.Len(t, kept, 2)
	assert.Equal(t, "Paris", kept[0].Text)
	assert.Equal(t, "Lille", kept[1].Text)

	kept, dropped = Truncate(cands, 0)
	assert.Equal(t, 0, dropped)
	assert.Len(t, kept, 4)
}

func TestTruncateCountsNestedSpans(t *testing.T) {
	text := "Rio de Janeiro and São Paulo, Lima"
	container := cand(text, 0, 29, model.SourceCapitalized)
	container.Nested = []model.Candidate{
		cand(text, 0, 14, model.SourceCapitalized),
		cand(text, 19, 29, model.SourceCapitalized),
	}
	container.Nested[1].Boost = 1
	lima := cand(text, 31, 35, model.SourceCapitalized)
	cands := []model.Candidate{container, lima}
	require.Equal(t, 4, CountSpans(cands))

	kept, dropped := Truncate(cands, 3)
	assert.Equal(t, 1, dropped)
	require.Len(t, kept, 2)
	require.Len(t, kept[0].Nested, 1)
	assert.Equal(t, "São Paulo", kept[0].Nested[0].Text)
	assert.Equal(t, "Lima", kept[1].Text)
	assert.Len(t, cands[0].Nested, 2)

	kept, dropped = Truncate(cands, 2)
	assert.Equal(t, 2, dropped)
	require.Len(t, kept, 2)
	assert.Empty(t, kept[0].Nested)

	kept, dropped = Truncate(cands, 1)
	assert.Equal(t, 3, dropped)
	require.Len(t, kept, 1)
	assert.Equal(t, "Rio de Janeiro and São Paulo", kept[0].Text)
	assert.Empty(t, kept[0].Nested)

	kept, dropped = Truncate(cands, 4)
	assert.Zero(t, dropped)
	assert.Equal(t, cands, kept)
}
