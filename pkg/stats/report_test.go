package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *FetchResult {
	acc := NewAccumulator()
	acc.Fold(Facets{Name: "g1", Categories: []string{"War", "Card Game"}, Mechanics: []string{"Dice"}, Year: "2001", HasYear: true})
	acc.Fold(Facets{Name: "g2", Categories: []string{"Card Game"}, Year: "2003", HasYear: true})
	acc.Fold(Facets{Name: "g3", Mechanics: []string{"Dice", "Drafting"}})
	return acc.Result("alice", 3)
}

func TestFetchResult_Aggregate(t *testing.T) {
	r := sampleResult()

	assert.Same(t, r.Categories, r.Aggregate(FacetCategories))
	assert.Same(t, r.Mechanics, r.Aggregate(FacetMechanics))
	assert.Same(t, r.YearPublished, r.Aggregate(FacetYears))
	assert.Nil(t, r.Aggregate("designers"))
}

func TestNewAggregateReport(t *testing.T) {
	report := NewAggregateReport(sampleResult(), FacetCategories, 1)

	assert.Equal(t, "alice", report.Username)
	assert.Equal(t, 3, report.TotalItems)
	require.Len(t, report.Top, 1)
	assert.Equal(t, "Card Game", report.Top[0].Key)
	assert.Equal(t, []string{"g1", "g2"}, report.Top[0].Members)
	assert.Equal(t, []string{"Card Game", "War"}, keysOf(report.Entries))
}

func TestNewAggregateReport_UnknownFacet(t *testing.T) {
	report := NewAggregateReport(sampleResult(), "designers", 10)
	assert.Empty(t, report.Top)
	assert.Empty(t, report.Entries)
}

func TestNewYearReport(t *testing.T) {
	report, err := NewYearReport(sampleResult())
	require.NoError(t, err)

	require.Len(t, report.Series, 3)
	assert.Equal(t, 2001, report.Series[0].Year)
	assert.Equal(t, 0, report.Series[1].Count)
	assert.Equal(t, 2003, report.Series[2].Year)
}
