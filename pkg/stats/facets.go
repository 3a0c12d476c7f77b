package stats

import (
	"github.com/Sternrassler/bgg-stats/pkg/client"
)

// Facets is the per-item record folded into the aggregates.
type Facets struct {
	Name       string
	Categories []string
	Mechanics  []string

	// Year is meaningful only when HasYear is set.
	Year    string
	HasYear bool
}

// FacetsOf extracts the foldable facets of a detail record.
func FacetsOf(d client.ItemDetail) Facets {
	year, ok := d.Year()
	return Facets{
		Name:       d.Name,
		Categories: d.Categories,
		Mechanics:  d.Mechanics,
		Year:       year,
		HasYear:    ok,
	}
}

// Reducer folds one item into one aggregate.
type Reducer func(agg *Aggregate, f Facets)

// ReduceCategories counts the item once under each of its categories.
func ReduceCategories(agg *Aggregate, f Facets) {
	for _, c := range f.Categories {
		agg.Add(c, f.Name)
	}
}

// ReduceMechanics counts the item once under each of its mechanics.
func ReduceMechanics(agg *Aggregate, f Facets) {
	for _, m := range f.Mechanics {
		agg.Add(m, f.Name)
	}
}

// ReduceYear counts the item under its publication year. Items without a
// year are skipped.
func ReduceYear(agg *Aggregate, f Facets) {
	if !f.HasYear {
		return
	}
	agg.Add(f.Year, f.Name)
}

// Accumulator folds items into the three aggregates of a FetchResult.
type Accumulator struct {
	categories *Aggregate
	mechanics  *Aggregate
	years      *Aggregate
	folded     int
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		categories: NewAggregate(),
		mechanics:  NewAggregate(),
		years:      NewAggregate(),
	}
}

// Fold adds one item to all three aggregates.
func (a *Accumulator) Fold(f Facets) {
	ReduceCategories(a.categories, f)
	ReduceMechanics(a.mechanics, f)
	ReduceYear(a.years, f)
	a.folded++
}

// FoldDetails folds a batch of detail records.
func (a *Accumulator) FoldDetails(details []client.ItemDetail) {
	for _, d := range details {
		a.Fold(FacetsOf(d))
	}
}

// Folded returns the number of items folded so far.
func (a *Accumulator) Folded() int {
	return a.folded
}

// Result seals the accumulator into a FetchResult. totalItems is the
// listing size, which may exceed Folded when the catalog omitted ids.
// The accumulator must not be used afterwards.
func (a *Accumulator) Result(username string, totalItems int) *FetchResult {
	return &FetchResult{
		Username:      username,
		Categories:    a.categories,
		Mechanics:     a.mechanics,
		YearPublished: a.years,
		TotalItems:    totalItems,
	}
}
