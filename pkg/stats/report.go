package stats

// Facet names an aggregate of a FetchResult.
type Facet string

const (
	FacetCategories Facet = "categories"
	FacetMechanics  Facet = "mechanics"
	FacetYears      Facet = "release_year"
)

// Aggregate returns the aggregate for facet, or nil for an unknown facet.
func (r *FetchResult) Aggregate(facet Facet) *Aggregate {
	switch facet {
	case FacetCategories:
		return r.Categories
	case FacetMechanics:
		return r.Mechanics
	case FacetYears:
		return r.YearPublished
	default:
		return nil
	}
}

// AggregateReport is the category or mechanic view of one collection.
type AggregateReport struct {
	Username   string  `json:"username"`
	Facet      Facet   `json:"facet"`
	TotalItems int     `json:"total_items"`
	Top        []Entry `json:"top"`
	Entries    []Entry `json:"entries"`
}

// NewAggregateReport returns the top-n entries and all entries by count.
func NewAggregateReport(r *FetchResult, facet Facet, n int) AggregateReport {
	var entries []Entry
	if agg := r.Aggregate(facet); agg != nil {
		entries = agg.Entries()
	}
	return AggregateReport{
		Username:   r.Username,
		Facet:      facet,
		TotalItems: r.TotalItems,
		Top:        TopN(entries, n),
		Entries:    SortByCount(entries),
	}
}

// YearReport is the release-year view of one collection.
type YearReport struct {
	Username   string      `json:"username"`
	TotalItems int         `json:"total_items"`
	Series     []YearCount `json:"series"`
}

// NewYearReport builds the gap-filled release-year series.
func NewYearReport(r *FetchResult) (YearReport, error) {
	series, err := GapFilledYears(r.YearPublished)
	if err != nil {
		return YearReport{}, err
	}
	return YearReport{
		Username:   r.Username,
		TotalItems: r.TotalItems,
		Series:     series,
	}, nil
}
