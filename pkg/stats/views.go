package stats

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Sternrassler/bgg-stats/pkg/client"
)

// DefaultTopN is the number of entries shown by top-N views.
const DefaultTopN = 10

// SortByCount returns entries ordered by descending count. Ties keep their
// input order, so sorting first-seen entries keeps first-seen order among
// equal counts.
func SortByCount(entries []Entry) []Entry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return sorted
}

// SortByKey returns entries ordered by ascending key.
func SortByKey(entries []Entry) []Entry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return strings.Compare(a.Key, b.Key)
	})
	return sorted
}

// TopN returns the first n entries of the count-descending order, or all
// of them if there are fewer than n.
func TopN(entries []Entry, n int) []Entry {
	sorted := SortByCount(entries)
	if n < 0 {
		n = 0
	}
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// YearCount is one point of a year series.
type YearCount struct {
	Year    int      `json:"year"`
	Count   int      `json:"count"`
	Members []string `json:"members,omitempty"`
}

// MaxYearSpan caps the number of points GapFilledYears will produce.
const MaxYearSpan = 10000

// GapFilledYears returns one point per year from the earliest to the latest
// observed year inclusive, with count 0 for years without items. A year
// key that is not an integer, or a range wider than MaxYearSpan, yields a
// protocol-violation FetchError.
func GapFilledYears(agg *Aggregate) ([]YearCount, error) {
	if agg.Len() == 0 {
		return []YearCount{}, nil
	}

	observed := make(map[int]string, agg.Len())
	lo, hi := 0, 0
	for i, key := range agg.Keys() {
		year, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, client.NewProtocolError("year_series", fmt.Sprintf("non-numeric year %q", key), err)
		}
		observed[year] = key
		if i == 0 || year < lo {
			lo = year
		}
		if i == 0 || year > hi {
			hi = year
		}
	}

	if span := int64(hi) - int64(lo) + 1; span > MaxYearSpan {
		return nil, client.NewProtocolError("year_series", fmt.Sprintf("year range %d..%d spans %d years (max %d)", lo, hi, span, MaxYearSpan), nil)
	}

	series := make([]YearCount, 0, hi-lo+1)
	for year := lo; year <= hi; year++ {
		point := YearCount{Year: year}
		if key, ok := observed[year]; ok {
			point.Count = agg.Count(key)
			point.Members = agg.Members(key)
		}
		series = append(series, point)
	}
	return series, nil
}

// Percentages returns 100*count/total for each label, in label order.
// Labels absent from agg, and every label when total is 0, yield 0.
func Percentages(agg *Aggregate, total int, labels []string) []float64 {
	values := make([]float64, len(labels))
	if total <= 0 {
		return values
	}
	for i, label := range labels {
		values[i] = 100 * float64(agg.Count(label)) / float64(total)
	}
	return values
}

// Dataset is one user's series in a comparison.
type Dataset struct {
	Username string    `json:"username"`
	Values   []float64 `json:"values"`
}

// Comparison is a set of per-user percentage series over shared labels.
type Comparison struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// CompareTopMechanics builds a comparison over the union of each user's
// top-n mechanics, labels sorted alphabetically. With a single result it
// is that user's mechanic profile.
func CompareTopMechanics(results []*FetchResult, n int) Comparison {
	seen := make(map[string]bool)
	var labels []string
	for _, r := range results {
		for _, e := range TopN(r.Mechanics.Entries(), n) {
			if !seen[e.Key] {
				seen[e.Key] = true
				labels = append(labels, e.Key)
			}
		}
	}
	slices.Sort(labels)
	if labels == nil {
		labels = []string{}
	}

	datasets := make([]Dataset, 0, len(results))
	for _, r := range results {
		datasets = append(datasets, Dataset{
			Username: r.Username,
			Values:   Percentages(r.Mechanics, r.TotalItems, labels),
		})
	}

	return Comparison{Labels: labels, Datasets: datasets}
}
