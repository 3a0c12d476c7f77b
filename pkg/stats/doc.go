// Package stats holds the per-user aggregates built from a collection and
// the pure views derived from them.
//
// A fetch folds every item detail into three independent aggregates
// (categories, mechanics, year published). Each aggregate maps a label to
// a count and to the names of the games that contributed to it, in
// first-seen order. Views never touch the network:
//
//	entries := stats.TopN(result.Mechanics.Entries(), 10)
//	years, err := stats.GapFilledYears(result.YearPublished)
//	radar := stats.CompareTopMechanics([]*stats.FetchResult{result}, 10)
package stats
