package stats

// FetchResult is the outcome of one user's collection fetch. It is not
// modified after it is returned.
type FetchResult struct {
	Username      string
	Categories    *Aggregate
	Mechanics     *Aggregate
	YearPublished *Aggregate

	// TotalItems is the size of the collection listing.
	TotalItems int
}

// EmptyResult returns the result for a user with no items.
func EmptyResult(username string) *FetchResult {
	return NewAccumulator().Result(username, 0)
}
