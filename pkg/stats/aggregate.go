package stats

// Aggregate maps a label to a count and the ordered names of the items
// that contributed to it. For every key, len(Members(key)) == Count(key).
type Aggregate struct {
	counts  map[string]int
	members map[string][]string
	order   []string
}

// Entry is a single aggregate row.
type Entry struct {
	Key     string   `json:"key"`
	Count   int      `json:"count"`
	Members []string `json:"members"`
}

// NewAggregate returns an empty aggregate.
func NewAggregate() *Aggregate {
	return &Aggregate{
		counts:  make(map[string]int),
		members: make(map[string][]string),
	}
}

// Add increments key by one and appends member to its member list.
func (a *Aggregate) Add(key, member string) {
	if _, ok := a.counts[key]; !ok {
		a.order = append(a.order, key)
	}
	a.counts[key]++
	a.members[key] = append(a.members[key], member)
}

// Count returns the count for key, 0 if absent.
func (a *Aggregate) Count(key string) int {
	return a.counts[key]
}

// Members returns a copy of the member list for key.
func (a *Aggregate) Members(key string) []string {
	m, ok := a.members[key]
	if !ok {
		return nil
	}
	return append([]string(nil), m...)
}

// Keys returns the keys in first-seen order.
func (a *Aggregate) Keys() []string {
	return append([]string(nil), a.order...)
}

// Len returns the number of distinct keys.
func (a *Aggregate) Len() int {
	return len(a.order)
}

// Total returns the sum of all counts.
func (a *Aggregate) Total() int {
	total := 0
	for _, c := range a.counts {
		total += c
	}
	return total
}

// Entries returns one entry per key in first-seen order.
func (a *Aggregate) Entries() []Entry {
	entries := make([]Entry, 0, len(a.order))
	for _, key := range a.order {
		entries = append(entries, Entry{
			Key:     key,
			Count:   a.counts[key],
			Members: a.Members(key),
		})
	}
	return entries
}
