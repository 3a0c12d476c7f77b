package client

// CollectionItem is one entry of a user's collection listing.
type CollectionItem struct {
	// ObjectID is the catalog thing id used for detail requests.
	ObjectID string `json:"object_id"`

	// Name as shown in the listing; may be empty.
	Name string `json:"name,omitempty"`
}

// ItemDetail is the parsed detail record of a single thing.
type ItemDetail struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// YearPublished is empty when the catalog has no year for the item.
	YearPublished string `json:"year_published,omitempty"`

	Categories []string `json:"categories,omitempty"`
	Mechanics  []string `json:"mechanics,omitempty"`
}

// Year returns the publication year and whether it is known.
func (d ItemDetail) Year() (string, bool) {
	return d.YearPublished, d.YearPublished != ""
}
