package client

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Link types carried by thing records.
const (
	LinkTypeCategory = "boardgamecategory"
	LinkTypeMechanic = "boardgamemechanic"
)

// DocumentKind tags the shape of a catalog response body.
type DocumentKind int

const (
	// DocumentMalformed is anything that is not one of the shapes below.
	DocumentMalformed DocumentKind = iota

	// DocumentListing is a collection listing (<items totalitems=...>).
	DocumentListing

	// DocumentDetails is a thing detail list (<items> of <item id=...>).
	DocumentDetails

	// DocumentQueued is the <message> envelope returned while the catalog
	// is still preparing a collection.
	DocumentQueued

	// DocumentServiceError is an <errors> envelope, e.g. for an unknown
	// username.
	DocumentServiceError
)

// String returns the kind's name for logs.
func (k DocumentKind) String() string {
	switch k {
	case DocumentListing:
		return "listing"
	case DocumentDetails:
		return "details"
	case DocumentQueued:
		return "queued"
	case DocumentServiceError:
		return "service_error"
	default:
		return "malformed"
	}
}

// Document is a parsed response body. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Document struct {
	Kind DocumentKind

	Listing []CollectionItem // DocumentListing
	Details []ItemDetail     // DocumentDetails
	Message string           // DocumentQueued, DocumentServiceError
	Err     error            // DocumentMalformed
}

type xmlDocument struct {
	XMLName xml.Name
	Attrs   []xml.Attr        `xml:",any,attr"`
	Items   []xmlItem         `xml:"item"`
	Errors  []xmlServiceError `xml:"error"`
	Text    string            `xml:",chardata"`
}

type xmlItem struct {
	ObjectID string    `xml:"objectid,attr"`
	ID       string    `xml:"id,attr"`
	Names    []xmlName `xml:"name"`
	Year     *xmlValue `xml:"yearpublished"`
	Links    []xmlLink `xml:"link"`
}

// xmlName covers both name styles: collection listings carry the name as
// text, thing records as a value attribute.
type xmlName struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
	Text  string `xml:",chardata"`
}

type xmlValue struct {
	Value string `xml:"value,attr"`
	Text  string `xml:",chardata"`
}

type xmlLink struct {
	Type  string `xml:"type,attr"`
	ID    string `xml:"id,attr"`
	Value string `xml:"value,attr"`
}

type xmlServiceError struct {
	Message string `xml:"message"`
}

func (n xmlName) text() string {
	if v := strings.TrimSpace(n.Value); v != "" {
		return v
	}
	return strings.TrimSpace(n.Text)
}

func (v *xmlValue) text() string {
	if v == nil {
		return ""
	}
	if s := strings.TrimSpace(v.Value); s != "" {
		return s
	}
	return strings.TrimSpace(v.Text)
}

// ParseDocument classifies and decodes a catalog response body.
func ParseDocument(data []byte) Document {
	var raw xmlDocument
	if err := xml.Unmarshal(data, &raw); err != nil {
		return malformed(fmt.Errorf("decode xml: %w", err))
	}

	switch raw.XMLName.Local {
	case "message":
		return Document{Kind: DocumentQueued, Message: strings.TrimSpace(raw.Text)}
	case "items":
		if raw.isListing() {
			return parseListing(raw)
		}
		return parseDetails(raw)
	case "errors":
		msgs := make([]string, 0, len(raw.Errors))
		for _, e := range raw.Errors {
			msgs = append(msgs, strings.TrimSpace(e.Message))
		}
		return Document{Kind: DocumentServiceError, Message: strings.Join(msgs, "; ")}
	default:
		return malformed(fmt.Errorf("unexpected root element <%s>", raw.XMLName.Local))
	}
}

func malformed(err error) Document {
	return Document{Kind: DocumentMalformed, Err: err}
}

// isListing reports whether an <items> root is a collection listing.
// Listings always carry totalitems; thing lists never do.
func (d xmlDocument) isListing() bool {
	for _, a := range d.Attrs {
		if a.Name.Local == "totalitems" {
			return true
		}
	}
	for _, it := range d.Items {
		if it.ObjectID != "" {
			return true
		}
	}
	return false
}

func parseListing(raw xmlDocument) Document {
	items := make([]CollectionItem, 0, len(raw.Items))
	for i, it := range raw.Items {
		id := strings.TrimSpace(it.ObjectID)
		if id == "" {
			return malformed(fmt.Errorf("collection item %d has no objectid", i))
		}
		item := CollectionItem{ObjectID: id}
		if len(it.Names) > 0 {
			item.Name = it.Names[0].text()
		}
		items = append(items, item)
	}
	return Document{Kind: DocumentListing, Listing: items}
}

func parseDetails(raw xmlDocument) Document {
	details := make([]ItemDetail, 0, len(raw.Items))
	for i, it := range raw.Items {
		name := primaryName(it.Names)
		if name == "" {
			return malformed(fmt.Errorf("thing %d (id %q) has no name", i, it.ID))
		}

		detail := ItemDetail{
			ID:            strings.TrimSpace(it.ID),
			Name:          name,
			YearPublished: it.Year.text(),
		}

		seenCategory := make(map[string]bool)
		seenMechanic := make(map[string]bool)
		for _, link := range it.Links {
			value := strings.TrimSpace(link.Value)
			if value == "" {
				continue
			}
			switch link.Type {
			case LinkTypeCategory:
				if !seenCategory[value] {
					seenCategory[value] = true
					detail.Categories = append(detail.Categories, value)
				}
			case LinkTypeMechanic:
				if !seenMechanic[value] {
					seenMechanic[value] = true
					detail.Mechanics = append(detail.Mechanics, value)
				}
			}
		}

		details = append(details, detail)
	}
	return Document{Kind: DocumentDetails, Details: details}
}

// primaryName prefers the name marked primary and falls back to the first
// non-empty name.
func primaryName(names []xmlName) string {
	for _, n := range names {
		if n.Type == "primary" {
			if v := n.text(); v != "" {
				return v
			}
		}
	}
	for _, n := range names {
		if v := n.text(); v != "" {
			return v
		}
	}
	return ""
}
