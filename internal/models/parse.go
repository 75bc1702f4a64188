package models

// ParseField enumerates the listing fields a ParseFailure can refer to.
type ParseField string

const (
	FieldId            ParseField = "id"
	FieldUrl           ParseField = "url"
	FieldTitle         ParseField = "title"
	FieldPrice         ParseField = "price"
	FieldCities        ParseField = "cities"
	FieldSellerName    ParseField = "seller_name"
	FieldSellerRatings ParseField = "seller_ratings"
	FieldSellerUrl     ParseField = "seller_url"
	FieldDate          ParseField = "date"
)

// ParseFailureKind classifies why a field could not be turned into a Listing field.
type ParseFailureKind string

const (
	// FailureMissing means the field's markup was absent entirely.
	FailureMissing ParseFailureKind = "missing"
	// FailureInvalid means the markup was present but couldn't be parsed.
	FailureInvalid ParseFailureKind = "invalid"
	// FailureSkipped means the row was intentionally excluded (barter, wanted ad, pinned row).
	FailureSkipped ParseFailureKind = "skipped"
)

// ParseFailure records one field-level parse problem for one ad row.
// It does not stop the rest of the page from parsing.
type ParseFailure struct {
	Field ParseField
	Kind  ParseFailureKind
	// Value is the raw text that failed to parse, when available.
	Value *string
}

func missingFailure(field ParseField) ParseFailure {
	return ParseFailure{Field: field, Kind: FailureMissing}
}

func invalidFailure(field ParseField, raw string) ParseFailure {
	return ParseFailure{Field: field, Kind: FailureInvalid, Value: &raw}
}

func skippedFailure(field ParseField) ParseFailure {
	return ParseFailure{Field: field, Kind: FailureSkipped}
}

// MissingFailure constructs a ParseFailure of kind Missing for field.
func MissingFailure(field ParseField) ParseFailure { return missingFailure(field) }

// InvalidFailure constructs a ParseFailure of kind Invalid for field, carrying the raw text.
func InvalidFailure(field ParseField, raw string) ParseFailure { return invalidFailure(field, raw) }

// SkippedFailure constructs a ParseFailure of kind Skipped for field.
func SkippedFailure(field ParseField) ParseFailure { return skippedFailure(field) }

// ScrapeMetadata carries page-level context (category, price floor/ceiling)
// for display only; it is never diffed or persisted.
type ScrapeMetadata struct {
	Category *string
	MinPrice *float64
	MaxPrice *float64
}

// ParsedPage is the output of a single parse pass over one fetched page.
type ParsedPage struct {
	Metadata ScrapeMetadata
	Listings []Listing
	Failures []ParseFailure
}

// SkippedCount returns the number of failures that were intentional exclusions.
func (p ParsedPage) SkippedCount() int {
	n := 0
	for _, f := range p.Failures {
		if f.Kind == FailureSkipped {
			n++
		}
	}
	return n
}

// UnparsableCount returns the number of failures that were genuine parse errors
// (missing or invalid fields), excluding intentional skips.
func (p ParsedPage) UnparsableCount() int {
	n := 0
	for _, f := range p.Failures {
		if f.Kind != FailureSkipped {
			n++
		}
	}
	return n
}

// MaxListingId returns the greatest listing id on the page, or nil if the page has no listings.
func (p ParsedPage) MaxListingId() *ListingId {
	if len(p.Listings) == 0 {
		return nil
	}
	max := p.Listings[0].Id
	for _, l := range p.Listings[1:] {
		if l.Id > max {
			max = l.Id
		}
	}
	return &max
}
