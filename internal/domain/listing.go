package domain

// Listing is one active item of a shop as handed to the keyword pipeline.
// Tags are carried through but not scored.
type Listing struct {
	ID          int64
	ShopName    string
	Title       string
	Description string
	Tags        []string
	URL         string
}
