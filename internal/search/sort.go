package search

import "strings"

// Sort is a parsed sort key: a document field name and direction.
type Sort struct {
	Field string
	Desc  bool
}

// sortableFields whitelists the document fields exposed for sorting.
var sortableFields = map[string]bool{
	"createdAt": true,
	"price":     true,
	"bedrooms":  true,
	"size":      true,
	"viewCount": true,
}

// DefaultSort orders listings newest first.
var DefaultSort = Sort{Field: "createdAt", Desc: true}

// ParseSort parses a signed field name ("-createdAt", "price"). Unknown
// or empty keys fall back to the default newest-first ordering.
func ParseSort(key string) Sort {
	key = strings.TrimSpace(key)
	if key == "" {
		return DefaultSort
	}

	desc := false
	if strings.HasPrefix(key, "-") {
		desc = true
		key = key[1:]
	}

	if !sortableFields[key] {
		return DefaultSort
	}
	return Sort{Field: key, Desc: desc}
}

// String renders the sort back to its signed form.
func (s Sort) String() string {
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}
