package search

import (
	"regexp"

	"github.com/casavia/casavia/internal/domain"
)

// Document field names used in filter conditions. The repository layer
// maps these to its own schema; the search core never sees columns.
const (
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldPropertyType = "propertyType"
	FieldCity         = "location.city"
	FieldNeighborhood = "location.neighborhood"
	FieldAddress      = "location.address"
	FieldAmenities    = "amenities"
	FieldStatus       = "status"
	FieldPrice        = "price.amount"
	FieldBedrooms     = "specifications.bedrooms"
	FieldBathrooms    = "specifications.bathrooms"
)

// searchableFields are the text fields matched by free-text tokens.
var searchableFields = []string{
	FieldTitle,
	FieldDescription,
	FieldPropertyType,
	FieldCity,
	FieldNeighborhood,
	FieldAddress,
	FieldAmenities,
}

// Condition is one node of a composite filter expression.
type Condition interface {
	condition()
}

// And is a conjunction of conditions.
type And struct {
	All []Condition
}

// Or is a disjunction of conditions.
type Or struct {
	Any []Condition
}

// Regex matches a field against a case-insensitive "contains" pattern.
// Patterns are pre-escaped alternations of literal variants.
type Regex struct {
	Field   string
	Pattern string
}

// Eq matches a field for exact equality.
type Eq struct {
	Field string
	Value string
}

// Gte matches numeric fields greater than or equal to a bound.
type Gte struct {
	Field string
	Value int64
}

// Lte matches numeric fields less than or equal to a bound.
type Lte struct {
	Field string
	Value int64
}

// AnyOf matches set-valued fields that share at least one element with
// the given values ("any of", not "all of").
type AnyOf struct {
	Field  string
	Values []string
}

func (And) condition()   {}
func (Or) condition()    {}
func (Regex) condition() {}
func (Eq) condition()    {}
func (Gte) condition()   {}
func (Lte) condition()   {}
func (AnyOf) condition() {}

// Build assembles the composite filter for one request: an AND of the
// per-token OR-groups, the structured filters, and the always-on active
// status gate. The free-text group and the location group are kept as
// independent clauses so that neither overwrites the other when both are
// present.
func Build(req Request, groups []TokenGroup) And {
	var all []Condition

	// Each token must match somewhere across the searchable fields,
	// though not necessarily the same field.
	for _, group := range groups {
		pattern := group.Pattern()
		any := make([]Condition, 0, len(searchableFields))
		for _, field := range searchableFields {
			any = append(any, Regex{Field: field, Pattern: pattern})
		}
		all = append(all, Or{Any: any})
	}

	if req.PropertyType != "" {
		all = append(all, Eq{Field: FieldPropertyType, Value: req.PropertyType})
	}

	if req.Location != "" {
		pattern := regexp.QuoteMeta(req.Location)
		all = append(all, Or{Any: []Condition{
			Regex{Field: FieldCity, Pattern: pattern},
			Regex{Field: FieldNeighborhood, Pattern: pattern},
		}})
	}

	if req.MinPrice != nil {
		all = append(all, Gte{Field: FieldPrice, Value: *req.MinPrice})
	}
	if req.MaxPrice != nil {
		all = append(all, Lte{Field: FieldPrice, Value: *req.MaxPrice})
	}

	if req.MinBedrooms != nil {
		all = append(all, Gte{Field: FieldBedrooms, Value: int64(*req.MinBedrooms)})
	}
	if req.MinBathrooms != nil {
		all = append(all, Gte{Field: FieldBathrooms, Value: int64(*req.MinBathrooms)})
	}

	if len(req.Features) > 0 {
		all = append(all, AnyOf{Field: FieldAmenities, Values: req.Features})
	}

	all = append(all, Eq{Field: FieldStatus, Value: string(domain.PropertyStatusActive)})

	return And{All: all}
}
