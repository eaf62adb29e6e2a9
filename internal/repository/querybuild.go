package repository

import (
	"fmt"
	"strings"

	"github.com/casavia/casavia/internal/search"
)

// columnByField maps search document fields to properties columns.
var columnByField = map[string]string{
	search.FieldTitle:        "title",
	search.FieldDescription:  "description",
	search.FieldPropertyType: "property_type",
	search.FieldCity:         "city",
	search.FieldNeighborhood: "neighborhood",
	search.FieldAddress:      "address",
	search.FieldStatus:       "status",
	search.FieldPrice:        "price_amount",
	search.FieldBedrooms:     "bedrooms",
	search.FieldBathrooms:    "bathrooms",
}

// sortColumns whitelists the ORDER BY targets for each sortable field.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price_amount",
	"bedrooms":  "bedrooms",
	"size":      "size_sqm",
	"viewCount": "view_count",
}

// whereBuilder renders a search filter tree into a SQL WHERE clause with
// positional arguments.
type whereBuilder struct {
	args []any
}

// buildWhere translates the composite filter into SQL. Regex conditions
// use Postgres case-insensitive matching (~*); set-membership uses array
// overlap (&&), which implements "any of" semantics.
func buildWhere(filter search.And) (string, []any, error) {
	b := &whereBuilder{}
	clause, err := b.render(filter)
	if err != nil {
		return "", nil, err
	}
	return clause, b.args, nil
}

func (b *whereBuilder) placeholder(value any) string {
	b.args = append(b.args, value)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *whereBuilder) render(c search.Condition) (string, error) {
	switch v := c.(type) {
	case search.And:
		return b.renderGroup(v.All, " AND ")
	case search.Or:
		return b.renderGroup(v.Any, " OR ")
	case search.Regex:
		expr, err := textExpr(v.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s ~* %s", expr, b.placeholder(v.Pattern)), nil
	case search.Eq:
		col, err := column(v.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s", col, b.placeholder(v.Value)), nil
	case search.Gte:
		col, err := column(v.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s >= %s", col, b.placeholder(v.Value)), nil
	case search.Lte:
		col, err := column(v.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s <= %s", col, b.placeholder(v.Value)), nil
	case search.AnyOf:
		if v.Field != search.FieldAmenities {
			return "", fmt.Errorf("any-of filter not supported for field %q", v.Field)
		}
		return fmt.Sprintf("amenities && %s", b.placeholder(v.Values)), nil
	default:
		return "", fmt.Errorf("unsupported filter condition %T", c)
	}
}

func (b *whereBuilder) renderGroup(conditions []search.Condition, op string) (string, error) {
	if len(conditions) == 0 {
		return "TRUE", nil
	}

	parts := make([]string, 0, len(conditions))
	for _, c := range conditions {
		part, err := b.render(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, op) + ")", nil
}

// textExpr returns the SQL expression a regex condition matches against.
// The amenities array is flattened so token patterns can hit any element.
func textExpr(field string) (string, error) {
	if field == search.FieldAmenities {
		return "array_to_string(amenities, ' ')", nil
	}
	return column(field)
}

func column(field string) (string, error) {
	col, ok := columnByField[field]
	if !ok {
		return "", fmt.Errorf("unknown filter field %q", field)
	}
	return col, nil
}

// orderBy renders the sort key with a stable id tiebreaker so pages stay
// disjoint when rows share a sort value.
func orderBy(sort search.Sort) string {
	col, ok := sortColumns[sort.Field]
	if !ok {
		return "created_at DESC, id DESC"
	}

	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, id DESC", col, dir)
}
