package search

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize is the number of listings per page when the caller
	// does not specify a limit.
	DefaultPageSize = 12

	// MaxPageSize caps the page size accepted from the query string.
	MaxPageSize = 100
)

// Request holds the parsed, typed search parameters for one call.
// Optional numeric filters are nil when absent or malformed.
type Request struct {
	Query        string
	PropertyType string // empty means no type filter
	Location     string
	MinPrice     *int64
	MaxPrice     *int64
	MinBedrooms  *int
	MinBathrooms *int
	Features     []string
	Sort         Sort
	Page         int
	PageSize     int
}

// ParseRequest converts raw query parameters into a Request with defaults
// applied. Malformed numeric values are treated as absent rather than
// rejected; search stays permissive.
func ParseRequest(values url.Values) Request {
	req := Request{
		Query:    values.Get("search"),
		Location: strings.TrimSpace(values.Get("location")),
		Sort:     ParseSort(values.Get("sort")),
		Page:     1,
		PageSize: DefaultPageSize,
	}

	if propertyType := strings.ToLower(strings.TrimSpace(values.Get("propertyType"))); propertyType != "" && propertyType != "all" {
		req.PropertyType = propertyType
	}

	req.MinPrice = parseInt64(values.Get("minPrice"))
	req.MaxPrice = parseInt64(values.Get("maxPrice"))
	req.MinBedrooms = parseInt(values.Get("bedrooms"))
	req.MinBathrooms = parseInt(values.Get("bathrooms"))
	req.Features = parseFeatures(values["features"])

	if page := parseInt(values.Get("page")); page != nil && *page > 0 {
		req.Page = *page
	}
	if limit := parseInt(values.Get("limit")); limit != nil && *limit > 0 {
		req.PageSize = *limit
		if req.PageSize > MaxPageSize {
			req.PageSize = MaxPageSize
		}
	}

	return req
}

// parseInt64 parses a non-negative integer; anything else counts as absent.
func parseInt64(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// parseFeatures accepts both repeated query parameters and comma-separated
// lists, normalizing to a deduplicated, lower-cased set.
func parseFeatures(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}

	seen := map[string]bool{}
	var features []string
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			feature := strings.ToLower(strings.TrimSpace(part))
			if feature == "" || seen[feature] {
				continue
			}
			seen[feature] = true
			features = append(features, feature)
		}
	}
	return features
}
