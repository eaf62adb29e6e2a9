package domain

import (
	"fmt"
	"time"
)

// PropertyType represents the kind of property being listed
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeStudio     PropertyType = "studio"
	PropertyTypeVilla      PropertyType = "villa"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeLand       PropertyType = "land"
)

// ListingType distinguishes rentals from sales
type ListingType string

const (
	ListingTypeRent ListingType = "rent"
	ListingTypeSale ListingType = "sale"
)

// PropertyStatus represents the lifecycle state of a listing.
// Only active listings are eligible for public search results.
type PropertyStatus string

const (
	PropertyStatusDraft     PropertyStatus = "draft"
	PropertyStatusPending   PropertyStatus = "pending"
	PropertyStatusActive    PropertyStatus = "active"
	PropertyStatusRented    PropertyStatus = "rented"
	PropertyStatusSold      PropertyStatus = "sold"
	PropertyStatusExpired   PropertyStatus = "expired"
	PropertyStatusSuspended PropertyStatus = "suspended"
)

// PricePeriod qualifies the price amount (monthly rent vs. one-off sale price)
type PricePeriod string

const (
	PricePeriodMonthly PricePeriod = "monthly"
	PricePeriodTotal   PricePeriod = "total"
)

// Price holds the listing price
type Price struct {
	Amount   int64
	Currency string
	Period   PricePeriod
}

// Location holds the property's address and coordinates
type Location struct {
	Address      string
	City         string
	County       string
	Neighborhood string
	Latitude     float64
	Longitude    float64
}

// Specifications holds the structured size attributes of a property
type Specifications struct {
	Bedrooms  int
	Bathrooms int
	SizeSqm   float64
}

// Property represents a listing in the marketplace
type Property struct {
	ID             string
	AgentID        string
	Title          string
	Description    string
	Type           PropertyType
	ListingType    ListingType
	Price          Price
	Location       Location
	Specifications Specifications
	Amenities      []string
	Photos         []string
	Status         PropertyStatus
	ViewCount      int64
	InquiryCount   int64
	ExpiresAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateProperty validates a Property instance
func ValidateProperty(p *Property) error {
	if p == nil {
		return fmt.Errorf("property cannot be nil")
	}

	if p.ID == "" {
		return fmt.Errorf("property ID is required")
	}

	if p.AgentID == "" {
		return fmt.Errorf("property AgentID is required")
	}

	if p.Title == "" {
		return fmt.Errorf("property Title is required")
	}

	if !IsValidPropertyType(p.Type) {
		return fmt.Errorf("property Type is invalid: %s", p.Type)
	}

	if !isValidListingType(p.ListingType) {
		return fmt.Errorf("property ListingType is invalid: %s", p.ListingType)
	}

	if !isValidPropertyStatus(p.Status) {
		return fmt.Errorf("property Status is invalid: %s", p.Status)
	}

	if p.Price.Amount < 0 {
		return fmt.Errorf("property Price.Amount must not be negative")
	}

	if p.Specifications.Bedrooms < 0 || p.Specifications.Bathrooms < 0 {
		return fmt.Errorf("property Specifications must not be negative")
	}

	return nil
}

// IsValidPropertyType checks if a PropertyType is one of the known values
func IsValidPropertyType(t PropertyType) bool {
	switch t {
	case PropertyTypeApartment, PropertyTypeHouse, PropertyTypeStudio,
		PropertyTypeVilla, PropertyTypeCommercial, PropertyTypeLand:
		return true
	}
	return false
}

func isValidListingType(t ListingType) bool {
	switch t {
	case ListingTypeRent, ListingTypeSale:
		return true
	}
	return false
}

func isValidPropertyStatus(s PropertyStatus) bool {
	switch s {
	case PropertyStatusDraft, PropertyStatusPending, PropertyStatusActive,
		PropertyStatusRented, PropertyStatusSold, PropertyStatusExpired,
		PropertyStatusSuspended:
		return true
	}
	return false
}
