package domain

import (
	"fmt"
	"strings"
	"time"
)

// InquiryStatus represents the agent-facing state of an inquiry
type InquiryStatus string

const (
	InquiryStatusNew       InquiryStatus = "new"
	InquiryStatusContacted InquiryStatus = "contacted"
	InquiryStatusClosed    InquiryStatus = "closed"
)

// Inquiry represents a visitor's message about a listing
type Inquiry struct {
	ID         string
	PropertyID string
	AgentID    string
	Name       string
	Email      string
	Phone      string
	Message    string
	Status     InquiryStatus
	CreatedAt  time.Time
}

// ValidateInquiry validates an Inquiry instance
func ValidateInquiry(i *Inquiry) error {
	if i == nil {
		return fmt.Errorf("inquiry cannot be nil")
	}

	if i.ID == "" {
		return fmt.Errorf("inquiry ID is required")
	}

	if i.PropertyID == "" {
		return fmt.Errorf("inquiry PropertyID is required")
	}

	if i.Name == "" {
		return fmt.Errorf("inquiry Name is required")
	}

	if i.Email == "" || !strings.Contains(i.Email, "@") {
		return fmt.Errorf("inquiry Email is invalid")
	}

	if i.Message == "" {
		return fmt.Errorf("inquiry Message is required")
	}

	if !IsValidInquiryStatus(i.Status) {
		return fmt.Errorf("inquiry Status is invalid: %s", i.Status)
	}

	return nil
}

// IsValidInquiryStatus reports whether s is a known inquiry status
func IsValidInquiryStatus(s InquiryStatus) bool {
	switch s {
	case InquiryStatusNew, InquiryStatusContacted, InquiryStatusClosed:
		return true
	}
	return false
}
