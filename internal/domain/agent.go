package domain

import (
	"fmt"
	"time"
)

// Agent represents a listing agent account
type Agent struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Agency    string
	CreatedAt time.Time
}

// APIKey represents an agent-scoped API key. Only the SHA256 hash of the
// token is stored.
type APIKey struct {
	ID        string
	AgentID   string
	Name      string
	KeyHash   string
	CreatedAt time.Time
	RevokedAt *time.Time
}

// IsRevoked reports whether the key has been revoked
func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}

// ValidateAgent validates an Agent instance
func ValidateAgent(a *Agent) error {
	if a == nil {
		return fmt.Errorf("agent cannot be nil")
	}

	if a.ID == "" {
		return fmt.Errorf("agent ID is required")
	}

	if a.Name == "" {
		return fmt.Errorf("agent Name is required")
	}

	if a.Email == "" {
		return fmt.Errorf("agent Email is required")
	}

	return nil
}

// ValidateAPIKey validates an APIKey instance
func ValidateAPIKey(k *APIKey) error {
	if k == nil {
		return fmt.Errorf("api key cannot be nil")
	}

	if k.ID == "" {
		return fmt.Errorf("api key ID is required")
	}

	if k.AgentID == "" {
		return fmt.Errorf("api key AgentID is required")
	}

	if k.KeyHash == "" {
		return fmt.Errorf("api key KeyHash is required")
	}

	return nil
}
