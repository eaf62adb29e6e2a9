package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/casavia/casavia/internal/domain"
)

const apiKeyPrefix = "cva_"

type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	GetByEmail(ctx context.Context, email string) (*domain.Agent, error)
	List(ctx context.Context) ([]*domain.Agent, error)
	Delete(ctx context.Context, id string) error
}

type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByID(ctx context.Context, id string) (*domain.APIKey, error)
	GetByHash(ctx context.Context, hash string) (*domain.APIKey, error)
	GetByAgentID(ctx context.Context, agentID string) ([]*domain.APIKey, error)
	Revoke(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type AuthService struct {
	agentRepo AgentRepository
	keyRepo   APIKeyRepository
	uuidGen   UUIDGenerator
}

func NewAuthService(agentRepo AgentRepository, keyRepo APIKeyRepository, uuidGen UUIDGenerator) *AuthService {
	return &AuthService{
		agentRepo: agentRepo,
		keyRepo:   keyRepo,
		uuidGen:   uuidGen,
	}
}

type CreateAgentInput struct {
	Name   string
	Email  string
	Phone  string
	Agency string
}

func (s *AuthService) CreateAgent(ctx context.Context, input CreateAgentInput) (*domain.Agent, error) {
	if input.Name == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "agent name is required")
	}
	if input.Email == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "agent email is required")
	}

	if _, err := s.agentRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrAgentAlreadyExists
	}

	agent := &domain.Agent{
		ID:        s.uuidGen.NewString(),
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Agency:    input.Agency,
		CreatedAt: time.Now().UTC(),
	}

	if err := domain.ValidateAgent(agent); err != nil {
		return nil, err
	}

	if err := s.agentRepo.Create(ctx, agent); err != nil {
		return nil, err
	}

	return agent, nil
}

func (s *AuthService) GetAgent(ctx context.Context, id string) (*domain.Agent, error) {
	return s.agentRepo.GetByID(ctx, id)
}

func (s *AuthService) CreateAPIKey(ctx context.Context, agentID, name string) (string, error) {
	if agentID == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "agent ID is required")
	}
	if name == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}

	_, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return "", err
	}

	token, err := generateAPIToken()
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate API key", err)
	}

	hash := hashToken(token)

	key := &domain.APIKey{
		ID:        s.uuidGen.NewString(),
		AgentID:   agentID,
		Name:      name,
		KeyHash:   hash,
		CreatedAt: time.Now().UTC(),
		RevokedAt: nil,
	}

	if err := domain.ValidateAPIKey(key); err != nil {
		return "", err
	}

	if err := s.keyRepo.Create(ctx, key); err != nil {
		return "", err
	}

	return token, nil
}

func (s *AuthService) CreateAPIKeyWithToken(ctx context.Context, agentID, name, token string) error {
	if agentID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "agent ID is required")
	}
	if name == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}
	if !IsValidAPIToken(token) {
		return domain.NewDomainError(domain.ErrCodeValidation, "invalid API key format (expected cva_<64 hex chars>)")
	}

	_, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return err
	}

	hash := hashToken(token)

	key := &domain.APIKey{
		ID:        s.uuidGen.NewString(),
		AgentID:   agentID,
		Name:      name,
		KeyHash:   hash,
		CreatedAt: time.Now().UTC(),
		RevokedAt: nil,
	}

	if err := domain.ValidateAPIKey(key); err != nil {
		return err
	}

	return s.keyRepo.Create(ctx, key)
}

// ValidateAPIKey resolves a bearer token to the owning agent ID.
func (s *AuthService) ValidateAPIKey(ctx context.Context, token string) (string, error) {
	if !IsValidAPIToken(token) {
		return "", domain.ErrInvalidAPIKey
	}

	hash := hashToken(token)

	key, err := s.keyRepo.GetByHash(ctx, hash)
	if err != nil {
		if err == domain.ErrAPIKeyNotFound {
			return "", domain.ErrInvalidAPIKey
		}
		return "", err
	}

	if key.IsRevoked() {
		return "", domain.ErrAPIKeyRevoked
	}

	return key.AgentID, nil
}

// GetAPIKeyByHash looks up the key record for a plaintext token.
func (s *AuthService) GetAPIKeyByHash(ctx context.Context, token string) (*domain.APIKey, error) {
	return s.keyRepo.GetByHash(ctx, hashToken(token))
}

func (s *AuthService) RevokeAPIKey(ctx context.Context, keyID string) error {
	if keyID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key ID is required")
	}

	return s.keyRepo.Revoke(ctx, keyID)
}

func (s *AuthService) ListAPIKeys(ctx context.Context, agentID string) ([]*domain.APIKey, error) {
	if agentID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "agent ID is required")
	}

	return s.keyRepo.GetByAgentID(ctx, agentID)
}

func generateAPIToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(bytes), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func IsValidAPIToken(token string) bool {
	if !strings.HasPrefix(token, apiKeyPrefix) {
		return false
	}
	hexPart := token[len(apiKeyPrefix):]
	if len(hexPart) != 64 {
		return false
	}
	for _, c := range hexPart {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
