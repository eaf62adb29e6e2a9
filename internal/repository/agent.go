package repository

import (
	"context"
	"errors"

	"github.com/casavia/casavia/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AgentRepository struct {
	pool *pgxpool.Pool
}

func NewAgentRepository(pool *pgxpool.Pool) *AgentRepository {
	return &AgentRepository{pool: pool}
}

func (r *AgentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO agents (id, name, email, phone, agency, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		agent.ID, agent.Name, agent.Email, agent.Phone, agent.Agency, agent.CreatedAt,
	)
	return err
}

func (r *AgentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	var agent domain.Agent
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, agency, created_at
		 FROM agents WHERE id = $1`,
		id,
	).Scan(&agent.ID, &agent.Name, &agent.Email, &agent.Phone, &agent.Agency, &agent.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, err
	}
	return &agent, nil
}

func (r *AgentRepository) GetByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	var agent domain.Agent
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, agency, created_at
		 FROM agents WHERE email = $1`,
		email,
	).Scan(&agent.ID, &agent.Name, &agent.Email, &agent.Phone, &agent.Agency, &agent.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, err
	}
	return &agent, nil
}

func (r *AgentRepository) List(ctx context.Context) ([]*domain.Agent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, phone, agency, created_at
		 FROM agents ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []*domain.Agent
	for rows.Next() {
		var agent domain.Agent
		if err := rows.Scan(&agent.ID, &agent.Name, &agent.Email, &agent.Phone, &agent.Agency, &agent.CreatedAt); err != nil {
			return nil, err
		}
		agents = append(agents, &agent)
	}
	return agents, rows.Err()
}

func (r *AgentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrAgentNotFound
	}
	return nil
}
