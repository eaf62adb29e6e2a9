package repository

import (
	"context"
	"errors"

	"github.com/casavia/casavia/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InquiryRepository struct {
	db dbtx
}

func NewInquiryRepository(pool *pgxpool.Pool) *InquiryRepository {
	return &InquiryRepository{db: pool}
}

func NewInquiryRepositoryWithTx(tx pgx.Tx) *InquiryRepository {
	return &InquiryRepository{db: tx}
}

func (r *InquiryRepository) Create(ctx context.Context, inquiry *domain.Inquiry) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO inquiries (id, property_id, agent_id, name, email, phone, message, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inquiry.ID, inquiry.PropertyID, inquiry.AgentID, inquiry.Name, inquiry.Email,
		inquiry.Phone, inquiry.Message, inquiry.Status, inquiry.CreatedAt,
	)
	return err
}

func (r *InquiryRepository) GetByID(ctx context.Context, id string) (*domain.Inquiry, error) {
	var inquiry domain.Inquiry
	err := r.db.QueryRow(ctx,
		`SELECT id, property_id, agent_id, name, email, phone, message, status, created_at
		 FROM inquiries WHERE id = $1`,
		id,
	).Scan(&inquiry.ID, &inquiry.PropertyID, &inquiry.AgentID, &inquiry.Name, &inquiry.Email,
		&inquiry.Phone, &inquiry.Message, &inquiry.Status, &inquiry.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInquiryNotFound
		}
		return nil, err
	}
	return &inquiry, nil
}

func (r *InquiryRepository) ListByAgent(ctx context.Context, agentID string) ([]*domain.Inquiry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, property_id, agent_id, name, email, phone, message, status, created_at
		 FROM inquiries WHERE agent_id = $1 ORDER BY created_at DESC`,
		agentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInquiryRows(rows)
}

func (r *InquiryRepository) ListByProperty(ctx context.Context, propertyID string) ([]*domain.Inquiry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, property_id, agent_id, name, email, phone, message, status, created_at
		 FROM inquiries WHERE property_id = $1 ORDER BY created_at DESC`,
		propertyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInquiryRows(rows)
}

func (r *InquiryRepository) UpdateStatus(ctx context.Context, id string, status domain.InquiryStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE inquiries SET status = $1 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrInquiryNotFound
	}
	return nil
}

func (r *InquiryRepository) CountNewByAgent(ctx context.Context, agentID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM inquiries WHERE agent_id = $1 AND status = $2`,
		agentID, domain.InquiryStatusNew,
	).Scan(&count)
	return count, err
}

func scanInquiryRows(rows pgx.Rows) ([]*domain.Inquiry, error) {
	var inquiries []*domain.Inquiry
	for rows.Next() {
		var inquiry domain.Inquiry
		if err := rows.Scan(&inquiry.ID, &inquiry.PropertyID, &inquiry.AgentID, &inquiry.Name,
			&inquiry.Email, &inquiry.Phone, &inquiry.Message, &inquiry.Status, &inquiry.CreatedAt); err != nil {
			return nil, err
		}
		inquiries = append(inquiries, &inquiry)
	}
	return inquiries, rows.Err()
}
