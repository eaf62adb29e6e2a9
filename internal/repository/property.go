package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/casavia/casavia/internal/domain"
	"github.com/casavia/casavia/internal/search"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const propertyColumns = `id, agent_id, title, description, property_type, listing_type,
	price_amount, price_currency, price_period,
	address, city, county, neighborhood, latitude, longitude,
	bedrooms, bathrooms, size_sqm, amenities, photos,
	status, view_count, inquiry_count, expires_at, created_at, updated_at`

type PropertyRepository struct {
	db dbtx
}

func NewPropertyRepository(pool *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{db: pool}
}

func NewPropertyRepositoryWithTx(tx pgx.Tx) *PropertyRepository {
	return &PropertyRepository{db: tx}
}

func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO properties (`+propertyColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		         $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`,
		p.ID, p.AgentID, p.Title, p.Description, p.Type, p.ListingType,
		p.Price.Amount, p.Price.Currency, p.Price.Period,
		p.Location.Address, p.Location.City, p.Location.County, p.Location.Neighborhood,
		p.Location.Latitude, p.Location.Longitude,
		p.Specifications.Bedrooms, p.Specifications.Bathrooms, p.Specifications.SizeSqm,
		p.Amenities, p.Photos,
		p.Status, p.ViewCount, p.InquiryCount, p.ExpiresAt, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)

	p, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	p.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE properties SET
		   title = $1, description = $2, property_type = $3, listing_type = $4,
		   price_amount = $5, price_currency = $6, price_period = $7,
		   address = $8, city = $9, county = $10, neighborhood = $11,
		   latitude = $12, longitude = $13,
		   bedrooms = $14, bathrooms = $15, size_sqm = $16,
		   amenities = $17, status = $18, expires_at = $19, updated_at = $20
		 WHERE id = $21`,
		p.Title, p.Description, p.Type, p.ListingType,
		p.Price.Amount, p.Price.Currency, p.Price.Period,
		p.Location.Address, p.Location.City, p.Location.County, p.Location.Neighborhood,
		p.Location.Latitude, p.Location.Longitude,
		p.Specifications.Bedrooms, p.Specifications.Bathrooms, p.Specifications.SizeSqm,
		p.Amenities, p.Status, p.ExpiresAt, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

// Search executes the composite filter within the given pagination window.
func (r *PropertyRepository) Search(ctx context.Context, filter search.And, sort search.Sort, limit, offset int) ([]*domain.Property, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM properties WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		propertyColumns, where, orderBy(sort), len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPropertyRows(rows)
}

// Count executes the composite filter without the pagination window.
func (r *PropertyRepository) Count(ctx context.Context, filter search.And) (int64, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return 0, err
	}

	var total int64
	err = r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM properties WHERE %s`, where),
		args...,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PropertyRepository) ListByAgent(ctx context.Context, agentID string) ([]*domain.Property, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE agent_id = $1 ORDER BY created_at DESC, id DESC`,
		agentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPropertyRows(rows)
}

func (r *PropertyRepository) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE properties SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

func (r *PropertyRepository) IncrementInquiryCount(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE properties SET inquiry_count = inquiry_count + 1 WHERE id = $1`, id)
	return err
}

func (r *PropertyRepository) AddPhoto(ctx context.Context, id, storageKey string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE properties SET photos = array_append(photos, $1), updated_at = $2 WHERE id = $3`,
		storageKey, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

func (r *PropertyRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE properties SET embedding = $1, updated_at = $2 WHERE id = $3`,
		pgvector.NewVector(embedding), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

// FindSimilar returns the active listings closest to the given one by
// embedding cosine distance. Listings without an embedding are skipped.
func (r *PropertyRepository) FindSimilar(ctx context.Context, id string, limit int) ([]*domain.Property, error) {
	if limit <= 0 {
		limit = 6
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+propertyColumns+`
		 FROM properties
		 WHERE id != $1 AND status = $2 AND embedding IS NOT NULL
		 ORDER BY embedding <=> (SELECT embedding FROM properties WHERE id = $1)
		 LIMIT $3`,
		id, domain.PropertyStatusActive, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPropertyRows(rows)
}

// CountByStatus groups an agent's listings by lifecycle state.
func (r *PropertyRepository) CountByStatus(ctx context.Context, agentID string) (map[domain.PropertyStatus]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*) FROM properties WHERE agent_id = $1 GROUP BY status`,
		agentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.PropertyStatus]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[domain.PropertyStatus(status)] = count
	}
	return counts, rows.Err()
}

// AnalyticsTotals sums the view and inquiry counters across an agent's
// listings.
func (r *PropertyRepository) AnalyticsTotals(ctx context.Context, agentID string) (views, inquiries int64, err error) {
	err = r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(view_count), 0), COALESCE(SUM(inquiry_count), 0)
		 FROM properties WHERE agent_id = $1`,
		agentID,
	).Scan(&views, &inquiries)
	return views, inquiries, err
}

// ExpireActiveBefore moves active listings whose expiry passed before the
// cutoff to the expired state. Returns the number of listings swept.
func (r *PropertyRepository) ExpireActiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE properties SET status = $1, updated_at = $2
		 WHERE status = $3 AND expires_at IS NOT NULL AND expires_at < $4`,
		domain.PropertyStatusExpired, time.Now().UTC(), domain.PropertyStatusActive, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*domain.Property, error) {
	var p domain.Property
	err := row.Scan(
		&p.ID, &p.AgentID, &p.Title, &p.Description, &p.Type, &p.ListingType,
		&p.Price.Amount, &p.Price.Currency, &p.Price.Period,
		&p.Location.Address, &p.Location.City, &p.Location.County, &p.Location.Neighborhood,
		&p.Location.Latitude, &p.Location.Longitude,
		&p.Specifications.Bedrooms, &p.Specifications.Bathrooms, &p.Specifications.SizeSqm,
		&p.Amenities, &p.Photos,
		&p.Status, &p.ViewCount, &p.InquiryCount, &p.ExpiresAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPropertyRows(rows pgx.Rows) ([]*domain.Property, error) {
	var results []*domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}
