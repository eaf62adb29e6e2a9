//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casavia/casavia/internal/domain"
	"github.com/casavia/casavia/internal/search"
	"github.com/casavia/casavia/internal/testutil"
)

// createTestAgent inserts the FK parent row every listing needs.
func createTestAgent(ctx context.Context, t *testing.T, pool *pgxpool.Pool) *domain.Agent {
	t.Helper()

	agent := &domain.Agent{
		ID:        uuid.NewString(),
		Name:      "Ana Ionescu",
		Email:     uuid.NewString() + "@example.com",
		Phone:     "+40 721 000 111",
		Agency:    "Ionescu Imobiliare",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, NewAgentRepository(pool).Create(ctx, agent))
	return agent
}

func seedProperty(agentID string) *domain.Property {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Property{
		ID:          uuid.NewString(),
		AgentID:     agentID,
		Title:       "Bright two bedroom apartment",
		Description: "Renovated apartment near the central park",
		Type:        domain.PropertyTypeApartment,
		ListingType: domain.ListingTypeRent,
		Price: domain.Price{
			Amount:   750,
			Currency: "EUR",
			Period:   domain.PricePeriodMonthly,
		},
		Location: domain.Location{
			Address:      "Strada Dorobantilor 14",
			City:         "Cluj-Napoca",
			County:       "Cluj",
			Neighborhood: "Marasti",
			Latitude:     46.77,
			Longitude:    23.62,
		},
		Specifications: domain.Specifications{
			Bedrooms:  2,
			Bathrooms: 1,
			SizeSqm:   62.5,
		},
		Amenities: []string{"parking", "balcony"},
		Photos:    []string{},
		Status:    domain.PropertyStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPropertyRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agent := createTestAgent(ctx, t, pool)
	repo := NewPropertyRepository(pool)

	prop := seedProperty(agent.ID)
	require.NoError(t, repo.Create(ctx, prop))

	got, err := repo.GetByID(ctx, prop.ID)
	require.NoError(t, err)

	assert.Equal(t, prop.ID, got.ID)
	assert.Equal(t, agent.ID, got.AgentID)
	assert.Equal(t, "Bright two bedroom apartment", got.Title)
	assert.Equal(t, domain.PropertyTypeApartment, got.Type)
	assert.Equal(t, domain.ListingTypeRent, got.ListingType)
	assert.Equal(t, int64(750), got.Price.Amount)
	assert.Equal(t, "EUR", got.Price.Currency)
	assert.Equal(t, domain.PricePeriodMonthly, got.Price.Period)
	assert.Equal(t, "Cluj-Napoca", got.Location.City)
	assert.Equal(t, "Marasti", got.Location.Neighborhood)
	assert.Equal(t, 2, got.Specifications.Bedrooms)
	assert.Equal(t, []string{"parking", "balcony"}, got.Amenities)
	assert.Empty(t, got.Photos)
	assert.Equal(t, domain.PropertyStatusActive, got.Status)
	assert.Nil(t, got.ExpiresAt)
	assert.WithinDuration(t, prop.CreatedAt, got.CreatedAt, time.Second)
}

func TestPropertyRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewPropertyRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)
}

func TestPropertyRepository_Update(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agent := createTestAgent(ctx, t, pool)
	repo := NewPropertyRepository(pool)

	prop := seedProperty(agent.ID)
	require.NoError(t, repo.Create(ctx, prop))

	prop.Title = "Spacious two bedroom apartment"
	prop.Price.Amount = 820
	prop.Status = domain.PropertyStatusRented
	prop.Amenities = append(prop.Amenities, "elevator")
	require.NoError(t, repo.Update(ctx, prop))

	got, err := repo.GetByID(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spacious two bedroom apartment", got.Title)
	assert.Equal(t, int64(820), got.Price.Amount)
	assert.Equal(t, domain.PropertyStatusRented, got.Status)
	assert.Equal(t, []string{"parking", "balcony", "elevator"}, got.Amenities)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestPropertyRepository_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewPropertyRepository(pool)

	prop := seedProperty(uuid.NewString())
	err := repo.Update(ctx, prop)
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)
}

func TestPropertyRepository_Delete(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agent := createTestAgent(ctx, t, pool)
	repo := NewPropertyRepository(pool)

	prop := seedProperty(agent.ID)
	require.NoError(t, repo.Create(ctx, prop))

	require.NoError(t, repo.Delete(ctx, prop.ID))

	_, err := repo.GetByID(ctx, prop.ID)
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, prop.ID), domain.ErrPropertyNotFound)
}

func TestPropertyRepository_SearchAndCount(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agent := createTestAgent(ctx, t, pool)
	repo := NewPropertyRepository(pool)

	apartment := seedProperty(agent.ID)
	require.NoError(t, repo.Create(ctx, apartment))

	house := seedProperty(agent.ID)
	house.Title = "Family house with garden"
	house.Description = "Quiet street close to schools"
	house.Type = domain.PropertyTypeHouse
	house.Location.City = "Bucuresti"
	house.Location.Neighborhood = "Primaverii"
	house.Price.Amount = 1400
	house.Specifications.Bedrooms = 4
	house.Amenities = []string{"garden", "garage"}
	require.NoError(t, repo.Create(ctx, house))

	draft := seedProperty(agent.ID)
	draft.Title = "Draft apartment not yet published"
	draft.Status = domain.PropertyStatusDraft
	require.NoError(t, repo.Create(ctx, draft))

	expander := search.NewExpander()

	t.Run("free text matches across fields and skips drafts", func(t *testing.T) {
		req := search.Request{Query: "apartment", Sort: search.DefaultSort}
		filter := search.Build(req, expander.Expand(req.Query))

		results, err := repo.Search(ctx, filter, req.Sort, 10, 0)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, apartment.ID, results[0].ID)

		total, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("location filter matches city", func(t *testing.T) {
		req := search.Request{Location: "bucuresti", Sort: search.DefaultSort}
		filter := search.Build(req, nil)

		results, err := repo.Search(ctx, filter, req.Sort, 10, 0)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, house.ID, results[0].ID)
	})

	t.Run("price range filter", func(t *testing.T) {
		min, max := int64(1000), int64(2000)
		req := search.Request{MinPrice: &min, MaxPrice: &max, Sort: search.DefaultSort}
		filter := search.Build(req, nil)

		results, err := repo.Search(ctx, filter, req.Sort, 10, 0)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, house.ID, results[0].ID)
	})

	t.Run("amenity overlap filter", func(t *testing.T) {
		req := search.Request{Features: []string{"garden", "pool"}, Sort: search.DefaultSort}
		filter := search.Build(req, nil)

		results, err := repo.Search(ctx, filter, req.Sort, 10, 0)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, house.ID, results[0].ID)
	})

	t.Run("price sort ascending", func(t *testing.T) {
		req := search.Request{Sort: search.ParseSort("price")}
		filter := search.Build(req, nil)

		results, err := repo.Search(ctx, filter, req.Sort, 10, 0)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, apartment.ID, results[0].ID)
		assert.Equal(t, house.ID, results[1].ID)
	})

	t.Run("pagination window", func(t *testing.T) {
		req := search.Request{Sort: search.ParseSort("price")}
		filter := search.Build(req, nil)

		results, err := repo.Search(ctx, filter, req.Sort, 1, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, house.ID, results[0].ID)

		total, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})
}

func TestPropertyRepository_ListByAgent(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agent := createTestAgent(ctx, t, pool)
	other := createTestAgent(ctx, t, pool)
	repo := NewPropertyRepository(pool)

	mine := seedProperty(agent.ID)
	require.NoError(t, repo.Create(ctx, mine))

	draft := seedProperty(agent.ID)
	draft.Status = domain.PropertyStatusDraft
	require.NoError(t, repo.Create(ctx, draft))

	theirs := seedProperty(other.ID)
	require.NoError(t, repo.Create(ctx, theirs))

	results, err := repo.ListByAgent(ctx, agent.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, p := range results {
		assert.Equal(t, agent.ID, p.AgentID)
	}
}

func TestPropertyRepository_Counters(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agent := createTestAgent(ctx, t, pool)
	repo := NewPropertyRepository(pool)

	prop := seedProperty(agent.ID)
	require.NoError(t, repo.Create(ctx, prop))

	require.NoError(t, repo.IncrementViewCount(ctx, prop.ID))
	require.NoError(t, repo.IncrementViewCount(ctx, prop.ID))
	require.NoError(t, repo.IncrementInquiryCount(ctx, prop.ID))

	got, err := repo.GetByID(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ViewCount)
	assert.Equal(t, int64(1), got.InquiryCount)

	views, inquiries, err := repo.AnalyticsTotals(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), views)
	assert.Equal(t, int64(1), inquiries)
}

func TestPropertyRepository_AddPhoto(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agent := createTestAgent(ctx, t, pool)
	repo := NewPropertyRepository(pool)

	prop := seedProperty(agent.ID)
	require.NoError(t, repo.Create(ctx, prop))

	key := "properties/" + prop.ID + "/photo-1.jpg"
	require.NoError(t, repo.AddPhoto(ctx, prop.ID, key))

	got, err := repo.GetByID(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, got.Photos)

	assert.ErrorIs(t, repo.AddPhoto(ctx, uuid.NewString(), key), domain.ErrPropertyNotFound)
}

func TestPropertyRepository_CountByStatus(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agent := createTestAgent(ctx, t, pool)
	repo := NewPropertyRepository(pool)

	for i := 0; i < 2; i++ {
		p := seedProperty(agent.ID)
		require.NoError(t, repo.Create(ctx, p))
	}
	rented := seedProperty(agent.ID)
	rented.Status = domain.PropertyStatusRented
	require.NoError(t, repo.Create(ctx, rented))

	counts, err := repo.CountByStatus(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.PropertyStatusActive])
	assert.Equal(t, int64(1), counts[domain.PropertyStatusRented])
}

func TestPropertyRepository_ExpireActiveBefore(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agent := createTestAgent(ctx, t, pool)
	repo := NewPropertyRepository(pool)

	past := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	future := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)

	lapsed := seedProperty(agent.ID)
	lapsed.ExpiresAt = &past
	require.NoError(t, repo.Create(ctx, lapsed))

	current := seedProperty(agent.ID)
	current.ExpiresAt = &future
	require.NoError(t, repo.Create(ctx, current))

	openEnded := seedProperty(agent.ID)
	require.NoError(t, repo.Create(ctx, openEnded))

	swept, err := repo.ExpireActiveBefore(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	got, err := repo.GetByID(ctx, lapsed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PropertyStatusExpired, got.Status)

	got, err = repo.GetByID(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PropertyStatusActive, got.Status)

	got, err = repo.GetByID(ctx, openEnded.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PropertyStatusActive, got.Status)
}

func TestPropertyRepository_FindSimilar(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agent := createTestAgent(ctx, t, pool)
	repo := NewPropertyRepository(pool)

	target := seedProperty(agent.ID)
	require.NoError(t, repo.Create(ctx, target))
	require.NoError(t, repo.UpdateEmbedding(ctx, target.ID, testEmbedding(1.0)))

	near := seedProperty(agent.ID)
	near.Title = "Sunny two bedroom apartment nearby"
	require.NoError(t, repo.Create(ctx, near))
	require.NoError(t, repo.UpdateEmbedding(ctx, near.ID, testEmbedding(0.9)))

	far := seedProperty(agent.ID)
	far.Title = "Commercial space downtown"
	far.Type = domain.PropertyTypeCommercial
	require.NoError(t, repo.Create(ctx, far))
	require.NoError(t, repo.UpdateEmbedding(ctx, far.ID, testEmbedding(0.0)))

	missing := seedProperty(agent.ID)
	missing.Title = "Listing without an embedding"
	require.NoError(t, repo.Create(ctx, missing))

	results, err := repo.FindSimilar(ctx, target.ID, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, near.ID, results[0].ID)
	assert.Equal(t, far.ID, results[1].ID)

	results, err = repo.FindSimilar(ctx, target.ID, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, near.ID, results[0].ID)
}

func TestPropertyRepository_UpdateEmbedding_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewPropertyRepository(pool)

	err := repo.UpdateEmbedding(ctx, uuid.NewString(), testEmbedding(1.0))
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)
}

// testEmbedding builds a 1536-dim vector whose first two components steer
// cosine distance: seed 1.0 and 0.9 are close, 0.0 is orthogonal.
func testEmbedding(seed float32) []float32 {
	v := make([]float32, 1536)
	v[0] = seed
	v[1] = 1 - seed
	return v
}
