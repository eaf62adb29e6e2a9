//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casavia/casavia/internal/domain"
	"github.com/casavia/casavia/internal/testutil"
)

func TestAgentRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewAgentRepository(pool)

	agent := &domain.Agent{
		ID:        uuid.NewString(),
		Name:      "Radu Popescu",
		Email:     "radu.popescu@example.com",
		Phone:     "+40 722 333 444",
		Agency:    "Popescu & Partners",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, agent))

	got, err := repo.GetByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, got.ID)
	assert.Equal(t, "Radu Popescu", got.Name)
	assert.Equal(t, "radu.popescu@example.com", got.Email)
	assert.Equal(t, "Popescu & Partners", got.Agency)
	assert.WithinDuration(t, agent.CreatedAt, got.CreatedAt, time.Second)

	byEmail, err := repo.GetByEmail(ctx, agent.Email)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, byEmail.ID)
}

func TestAgentRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewAgentRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.NewString()), domain.ErrAgentNotFound)
}

func TestAgentRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewAgentRepository(pool)

	first := createTestAgent(ctx, t, pool)

	dup := &domain.Agent{
		ID:        uuid.NewString(),
		Name:      "Someone Else",
		Email:     first.Email,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	assert.Error(t, repo.Create(ctx, dup))
}

func TestAgentRepository_List(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewAgentRepository(pool)

	a := createTestAgent(ctx, t, pool)
	b := createTestAgent(ctx, t, pool)

	agents, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 2)

	ids := []string{agents[0].ID, agents[1].ID}
	assert.Contains(t, ids, a.ID)
	assert.Contains(t, ids, b.ID)
}

func TestAgentRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agent := createTestAgent(ctx, t, pool)
	prop := createTestListing(ctx, t, pool, agent.ID)

	require.NoError(t, NewAgentRepository(pool).Delete(ctx, agent.ID))

	_, err := NewPropertyRepository(pool).GetByID(ctx, prop.ID)
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)
}
