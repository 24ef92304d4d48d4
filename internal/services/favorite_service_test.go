package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/realty/internal/models"
)

func TestFavoriteService_AddListRemove(t *testing.T) {
	f := newMemoryFixture(t)
	listings := f.seed(t, "agent-1", 15, models.ListingStatusAvailable)
	svc := NewFavoriteService(f.favorites, f.service, newTestLogger())
	client := &models.User{ID: "client-1", Role: models.RoleClient}

	for _, l := range listings[:13] {
		require.NoError(t, svc.Add(context.Background(), client, l.PropertyID))
	}
	// adding twice is a no-op
	require.NoError(t, svc.Add(context.Background(), client, listings[0].PropertyID))

	page, err := svc.List(context.Background(), client, models.QueryRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 12)
	assert.Equal(t, int64(13), page.Total)
	assert.Equal(t, 2, page.TotalPages)

	require.NoError(t, svc.Remove(context.Background(), client, listings[0].PropertyID))
	assert.ErrorIs(t, svc.Remove(context.Background(), client, listings[0].PropertyID), models.ErrNotFound)

	page, err = svc.List(context.Background(), client, models.QueryRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestFavoriteService_AddHiddenListing(t *testing.T) {
	f := newMemoryFixture(t)
	pending := f.seed(t, "agent-1", 1, models.ListingStatusPending)[0]
	svc := NewFavoriteService(f.favorites, f.service, newTestLogger())

	err := svc.Add(context.Background(), &models.User{ID: "client-1", Role: models.RoleClient}, pending.PropertyID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
