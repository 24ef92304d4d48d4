package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/realty/internal/handlers"
	"github.com/BradenHooton/realty/internal/models"
)

func TestListFavourites_Envelope(t *testing.T) {
	var gotReq models.QueryRequest
	svc := &handlers.MockFavoriteService{
		ListFunc: func(ctx context.Context, caller *models.User, req models.QueryRequest) (models.QueryResult, error) {
			assert.Equal(t, testClient, caller)
			gotReq = req
			return models.NewQueryResult([]*models.Listing{sampleListing("p1")}, 13, 12), nil
		},
	}
	h := handlers.NewFavoriteHandler(svc, handlers.NewTestLogger())

	req := handlers.WithAuthContext(httptest.NewRequest(http.MethodGet, "/me/favourites?page=2", nil), testClient)
	w := httptest.NewRecorder()
	h.ListFavourites(w, req)

	var resp handlers.ListFavouritesResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	require.Len(t, resp.Favourites, 1)
	assert.Equal(t, int64(13), resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, 2, gotReq.Page)
	assert.Contains(t, w.Body.String(), `"favourites"`)
}

func TestListFavourites_RequiresCaller(t *testing.T) {
	h := handlers.NewFavoriteHandler(&handlers.MockFavoriteService{}, handlers.NewTestLogger())

	w := httptest.NewRecorder()
	h.ListFavourites(w, httptest.NewRequest(http.MethodGet, "/me/favourites", nil))

	handlers.AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
}

func TestAddFavourite(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"saved", nil, http.StatusNoContent},
		{"listing hidden", models.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			svc := &handlers.MockFavoriteService{
				AddFunc: func(ctx context.Context, caller *models.User, propertyID string) error {
					gotID = propertyID
					return tt.err
				},
			}
			h := handlers.NewFavoriteHandler(svc, handlers.NewTestLogger())

			req := handlers.WithAuthContext(httptest.NewRequest(http.MethodPost, "/me/favourites/p1", nil), testClient)
			req = handlers.WithChiID(req, "p1")
			w := httptest.NewRecorder()
			h.AddFavourite(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "p1", gotID)
		})
	}
}

func TestRemoveFavourite_NotSaved(t *testing.T) {
	svc := &handlers.MockFavoriteService{
		RemoveFunc: func(ctx context.Context, caller *models.User, propertyID string) error {
			return models.ErrNotFound
		},
	}
	h := handlers.NewFavoriteHandler(svc, handlers.NewTestLogger())

	req := handlers.WithAuthContext(httptest.NewRequest(http.MethodDelete, "/me/favourites/p1", nil), testClient)
	req = handlers.WithChiID(req, "p1")
	w := httptest.NewRecorder()
	h.RemoveFavourite(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusNotFound, "not_found")
}
