package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyScope(t *testing.T) {
	admin := &User{ID: "admin-1", Role: RoleAdmin}
	agent := &User{ID: "agent-1", Role: RoleAgent}
	agencyAdmin := &User{ID: "aa-1", Role: RoleAgencyAdmin, AgencyID: strPtr("agency-9")}
	orphan := &User{ID: "aa-2", Role: RoleAgencyAdmin}

	t.Run("admin unrestricted", func(t *testing.T) {
		f, err := ApplyScope(ListingFilter{AgentID: "someone"}, ScopeAdmin, admin)
		require.NoError(t, err)
		assert.Equal(t, "someone", f.AgentID)
		assert.Empty(t, f.Statuses)
	})

	t.Run("admin scope refuses non-admin", func(t *testing.T) {
		_, err := ApplyScope(ListingFilter{}, ScopeAdmin, agent)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("agent scope overrides agent_id", func(t *testing.T) {
		f, err := ApplyScope(ListingFilter{AgentID: "agent-2"}, ScopeAgent, agent)
		require.NoError(t, err)
		assert.Equal(t, "agent-1", f.AgentID)
	})

	t.Run("agency scope uses caller agency", func(t *testing.T) {
		f, err := ApplyScope(ListingFilter{AgencyID: "agency-1"}, ScopeAgency, agencyAdmin)
		require.NoError(t, err)
		assert.Equal(t, "agency-9", f.AgencyID)
	})

	t.Run("agency scope without agency", func(t *testing.T) {
		_, err := ApplyScope(ListingFilter{}, ScopeAgency, orphan)
		assert.ErrorIs(t, err, ErrNoAgency)
	})

	t.Run("public restricts statuses", func(t *testing.T) {
		f, err := ApplyScope(ListingFilter{Status: ListingStatusSold}, ScopePublic, nil)
		require.NoError(t, err)
		assert.Equal(t, PublicStatuses, f.Statuses)
		assert.Equal(t, ListingStatusSold, f.Status)
	})

	t.Run("favorites", func(t *testing.T) {
		f, err := ApplyScope(ListingFilter{}, ScopeFavorites, agent)
		require.NoError(t, err)
		assert.Equal(t, "agent-1", f.FavoritedBy)

		_, err = ApplyScope(ListingFilter{}, ScopeFavorites, nil)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
