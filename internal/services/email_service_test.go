package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/realty/internal/models"
)

func TestListingStatusMessage_EscapesHTML(t *testing.T) {
	agent := &models.User{Name: "Ada <script>", Email: "ada@example.com"}
	listing := &models.Listing{Title: `3 bed "duplex" & pool`}

	msg := listingStatusMessage(agent, listing, models.ListingStatusPending, models.ListingStatusAvailable)

	assert.Equal(t, "ada@example.com", msg.to)
	assert.Equal(t, EmailTemplateListingStatus, msg.template)
	assert.Contains(t, msg.subject, models.ListingStatusAvailable)
	assert.NotContains(t, msg.html, "<script>")
	assert.Contains(t, msg.html, "&amp; pool")
	assert.Contains(t, msg.text, `3 bed "duplex" & pool`)
}

func TestLogEmailService(t *testing.T) {
	svc := NewLogEmailService(newTestLogger())
	agent := &models.User{Name: "Ada", Email: "ada@example.com"}
	listing := &models.Listing{Title: "Flat"}

	require.NoError(t, svc.SendListingStatusEmail(context.Background(), agent, listing, "pending", "sold"))
	require.NoError(t, svc.SendFeaturedExpiredEmail(context.Background(), agent, listing))
}
