package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lotmarket/internal/models"
)

func TestHighestBid(t *testing.T) {
	tests := []struct {
		name         string
		bids         []models.Bid
		expectOK     bool
		expectAmount float64
		expectID     string
	}{
		{
			name: "picks_largest_amount",
			bids: []models.Bid{
				{ID: "b1", Amount: 100},
				{ID: "b2", Amount: 250},
				{ID: "b3", Amount: 180},
			},
			expectOK:     true,
			expectAmount: 250,
			expectID:     "b2",
		},
		{
			name:     "empty_list_has_no_highest",
			bids:     nil,
			expectOK: false,
		},
		{
			name: "tie_keeps_first_bid",
			bids: []models.Bid{
				{ID: "first", Amount: 300},
				{ID: "second", Amount: 300},
			},
			expectOK:     true,
			expectAmount: 300,
			expectID:     "first",
		},
		{
			name:         "single_bid",
			bids:         []models.Bid{{ID: "only", Amount: 50}},
			expectOK:     true,
			expectAmount: 50,
			expectID:     "only",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			highest, ok := HighestBid(tc.bids)
			require.Equal(t, tc.expectOK, ok)
			if tc.expectOK {
				require.Equal(t, tc.expectAmount, highest.Amount)
				require.Equal(t, tc.expectID, highest.ID)
			}
		})
	}
}

func TestFormatTimeRemaining(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		endsAt time.Time
		expect string
	}{
		{name: "zero_time", endsAt: time.Time{}, expect: "Unknown"},
		{name: "already_ended", endsAt: now.Add(-time.Minute), expect: "Ended"},
		{name: "ends_exactly_now", endsAt: now, expect: "Ended"},
		{name: "under_an_hour", endsAt: now.Add(30 * time.Minute), expect: "Less than an hour"},
		{name: "one_hour", endsAt: now.Add(90 * time.Minute), expect: "1 hour"},
		{name: "several_hours", endsAt: now.Add(5 * time.Hour), expect: "5 hours"},
		{name: "one_day_one_hour", endsAt: now.Add(25 * time.Hour), expect: "1 day and 1 hour"},
		{name: "days_and_hours", endsAt: now.Add(3*24*time.Hour + 7*time.Hour), expect: "3 days and 7 hours"},
		{name: "exact_days", endsAt: now.Add(2 * 24 * time.Hour), expect: "2 days and 0 hours"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.expect, FormatTimeRemaining(tc.endsAt, now))
		})
	}
}

func TestFilterListings(t *testing.T) {
	listings := []models.Listing{
		{ID: "l1", Title: "Vintage record player", Description: "Working condition"},
		{ID: "l2", Title: "Mountain bike", Description: "A vintage frame"},
		{ID: "l3", Title: "Lamp", Description: "Desk lamp"},
	}

	tests := []struct {
		name      string
		query     string
		expectIDs []string
	}{
		{name: "matches_title", query: "bike", expectIDs: []string{"l2"}},
		{name: "matches_title_and_description", query: "vintage", expectIDs: []string{"l1", "l2"}},
		{name: "case_insensitive", query: "LAMP", expectIDs: []string{"l3"}},
		{name: "empty_query_returns_all", query: "", expectIDs: []string{"l1", "l2", "l3"}},
		{name: "whitespace_only_returns_all", query: "   ", expectIDs: []string{"l1", "l2", "l3"}},
		{name: "no_match", query: "boat", expectIDs: []string{}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			filtered := FilterListings(listings, tc.query)
			ids := make([]string, 0, len(filtered))
			for _, listing := range filtered {
				ids = append(ids, listing.ID)
			}
			require.Equal(t, tc.expectIDs, ids)
		})
	}
}

func TestSortListings(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	listings := []models.Listing{
		{ID: "old_popular", Created: base, Count: models.ListingCount{Bids: 9}},
		{ID: "newest_quiet", Created: base.Add(48 * time.Hour), Count: models.ListingCount{Bids: 1}},
		{ID: "middle", Created: base.Add(24 * time.Hour), Count: models.ListingCount{Bids: 4}},
	}

	t.Run("newest_first", func(t *testing.T) {
		sorted := SortListings(listings, SortNewest)
		require.Equal(t, "newest_quiet", sorted[0].ID)
		require.Equal(t, "middle", sorted[1].ID)
		require.Equal(t, "old_popular", sorted[2].ID)
	})

	t.Run("most_bids_first", func(t *testing.T) {
		sorted := SortListings(listings, SortMostBids)
		require.Equal(t, "old_popular", sorted[0].ID)
	})

	t.Run("unknown_mode_keeps_order", func(t *testing.T) {
		sorted := SortListings(listings, "whatever")
		require.Equal(t, "old_popular", sorted[0].ID)
		require.Equal(t, "newest_quiet", sorted[1].ID)
	})

	t.Run("input_is_not_mutated", func(t *testing.T) {
		_ = SortListings(listings, SortNewest)
		require.Equal(t, "old_popular", listings[0].ID)
	})
}

func TestSortBidsNewestFirst(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	bids := []models.Bid{
		{ID: "b1", Created: base},
		{ID: "b2", Created: base.Add(time.Hour)},
	}

	sorted := SortBidsNewestFirst(bids)
	require.Equal(t, "b2", sorted[0].ID)
	require.Equal(t, "b1", sorted[1].ID)
}

func TestSnippet(t *testing.T) {
	require.Equal(t, "short", Snippet("short"))

	long := ""
	for i := 0; i < 20; i++ {
		long += "lengthy "
	}
	snippet := Snippet(long)
	require.LessOrEqual(t, len(snippet), SnippetLength+3)
	require.Contains(t, snippet, "...")
}
