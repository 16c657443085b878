// Package helpers holds the presentation rules shared by the CLI
// commands: highest-bid selection, remaining-time buckets, and the
// browse-page search and sort behavior.
package helpers

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"lotmarket/internal/models"
)

// SnippetLength is where listing descriptions are truncated in card views
const SnippetLength = 80

// HighestBid returns the bid with the largest amount. Ties keep the first
// bid encountered. The second return is false for an empty list.
func HighestBid(bids []models.Bid) (models.Bid, bool) {
	if len(bids) == 0 {
		return models.Bid{}, false
	}

	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > highest.Amount {
			highest = b
		}
	}
	return highest, true
}

// FormatTimeRemaining renders the time until endsAt as a coarse
// human-readable string: "Ended", "Less than an hour", "N hour(s)" or
// "N day(s) and M hour(s)".
func FormatTimeRemaining(endsAt, now time.Time) string {
	if endsAt.IsZero() {
		return "Unknown"
	}

	remaining := endsAt.Sub(now)
	if remaining <= 0 {
		return "Ended"
	}

	totalHours := int(remaining / time.Hour)
	days := totalHours / 24
	hours := totalHours % 24

	if days == 0 && hours == 0 {
		return "Less than an hour"
	}
	if days == 0 {
		return fmt.Sprintf("%d %s", hours, plural("hour", hours))
	}
	return fmt.Sprintf("%d %s and %d %s", days, plural("day", days), hours, plural("hour", hours))
}

func plural(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

// FilterListings returns the listings whose title or description contains
// the query, case-insensitively. An empty query returns the input as is.
func FilterListings(listings []models.Listing, query string) []models.Listing {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return listings
	}

	filtered := make([]models.Listing, 0, len(listings))
	for _, listing := range listings {
		title := strings.ToLower(listing.Title)
		description := strings.ToLower(listing.Description)
		if strings.Contains(title, query) || strings.Contains(description, query) {
			filtered = append(filtered, listing)
		}
	}
	return filtered
}

// Sort modes for the browse view
const (
	SortRecommended = "recommended"
	SortNewest      = "newest"
	SortMostBids    = "most-bids"
)

// SortListings orders a copy of the listings by the given mode. Unknown
// modes keep the server's order.
func SortListings(listings []models.Listing, mode string) []models.Listing {
	sorted := append([]models.Listing(nil), listings...)

	switch mode {
	case SortNewest:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Created.After(sorted[j].Created)
		})
	case SortMostBids:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Count.Bids > sorted[j].Count.Bids
		})
	}
	return sorted
}

// SortBidsNewestFirst orders a copy of the bids by creation time, newest first
func SortBidsNewestFirst(bids []models.Bid) []models.Bid {
	sorted := append([]models.Bid(nil), bids...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Created.After(sorted[j].Created)
	})
	return sorted
}

// Snippet truncates a description for card views
func Snippet(description string) string {
	if len(description) <= SnippetLength {
		return description
	}
	return strings.TrimSpace(description[:SnippetLength]) + "..."
}
