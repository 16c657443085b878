package command

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"lotmarket/internal/auction"
	"lotmarket/internal/auctionerrors"
	"lotmarket/internal/models"
	"lotmarket/internal/session"
	"lotmarket/internal/storage"
)

func newTestCommands(t *testing.T) (*Commands, *MockAuctionAPI, *session.Store, *bytes.Buffer) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	api := NewMockAuctionAPI(ctrl)
	sessions := session.NewStore(storage.NewMemoryStore())
	out := &bytes.Buffer{}

	return New(api, sessions, out), api, sessions, out
}

func signIn(t *testing.T, sessions *session.Store, name string) {
	t.Helper()
	require.NoError(t, sessions.Save(&models.User{
		Name:        name,
		Email:       name + "@stud.noroff.no",
		AccessToken: "tok-" + name,
	}))
}

func TestCommands_LoginSavesSession(t *testing.T) {
	commands, api, sessions, out := newTestCommands(t)

	api.EXPECT().
		Login("alice@stud.noroff.no", "password123").
		Return(models.User{Name: "alice", Email: "alice@stud.noroff.no", AccessToken: "tok-1"}, nil)

	require.NoError(t, commands.Login("alice@stud.noroff.no", "password123"))

	require.True(t, sessions.Authenticated())
	require.Equal(t, "tok-1", sessions.AuthToken())
	require.Contains(t, out.String(), "Signed in as alice")
}

func TestCommands_LoginFailureLeavesSessionEmpty(t *testing.T) {
	commands, api, sessions, _ := newTestCommands(t)

	api.EXPECT().
		Login("alice@stud.noroff.no", "wrong").
		Return(models.User{}, errors.New("Invalid email or password"))

	err := commands.Login("alice@stud.noroff.no", "wrong")
	require.Error(t, err)
	require.False(t, sessions.Authenticated())
}

func TestCommands_LogoutClearsSession(t *testing.T) {
	commands, _, sessions, out := newTestCommands(t)
	signIn(t, sessions, "alice")

	require.NoError(t, commands.Logout())
	require.False(t, sessions.Authenticated())
	require.Contains(t, out.String(), "Signed out.")
}

func TestCommands_BidRejectedLocallyWhenTooLow(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
	}{
		{name: "below_highest", amount: 200},
		{name: "equal_to_highest", amount: 250},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			commands, api, sessions, _ := newTestCommands(t)
			signIn(t, sessions, "alice")

			// PlaceBid must never be called: the pre-check stops the
			// request before it leaves the machine
			api.EXPECT().
				Listing("l1").
				Return(models.Listing{
					ID:     "l1",
					Title:  "Bike",
					Seller: &models.Seller{Name: "bob"},
					Bids: []models.Bid{
						{ID: "b1", Amount: 100},
						{ID: "b2", Amount: 250},
						{ID: "b3", Amount: 180},
					},
				}, nil)

			err := commands.Bid("l1", tc.amount)
			require.Error(t, err)
			require.True(t, errors.Is(err, auctionerrors.ErrBidTooLow), "got %v", err)
			require.Contains(t, err.Error(), "(250 NOK)", "message should name the current highest amount")
		})
	}
}

func TestCommands_BidOnOwnListingRejected(t *testing.T) {
	commands, api, sessions, _ := newTestCommands(t)
	signIn(t, sessions, "alice")

	api.EXPECT().
		Listing("l1").
		Return(models.Listing{ID: "l1", Seller: &models.Seller{Name: "alice"}}, nil)

	err := commands.Bid("l1", 100)
	require.True(t, errors.Is(err, auctionerrors.ErrOwnBid), "got %v", err)
}

func TestCommands_BidRequiresSession(t *testing.T) {
	commands, _, _, _ := newTestCommands(t)

	err := commands.Bid("l1", 100)
	require.True(t, errors.Is(err, auctionerrors.ErrNotAuthenticated), "got %v", err)
}

func TestCommands_BidSubmitsWhenAboveHighest(t *testing.T) {
	commands, api, sessions, out := newTestCommands(t)
	signIn(t, sessions, "alice")

	api.EXPECT().
		Listing("l1").
		Return(models.Listing{
			ID:     "l1",
			Title:  "Bike",
			Seller: &models.Seller{Name: "bob"},
			Bids:   []models.Bid{{ID: "b1", Amount: 250}},
		}, nil)
	api.EXPECT().
		PlaceBid("l1", 300.0, "tok-alice").
		Return(models.Listing{ID: "l1"}, nil)

	require.NoError(t, commands.Bid("l1", 300))
	require.Contains(t, out.String(), "Bid of 300 NOK placed")
}

func TestCommands_FirstBidNeedsNoPreCheck(t *testing.T) {
	commands, api, sessions, _ := newTestCommands(t)
	signIn(t, sessions, "alice")

	api.EXPECT().
		Listing("l1").
		Return(models.Listing{ID: "l1", Seller: &models.Seller{Name: "bob"}}, nil)
	api.EXPECT().
		PlaceBid("l1", 10.0, "tok-alice").
		Return(models.Listing{ID: "l1"}, nil)

	require.NoError(t, commands.Bid("l1", 10))
}

func TestCommands_BrowseFiltersAndSorts(t *testing.T) {
	commands, api, _, out := newTestCommands(t)

	api.EXPECT().
		Listings(auction.DefaultListingsQuery()).
		Return([]models.Listing{
			{ID: "l1", Title: "Vintage record player", EndsAt: time.Now().Add(time.Hour)},
			{ID: "l2", Title: "Mountain bike", EndsAt: time.Now().Add(time.Hour)},
		}, nil)

	require.NoError(t, commands.Browse("bike", ""))

	output := out.String()
	require.Contains(t, output, "Mountain bike")
	require.NotContains(t, output, "Vintage record player")
}

func TestCommands_BrowseNoResults(t *testing.T) {
	commands, api, _, out := newTestCommands(t)

	api.EXPECT().
		Listings(auction.DefaultListingsQuery()).
		Return([]models.Listing{{ID: "l1", Title: "Lamp"}}, nil)

	require.NoError(t, commands.Browse("boat", ""))
	require.Contains(t, out.String(), "No results found.")
}

func TestCommands_ShowRendersHighestBidAndHistory(t *testing.T) {
	commands, api, _, out := newTestCommands(t)
	now := time.Now()

	api.EXPECT().
		Listing("l1").
		Return(models.Listing{
			ID:     "l1",
			Title:  "Bike",
			Seller: &models.Seller{Name: "bob"},
			EndsAt: now.Add(26*time.Hour + 30*time.Minute),
			Bids: []models.Bid{
				{ID: "b1", Amount: 100, Created: now.Add(-2 * time.Hour), Bidder: &models.Bidder{Name: "carol"}},
				{ID: "b2", Amount: 250, Created: now.Add(-1 * time.Hour), Bidder: &models.Bidder{Name: "dave"}},
			},
		}, nil)

	require.NoError(t, commands.Show("l1"))

	output := out.String()
	require.Contains(t, output, "Current bid: 250 NOK")
	require.Contains(t, output, "1 day and 2 hours")
	require.Contains(t, output, "dave")
	require.Contains(t, output, "carol")
}

func TestCommands_ProfileRequiresSession(t *testing.T) {
	commands, _, _, _ := newTestCommands(t)

	for _, call := range []func() error{
		commands.Profile,
		commands.MyListings,
		commands.MyBids,
		func() error { return commands.Create(auction.ListingInput{Title: "Bike"}) },
		func() error { return commands.Delete("l1") },
	} {
		err := call()
		require.True(t, errors.Is(err, auctionerrors.ErrNotAuthenticated), "got %v", err)
	}
}

func TestCommands_ProfileRendersCreditsAndCounts(t *testing.T) {
	commands, api, sessions, out := newTestCommands(t)
	signIn(t, sessions, "alice")

	api.EXPECT().
		Profile("alice", auction.ProfileQuery{Listings: true, Bids: true, Token: "tok-alice"}).
		Return(models.Profile{
			Name:    "alice",
			Email:   "alice@stud.noroff.no",
			Credits: 850,
			Count:   models.ProfileCount{Listings: 2, Bids: 5},
		}, nil)

	require.NoError(t, commands.Profile())

	output := out.String()
	require.Contains(t, output, "Credits:  850 NOK")
	require.Contains(t, output, "Listings: 2")
	require.Contains(t, output, "Bids:     5")
}

func TestCommands_EditProfileSendsAvatar(t *testing.T) {
	commands, api, sessions, _ := newTestCommands(t)
	signIn(t, sessions, "alice")

	api.EXPECT().
		UpdateProfile("alice", auction.ProfileUpdate{
			Bio:    "hello",
			Avatar: &models.Media{URL: "https://example.com/a.png", Alt: "me"},
		}, "tok-alice").
		Return(models.Profile{Name: "alice"}, nil)

	require.NoError(t, commands.EditProfile("hello", "https://example.com/a.png", "me"))
}

func TestCommands_WhoamiLoggedOut(t *testing.T) {
	commands, _, _, out := newTestCommands(t)

	require.NoError(t, commands.Whoami())
	require.Contains(t, out.String(), "Not signed in.")
}
