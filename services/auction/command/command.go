// Package command wires the CLI commands to the domain request functions,
// mirroring what the original page controllers did: read the session,
// call the API, render the result or a user-facing error message.
package command

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"lotmarket/internal/auction"
	"lotmarket/internal/auctionerrors"
	"lotmarket/internal/models"
	"lotmarket/internal/session"
	"lotmarket/services/auction/helpers"
	"lotmarket/utils"
)

// AuctionAPI is the surface of the auction service the commands use
type AuctionAPI interface {
	Register(name, email, password string) (models.User, error)
	Login(email, password string) (models.User, error)
	Listings(query auction.ListingsQuery) ([]models.Listing, error)
	Listing(id string) (models.Listing, error)
	CreateListing(input auction.ListingInput, token string) (models.Listing, error)
	UpdateListing(id string, input auction.ListingInput, token string) (models.Listing, error)
	DeleteListing(id, token string) error
	PlaceBid(id string, amount float64, token string) (models.Listing, error)
	Profile(name string, query auction.ProfileQuery) (models.Profile, error)
	UpdateProfile(name string, update auction.ProfileUpdate, token string) (models.Profile, error)
	ProfileListings(name string, active bool, token string) ([]models.Listing, error)
	ProfileBids(name, token string) ([]models.Bid, error)
}

// Commands renders marketplace operations to a writer
type Commands struct {
	api      AuctionAPI
	sessions *session.Store
	out      io.Writer
	now      func() time.Time
}

// New creates the command set
func New(api AuctionAPI, sessions *session.Store, out io.Writer) *Commands {
	return &Commands{
		api:      api,
		sessions: sessions,
		out:      out,
		now:      time.Now,
	}
}

// Register creates a new account and prompts the user to sign in
func (c *Commands) Register(name, email, password string) error {
	user, err := c.api.Register(name, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Registration successful! You can now sign in as %s.\n", user.Name)
	utils.Info("account registered", map[string]any{"name": user.Name})
	return nil
}

// Login authenticates and saves the session
func (c *Commands) Login(email, password string) error {
	user, err := c.api.Login(email, password)
	if err != nil {
		return err
	}

	if err := c.sessions.Save(&user); err != nil {
		return fmt.Errorf("login succeeded but saving the session failed: %w", err)
	}

	fmt.Fprintf(c.out, "Signed in as %s.\n", user.Name)
	utils.Info("session saved", map[string]any{"name": user.Name})
	return nil
}

// Logout clears the stored session
func (c *Commands) Logout() error {
	if err := c.sessions.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Signed out.")
	return nil
}

// Whoami prints the current session state
func (c *Commands) Whoami() error {
	user, err := c.sessions.CurrentUser()
	if err != nil {
		fmt.Fprintln(c.out, "Not signed in.")
		return nil
	}
	fmt.Fprintf(c.out, "%s <%s>\n", user.Name, user.Email)
	return nil
}

// Browse fetches active listings and renders them as cards, applying the
// search query and sort mode locally the way the browse page did.
func (c *Commands) Browse(query, sortMode string) error {
	listings, err := c.api.Listings(auction.DefaultListingsQuery())
	if err != nil {
		return fmt.Errorf("sorry, we couldn't load the listings right now: %w", err)
	}

	listings = helpers.FilterListings(listings, query)
	listings = helpers.SortListings(listings, sortMode)

	if len(listings) == 0 {
		if query != "" {
			fmt.Fprintln(c.out, "No results found.")
		} else {
			fmt.Fprintln(c.out, "No listings are available at the moment.")
		}
		return nil
	}

	for _, listing := range listings {
		c.renderCard(listing)
	}
	return nil
}

// Show renders a single listing with its bid history
func (c *Commands) Show(id string) error {
	listing, err := c.api.Listing(id)
	if err != nil {
		return fmt.Errorf("sorry, we couldn't load this listing right now: %w", err)
	}

	title := listing.Title
	if title == "" {
		title = "Untitled listing"
	}
	seller := "Unknown seller"
	if listing.Seller != nil && listing.Seller.Name != "" {
		seller = listing.Seller.Name
	}
	description := listing.Description
	if description == "" {
		description = "No description has been added for this listing yet."
	}

	fmt.Fprintf(c.out, "%s\n", title)
	fmt.Fprintf(c.out, "Seller:      %s\n", seller)
	fmt.Fprintf(c.out, "Description: %s\n", description)
	fmt.Fprintf(c.out, "Current bid: %s\n", c.currentBidText(listing))
	fmt.Fprintf(c.out, "Ends in:     %s\n", helpers.FormatTimeRemaining(listing.EndsAt, c.now()))

	bids := helpers.SortBidsNewestFirst(listing.Bids)
	if len(bids) == 0 {
		fmt.Fprintln(c.out, "No bids yet. Be the first!")
		return nil
	}

	fmt.Fprintln(c.out, "Bid history:")
	for _, bid := range bids {
		bidder := "Unknown bidder"
		if bid.Bidder != nil && bid.Bidder.Name != "" {
			bidder = bid.Bidder.Name
		}
		fmt.Fprintf(c.out, "  %-20s %s NOK\n", bidder, formatAmount(bid.Amount))
	}
	return nil
}

// Bid pre-checks a bid the way the listing page did, then submits it.
// The real rules live on the server; this keeps obviously losing bids
// from ever leaving the machine.
func (c *Commands) Bid(id string, amount float64) error {
	user, token, err := c.requireSession()
	if err != nil {
		return err
	}

	listing, err := c.api.Listing(id)
	if err != nil {
		return fmt.Errorf("we couldn't find this listing: %w", err)
	}

	if listing.Seller != nil && listing.Seller.Name == user.Name {
		return fmt.Errorf("%w: you can't bid on your own listing", auctionerrors.ErrOwnBid)
	}

	if highest, ok := helpers.HighestBid(listing.Bids); ok && amount <= highest.Amount {
		return fmt.Errorf("%w: your bid must be higher than the current bid (%s NOK)",
			auctionerrors.ErrBidTooLow, formatAmount(highest.Amount))
	}

	if _, err := c.api.PlaceBid(id, amount, token); err != nil {
		return fmt.Errorf("we couldn't place your bid right now: %w", err)
	}

	fmt.Fprintf(c.out, "Bid of %s NOK placed on %q.\n", formatAmount(amount), listing.Title)
	utils.Info("bid placed", map[string]any{"listing_id": id, "amount": amount})
	return nil
}

// Create publishes a new listing
func (c *Commands) Create(input auction.ListingInput) error {
	_, token, err := c.requireSession()
	if err != nil {
		return err
	}

	listing, err := c.api.CreateListing(input, token)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Listing %q created with ID %s.\n", listing.Title, listing.ID)
	return nil
}

// Update edits an existing listing
func (c *Commands) Update(id string, input auction.ListingInput) error {
	_, token, err := c.requireSession()
	if err != nil {
		return err
	}

	listing, err := c.api.UpdateListing(id, input, token)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Listing %q updated.\n", listing.Title)
	return nil
}

// Delete removes one of the user's listings
func (c *Commands) Delete(id string) error {
	_, token, err := c.requireSession()
	if err != nil {
		return err
	}

	if err := c.api.DeleteListing(id, token); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Listing %s deleted.\n", id)
	return nil
}

// Profile renders the signed-in user's profile
func (c *Commands) Profile() error {
	user, token, err := c.requireSession()
	if err != nil {
		return err
	}

	profile, err := c.api.Profile(user.Name, auction.ProfileQuery{Listings: true, Bids: true, Token: token})
	if err != nil {
		return fmt.Errorf("sorry, there was a problem loading your profile: %w", err)
	}

	fmt.Fprintf(c.out, "%s <%s>\n", profile.Name, profile.Email)
	bio := profile.Bio
	if bio == "" {
		bio = "You haven't added a bio yet."
	}
	fmt.Fprintf(c.out, "Bio:      %s\n", bio)
	fmt.Fprintf(c.out, "Credits:  %d NOK\n", profile.Credits)
	fmt.Fprintf(c.out, "Listings: %d\n", profile.Count.Listings)
	fmt.Fprintf(c.out, "Bids:     %d\n", profile.Count.Bids)
	return nil
}

// EditProfile updates the user's bio and avatar
func (c *Commands) EditProfile(bio, avatarURL, avatarAlt string) error {
	user, token, err := c.requireSession()
	if err != nil {
		return err
	}

	update := auction.ProfileUpdate{Bio: bio}
	if avatarURL != "" {
		update.Avatar = &models.Media{URL: avatarURL, Alt: avatarAlt}
	}

	profile, err := c.api.UpdateProfile(user.Name, update, token)
	if err != nil {
		return fmt.Errorf("we couldn't save your profile changes: %w", err)
	}

	fmt.Fprintf(c.out, "Profile for %s updated.\n", profile.Name)
	return nil
}

// MyListings renders the signed-in user's own listings
func (c *Commands) MyListings() error {
	user, token, err := c.requireSession()
	if err != nil {
		return err
	}

	listings, err := c.api.ProfileListings(user.Name, true, token)
	if err != nil {
		return fmt.Errorf("we couldn't load your auctions right now: %w", err)
	}

	if len(listings) == 0 {
		fmt.Fprintln(c.out, "You have no active auctions.")
		return nil
	}
	for _, listing := range listings {
		c.renderCard(listing)
	}
	return nil
}

// MyBids renders the signed-in user's bids with their listings
func (c *Commands) MyBids() error {
	user, token, err := c.requireSession()
	if err != nil {
		return err
	}

	bids, err := c.api.ProfileBids(user.Name, token)
	if err != nil {
		return fmt.Errorf("we couldn't load your bids right now: %w", err)
	}

	if len(bids) == 0 {
		fmt.Fprintln(c.out, "You haven't placed any bids yet.")
		return nil
	}
	for _, bid := range bids {
		title := "Unknown listing"
		ends := "Unknown"
		if bid.Listing != nil {
			if bid.Listing.Title != "" {
				title = bid.Listing.Title
			}
			ends = helpers.FormatTimeRemaining(bid.Listing.EndsAt, c.now())
		}
		fmt.Fprintf(c.out, "%s NOK on %q (ends in: %s)\n", formatAmount(bid.Amount), title, ends)
	}
	return nil
}

// requireSession is the CLI analogue of the redirect-on-load guard on
// protected pages.
func (c *Commands) requireSession() (*models.User, string, error) {
	user, err := c.sessions.CurrentUser()
	token := c.sessions.AuthToken()
	if err != nil || user.Name == "" || token == "" {
		return nil, "", fmt.Errorf("%w: you must be signed in, run 'lotmarket login' first", auctionerrors.ErrNotAuthenticated)
	}
	return user, token, nil
}

func (c *Commands) renderCard(listing models.Listing) {
	title := listing.Title
	if title == "" {
		title = "Untitled listing"
	}
	description := listing.Description
	if description == "" {
		description = "No description has been added for this listing yet."
	}

	fmt.Fprintf(c.out, "%s  [%s]\n", title, listing.ID)
	fmt.Fprintf(c.out, "  %s\n", helpers.Snippet(description))
	fmt.Fprintf(c.out, "  Bids: %d | Ends in: %s\n", listing.Count.Bids, helpers.FormatTimeRemaining(listing.EndsAt, c.now()))
}

func (c *Commands) currentBidText(listing models.Listing) string {
	if highest, ok := helpers.HighestBid(listing.Bids); ok {
		return formatAmount(highest.Amount) + " NOK"
	}
	return "No bids yet"
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
