// Package repository backs the local dev API server with an in-memory
// marketplace: accounts, profiles, listings, bids and issued API keys.
// It is the authoritative side of the bidding rules the client only
// pre-checks.
package repository

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lotmarket/internal/auctionerrors"
	"lotmarket/internal/models"
	"lotmarket/utils"
)

// StartingCredits is granted to every new profile
const StartingCredits = 1000

// MarketDB defines the storage interface the dev API handlers use
type MarketDB interface {
	CreateUser(name, email, password string) (models.User, error)
	Authenticate(email, password string) (models.User, error)
	IssueAPIKey() string
	KnownAPIKey(key string) bool

	CreateListing(seller string, listing models.Listing) (models.Listing, error)
	UpdateListing(id, seller string, listing models.Listing) (models.Listing, error)
	DeleteListing(id, seller string) error
	GetListing(id string) (models.Listing, error)
	Listings(activeOnly bool, sortField, sortOrder string) []models.Listing
	PlaceBid(listingID, bidder string, amount float64) (models.Listing, error)

	GetProfile(name string) (models.Profile, error)
	UpdateProfile(name, bio string, avatar *models.Media) (models.Profile, error)
	ListingsBySeller(name string, activeOnly bool) ([]models.Listing, error)
	BidsByBidder(name string) ([]models.Bid, error)
}

type account struct {
	user         models.User
	passwordHash []byte
}

// MemoryRepo is a concurrency-safe in-memory implementation of MarketDB
type MemoryRepo struct {
	mu       sync.RWMutex
	accounts map[string]*account        // key: profile name
	byEmail  map[string]string          // key: email -> profile name
	listings map[string]*models.Listing // key: listing ID
	apiKeys  map[string]bool
	now      func() time.Time
}

// NewMemoryRepo creates an empty in-memory marketplace
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		accounts: make(map[string]*account),
		byEmail:  make(map[string]string),
		listings: make(map[string]*models.Listing),
		apiKeys:  make(map[string]bool),
		now:      time.Now,
	}
}

// CreateUser registers a new account with a freshly granted credit balance
func (r *MemoryRepo) CreateUser(name, email, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("repository: hash password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(name)
	if _, exists := r.accounts[key]; exists {
		return models.User{}, fmt.Errorf("repository: create user %s: %w", name, auctionerrors.ErrNameTaken)
	}
	if _, exists := r.byEmail[strings.ToLower(email)]; exists {
		return models.User{}, fmt.Errorf("repository: create user %s: %w", name, auctionerrors.ErrNameTaken)
	}

	user := models.User{Name: name, Email: email, Credits: StartingCredits}
	r.accounts[key] = &account{user: user, passwordHash: hash}
	r.byEmail[strings.ToLower(email)] = key
	return user, nil
}

// Authenticate verifies credentials and returns the account's user payload
func (r *MemoryRepo) Authenticate(email, password string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return models.User{}, auctionerrors.ErrBadCredentials
	}
	acct := r.accounts[key]
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return models.User{}, auctionerrors.ErrBadCredentials
	}
	return acct.user, nil
}

// IssueAPIKey mints and remembers a new provisioned key
func (r *MemoryRepo) IssueAPIKey() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := utils.GenerateID()
	r.apiKeys[key] = true
	return key
}

// KnownAPIKey reports whether the key was issued by this server
func (r *MemoryRepo) KnownAPIKey(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.apiKeys[key]
}

// CreateListing stores a new listing for the seller
func (r *MemoryRepo) CreateListing(seller string, listing models.Listing) (models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[strings.ToLower(seller)]
	if !ok {
		return models.Listing{}, fmt.Errorf("repository: create listing: %w", auctionerrors.ErrProfileNotFound)
	}

	listing.ID = utils.GenerateID()
	listing.Created = r.now().UTC()
	listing.Updated = listing.Created
	listing.Seller = sellerOf(acct.user)
	listing.Bids = nil
	listing.Count = models.ListingCount{}

	r.listings[listing.ID] = &listing
	return listing, nil
}

// UpdateListing replaces the writable fields of a listing owned by seller
func (r *MemoryRepo) UpdateListing(id, seller string, update models.Listing) (models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[id]
	if !ok {
		return models.Listing{}, fmt.Errorf("repository: update listing %s: %w", id, auctionerrors.ErrListingNotFound)
	}
	if listing.Seller == nil || !strings.EqualFold(listing.Seller.Name, seller) {
		return models.Listing{}, fmt.Errorf("repository: update listing %s: %w", id, auctionerrors.ErrNotListingOwner)
	}

	if update.Title != "" {
		listing.Title = update.Title
	}
	if update.Description != "" {
		listing.Description = update.Description
	}
	if !update.EndsAt.IsZero() {
		listing.EndsAt = update.EndsAt
	}
	if update.Media != nil {
		listing.Media = update.Media
	}
	if update.Tags != nil {
		listing.Tags = update.Tags
	}
	listing.Updated = r.now().UTC()

	return *listing, nil
}

// DeleteListing removes a listing owned by seller
func (r *MemoryRepo) DeleteListing(id, seller string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[id]
	if !ok {
		return fmt.Errorf("repository: delete listing %s: %w", id, auctionerrors.ErrListingNotFound)
	}
	if listing.Seller == nil || !strings.EqualFold(listing.Seller.Name, seller) {
		return fmt.Errorf("repository: delete listing %s: %w", id, auctionerrors.ErrNotListingOwner)
	}

	delete(r.listings, id)
	return nil
}

// GetListing returns a listing with seller and bids populated
func (r *MemoryRepo) GetListing(id string) (models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[id]
	if !ok {
		return models.Listing{}, fmt.Errorf("repository: get listing %s: %w", id, auctionerrors.ErrListingNotFound)
	}
	return *listing, nil
}

// Listings returns listings, optionally only active ones, sorted by the
// given field (created, endsAt or title) and order (asc or desc).
func (r *MemoryRepo) Listings(activeOnly bool, sortField, sortOrder string) []models.Listing {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	result := make([]models.Listing, 0, len(r.listings))
	for _, listing := range r.listings {
		if activeOnly && !listing.EndsAt.After(now) {
			continue
		}
		result = append(result, *listing)
	}

	asc := sortOrder == "asc"
	less := func(i, j int) bool { return result[i].Created.Before(result[j].Created) }
	switch sortField {
	case "endsAt":
		less = func(i, j int) bool { return result[i].EndsAt.Before(result[j].EndsAt) }
	case "title":
		less = func(i, j int) bool { return result[i].Title < result[j].Title }
	}
	sort.SliceStable(result, func(i, j int) bool {
		if asc {
			return less(i, j)
		}
		return less(j, i)
	})
	return result
}

// PlaceBid records a bid, enforcing the marketplace rules: the listing
// must be running, bidders cannot bid on their own listings, the amount
// must beat the current highest bid and fit the bidder's credits. The
// previously highest bidder is refunded.
func (r *MemoryRepo) PlaceBid(listingID, bidder string, amount float64) (models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return models.Listing{}, fmt.Errorf("repository: bid on %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if !listing.EndsAt.After(r.now()) {
		return models.Listing{}, fmt.Errorf("repository: bid on %s: %w", listingID, auctionerrors.ErrListingEnded)
	}
	if listing.Seller != nil && strings.EqualFold(listing.Seller.Name, bidder) {
		return models.Listing{}, fmt.Errorf("repository: bid on %s: %w", listingID, auctionerrors.ErrOwnBid)
	}

	acct, ok := r.accounts[strings.ToLower(bidder)]
	if !ok {
		return models.Listing{}, fmt.Errorf("repository: bid on %s: %w", listingID, auctionerrors.ErrProfileNotFound)
	}

	var highest *models.Bid
	for i := range listing.Bids {
		if highest == nil || listing.Bids[i].Amount > highest.Amount {
			highest = &listing.Bids[i]
		}
	}
	if highest != nil && amount <= highest.Amount {
		return models.Listing{}, fmt.Errorf("repository: bid on %s: current highest bid is %.2f: %w",
			listingID, highest.Amount, auctionerrors.ErrBidTooLow)
	}
	if float64(acct.user.Credits) < amount {
		return models.Listing{}, fmt.Errorf("repository: bid on %s: %w", listingID, auctionerrors.ErrInsufficientCredits)
	}

	// the new bid locks the bidder's credits; the outbid profile gets
	// theirs back
	if highest != nil && highest.Bidder != nil {
		if prev, ok := r.accounts[strings.ToLower(highest.Bidder.Name)]; ok {
			prev.user.Credits += int(highest.Amount)
		}
	}
	acct.user.Credits -= int(amount)

	bid := models.Bid{
		ID:      utils.GenerateID(),
		Amount:  amount,
		Created: r.now().UTC(),
		Bidder:  bidderOf(acct.user),
	}
	listing.Bids = append(listing.Bids, bid)
	listing.Count.Bids = len(listing.Bids)

	return *listing, nil
}

// GetProfile returns a profile with credit balance and counters
func (r *MemoryRepo) GetProfile(name string) (models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.accounts[strings.ToLower(name)]
	if !ok {
		return models.Profile{}, fmt.Errorf("repository: profile %s: %w", name, auctionerrors.ErrProfileNotFound)
	}
	return r.profileOf(acct.user), nil
}

// UpdateProfile updates the writable profile fields
func (r *MemoryRepo) UpdateProfile(name, bio string, avatar *models.Media) (models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[strings.ToLower(name)]
	if !ok {
		return models.Profile{}, fmt.Errorf("repository: update profile %s: %w", name, auctionerrors.ErrProfileNotFound)
	}

	if bio != "" {
		acct.user.Bio = bio
	}
	if avatar != nil {
		acct.user.Avatar = avatar
	}

	// embedded seller copies go stale on profile edits; refresh them
	for _, listing := range r.listings {
		if listing.Seller != nil && strings.EqualFold(listing.Seller.Name, name) {
			listing.Seller = sellerOf(acct.user)
		}
	}

	return r.profileOf(acct.user), nil
}

// ListingsBySeller returns the listings a profile created
func (r *MemoryRepo) ListingsBySeller(name string, activeOnly bool) ([]models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.accounts[strings.ToLower(name)]; !ok {
		return nil, fmt.Errorf("repository: listings for %s: %w", name, auctionerrors.ErrProfileNotFound)
	}

	now := r.now()
	result := make([]models.Listing, 0)
	for _, listing := range r.listings {
		if listing.Seller == nil || !strings.EqualFold(listing.Seller.Name, name) {
			continue
		}
		if activeOnly && !listing.EndsAt.After(now) {
			continue
		}
		result = append(result, *listing)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Created.After(result[j].Created) })
	return result, nil
}

// BidsByBidder returns the bids a profile placed, each with its listing
func (r *MemoryRepo) BidsByBidder(name string) ([]models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.accounts[strings.ToLower(name)]; !ok {
		return nil, fmt.Errorf("repository: bids for %s: %w", name, auctionerrors.ErrProfileNotFound)
	}

	result := make([]models.Bid, 0)
	for _, listing := range r.listings {
		for _, bid := range listing.Bids {
			if bid.Bidder == nil || !strings.EqualFold(bid.Bidder.Name, name) {
				continue
			}
			withListing := bid
			attached := *listing
			attached.Bids = nil // avoid recursive payloads
			withListing.Listing = &attached
			result = append(result, withListing)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Created.After(result[j].Created) })
	return result, nil
}

func (r *MemoryRepo) profileOf(user models.User) models.Profile {
	profile := models.Profile{
		Name:    user.Name,
		Email:   user.Email,
		Bio:     user.Bio,
		Avatar:  user.Avatar,
		Banner:  user.Banner,
		Credits: user.Credits,
	}
	for _, listing := range r.listings {
		if listing.Seller != nil && strings.EqualFold(listing.Seller.Name, user.Name) {
			profile.Count.Listings++
		}
		for _, bid := range listing.Bids {
			if bid.Bidder != nil && strings.EqualFold(bid.Bidder.Name, user.Name) {
				profile.Count.Bids++
			}
		}
	}
	return profile
}

func sellerOf(user models.User) *models.Seller {
	return &models.Seller{Name: user.Name, Email: user.Email, Bio: user.Bio, Avatar: user.Avatar}
}

func bidderOf(user models.User) *models.Bidder {
	return &models.Bidder{Name: user.Name, Email: user.Email, Avatar: user.Avatar}
}
