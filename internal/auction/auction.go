// Package auction provides the typed per-resource request functions.
// Each function validates its inputs locally and fails fast before any
// network call, then shapes the path and query and delegates to the
// gateway unchanged. Bidding business rules are not enforced here; the
// server is authoritative.
package auction

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lotmarket/internal/auctionerrors"
	"lotmarket/internal/gateway"
	"lotmarket/internal/models"
)

// EmailDomain is the only address domain accepted for accounts
const EmailDomain = "@stud.noroff.no"

// MinPasswordLength is the registration password floor
const MinPasswordLength = 8

// Requester is the gateway capability the service depends on
type Requester interface {
	Request(path string, opts gateway.Options) (json.RawMessage, error)
}

// Service exposes the marketplace resources over a gateway
type Service struct {
	gw Requester
}

// NewService creates a Service backed by the given gateway
func NewService(gw Requester) *Service {
	return &Service{gw: gw}
}

// ListingsQuery shapes the listing collection request
type ListingsQuery struct {
	Active    bool
	Sort      string
	SortOrder string
}

// DefaultListingsQuery is active listings, newest first
func DefaultListingsQuery() ListingsQuery {
	return ListingsQuery{Active: true, Sort: "created", SortOrder: "desc"}
}

// ListingInput carries the writable listing fields
type ListingInput struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	EndsAt      time.Time      `json:"endsAt,omitempty"`
	Media       []models.Media `json:"media,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
}

// ProfileQuery shapes a profile fetch
type ProfileQuery struct {
	Listings bool
	Bids     bool
	Token    string
}

// ProfileUpdate carries the writable profile fields
type ProfileUpdate struct {
	Bio    string        `json:"bio,omitempty"`
	Avatar *models.Media `json:"avatar,omitempty"`
}

// Register creates a new account. Requires a name, a student email and a
// password of at least eight characters; fails locally otherwise.
func (s *Service) Register(name, email, password string) (models.User, error) {
	if name == "" || email == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: name, email and password are required", auctionerrors.ErrInvalidInput)
	}
	if !strings.HasSuffix(email, EmailDomain) {
		return models.User{}, fmt.Errorf("%w: email must end with %s", auctionerrors.ErrInvalidInput, EmailDomain)
	}
	if len(password) < MinPasswordLength {
		return models.User{}, fmt.Errorf("%w: password must be at least %d characters", auctionerrors.ErrInvalidInput, MinPasswordLength)
	}

	raw, err := s.gw.Request("/auth/register", gateway.Options{
		Method: http.MethodPost,
		Body:   map[string]string{"name": name, "email": email, "password": password},
	})
	if err != nil {
		return models.User{}, err
	}
	return decode[models.User](raw, "register")
}

// Login authenticates an existing account and returns the user payload
// carrying the access token.
func (s *Service) Login(email, password string) (models.User, error) {
	if email == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: email and password are required", auctionerrors.ErrInvalidInput)
	}
	if !strings.HasSuffix(email, EmailDomain) {
		return models.User{}, fmt.Errorf("%w: email must end with %s", auctionerrors.ErrInvalidInput, EmailDomain)
	}

	raw, err := s.gw.Request("/auth/login", gateway.Options{
		Method: http.MethodPost,
		Body:   map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return models.User{}, err
	}
	return decode[models.User](raw, "login")
}

// Listings fetches the listing collection
func (s *Service) Listings(query ListingsQuery) ([]models.Listing, error) {
	params := url.Values{}
	if query.Active {
		params.Set("_active", "true")
	}
	if query.Sort != "" {
		params.Set("sort", query.Sort)
	}
	if query.SortOrder != "" {
		params.Set("sortOrder", query.SortOrder)
	}

	raw, err := s.gw.Request("/auction/listings"+encodeQuery(params), gateway.Options{})
	if err != nil {
		return nil, err
	}
	return decode[[]models.Listing](raw, "listings")
}

// Listing fetches a single listing with its seller and bids included
func (s *Service) Listing(id string) (models.Listing, error) {
	if id == "" {
		return models.Listing{}, fmt.Errorf("%w: listing ID is required", auctionerrors.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("_seller", "true")
	params.Set("_bids", "true")

	raw, err := s.gw.Request("/auction/listings/"+url.PathEscape(id)+encodeQuery(params), gateway.Options{})
	if err != nil {
		return models.Listing{}, err
	}
	return decode[models.Listing](raw, "listing")
}

// CreateListing creates a new listing. Title and a future end date are
// required before any request is issued.
func (s *Service) CreateListing(input ListingInput, token string) (models.Listing, error) {
	if input.Title == "" {
		return models.Listing{}, fmt.Errorf("%w: listing title is required", auctionerrors.ErrInvalidInput)
	}
	if input.EndsAt.IsZero() {
		return models.Listing{}, fmt.Errorf("%w: auction end date is required", auctionerrors.ErrInvalidInput)
	}
	if !input.EndsAt.After(time.Now()) {
		return models.Listing{}, fmt.Errorf("%w: auction end date must be in the future", auctionerrors.ErrInvalidInput)
	}
	if token == "" {
		return models.Listing{}, fmt.Errorf("%w: auth token is required to create a listing", auctionerrors.ErrNotAuthenticated)
	}

	raw, err := s.gw.Request("/auction/listings", gateway.Options{
		Method: http.MethodPost,
		Body:   input,
		Token:  token,
	})
	if err != nil {
		return models.Listing{}, err
	}
	return decode[models.Listing](raw, "create listing")
}

// UpdateListing updates an existing listing
func (s *Service) UpdateListing(id string, input ListingInput, token string) (models.Listing, error) {
	if id == "" {
		return models.Listing{}, fmt.Errorf("%w: listing ID is required", auctionerrors.ErrInvalidInput)
	}
	if token == "" {
		return models.Listing{}, fmt.Errorf("%w: auth token is required to update a listing", auctionerrors.ErrNotAuthenticated)
	}

	raw, err := s.gw.Request("/auction/listings/"+url.PathEscape(id), gateway.Options{
		Method: http.MethodPut,
		Body:   input,
		Token:  token,
	})
	if err != nil {
		return models.Listing{}, err
	}
	return decode[models.Listing](raw, "update listing")
}

// DeleteListing removes a listing owned by the authenticated profile
func (s *Service) DeleteListing(id, token string) error {
	if id == "" {
		return fmt.Errorf("%w: listing ID is required", auctionerrors.ErrInvalidInput)
	}
	if token == "" {
		return fmt.Errorf("%w: auth token is required to delete a listing", auctionerrors.ErrNotAuthenticated)
	}

	_, err := s.gw.Request("/auction/listings/"+url.PathEscape(id), gateway.Options{
		Method: http.MethodDelete,
		Token:  token,
	})
	return err
}

// PlaceBid submits a bid on a listing. The amount must be positive and
// finite; the server enforces the actual bidding rules.
func (s *Service) PlaceBid(id string, amount float64, token string) (models.Listing, error) {
	if id == "" {
		return models.Listing{}, fmt.Errorf("%w: listing ID is required", auctionerrors.ErrInvalidInput)
	}
	if amount <= 0 || math.IsInf(amount, 0) || math.IsNaN(amount) {
		return models.Listing{}, fmt.Errorf("%w: a valid bid amount is required", auctionerrors.ErrInvalidInput)
	}
	if token == "" {
		return models.Listing{}, fmt.Errorf("%w: auth token is required to place a bid", auctionerrors.ErrNotAuthenticated)
	}

	raw, err := s.gw.Request("/auction/listings/"+url.PathEscape(id)+"/bids", gateway.Options{
		Method: http.MethodPost,
		Body:   map[string]float64{"amount": amount},
		Token:  token,
	})
	if err != nil {
		return models.Listing{}, err
	}
	return decode[models.Listing](raw, "place bid")
}

// Profile fetches a profile by name, including listings and bids when asked
func (s *Service) Profile(name string, query ProfileQuery) (models.Profile, error) {
	if name == "" {
		return models.Profile{}, fmt.Errorf("%w: profile name is required", auctionerrors.ErrInvalidInput)
	}

	params := url.Values{}
	if query.Listings {
		params.Set("_listings", "true")
	}
	if query.Bids {
		params.Set("_bids", "true")
	}

	raw, err := s.gw.Request("/auction/profiles/"+url.PathEscape(name)+encodeQuery(params), gateway.Options{
		Token: query.Token,
	})
	if err != nil {
		return models.Profile{}, err
	}
	return decode[models.Profile](raw, "profile")
}

// UpdateProfile updates the writable profile fields (bio, avatar)
func (s *Service) UpdateProfile(name string, update ProfileUpdate, token string) (models.Profile, error) {
	if name == "" {
		return models.Profile{}, fmt.Errorf("%w: profile name is required", auctionerrors.ErrInvalidInput)
	}
	if token == "" {
		return models.Profile{}, fmt.Errorf("%w: auth token is required to update a profile", auctionerrors.ErrNotAuthenticated)
	}

	raw, err := s.gw.Request("/auction/profiles/"+url.PathEscape(name), gateway.Options{
		Method: http.MethodPut,
		Body:   update,
		Token:  token,
	})
	if err != nil {
		return models.Profile{}, err
	}
	return decode[models.Profile](raw, "update profile")
}

// ProfileListings fetches listings created by a profile, bids included so
// callers can show bid counts.
func (s *Service) ProfileListings(name string, active bool, token string) ([]models.Listing, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: profile name is required", auctionerrors.ErrInvalidInput)
	}

	params := url.Values{}
	if active {
		params.Set("_active", "true")
	}
	params.Set("_bids", "true")

	raw, err := s.gw.Request("/auction/profiles/"+url.PathEscape(name)+"/listings"+encodeQuery(params), gateway.Options{
		Token: token,
	})
	if err != nil {
		return nil, err
	}
	return decode[[]models.Listing](raw, "profile listings")
}

// ProfileBids fetches bids placed by a profile, listing details included
func (s *Service) ProfileBids(name, token string) ([]models.Bid, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: profile name is required", auctionerrors.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("_listings", "true")

	raw, err := s.gw.Request("/auction/profiles/"+url.PathEscape(name)+"/bids"+encodeQuery(params), gateway.Options{
		Token: token,
	})
	if err != nil {
		return nil, err
	}
	return decode[[]models.Bid](raw, "profile bids")
}

func encodeQuery(params url.Values) string {
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

// decode unmarshals a gateway payload into its typed result, tagging shape
// mismatches with the decode error kind.
func decode[T any](raw json.RawMessage, operation string) (T, error) {
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, fmt.Errorf("%w: %s: %v", auctionerrors.ErrDecode, operation, err)
	}
	return value, nil
}
