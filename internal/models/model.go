package models

import "time"

// Media is an image reference with alternative text
type Media struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// User represents an authenticated marketplace account.
// AccessToken is only populated on login responses.
type User struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Bio         string `json:"bio,omitempty"`
	Avatar      *Media `json:"avatar,omitempty"`
	Banner      *Media `json:"banner,omitempty"`
	Credits     int    `json:"credits,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

// Seller is the reduced profile embedded in listing payloads
type Seller struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Bio    string `json:"bio,omitempty"`
	Avatar *Media `json:"avatar,omitempty"`
}

// Bidder is the reduced profile embedded in bid payloads
type Bidder struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar *Media `json:"avatar,omitempty"`
}

// Bid represents a single bid on a listing. Listing is only populated
// when bids are fetched through a profile with listing details included.
type Bid struct {
	ID      string    `json:"id"`
	Amount  float64   `json:"amount"`
	Bidder  *Bidder   `json:"bidder,omitempty"`
	Created time.Time `json:"created"`
	Listing *Listing  `json:"listing,omitempty"`
}

// ListingCount carries the aggregate counters attached to a listing
type ListingCount struct {
	Bids int `json:"bids"`
}

// Listing represents an auction listing
type Listing struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Media       []Media      `json:"media,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Created     time.Time    `json:"created"`
	Updated     time.Time    `json:"updated,omitempty"`
	EndsAt      time.Time    `json:"endsAt"`
	Seller      *Seller      `json:"seller,omitempty"`
	Bids        []Bid        `json:"bids,omitempty"`
	Count       ListingCount `json:"_count"`
}

// ProfileCount carries the aggregate counters attached to a profile
type ProfileCount struct {
	Listings int `json:"listings"`
	Bids     int `json:"bids"`
}

// Profile represents a marketplace user profile
type Profile struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Bio      string       `json:"bio,omitempty"`
	Avatar   *Media       `json:"avatar,omitempty"`
	Banner   *Media       `json:"banner,omitempty"`
	Credits  int          `json:"credits"`
	Listings []Listing    `json:"listings,omitempty"`
	Count    ProfileCount `json:"_count"`
}
