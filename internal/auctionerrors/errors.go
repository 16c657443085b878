package auctionerrors

import "errors"

// Session-store errors
var (
	ErrNoSession      = errors.New("no stored session")
	ErrCorruptSession = errors.New("stored session is not valid JSON")
)

// Client-side validation errors
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrDecode           = errors.New("unexpected response shape")
)

// Bidding errors, shared by the client-side pre-check and the dev server
var (
	ErrBidTooLow = errors.New("bid amount too low")
	ErrOwnBid    = errors.New("cannot bid on own listing")
)

// Dev-server repository errors
var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrNameTaken           = errors.New("profile name already registered")
	ErrBadCredentials      = errors.New("invalid email or password")
	ErrListingEnded        = errors.New("listing has ended")
	ErrInsufficientCredits = errors.New("not enough credits")
	ErrNotListingOwner     = errors.New("listing belongs to another profile")
	ErrUnknownAPIKey       = errors.New("unknown API key")
)
