package auction

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"lotmarket/internal/auctionerrors"
	"lotmarket/internal/gateway"
)

func TestService_LoginValidation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		valid    bool
	}{
		{name: "valid_student_email", email: "alice@stud.noroff.no", password: "pw", valid: true},
		{name: "missing_email", email: "", password: "pw", valid: false},
		{name: "missing_password", email: "alice@stud.noroff.no", password: "", valid: false},
		{name: "wrong_domain", email: "alice@example.com", password: "pw", valid: false},
		{name: "both_missing", email: "", password: "", valid: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockGW := NewMockRequester(ctrl)
			service := NewService(mockGW)

			if tc.valid {
				mockGW.EXPECT().
					Request("/auth/login", gomock.Any()).
					Return(json.RawMessage(`{"name":"alice","email":"alice@stud.noroff.no","accessToken":"tok"}`), nil)
			}
			// invalid input must fail before any request is issued, hence
			// no expectations on the mock

			user, err := service.Login(tc.email, tc.password)
			if tc.valid {
				require.NoError(t, err)
				require.Equal(t, "tok", user.AccessToken)
			} else {
				require.True(t, errors.Is(err, auctionerrors.ErrInvalidInput), "got %v", err)
			}
		})
	}
}

func TestService_RegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		valid    bool
	}{
		{name: "valid", username: "alice", email: "alice@stud.noroff.no", password: "longenough", valid: true},
		{name: "password_exactly_8", username: "alice", email: "alice@stud.noroff.no", password: "12345678", valid: true},
		{name: "short_password", username: "alice", email: "alice@stud.noroff.no", password: "1234567", valid: false},
		{name: "missing_name", username: "", email: "alice@stud.noroff.no", password: "longenough", valid: false},
		{name: "wrong_domain", username: "alice", email: "alice@gmail.com", password: "longenough", valid: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockGW := NewMockRequester(ctrl)
			service := NewService(mockGW)

			if tc.valid {
				mockGW.EXPECT().
					Request("/auth/register", gomock.Any()).
					Return(json.RawMessage(`{"name":"alice","email":"alice@stud.noroff.no"}`), nil)
			}

			_, err := service.Register(tc.username, tc.email, tc.password)
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.True(t, errors.Is(err, auctionerrors.ErrInvalidInput), "got %v", err)
			}
		})
	}
}

func TestService_ListingsQueryShaping(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGW := NewMockRequester(ctrl)
	service := NewService(mockGW)

	mockGW.EXPECT().
		Request("/auction/listings?_active=true&sort=created&sortOrder=desc", gateway.Options{}).
		Return(json.RawMessage(`[{"id":"l1","title":"Bike"}]`), nil)

	listings, err := service.Listings(DefaultListingsQuery())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	require.Equal(t, "Bike", listings[0].Title)
}

func TestService_ListingIncludesSellerAndBids(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGW := NewMockRequester(ctrl)
	service := NewService(mockGW)

	mockGW.EXPECT().
		Request("/auction/listings/l%201?_bids=true&_seller=true", gateway.Options{}).
		Return(json.RawMessage(`{"id":"l 1","title":"Bike"}`), nil)

	listing, err := service.Listing("l 1")
	require.NoError(t, err)
	require.Equal(t, "l 1", listing.ID)
}

func TestService_ListingRequiresID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewService(NewMockRequester(ctrl))

	_, err := service.Listing("")
	require.True(t, errors.Is(err, auctionerrors.ErrInvalidInput))
}

func TestService_CreateListingValidation(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name        string
		input       ListingInput
		token       string
		expectError error
	}{
		{
			name:  "valid",
			input: ListingInput{Title: "Bike", EndsAt: future},
			token: "tok",
		},
		{
			name:        "missing_title",
			input:       ListingInput{EndsAt: future},
			token:       "tok",
			expectError: auctionerrors.ErrInvalidInput,
		},
		{
			name:        "missing_end_date",
			input:       ListingInput{Title: "Bike"},
			token:       "tok",
			expectError: auctionerrors.ErrInvalidInput,
		},
		{
			name:        "end_date_in_past",
			input:       ListingInput{Title: "Bike", EndsAt: time.Now().Add(-time.Hour)},
			token:       "tok",
			expectError: auctionerrors.ErrInvalidInput,
		},
		{
			name:        "missing_token",
			input:       ListingInput{Title: "Bike", EndsAt: future},
			token:       "",
			expectError: auctionerrors.ErrNotAuthenticated,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockGW := NewMockRequester(ctrl)
			service := NewService(mockGW)

			if tc.expectError == nil {
				mockGW.EXPECT().
					Request("/auction/listings", gateway.Options{Method: http.MethodPost, Body: tc.input, Token: tc.token}).
					Return(json.RawMessage(`{"id":"l1","title":"Bike"}`), nil)
			}

			_, err := service.CreateListing(tc.input, tc.token)
			if tc.expectError == nil {
				require.NoError(t, err)
			} else {
				require.True(t, errors.Is(err, tc.expectError), "got %v", err)
			}
		})
	}
}

func TestService_PlaceBidValidation(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		amount      float64
		token       string
		expectError error
	}{
		{name: "valid", id: "l1", amount: 120, token: "tok"},
		{name: "zero_amount", id: "l1", amount: 0, token: "tok", expectError: auctionerrors.ErrInvalidInput},
		{name: "negative_amount", id: "l1", amount: -5, token: "tok", expectError: auctionerrors.ErrInvalidInput},
		{name: "nan_amount", id: "l1", amount: math.NaN(), token: "tok", expectError: auctionerrors.ErrInvalidInput},
		{name: "infinite_amount", id: "l1", amount: math.Inf(1), token: "tok", expectError: auctionerrors.ErrInvalidInput},
		{name: "missing_id", id: "", amount: 120, token: "tok", expectError: auctionerrors.ErrInvalidInput},
		{name: "missing_token", id: "l1", amount: 120, token: "", expectError: auctionerrors.ErrNotAuthenticated},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockGW := NewMockRequester(ctrl)
			service := NewService(mockGW)

			if tc.expectError == nil {
				mockGW.EXPECT().
					Request("/auction/listings/l1/bids", gateway.Options{
						Method: http.MethodPost,
						Body:   map[string]float64{"amount": tc.amount},
						Token:  tc.token,
					}).
					Return(json.RawMessage(`{"id":"l1"}`), nil)
			}

			_, err := service.PlaceBid(tc.id, tc.amount, tc.token)
			if tc.expectError == nil {
				require.NoError(t, err)
			} else {
				require.True(t, errors.Is(err, tc.expectError), "got %v", err)
			}
		})
	}
}

func TestService_ProfileQueryShaping(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGW := NewMockRequester(ctrl)
	service := NewService(mockGW)

	mockGW.EXPECT().
		Request("/auction/profiles/alice?_bids=true&_listings=true", gateway.Options{Token: "tok"}).
		Return(json.RawMessage(`{"name":"alice","email":"alice@stud.noroff.no","credits":1000}`), nil)

	profile, err := service.Profile("alice", ProfileQuery{Listings: true, Bids: true, Token: "tok"})
	require.NoError(t, err)
	require.Equal(t, 1000, profile.Credits)
}

func TestService_ProfileBidsIncludesListings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGW := NewMockRequester(ctrl)
	service := NewService(mockGW)

	mockGW.EXPECT().
		Request("/auction/profiles/alice/bids?_listings=true", gateway.Options{Token: "tok"}).
		Return(json.RawMessage(`[{"id":"b1","amount":100}]`), nil)

	bids, err := service.ProfileBids("alice", "tok")
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.Equal(t, 100.0, bids[0].Amount)
}

func TestService_DecodeErrorKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGW := NewMockRequester(ctrl)
	service := NewService(mockGW)

	mockGW.EXPECT().
		Request(gomock.Any(), gomock.Any()).
		Return(json.RawMessage(`"not an object"`), nil)

	_, err := service.Listing("l1")
	require.True(t, errors.Is(err, auctionerrors.ErrDecode), "got %v", err)
}

func TestService_GatewayErrorsPassThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGW := NewMockRequester(ctrl)
	service := NewService(mockGW)

	apiErr := &gateway.APIError{StatusCode: http.StatusNotFound, Message: "No listing with such ID"}
	mockGW.EXPECT().Request(gomock.Any(), gomock.Any()).Return(nil, apiErr)

	_, err := service.Listing("l1")
	var got *gateway.APIError
	require.True(t, errors.As(err, &got))
	require.Equal(t, "No listing with such ID", got.Message)
}
