package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lotmarket/internal/models"
	"lotmarket/internal/repository"
	"lotmarket/services/devapi/helpers"
	"lotmarket/utils"
)

// ListingHandler serves the /auction/listings endpoints
type ListingHandler struct {
	repo repository.MarketDB
}

// NewListingHandler creates the listing handler
func NewListingHandler(repo repository.MarketDB) *ListingHandler {
	return &ListingHandler{repo: repo}
}

// ListHandler handles GET /auction/listings
func (h *ListingHandler) ListHandler(c *gin.Context) {
	activeOnly := c.Query("_active") == "true"
	sortField := c.DefaultQuery("sort", "created")
	sortOrder := c.DefaultQuery("sortOrder", "desc")

	listings := h.repo.Listings(activeOnly, sortField, sortOrder)
	for i := range listings {
		stripIncludes(&listings[i], c.Query("_seller") == "true", c.Query("_bids") == "true")
	}

	utils.JSONData(c, http.StatusOK, listings)
}

// GetHandler handles GET /auction/listings/:id
func (h *ListingHandler) GetHandler(c *gin.Context) {
	listing, err := h.repo.GetListing(c.Param("id"))
	if err != nil {
		helpers.JSONErrorFor(c, "GetListingHandler", err)
		return
	}

	stripIncludes(&listing, c.Query("_seller") == "true", c.Query("_bids") == "true")
	utils.JSONData(c, http.StatusOK, listing)
}

// CreateHandler handles POST /auction/listings
func (h *ListingHandler) CreateHandler(c *gin.Context) {
	seller, ok := helpers.ProfileName(c)
	if !ok {
		utils.JSONErrorMessage(c, http.StatusUnauthorized, "No authorization header was found")
		return
	}

	var req helpers.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateListingHandler", err)
		return
	}

	endsAt, bad := parseEndsAt(req.EndsAt)
	if req.Title == "" || bad || !endsAt.After(time.Now()) {
		utils.JSONErrorMessage(c, http.StatusBadRequest, "A title and a future endsAt date are required")
		return
	}

	listing, err := h.repo.CreateListing(seller, models.Listing{
		Title:       req.Title,
		Description: req.Description,
		EndsAt:      endsAt,
		Media:       req.Media,
		Tags:        req.Tags,
	})
	if err != nil {
		helpers.JSONErrorFor(c, "CreateListingHandler", err)
		return
	}

	utils.JSONData(c, http.StatusCreated, listing)
	utils.Info("CreateListingHandler: listing created", map[string]any{"id": listing.ID, "seller": seller})
}

// UpdateHandler handles PUT /auction/listings/:id
func (h *ListingHandler) UpdateHandler(c *gin.Context) {
	seller, ok := helpers.ProfileName(c)
	if !ok {
		utils.JSONErrorMessage(c, http.StatusUnauthorized, "No authorization header was found")
		return
	}

	var req helpers.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateListingHandler", err)
		return
	}

	endsAt, bad := parseEndsAt(req.EndsAt)
	if bad {
		utils.JSONErrorMessage(c, http.StatusBadRequest, "Invalid endsAt date")
		return
	}

	listing, err := h.repo.UpdateListing(c.Param("id"), seller, models.Listing{
		Title:       req.Title,
		Description: req.Description,
		EndsAt:      endsAt,
		Media:       req.Media,
		Tags:        req.Tags,
	})
	if err != nil {
		helpers.JSONErrorFor(c, "UpdateListingHandler", err)
		return
	}

	utils.JSONData(c, http.StatusOK, listing)
}

// DeleteHandler handles DELETE /auction/listings/:id
func (h *ListingHandler) DeleteHandler(c *gin.Context) {
	seller, ok := helpers.ProfileName(c)
	if !ok {
		utils.JSONErrorMessage(c, http.StatusUnauthorized, "No authorization header was found")
		return
	}

	if err := h.repo.DeleteListing(c.Param("id"), seller); err != nil {
		helpers.JSONErrorFor(c, "DeleteListingHandler", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// BidHandler handles POST /auction/listings/:id/bids
func (h *ListingHandler) BidHandler(c *gin.Context) {
	bidder, ok := helpers.ProfileName(c)
	if !ok {
		utils.JSONErrorMessage(c, http.StatusUnauthorized, "No authorization header was found")
		return
	}

	var req helpers.BidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "BidHandler", err)
		return
	}

	listing, err := h.repo.PlaceBid(c.Param("id"), bidder, req.Amount)
	if err != nil {
		helpers.JSONErrorFor(c, "BidHandler", err)
		return
	}

	utils.JSONData(c, http.StatusCreated, listing)
	utils.Info("BidHandler: bid recorded", map[string]any{
		"listing_id": listing.ID,
		"bidder":     bidder,
		"amount":     req.Amount,
	})
}

// stripIncludes drops the optional relations the caller did not ask for,
// matching the hosted API's _seller/_bids flags.
func stripIncludes(listing *models.Listing, withSeller, withBids bool) {
	if !withSeller {
		listing.Seller = nil
	}
	if !withBids {
		listing.Bids = nil
	}
}

// parseEndsAt accepts RFC 3339 end dates; empty input is not an error so
// updates can leave the end date untouched.
func parseEndsAt(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	endsAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, true
	}
	return endsAt, false
}
