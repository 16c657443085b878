package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lotmarket/internal/repository"
	"lotmarket/services/devapi/helpers"
	"lotmarket/utils"
)

// ProfileHandler serves the /auction/profiles endpoints
type ProfileHandler struct {
	repo repository.MarketDB
}

// NewProfileHandler creates the profile handler
func NewProfileHandler(repo repository.MarketDB) *ProfileHandler {
	return &ProfileHandler{repo: repo}
}

// GetHandler handles GET /auction/profiles/:name
func (h *ProfileHandler) GetHandler(c *gin.Context) {
	name := c.Param("name")

	profile, err := h.repo.GetProfile(name)
	if err != nil {
		helpers.JSONErrorFor(c, "GetProfileHandler", err)
		return
	}

	if c.Query("_listings") == "true" {
		listings, err := h.repo.ListingsBySeller(name, false)
		if err != nil {
			helpers.JSONErrorFor(c, "GetProfileHandler", err)
			return
		}
		profile.Listings = listings
	}

	utils.JSONData(c, http.StatusOK, profile)
}

// UpdateHandler handles PUT /auction/profiles/:name. Profiles can only be
// edited by their owner.
func (h *ProfileHandler) UpdateHandler(c *gin.Context) {
	caller, ok := helpers.ProfileName(c)
	if !ok {
		utils.JSONErrorMessage(c, http.StatusUnauthorized, "No authorization header was found")
		return
	}

	name := c.Param("name")
	if caller != name {
		utils.JSONErrorMessage(c, http.StatusForbidden, "You can only update your own profile")
		return
	}

	var req helpers.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateProfileHandler", err)
		return
	}

	profile, err := h.repo.UpdateProfile(name, req.Bio, req.Avatar)
	if err != nil {
		helpers.JSONErrorFor(c, "UpdateProfileHandler", err)
		return
	}

	utils.JSONData(c, http.StatusOK, profile)
	utils.Info("UpdateProfileHandler: profile updated", map[string]any{"name": name})
}

// ListingsHandler handles GET /auction/profiles/:name/listings
func (h *ProfileHandler) ListingsHandler(c *gin.Context) {
	listings, err := h.repo.ListingsBySeller(c.Param("name"), c.Query("_active") == "true")
	if err != nil {
		helpers.JSONErrorFor(c, "ProfileListingsHandler", err)
		return
	}

	if c.Query("_bids") != "true" {
		for i := range listings {
			listings[i].Bids = nil
		}
	}

	utils.JSONData(c, http.StatusOK, listings)
}

// BidsHandler handles GET /auction/profiles/:name/bids
func (h *ProfileHandler) BidsHandler(c *gin.Context) {
	bids, err := h.repo.BidsByBidder(c.Param("name"))
	if err != nil {
		helpers.JSONErrorFor(c, "ProfileBidsHandler", err)
		return
	}

	if c.Query("_listings") != "true" {
		for i := range bids {
			bids[i].Listing = nil
		}
	}

	utils.JSONData(c, http.StatusOK, bids)
}
