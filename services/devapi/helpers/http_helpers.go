package helpers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lotmarket/internal/auctionerrors"
	"lotmarket/utils"
)

const profileNameContextKey = "profileName"

// SetProfileName stores the authenticated profile name on the request context
func SetProfileName(c *gin.Context, name string) {
	c.Set(profileNameContextKey, name)
}

// ProfileName returns the authenticated profile name set by the auth middleware
func ProfileName(c *gin.Context) (string, bool) {
	value, ok := c.Get(profileNameContextKey)
	if !ok {
		return "", false
	}
	name, ok := value.(string)
	return name, ok && name != ""
}

// HandleBindError sends a standardized envelope error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	utils.JSONErrorMessage(c, http.StatusBadRequest, "Invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps repository errors to an HTTP status and a
// client-facing message.
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrListingNotFound):
		return http.StatusNotFound, "No listing with such ID"
	case errors.Is(err, auctionerrors.ErrProfileNotFound):
		return http.StatusNotFound, "No profile with this name"
	case errors.Is(err, auctionerrors.ErrNameTaken):
		return http.StatusBadRequest, "Profile already exists"
	case errors.Is(err, auctionerrors.ErrBadCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, auctionerrors.ErrListingEnded):
		return http.StatusBadRequest, "Listing has already ended"
	case errors.Is(err, auctionerrors.ErrOwnBid):
		return http.StatusBadRequest, "You cannot bid on your own listing"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusBadRequest, "Your bid must be higher than the current bid"
	case errors.Is(err, auctionerrors.ErrInsufficientCredits):
		return http.StatusBadRequest, "You do not have enough credits for this bid"
	case errors.Is(err, auctionerrors.ErrNotListingOwner):
		return http.StatusForbidden, "You do not own this listing"
	case errors.Is(err, auctionerrors.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid request payload"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// JSONErrorFor maps and sends a repository error in one step
func JSONErrorFor(c *gin.Context, handlerName string, err error) {
	status, message := MapErrorToHTTP(err)
	utils.JSONErrorMessage(c, status, message)
	utils.Warn(handlerName+": request failed", map[string]any{"error": err.Error(), "status": status})
}
