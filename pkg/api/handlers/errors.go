package handlers

import (
	"errors"
	"net/http"

	"github.com/permflow/engine/pkg/catalogue/models"
)

// classify maps a domain sentinel error to an HTTP status and problem
// title. Errors with no match fall through to 500, since every handler
// that returns an unrecognized error has found a genuine bug rather than
// an expected refusal.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrGroupNotFound),
		errors.Is(err, models.ErrMembershipNotFound),
		errors.Is(err, models.ErrFolderNotFound),
		errors.Is(err, models.ErrPermissionNotFound),
		errors.Is(err, models.ErrRequestNotFound),
		errors.Is(err, models.ErrTaskNotFound),
		errors.Is(err, models.ErrNotificationNotFound),
		errors.Is(err, models.ErrNoMatchingPermission):
		return http.StatusNotFound, "Not Found"
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, models.ErrDuplicateUser),
		errors.Is(err, models.ErrDuplicateGroup),
		errors.Is(err, models.ErrDuplicateFolder),
		errors.Is(err, models.ErrDuplicatePermission),
		errors.Is(err, models.ErrRequestConflict):
		return http.StatusConflict, "Conflict"
	case errors.Is(err, models.ErrRequestInvalidState),
		errors.Is(err, models.ErrTaskNotCancelable):
		return http.StatusUnprocessableEntity, "Unprocessable Entity"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
