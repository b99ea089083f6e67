package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/services"
	"github.com/yopdevs/platform/backend/pkg/logger"
)

// deletePermissionMessage tells the user how to recover from deleting a
// notification they do not own, which usually means a stale list.
const deletePermissionMessage = "You can only delete your own notifications. Refresh the list and try again."

// httpError maps a service error onto the HTTP response. Unknown errors are
// logged and reported as a generic failure.
func httpError(c echo.Context, err error) error {
	var quota *services.QuotaExceededError
	switch {
	case errors.As(err, &quota):
		return echo.NewHTTPError(http.StatusTooManyRequests, echo.Map{
			"message": fmt.Sprintf("Daily limit of %d %s reached. Try again tomorrow.", quota.Limit, quota.Kind),
			"kind":    quota.Kind,
			"limit":   quota.Limit,
		})
	case errors.Is(err, services.ErrDeletePermission):
		return echo.NewHTTPError(http.StatusForbidden, deletePermissionMessage)
	case errors.Is(err, services.ErrNotRecipient):
		return echo.NewHTTPError(http.StatusForbidden, "Only the recipient can answer this friend request")
	case errors.Is(err, services.ErrBanned):
		return echo.NewHTTPError(http.StatusForbidden, "This account is banned")
	case errors.Is(err, services.ErrProfileIncomplete):
		return echo.NewHTTPError(http.StatusForbidden, "Complete your profile first")
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "You are not allowed to do this")
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrRequestExists):
		return echo.NewHTTPError(http.StatusConflict, "A friend request between you already exists")
	case errors.Is(err, services.ErrRequestResolved):
		return echo.NewHTTPError(http.StatusConflict, "This friend request was already answered")
	case errors.Is(err, services.ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, "Already exists")
	case errors.Is(err, services.ErrSelfRequest):
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot send a friend request to yourself")
	case errors.Is(err, services.ErrSelfInterest):
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot express interest in your own project")
	case errors.Is(err, services.ErrBlankContent):
		return echo.NewHTTPError(http.StatusBadRequest, "Content cannot be blank")
	}

	logger.Log.WithError(err).
		WithField("method", c.Request().Method).
		WithField("path", c.Path()).
		Error("request failed")
	return echo.NewHTTPError(http.StatusInternalServerError, "Operation failed")
}

// bindAndValidate binds the request body into req and runs e.Validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

func paramUint(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func queryInt(c echo.Context, name string, def int) int {
	if v, err := strconv.Atoi(c.QueryParam(name)); err == nil {
		return v
	}
	return def
}
