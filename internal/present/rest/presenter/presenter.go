package presenter

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

type failureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func BadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, failureResponse{Message: msg})
}

func Unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, failureResponse{Message: msg})
}

func Conflict(c echo.Context, msg string) error {
	return c.JSON(http.StatusConflict, failureResponse{Message: msg})
}

// InternalError logs the cause and reports a single human-readable message;
// no partial receipt ever reaches the caller on this path.
func InternalError(c echo.Context, err error) error {
	slog.Error("request failed",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return c.JSON(http.StatusInternalServerError, failureResponse{Message: err.Error()})
}
