package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// requireAdmin only lets through tokens carrying the is_admin claim.
func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		if !claims.IsAdmin {
			return errHttpForbidden
		}
		return next(ctx)
	}
}
