package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/padhaihq/padhai/core/user"
)

// adminMiddleware restricts a route group to active admin accounts. The
// acting user is re-fetched so a demoted or disabled admin loses access
// before their token expires.
func adminMiddleware(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if !claims.IsAdmin {
				return errHttpForbidden
			}

			usr, err := getContextUser(ctx, svc, claims)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return errHttpForbidden
				}
				return errors.Wrap(err, "getting context user")
			}
			if !usr.IsAdmin || usr.IsDisabled {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
