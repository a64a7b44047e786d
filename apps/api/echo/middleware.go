package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core/user"
)

// roleMiddleware lets through callers holding any of roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			p, err := getContextPrincipal(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context principal")
			}
			if p.HasAnyRole(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// managerMiddleware lets through wardens and admins.
func managerMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleWarden, user.RoleAdmin)
}

// selfOrManagerMiddleware lets through the user named by the path param, wardens and admins.
// Anyone else gets a 404, so ids of other students are not disclosed.
func selfOrManagerMiddleware(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			p, err := getContextPrincipal(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context principal")
			}
			if ctx.Param(param) == p.ID || p.CanManageHostel() {
				return next(ctx)
			}
			return errHttpNotFound
		}
	}
}
