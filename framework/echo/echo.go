// Package rbacechohandler adapts the RBAC middleware to echo.
package rbacechohandler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	rbacmiddleware "github.com/scaffoldkit/go-rbac-middleware"
	"github.com/scaffoldkit/go-rbac-middleware/core"
	"github.com/scaffoldkit/go-rbac-middleware/rbac"
	"github.com/scaffoldkit/go-rbac-middleware/token"
)

// DefaultClaimsKey is the echo context key under which validated claims
// are stored.
const DefaultClaimsKey = "principal"

var (
	ErrMissingClaims = errors.New("no validated claims found in context")
	ErrInvalidClaims = errors.New("invalid claims type in context")
)

// New creates an echo middleware enforcing the given role.
func New(validator core.TokenValidator, required rbac.Role, opts ...Option) (echo.MiddlewareFunc, error) {
	cfg := &echoConfig{
		errorHandler: defaultEchoErrorHandler,
		claimsKey:    DefaultClaimsKey,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	middlewareOpts := []rbacmiddleware.Option{
		rbacmiddleware.WithValidator(validator),
		rbacmiddleware.WithRequiredRole(required),
		rbacmiddleware.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			// The original echo context is not reachable from here, so
			// adapt through a fresh one bound to the same writer.
			e := echo.New()
			_ = cfg.errorHandler(e.NewContext(r, w), err)
		}),
	}
	middlewareOpts = append(middlewareOpts, cfg.middlewareOpts...)

	middleware, err := rbacmiddleware.New(middlewareOpts...)
	if err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			encounteredError := true
			var handlerErr error

			var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
				encounteredError = false
				c.SetRequest(r)

				if claims, err := core.GetClaims(r.Context()); err == nil {
					c.Set(cfg.claimsKey, claims)
				}

				handlerErr = next(c)
			}

			middleware.CheckToken(handler).ServeHTTP(c.Response(), c.Request())

			if encounteredError {
				// The error handler already wrote the response.
				return nil
			}
			return handlerErr
		}
	}, nil
}

func defaultEchoErrorHandler(c echo.Context, err error) error {
	switch {
	case errors.Is(err, core.ErrTokenMissing):
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Credentials are missing."})
	case errors.Is(err, core.ErrInsufficientRole):
		return c.JSON(http.StatusForbidden, map[string]string{"message": "Access denied."})
	case errors.Is(err, core.ErrAccessDenied):
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Access denied."})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Something went wrong while checking credentials."})
	}
}

// GetClaims retrieves the validated claims stored by the middleware.
func GetClaims(c echo.Context, claimsKey string) (*token.Claims, error) {
	if claimsKey == "" {
		claimsKey = DefaultClaimsKey
	}

	value := c.Get(claimsKey)
	if value == nil {
		return nil, ErrMissingClaims
	}

	claims, ok := value.(*token.Claims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}
