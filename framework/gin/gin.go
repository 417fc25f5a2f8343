// Package rbacginhandler adapts the RBAC credential check to gin.
package rbacginhandler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	rbacmiddleware "github.com/scaffoldkit/go-rbac-middleware"
	"github.com/scaffoldkit/go-rbac-middleware/core"
	"github.com/scaffoldkit/go-rbac-middleware/rbac"
	"github.com/scaffoldkit/go-rbac-middleware/token"
)

// DefaultClaimsKey is the gin context key under which validated claims
// are stored.
const DefaultClaimsKey = "principal"

var (
	ErrMissingClaims = errors.New("no validated claims found in context")
	ErrInvalidClaims = errors.New("invalid claims type in context")
)

// ErrorHandler is a gin-native handler for failed credential checks. It
// must write a response; the request does not continue afterwards.
type ErrorHandler func(c *gin.Context, err error)

// New creates a gin middleware enforcing the given role. The validator
// is typically a *token.Validator; it must be safe for concurrent use.
func New(validator core.TokenValidator, required rbac.Role, opts ...Option) (gin.HandlerFunc, error) {
	cfg := &ginConfig{
		errorHandler:      defaultGinErrorHandler,
		claimsKey:         DefaultClaimsKey,
		tokenExtractor:    rbacmiddleware.AuthHeaderTokenExtractor,
		validateOnOptions: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if !required.Valid() {
		return nil, errors.New("unknown required role")
	}

	engine, err := core.New(
		core.WithValidator(validator),
		core.WithCredentialsOptional(cfg.credentialsOptional),
	)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		// If we don't validate on OPTIONS and this is OPTIONS
		// then continue onto next without validating.
		if !cfg.validateOnOptions && c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		rawToken, err := cfg.tokenExtractor(c.Request)
		if err != nil {
			// An error here means the extractor had a problem with the
			// supplied token, not that the token was missing.
			cfg.errorHandler(c, fmt.Errorf("error extracting token: %w", err))
			return
		}

		claims, err := engine.CheckCredentials(c.Request.Context(), rawToken, required)
		if err != nil {
			cfg.errorHandler(c, err)
			return
		}

		if claims != nil {
			c.Set(cfg.claimsKey, claims)
			c.Request = c.Request.Clone(core.SetClaims(c.Request.Context(), claims))
		}

		c.Next()
	}, nil
}

func defaultGinErrorHandler(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrTokenMissing):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Credentials are missing."})
	case errors.Is(err, core.ErrInsufficientRole):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied."})
	case errors.Is(err, core.ErrAccessDenied):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access denied."})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong while checking credentials."})
	}
}

// GetClaims retrieves the validated claims stored by the middleware. Pass
// an empty claimsKey unless WithClaimsKey changed it.
func GetClaims(c *gin.Context, claimsKey string) (*token.Claims, error) {
	if claimsKey == "" {
		claimsKey = DefaultClaimsKey
	}

	value, exists := c.Get(claimsKey)
	if !exists {
		return nil, ErrMissingClaims
	}

	claims, ok := value.(*token.Claims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}
