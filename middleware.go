package rbacmiddleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/scaffoldkit/go-rbac-middleware/config"
	"github.com/scaffoldkit/go-rbac-middleware/core"
	"github.com/scaffoldkit/go-rbac-middleware/rbac"
	"github.com/scaffoldkit/go-rbac-middleware/token"
)

// ExclusionURLHandler reports whether a request should bypass credential
// checks entirely, e.g. health endpoints.
type ExclusionURLHandler func(r *http.Request) bool

// Middleware enforces role-based access control over HTTP. It extracts
// the bearer token from each request, hands it to the core engine for
// validation and role enforcement, and stores the validated claims in the
// request context for downstream handlers.
type Middleware struct {
	core                *core.Core
	errorHandler        ErrorHandler
	tokenExtractor      TokenExtractor
	validateOnOptions   bool
	exclusionURLHandler ExclusionURLHandler
	logger              Logger
	metrics             Metrics
	tracer              Tracer
	requiredRole        rbac.Role

	// Construction-only fields consumed by New.
	validator           core.TokenValidator
	credentialsOptional bool
}

// New constructs a Middleware. A validator is required; everything else
// has defaults: Authorization-header extraction, USER as the required
// role, credentials mandatory, OPTIONS requests validated.
func New(opts ...Option) (*Middleware, error) {
	m := &Middleware{
		validateOnOptions: true,
		requiredRole:      rbac.RoleUser,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if m.validator == nil {
		return nil, ErrValidatorNil
	}

	if m.errorHandler == nil {
		m.errorHandler = DefaultErrorHandler
	}
	if m.tokenExtractor == nil {
		m.tokenExtractor = AuthHeaderTokenExtractor
	}
	if m.metrics == nil {
		m.metrics = NoopMetrics{}
	}
	if m.tracer == nil {
		m.tracer = NoopTracer{}
	}

	coreOpts := []core.Option{
		core.WithValidator(m.validator),
		core.WithCredentialsOptional(m.credentialsOptional),
	}
	if m.logger != nil {
		coreOpts = append(coreOpts, core.WithLogger(m.logger))
	}

	engine, err := core.New(coreOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create core: %w", err)
	}
	m.core = engine

	return m, nil
}

// NewFromConfig constructs a Middleware whose validator is built from the
// resolved configuration; additional options apply on top.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Middleware, error) {
	validator, err := token.NewValidator(cfg)
	if err != nil {
		return nil, err
	}

	return New(append([]Option{WithValidator(validator)}, opts...)...)
}

// CheckToken wraps next with a credential check at the middleware's
// default required role.
func (m *Middleware) CheckToken(next http.Handler) http.Handler {
	return m.guard(m.requiredRole, next)
}

// RequireRole returns middleware enforcing the given role for a specific
// route, independent of the default:
//
//	mux.Handle("/admin/", middleware.RequireRole(rbac.RoleAdmin)(adminHandler))
func (m *Middleware) RequireRole(required rbac.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m.guard(required, next)
	}
}

func (m *Middleware) guard(required rbac.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.exclusionURLHandler != nil && m.exclusionURLHandler(r) {
			if m.logger != nil {
				m.logger.Debug("skipping credential check for excluded URL",
					"method", r.Method, "path", r.URL.Path)
			}
			next.ServeHTTP(w, r)
			return
		}

		if !m.validateOnOptions && r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		ctx, span := m.tracer.StartSpan(r.Context(), "rbacmiddleware.check_token")
		defer span.Finish()
		span.SetTag("required_role", required.String())

		rawToken, err := m.tokenExtractor(r)
		if err != nil {
			span.SetTag("outcome", "extractor_error")
			m.metrics.IncCheckOutcome("extractor_error")
			if m.logger != nil {
				m.logger.Error("failed to extract token from request",
					"error", err, "method", r.Method, "path", r.URL.Path)
			}
			// Not a missing token: the extractor found credentials it
			// could not use.
			m.errorHandler(w, r, fmt.Errorf("error extracting token: %w", err))
			return
		}

		start := time.Now()
		claims, err := m.core.CheckCredentials(ctx, rawToken, required)
		m.metrics.ObserveValidationDuration(time.Since(start).Seconds())

		if err != nil {
			outcome := core.ErrorCode(err)
			if outcome == "" {
				outcome = "error"
			}
			span.SetTag("outcome", outcome)
			m.metrics.IncCheckOutcome(outcome)
			m.errorHandler(w, r, err)
			return
		}

		span.SetTag("outcome", "granted")
		m.metrics.IncCheckOutcome("granted")

		if claims == nil {
			// Credentials optional and none supplied.
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		next.ServeHTTP(w, r.Clone(core.SetClaims(ctx, claims)))
	})
}

// ErrValidatorNil is returned by New when no validator was configured.
var ErrValidatorNil = errors.New("validator cannot be nil (use WithValidator)")
