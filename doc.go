/*
Package rbacmiddleware provides HTTP middleware for role-based access
control backed by signed bearer tokens.

The middleware validates the token supplied in the Authorization header
of every protected request, resolves the role it carries, and grants
access only when that role covers the one the route requires. Roles form
a total order (USER < ADMIN < ROOT), so a higher role implies every
permission of the roles below it. The package follows the Core-Adapter
pattern: the transport-agnostic engine lives in the core package and this
package is the net/http adapter; gin, echo and gRPC adapters live under
framework/.

# Quick Start

	import (
	    rbacmiddleware "github.com/scaffoldkit/go-rbac-middleware"
	    "github.com/scaffoldkit/go-rbac-middleware/config"
	    "github.com/scaffoldkit/go-rbac-middleware/rbac"
	    "github.com/scaffoldkit/go-rbac-middleware/token"
	)

	func main() {
	    // Resolve the immutable process configuration from the
	    // environment (JWT_SECRET_KEY, APP_ROOT_USERS, ...).
	    cfg, err := config.New()
	    if err != nil {
	        log.Fatal(err)
	    }

	    // Role assignment at login time.
	    resolver := rbac.NewResolver(cfg.RootUsers, cfg.AdminUsers)
	    issuer, err := token.NewIssuer(cfg)
	    if err != nil {
	        log.Fatal(err)
	    }
	    _ = issuer // hand tokens out from your login handler

	    middleware, err := rbacmiddleware.NewFromConfig(cfg)
	    if err != nil {
	        log.Fatal(err)
	    }

	    http.Handle("/api/", middleware.CheckToken(apiHandler))
	    http.Handle("/admin/", middleware.RequireRole(rbac.RoleAdmin)(adminHandler))
	    http.ListenAndServe(":8080", nil)
	}

# Accessing Claims

	func apiHandler(w http.ResponseWriter, r *http.Request) {
	    claims, err := core.GetClaims(r.Context())
	    if err != nil {
	        http.Error(w, "Unauthorized", http.StatusUnauthorized)
	        return
	    }
	    fmt.Fprintf(w, "hello %s (%s)", claims.Subject, claims.Role)
	}

# External Issuers

When JWT_ISSUER_URI or JWT_JWK_SET_URI is configured, token signatures
are verified against the issuer's published JWK set instead of the shared
secret; the key set is fetched through the caching provider in the jwks
package.
*/
package rbacmiddleware
