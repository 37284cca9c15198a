package directory

import (
	"context"

	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/domain/tenant"
	"github.com/pms/backend/internal/infrastructure/logger"
)

// Resolver maps an incoming request to a usable directory entry. An explicit
// code always wins; otherwise the ambient tenant code placed in the request
// context by the HTTP middleware is used. Lookups always go to the
// directory, never to a cache, so override changes apply immediately.
type Resolver struct {
	dir tenant.Directory
}

// NewResolver creates a resolver over the given directory
func NewResolver(dir tenant.Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve returns the tenant for the explicit code, or the ambient one when
// the code is empty. A tenant without a database target is unusable and
// reported as misconfigured rather than silently defaulted.
func (r *Resolver) Resolve(ctx context.Context, code string) (*tenant.Tenant, error) {
	if code == "" {
		code = logger.GetTenantCode(ctx)
	}
	if code == "" {
		return nil, shared.NewTenantNotFoundError("")
	}

	t, err := r.dir.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if t.Database == "" {
		return nil, shared.NewTenantMisconfiguredError(t.Code, "no database target")
	}
	return t, nil
}
