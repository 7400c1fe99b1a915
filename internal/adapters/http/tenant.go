package httpadapter

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports"
)

const tenantHeader = "X-Tenant"

type tenantContextKey struct{}

func tenantFromContext(ctx context.Context) *domain.Tenant {
	tenant, _ := ctx.Value(tenantContextKey{}).(*domain.Tenant)
	return tenant
}

// tenantMiddleware resolves the request's tenant from the X-Tenant header,
// falling back to the ?tenant= query parameter, then the configured default.
// Unknown tenants are created on first use.
func tenantMiddleware(next http.Handler, tenants ports.TenantRepository, defaultTenant string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.Header.Get(tenantHeader))
		if name == "" {
			name = strings.TrimSpace(r.URL.Query().Get("tenant"))
		}
		if name == "" {
			name = defaultTenant
		}
		if !validTenantName(name) {
			writeError(w, domain.WrapError(domain.ErrInvalidInput, "resolve tenant",
				errors.New("tenant name must be 1-64 visible characters")))
			return
		}

		tenant, err := tenants.GetOrCreate(r.Context(), name)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), tenantContextKey{}, tenant)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validTenantName(name string) bool {
	if name == "" || utf8.RuneCountInString(name) > 64 {
		return false
	}
	for _, r := range name {
		if r < 0x21 || r == 0x7f {
			return false
		}
	}
	return true
}
