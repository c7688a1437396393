package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/proserv/engagement-api/internal/constants"
	"github.com/proserv/engagement-api/internal/services"
)

// Trusted identity headers set by the fronting proxy. Authentication itself
// happens upstream; this layer only reads the result.
const (
	HeaderUserID    = "X-Proserv-User-Id"
	HeaderUserEmail = "X-Proserv-User-Email"
	HeaderUserName  = "X-Proserv-User-Name"
	HeaderUserRoles = "X-Proserv-User-Roles"
)

const fallbackIdentityID = "engagement-lead"

// ResolveIdentity builds the caller identity from proxy headers. Requests with
// no identity headers fall back to the single-operator identity so local and
// demo deployments work without a proxy.
func ResolveIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := identityFromHeaders(c)
		c.Set(constants.ContextKeyIdentity, identity)
		c.Next()
	}
}

func identityFromHeaders(c *gin.Context) services.Identity {
	id := strings.TrimSpace(c.GetHeader(HeaderUserID))
	if id == "" {
		id = fallbackIdentityID
	}

	email := strings.TrimSpace(c.GetHeader(HeaderUserEmail))
	if email == "" {
		email = id + "@proserv.local"
	}

	givenName, familyName := splitName(strings.TrimSpace(c.GetHeader(HeaderUserName)))

	var roles []string
	if raw := strings.TrimSpace(c.GetHeader(HeaderUserRoles)); raw != "" {
		for _, role := range strings.Split(raw, ",") {
			if role = strings.TrimSpace(role); role != "" {
				roles = append(roles, role)
			}
		}
	}

	return services.Identity{
		ID:         id,
		Email:      email,
		GivenName:  givenName,
		FamilyName: familyName,
		Roles:      roles,
	}
}

// splitName treats the first word as the given name and the remainder as the
// family name.
func splitName(full string) (string, string) {
	if full == "" {
		return "", ""
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

// GetIdentity retrieves the caller identity stored by ResolveIdentity.
func GetIdentity(c *gin.Context) (services.Identity, bool) {
	value, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return services.Identity{}, false
	}
	identity, ok := value.(services.Identity)
	return identity, ok
}
