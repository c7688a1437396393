package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proserv/engagement-api/internal/services"
)

func resolveWith(t *testing.T, headers map[string]string) services.Identity {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	for key, value := range headers {
		c.Request.Header.Set(key, value)
	}

	ResolveIdentity()(c)

	identity, ok := GetIdentity(c)
	require.True(t, ok)
	return identity
}

func TestResolveIdentity_FromHeaders(t *testing.T) {
	identity := resolveWith(t, map[string]string{
		HeaderUserID:    "user-42",
		HeaderUserEmail: "dana.fox@example.com",
		HeaderUserName:  "Dana van der Fox",
		HeaderUserRoles: "lead, estimator",
	})

	assert.Equal(t, "user-42", identity.ID)
	assert.Equal(t, "dana.fox@example.com", identity.Email)
	assert.Equal(t, "Dana", identity.GivenName)
	assert.Equal(t, "van der Fox", identity.FamilyName)
	assert.Equal(t, []string{"lead", "estimator"}, identity.Roles)
}

func TestResolveIdentity_FallbackWithoutHeaders(t *testing.T) {
	identity := resolveWith(t, nil)

	assert.Equal(t, "engagement-lead", identity.ID)
	assert.Equal(t, "engagement-lead@proserv.local", identity.Email)
	assert.Empty(t, identity.GivenName)
	assert.Empty(t, identity.Roles)
}

func TestResolveIdentity_DerivesEmailFromID(t *testing.T) {
	identity := resolveWith(t, map[string]string{HeaderUserID: "consultant-7"})

	assert.Equal(t, "consultant-7@proserv.local", identity.Email)
}

func TestGetIdentity_MissingContextKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, ok := GetIdentity(c)
	assert.False(t, ok)
}
