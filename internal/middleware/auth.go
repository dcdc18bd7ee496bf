package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	ContextTenantID = "tenant_id"
	ContextUserID   = "user_id"
	ContextRole     = "role"
)

type Claims struct {
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// Auth resolves the caller's identity and tenant scope. Tokens are
// issued by the external auth service; this core only verifies them.
// Outside production a missing token falls back to the X-Tenant-ID
// header or the configured default tenant so local flows keep working;
// in production an explicit tenant is mandatory.
func Auth(secret, defaultTenantID string, allowDefaultTenant bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		if header == "" {
			if !allowDefaultTenant {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization token"})
				return
			}
			tenantID := c.GetHeader("X-Tenant-ID")
			if tenantID == "" {
				tenantID = defaultTenantID
			}
			if tenantID == "" {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Tenant not specified"})
				return
			}
			c.Set(ContextTenantID, tenantID)
			c.Set(ContextRole, "admin")
			c.Next()
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		if claims.TenantID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Tenant not specified"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextTenantID, claims.TenantID)
		c.Next()
	}
}

// RequireAdmin guards mutating endpoints.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
			return
		}
		c.Next()
	}
}

// TenantID returns the tenant resolved by Auth.
func TenantID(c *gin.Context) string {
	return c.GetString(ContextTenantID)
}
