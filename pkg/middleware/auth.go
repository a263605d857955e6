// Package middleware 提供 Gin 鉴权中间件与调用者身份的存取。
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/response"

	"github.com/marginalfriend/my-garage/internal/auth/domain"
)

// IdentityKey gin context 中身份的键
const IdentityKey = "identity"

// TokenVerifier 校验令牌签名并还原身份
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// Authenticated 要求请求携带合法令牌。
// 缺失令牌返回 401，签名无效返回 403，与原有客户端的预期一致。
func Authenticated(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token = strings.TrimPrefix(token, "Bearer ")

		identity, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// StaffOnly 要求调用者持有 ADMIN 或 SUPER_ADMIN 角色，需在 Authenticated 之后使用
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok || !identity.IsStaff() {
			response.ErrorWithStatus(c, http.StatusForbidden, "You are not authorized to access this information", "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentity 从 gin context 取出已验证身份
func GetIdentity(c *gin.Context) (domain.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)
	return identity, ok
}
